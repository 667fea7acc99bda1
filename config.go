package statsd

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// ParseConfig reads a YAML client configuration such as
//
//	host: statsd.internal
//	port: 8125
//	namespace: myapp
//	bucket: events
//	batch_capacity: 1432
//
// Unknown keys are rejected. Missing keys keep their zero value and are
// defaulted by NewClient.
func ParseConfig(r io.Reader) (Config, error) {
	var config Config
	decoder := yaml.NewDecoder(r)
	decoder.SetStrict(true)
	if err := decoder.Decode(&config); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if config.Port < 0 || config.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", config.Port)
	}
	return config, nil
}

func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	config, err := ParseConfig(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}
