package statsd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig(strings.NewReader(`
host: statsd.internal
port: 9125
namespace: myapp
bucket: events
batch_capacity: 1432
`))
	require.NoError(t, err)

	assert.Equal(t, "statsd.internal", config.Host)
	assert.Equal(t, 9125, config.Port)
	assert.Equal(t, "myapp", config.Namespace)
	assert.Equal(t, "events", config.Bucket)
	assert.Equal(t, 1432, config.BatchCapacity)
	assert.Equal(t, "statsd.internal:9125", config.Address())
}

func TestParseConfig_EmptyUsesDefaults(t *testing.T) {
	config, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err)

	config = config.withDefaults()
	assert.Equal(t, "127.0.0.1:8125", config.Address())
	assert.Equal(t, DefaultBatchCapacity, config.BatchCapacity)
	assert.NotNil(t, config.Logger)
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("hostname: typo\n"))
	assert.Error(t, err)

	_, err = ParseConfig(strings.NewReader("port: 70000\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespace: svc\n"), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "svc", config.Namespace)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
