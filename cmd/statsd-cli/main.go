package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	protocol "github.com/influxdata/line-protocol"
	statsd "github.com/itzg/statsd-sender"
	flag "github.com/namsral/flag"
	log "github.com/sirupsen/logrus"
)

type options struct {
	configFile string
	host       string
	port       int
	prefix     string
	bucket     string
	metricType string
	value      int64
	rate       float64
	influx     bool
	influxKind string
	capacity   int
	debug      bool
}

func main() {
	var opts options
	var help bool

	fs := flag.NewFlagSetWithEnvPrefix(os.Args[0], "STATSD", flag.ExitOnError)
	fs.StringVar(&opts.configFile, "config", "", "YAML client configuration file")
	fs.StringVar(&opts.host, "host", "", "statsd server host name or IP (default 127.0.0.1)")
	fs.IntVar(&opts.port, "port", 0, "statsd server port (default 8125)")
	fs.StringVar(&opts.prefix, "prefix", "", "Namespace prepended to every bucket")
	fs.StringVar(&opts.bucket, "bucket", "", "Bucket to report to")
	fs.StringVar(&opts.metricType, "type", "inc", "One of inc, dec, count, gauge, set, timing")
	fs.Int64Var(&opts.value, "value", 1, "Metric value, milliseconds for timing")
	fs.Float64Var(&opts.rate, "rate", 1, "Sample rate written on the line when between 0 and 1")
	fs.BoolVar(&opts.influx, "influx", false, "Read Influx line protocol from stdin and send it in batches")
	fs.StringVar(&opts.influxKind, "kind", "gauge", "Metric kind used for fields read with -influx")
	fs.IntVar(&opts.capacity, "capacity", 0, "Batch capacity in bytes (default 512)")
	fs.BoolVar(&opts.debug, "debug", false, "Debug mode")
	fs.BoolVar(&help, "help", false, "Help usage")
	fs.BoolVar(&help, "h", false, "Help usage")
	fs.Parse(os.Args[1:])

	if help {
		fs.Usage()
		os.Exit(0)
	}

	if opts.debug {
		setupLogging(log.DebugLevel)
	} else {
		setupLogging(log.InfoLevel)
	}

	if err := run(opts, os.Stdin); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(level log.Level) {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
	log.SetLevel(level)
}

func buildConfig(opts options) (statsd.Config, error) {
	var config statsd.Config
	if opts.configFile != "" {
		var err error
		config, err = statsd.LoadConfig(opts.configFile)
		if err != nil {
			return config, err
		}
	}

	// flags win over the file
	if opts.host != "" {
		config.Host = opts.host
	}
	if opts.port != 0 {
		config.Port = opts.port
	}
	if opts.prefix != "" {
		config.Namespace = opts.prefix
	}
	if opts.bucket != "" {
		config.Bucket = opts.bucket
	}
	if opts.capacity != 0 {
		config.BatchCapacity = opts.capacity
	}
	config.Logger = log.StandardLogger()
	return config, nil
}

func run(opts options, stdin io.Reader) error {
	config, err := buildConfig(opts)
	if err != nil {
		return err
	}

	client, err := statsd.NewClient(config)
	if err != nil {
		return err
	}
	defer client.Close()

	if opts.influx {
		kind, err := statsd.ParseMetricKind(opts.influxKind)
		if err != nil {
			return err
		}
		return forwardInflux(client, stdin, kind, opts.rate)
	}

	if err := sendOne(client, opts); err != nil {
		return err
	}
	log.WithField("addr", client.Addr()).Debugf("sent %s to %s", opts.metricType, opts.bucket)
	return nil
}

func sendOne(client *statsd.Client, opts options) error {
	switch opts.metricType {
	case "inc":
		return client.Increment(opts.bucket)
	case "dec":
		return client.Decrement(opts.bucket)
	}

	kind, err := statsd.ParseMetricKind(opts.metricType)
	if err != nil {
		return err
	}
	switch kind {
	case statsd.Count:
		return client.Count(opts.bucket, opts.value, opts.rate)
	case statsd.Gauge:
		return client.Gauge(opts.bucket, opts.value, opts.rate)
	case statsd.Set:
		return client.Set(opts.bucket, opts.value, opts.rate)
	case statsd.Timing:
		return client.Timing(opts.bucket, opts.value, opts.rate)
	}
	return fmt.Errorf("%w: %s", statsd.ErrUnknownMetricKind, opts.metricType)
}

// forwardInflux batches every field of every metric read from r, sending a
// datagram whenever the batch fills up and once more at the end. Metrics that
// cannot be converted are logged and skipped.
func forwardInflux(client *statsd.Client, r io.Reader, kind statsd.MetricKind, rate float64) error {
	parser := protocol.NewStreamParser(r)
	for {
		m, err := parser.Next()
		if err == protocol.EOF {
			break
		}
		if err != nil {
			var parseErr *protocol.ParseError
			if errors.As(err, &parseErr) {
				log.Warnf("skipping line %d: %v", parseErr.LineNumber, err)
				continue
			}
			return err
		}

		observations, err := statsd.ObservationsFromMetric(m, kind, rate)
		if err != nil {
			log.WithError(err).Warnf("skipping metric %s", m.Name())
			continue
		}
		for _, o := range observations {
			if err := batch(client, o); err != nil {
				return err
			}
		}
	}
	return client.SendBatch()
}

func batch(client *statsd.Client, o statsd.Observation) error {
	err := client.AddToBatch(o.Kind, o.Bucket, o.Value, o.SampleRate)
	if !errors.Is(err, statsd.ErrBatchFull) {
		return err
	}
	if err := client.SendBatch(); err != nil {
		return err
	}
	return client.AddToBatch(o.Kind, o.Bucket, o.Value, o.SampleRate)
}
