package statsd

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8125
)

type ErrorListener func(err error)

type Config struct {
	// Host is a host name or a literal IPv4/IPv6 address.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Namespace is prepended, followed by a dot, to every bucket.
	Namespace string `yaml:"namespace"`
	// Bucket is used by calls that pass an empty bucket.
	Bucket        string `yaml:"bucket"`
	BatchCapacity int    `yaml:"batch_capacity"`

	// ErrorListener, if set, is told about every transport error. The error
	// is returned to the caller as well.
	ErrorListener `yaml:"-"`
	Logger        logrus.FieldLogger `yaml:"-"`

	Resolver Resolver `yaml:"-"`
	Dialer   Dialer   `yaml:"-"`
}

func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.BatchCapacity <= 0 {
		c.BatchCapacity = DefaultBatchCapacity
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Resolver == nil {
		c.Resolver = resolveUDP
	}
	if c.Dialer == nil {
		c.Dialer = dialUDP
	}
	return c
}

// Address returns the "host:port" form of the configured server.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Client sends statsd metrics over a connected UDP socket, either one
// datagram per metric or many metrics per datagram through its batch.
//
// A Client is not safe for concurrent use. Callers sharing one must
// serialize every call, batch and non-batch alike.
type Client struct {
	config Config
	log    logrus.FieldLogger
	addr   string
	conn   Transport
	batch  *Batch
	line   []byte
	sent   uint64
}

// NewClient resolves the configured server and opens a UDP transport to it.
// No Client is returned when either step fails.
func NewClient(config Config) (*Client, error) {
	config = config.withDefaults()
	conn, addr, err := connect(config)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config: config,
		log:    config.Logger.WithField("addr", addr),
		addr:   addr,
		conn:   conn,
		batch:  NewBatch(config.BatchCapacity),
	}
	c.log.WithField("namespace", config.Namespace).Debug("statsd client connected")
	return c, nil
}

func connect(config Config) (Transport, string, error) {
	if config.Namespace != "" {
		if err := ValidateBucket(config.Namespace); err != nil {
			return nil, "", fmt.Errorf("namespace: %w", err)
		}
	}
	if config.Bucket != "" {
		if err := ValidateBucket(config.Bucket); err != nil {
			return nil, "", fmt.Errorf("default bucket: %w", err)
		}
	}

	raddr, err := config.Resolver(config.Address())
	if err != nil {
		return nil, "", fmt.Errorf("%w %s: %w", ErrAddressResolution, config.Address(), err)
	}
	conn, err := config.Dialer(raddr)
	if err != nil {
		return nil, "", fmt.Errorf("%w to %s: %w", ErrTransportOpen, raddr, err)
	}
	return conn, raddr.String(), nil
}

// Reconfigure connects with a new configuration and, only once that
// succeeded, replaces the configuration, transport and batch in one step.
// Pending batched metrics are discarded with a warning. On error the Client
// is unchanged.
func (c *Client) Reconfigure(config Config) error {
	if c.conn == nil {
		return ErrClosed
	}
	config = config.withDefaults()
	conn, addr, err := connect(config)
	if err != nil {
		return err
	}

	if pending := c.batch.Len(); pending > 0 {
		c.log.WithField("bytes", pending).Warn("discarding batched metrics on reconfigure")
	}

	old := c.conn
	c.config = config
	c.log = config.Logger.WithField("addr", addr)
	c.addr = addr
	c.conn = conn
	c.batch = NewBatch(config.BatchCapacity)

	if err := old.Close(); err != nil {
		c.log.WithError(err).Warn("failed to close previous statsd transport")
	}
	c.log.WithField("namespace", config.Namespace).Debug("statsd client reconfigured")
	return nil
}

// Addr returns the resolved server address, e.g. "10.0.0.7:8125".
func (c *Client) Addr() string {
	return c.addr
}

// Sent returns the number of datagrams written successfully.
func (c *Client) Sent() uint64 {
	return c.sent
}

// Increment counts one event in bucket, or in the default bucket when bucket is empty.
func (c *Client) Increment(bucket string) error {
	return c.send(Count, bucket, 1, 1)
}

func (c *Client) Decrement(bucket string) error {
	return c.send(Count, bucket, -1, 1)
}

func (c *Client) Count(bucket string, delta int64, sampleRate float64) error {
	return c.send(Count, bucket, delta, sampleRate)
}

func (c *Client) Gauge(bucket string, value int64, sampleRate float64) error {
	return c.send(Gauge, bucket, value, sampleRate)
}

func (c *Client) Set(bucket string, value int64, sampleRate float64) error {
	return c.send(Set, bucket, value, sampleRate)
}

// Timing records a duration given in milliseconds.
func (c *Client) Timing(bucket string, millis int64, sampleRate float64) error {
	return c.send(Timing, bucket, millis, sampleRate)
}

// Duration records d as a timing, truncated to whole milliseconds.
func (c *Client) Duration(bucket string, d time.Duration, sampleRate float64) error {
	return c.send(Timing, bucket, d.Milliseconds(), sampleRate)
}

func (c *Client) send(kind MetricKind, bucket string, value int64, sampleRate float64) error {
	if c.conn == nil {
		return ErrClosed
	}
	line, err := c.encode(kind, bucket, value, sampleRate)
	if err != nil {
		return err
	}
	return c.write(line)
}

// encode renders into the client's scratch line, which is reused by the next call.
func (c *Client) encode(kind MetricKind, bucket string, value int64, sampleRate float64) ([]byte, error) {
	if bucket == "" {
		bucket = c.config.Bucket
	}
	if bucket == "" {
		return nil, ErrMissingBucket
	}
	line, err := AppendLine(c.line[:0], NewObservation(bucket, kind, value, sampleRate), c.config.Namespace)
	if err != nil {
		return nil, err
	}
	c.line = line
	return line, nil
}

// AddToBatch encodes an observation and appends it to the batch. It returns
// ErrBatchFull, without sending anything, when the batch has no room left;
// the caller decides whether to SendBatch and retry.
func (c *Client) AddToBatch(kind MetricKind, bucket string, value int64, sampleRate float64) error {
	if c.conn == nil {
		return ErrClosed
	}
	line, err := c.encode(kind, bucket, value, sampleRate)
	if err != nil {
		return err
	}
	return c.batch.Append(line)
}

// BatchLen returns the number of bytes waiting in the batch.
func (c *Client) BatchLen() int {
	return c.batch.Len()
}

// ResetBatch drops every batched metric.
func (c *Client) ResetBatch() {
	c.batch.Reset()
}

// SendBatch writes the batch as a single datagram and empties it, whether or
// not the write succeeded. An empty batch sends nothing.
func (c *Client) SendBatch() error {
	if c.conn == nil {
		return ErrClosed
	}
	if c.batch.Len() == 0 {
		return nil
	}
	err := c.write(c.batch.Contents())
	c.batch.Reset()
	return err
}

func (c *Client) write(p []byte) error {
	if _, err := c.conn.Write(p); err != nil {
		err = fmt.Errorf("%w: %w", ErrTransportSend, err)
		c.log.WithError(err).Warn("statsd send failed")
		c.reportError(err)
		return err
	}
	c.sent++
	return nil
}

func (c *Client) reportError(err error) {
	if c.config.ErrorListener != nil {
		c.config.ErrorListener(err)
	}
}

// Close releases the transport. Every later call, including Close, returns ErrClosed.
func (c *Client) Close() error {
	if c.conn == nil {
		return ErrClosed
	}
	err := c.conn.Close()
	c.conn = nil
	c.batch.Reset()
	c.log.Debug("statsd client closed")
	if err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}
