package statsd

import "errors"

var (
	ErrInvalidBucket     = errors.New("invalid bucket")
	ErrUnknownMetricKind = errors.New("unknown metric kind")
	ErrMissingBucket     = errors.New("no bucket given and no default bucket configured")
	ErrBatchFull         = errors.New("batch is full")

	ErrAddressResolution = errors.New("failed to resolve server address")
	ErrTransportOpen     = errors.New("failed to open transport")
	ErrTransportSend     = errors.New("failed to send datagram")

	// ErrClosed is returned by every operation on a Client after Close.
	ErrClosed = errors.New("client is closed")

	ErrUnsupportedField = errors.New("unsupported field value")
)
