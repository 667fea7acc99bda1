package statsd

import "fmt"

// DefaultBatchCapacity keeps a batch inside a single UDP datagram on any
// reasonable path MTU.
const DefaultBatchCapacity = 512

// Batch accumulates encoded lines, separated by newlines, up to a fixed number
// of bytes. It never grows past its capacity.
//
// A Batch is not safe for concurrent use.
type Batch struct {
	buf []byte
}

// NewBatch returns an empty batch. A non-positive capacity selects DefaultBatchCapacity.
func NewBatch(capacity int) *Batch {
	if capacity <= 0 {
		capacity = DefaultBatchCapacity
	}
	return &Batch{buf: make([]byte, 0, capacity)}
}

// Append adds line to the batch, preceded by a newline unless the batch is empty.
// ErrBatchFull is returned, and the batch left untouched, when the result
// would not fit.
func (b *Batch) Append(line []byte) error {
	n := len(b.buf) + len(line)
	if len(b.buf) > 0 {
		n++
	}
	if n > cap(b.buf) {
		return fmt.Errorf("%w: %d of %d bytes used, line needs %d", ErrBatchFull, len(b.buf), cap(b.buf), len(line))
	}
	if len(b.buf) > 0 {
		b.buf = append(b.buf, '\n')
	}
	b.buf = append(b.buf, line...)
	return nil
}

// Contents returns the batched payload. The slice is only valid until the
// next call to Append or Reset.
func (b *Batch) Contents() []byte {
	return b.buf
}

func (b *Batch) Len() int {
	return len(b.buf)
}

func (b *Batch) Cap() int {
	return cap(b.buf)
}

// Reset empties the batch, keeping its capacity.
func (b *Batch) Reset() {
	b.buf = b.buf[:0]
}
