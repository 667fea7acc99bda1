package statsd

import (
	"fmt"
	"strconv"
	"strings"
)

const bucketDelimiters = ":|\n"

// ValidateBucket checks that a bucket can be written on the wire unchanged.
func ValidateBucket(bucket string) error {
	if bucket == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidBucket)
	}
	if strings.ContainsAny(bucket, bucketDelimiters) {
		return fmt.Errorf("%w: %q contains a protocol delimiter", ErrInvalidBucket, bucket)
	}
	return nil
}

// Encode renders an observation as one statsd line, without a trailing newline:
//
//	<namespace>.<bucket>:<value>|<type>[|@<rate>]
//
// The sample rate is only written when it is strictly between 0 and 1, using
// two decimal digits rounded half to even. Rates that would render as 0.00 or
// 1.00 are written as 0.01 and 0.99, since aggregators divide by the rate.
// A non-empty namespace must satisfy ValidateBucket.
func Encode(o Observation, namespace string) ([]byte, error) {
	return AppendLine(nil, o, namespace)
}

// AppendLine is like Encode but appends the line to dst.
// On error dst is returned unchanged.
func AppendLine(dst []byte, o Observation, namespace string) ([]byte, error) {
	if err := ValidateBucket(o.Bucket); err != nil {
		return dst, err
	}
	if namespace != "" {
		if err := ValidateBucket(namespace); err != nil {
			return dst, fmt.Errorf("namespace: %w", err)
		}
	}
	suffix, ok := o.Kind.Suffix()
	if !ok {
		return dst, fmt.Errorf("%w: %d", ErrUnknownMetricKind, int(o.Kind))
	}

	if namespace != "" {
		dst = append(dst, namespace...)
		dst = append(dst, '.')
	}
	dst = append(dst, o.Bucket...)
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, o.Value, 10)
	dst = append(dst, '|')
	dst = append(dst, suffix...)
	if o.Sampled() {
		dst = append(dst, "|@"...)
		dst = appendSampleRate(dst, o.SampleRate)
	}
	return dst, nil
}

func appendSampleRate(dst []byte, rate float64) []byte {
	n := len(dst)
	dst = strconv.AppendFloat(dst, rate, 'f', 2, 64)
	switch string(dst[n:]) {
	case "0.00":
		return append(dst[:n], "0.01"...)
	case "1.00":
		return append(dst[:n], "0.99"...)
	}
	return dst
}
