package statsd

import (
	"fmt"
	"math"
	"strings"

	protocol "github.com/influxdata/line-protocol"
)

var bucketSanitizer = strings.NewReplacer(":", "_", "|", "_", "\n", "_", "\r", "_")

// ObservationsFromMetric maps every field of an Influx line protocol metric to
// one observation of the given kind, named
//
//	<measurement>[.<tag value>...].<field key>
//
// with tag values in the order the metric lists them. Integer, float (rounded)
// and boolean (1 or 0) fields are supported; anything else fails with
// ErrUnsupportedField.
func ObservationsFromMetric(m protocol.Metric, kind MetricKind, sampleRate float64) ([]Observation, error) {
	if _, ok := kind.Suffix(); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetricKind, int(kind))
	}

	var prefix strings.Builder
	prefix.WriteString(bucketSanitizer.Replace(m.Name()))
	for _, tag := range m.TagList() {
		prefix.WriteByte('.')
		prefix.WriteString(bucketSanitizer.Replace(tag.Value))
	}

	fields := m.FieldList()
	observations := make([]Observation, 0, len(fields))
	for _, field := range fields {
		value, err := fieldValue(field.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", field.Key, m.Name(), err)
		}
		bucket := prefix.String() + "." + bucketSanitizer.Replace(field.Key)
		observations = append(observations, NewObservation(bucket, kind, value, sampleRate))
	}
	return observations, nil
}

func fieldValue(v interface{}) (int64, error) {
	switch value := v.(type) {
	case int64:
		return value, nil
	case int:
		return int64(value), nil
	case uint64:
		if value > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrUnsupportedField, value)
		}
		return int64(value), nil
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) || math.Abs(value) >= math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v", ErrUnsupportedField, value)
		}
		return int64(math.Round(value)), nil
	case float32:
		return fieldValue(float64(value))
	case bool:
		if value {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedField, v)
	}
}

// BatchMetric adds every field of m to the batch. Field values are validated
// before the first one is appended, but ErrBatchFull part way through leaves
// the fields before it batched; callers that need all-or-nothing should check
// BatchLen against the batch capacity or send the batch first.
func (c *Client) BatchMetric(m protocol.Metric, kind MetricKind, sampleRate float64) (int, error) {
	observations, err := ObservationsFromMetric(m, kind, sampleRate)
	if err != nil {
		return 0, err
	}
	for i, o := range observations {
		if err := c.AddToBatch(o.Kind, o.Bucket, o.Value, o.SampleRate); err != nil {
			return i, err
		}
	}
	return len(observations), nil
}
