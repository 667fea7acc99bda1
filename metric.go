package statsd

import (
	"fmt"
	"strings"
)

// MetricKind selects the statsd metric type of an observation.
type MetricKind int

const (
	Count MetricKind = iota + 1
	Gauge
	Set
	Timing
)

var kindSuffixes = map[MetricKind]string{
	Count:  "c",
	Gauge:  "g",
	Set:    "s",
	Timing: "ms",
}

var kindNames = map[string]MetricKind{
	"count":  Count,
	"gauge":  Gauge,
	"set":    Set,
	"timing": Timing,
}

// Suffix returns the wire type of the kind, such as "c" or "ms".
func (k MetricKind) Suffix() (string, bool) {
	s, ok := kindSuffixes[k]
	return s, ok
}

func (k MetricKind) String() string {
	switch k {
	case Count:
		return "count"
	case Gauge:
		return "gauge"
	case Set:
		return "set"
	case Timing:
		return "timing"
	}
	return fmt.Sprintf("MetricKind(%d)", int(k))
}

// ParseMetricKind accepts "count", "gauge", "set" and "timing", ignoring case.
func ParseMetricKind(s string) (MetricKind, error) {
	if k, ok := kindNames[strings.ToLower(s)]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetricKind, s)
}

// Observation is a single metric emission.
type Observation struct {
	Bucket     string
	Kind       MetricKind
	Value      int64
	SampleRate float64
}

func NewObservation(bucket string, kind MetricKind, value int64, sampleRate float64) Observation {
	return Observation{
		Bucket:     bucket,
		Kind:       kind,
		Value:      value,
		SampleRate: sampleRate,
	}
}

// Sampled reports whether the sample rate will be written on the wire.
func (o Observation) Sampled() bool {
	return o.SampleRate > 0 && o.SampleRate < 1
}
