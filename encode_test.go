package statsd

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		obs       Observation
		namespace string
		expected  string
	}{
		{"timing", NewObservation("page.load", Timing, 320, 1.0), "", "page.load:320|ms"},
		{"namespaced count", NewObservation("errors", Count, -1, 1.0), "app", "app.errors:-1|c"},
		{"gauge", NewObservation("temp", Gauge, 21, 1), "", "temp:21|g"},
		{"set", NewObservation("users", Set, 12345, 1), "", "users:12345|s"},
		{"sampled", NewObservation("hits", Count, 1, 0.5), "", "hits:1|c|@0.50"},
		{"quarter", NewObservation("hits", Count, 1, 0.25), "", "hits:1|c|@0.25"},
		{"ties to even", NewObservation("hits", Count, 1, 0.125), "", "hits:1|c|@0.12"},
		{"never renders 1.00", NewObservation("hits", Count, 1, 0.996), "", "hits:1|c|@0.99"},
		{"never renders 0.00", NewObservation("hits", Count, 1, 0.001), "", "hits:1|c|@0.01"},
		{"rounds to smallest rate", NewObservation("hits", Count, 1, 0.004), "", "hits:1|c|@0.01"},
		{"dotted namespace", NewObservation("x", Gauge, 0, 1), "prod.web", "prod.web.x:0|g"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Encode(tt.obs, tt.namespace)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(line))
		})
	}
}

func TestEncode_SampleRateOutsideUnitIntervalIsOmitted(t *testing.T) {
	for _, rate := range []float64{-1, 0, 1, 1.5, 100} {
		for _, kind := range []MetricKind{Count, Gauge, Set, Timing} {
			line, err := Encode(NewObservation("b", kind, 7, rate), "")
			require.NoError(t, err)
			assert.NotContains(t, string(line), "|@", "rate %v kind %v", rate, kind)
		}
	}
}

func TestEncode_SampleRateTwoDecimals(t *testing.T) {
	for i := 1; i < 100; i++ {
		rate := float64(i) / 100
		line, err := Encode(NewObservation("b", Timing, 1, rate), "")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("b:1|ms|@%.2f", rate), string(line))

		suffix := string(line[strings.Index(string(line), "@")+1:])
		assert.Len(t, suffix, 4)
	}
}

func TestEncode_NoTrailingNewline(t *testing.T) {
	line, err := Encode(NewObservation("b", Count, 1, 0.5), "ns")
	require.NoError(t, err)
	assert.NotContains(t, string(line), "\n")
}

func TestEncode_InvalidBucket(t *testing.T) {
	for _, bucket := range []string{"", "a:b", "a|b", "a\nb"} {
		line, err := Encode(NewObservation(bucket, Count, 1, 1), "")
		assert.ErrorIs(t, err, ErrInvalidBucket, "bucket %q", bucket)
		assert.Nil(t, line)
	}
}

func TestEncode_InvalidNamespace(t *testing.T) {
	for _, namespace := range []string{"x|y", "x\ny", "a:b"} {
		line, err := Encode(NewObservation("b", Count, 1, 1), namespace)
		assert.ErrorIs(t, err, ErrInvalidBucket, "namespace %q", namespace)
		assert.Nil(t, line)
	}
}

func TestEncode_UnknownKind(t *testing.T) {
	_, err := Encode(NewObservation("b", MetricKind(0), 1, 1), "")
	assert.ErrorIs(t, err, ErrUnknownMetricKind)

	_, err = Encode(NewObservation("b", MetricKind(99), 1, 1), "")
	assert.ErrorIs(t, err, ErrUnknownMetricKind)
}

func TestAppendLine_KeepsDstOnError(t *testing.T) {
	dst := []byte("prefix")
	out, err := AppendLine(dst, NewObservation("bad|bucket", Gauge, 1, 1), "")
	assert.Error(t, err)
	assert.Equal(t, "prefix", string(out))

	out, err = AppendLine(dst, NewObservation("ok", Gauge, 1, 1), "")
	require.NoError(t, err)
	assert.Equal(t, "prefixok:1|g", string(out))
}

func TestParseMetricKind(t *testing.T) {
	kind, err := ParseMetricKind("Timing")
	require.NoError(t, err)
	assert.Equal(t, Timing, kind)
	assert.Equal(t, "timing", kind.String())

	_, err = ParseMetricKind("histogram")
	assert.ErrorIs(t, err, ErrUnknownMetricKind)
}
