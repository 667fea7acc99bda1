// Package tallyreporter reports tally metrics through a statsd Client.
//
// Every report is added to the client's batch; a full batch is sent and the
// report retried once. Flush, called by tally at the end of each reporting
// interval, sends whatever is left.
package tallyreporter

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	statsd "github.com/itzg/statsd-sender"
	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally"
)

type Options struct {
	// SampleRate is written on every line; values outside (0, 1) disable it.
	SampleRate float64
	Logger     logrus.FieldLogger
}

type Reporter struct {
	mu         sync.Mutex
	client     *statsd.Client
	sampleRate float64
	log        logrus.FieldLogger
}

var _ tally.StatsReporter = (*Reporter)(nil)

func New(client *statsd.Client, opts Options) *Reporter {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Reporter{
		client:     client,
		sampleRate: opts.SampleRate,
		log:        opts.Logger.WithField("addr", client.Addr()),
	}
}

func (r *Reporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.add(statsd.Count, name, value)
}

func (r *Reporter) ReportGauge(name string, tags map[string]string, value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		r.log.WithField("bucket", name).Warnf("dropping non-finite gauge %v", value)
		return
	}
	r.add(statsd.Gauge, name, int64(math.Round(value)))
}

func (r *Reporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.add(statsd.Timing, name, interval.Milliseconds())
}

func (r *Reporter) ReportHistogramValueSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound,
	bucketUpperBound float64,
	samples int64,
) {
	r.add(statsd.Count, name+"."+valueBucketString(bucketLowerBound)+"-"+valueBucketString(bucketUpperBound), samples)
}

func (r *Reporter) ReportHistogramDurationSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound,
	bucketUpperBound time.Duration,
	samples int64,
) {
	r.add(statsd.Count, name+"."+durationBucketString(bucketLowerBound)+"-"+durationBucketString(bucketUpperBound), samples)
}

func (r *Reporter) Capabilities() tally.Capabilities {
	return r
}

func (r *Reporter) Reporting() bool {
	return true
}

// Tagging is false: plain statsd has no tags, so they are dropped.
func (r *Reporter) Tagging() bool {
	return false
}

func (r *Reporter) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.client.SendBatch(); err != nil {
		r.log.WithError(err).Error("failed to flush statsd batch")
	}
}

func (r *Reporter) add(kind statsd.MetricKind, name string, value int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.client.AddToBatch(kind, name, value, r.sampleRate)
	if errors.Is(err, statsd.ErrBatchFull) {
		if err = r.client.SendBatch(); err == nil {
			err = r.client.AddToBatch(kind, name, value, r.sampleRate)
		}
	}
	if err != nil {
		r.log.WithError(err).WithField("bucket", name).Error("failed to report metric")
	}
}

func valueBucketString(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "infinity"
	case math.IsInf(v, -1):
		return "-infinity"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func durationBucketString(d time.Duration) string {
	switch d {
	case time.Duration(math.MaxInt64):
		return "infinity"
	case time.Duration(math.MinInt64):
		return "-infinity"
	}
	return d.String()
}
