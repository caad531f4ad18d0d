// Package powerrate produces the battery power rate display string: it
// samples the batteries, then formats the result, substituting an
// estimated system draw when the battery sits idle on AC.
package powerrate

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/device"
	"github.com/biplobsd/battrate/pkg/estimate"
	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/sampler"
)

// Options are the user-facing display settings.
type Options struct {
	Precision    format.Precision `json:"precision"`
	EstimateOnAC bool             `json:"estimateOnAC"`
}

// DefaultOptions match the latest display behavior: two decimals and
// estimation while idle on AC.
var DefaultOptions = Options{
	Precision:    format.Decimal,
	EstimateOnAC: true,
}

// Reading is the outcome of one poll.
type Reading struct {
	Display        string            `json:"display"`
	Aggregate      sampler.Aggregate `json:"aggregate"`
	HasData        bool              `json:"hasData"`
	Estimated      bool              `json:"estimated"`
	EstimatedWatts float64           `json:"estimatedWatts,omitempty"`
	Time           time.Time         `json:"time"`
	Error          string            `json:"error,omitempty"`
}

// Reader computes readings. Read never fails: when no battery data is
// available the reading carries the default display string.
type Reader struct {
	enumerator device.Enumerator
	sampler    *sampler.Sampler
	estimator  estimate.Estimator
	fallback   estimate.Estimator

	mu   sync.RWMutex
	opts Options
}

// New returns a Reader. A nil estimator falls back to the fixed figure.
func New(e device.Enumerator, s *sampler.Sampler, est estimate.Estimator, fallback estimate.Estimator) *Reader {
	if s == nil {
		s = sampler.New()
	}
	if fallback == nil {
		fallback = estimate.Fixed(estimate.DefaultFallbackWatts)
	}
	return &Reader{
		enumerator: e,
		sampler:    s,
		estimator:  est,
		fallback:   fallback,
		opts:       DefaultOptions,
	}
}

// Options returns the current display options.
func (r *Reader) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.opts
}

// SetOptions replaces the display options.
func (r *Reader) SetOptions(o Options) {
	if _, err := format.ParsePrecision(string(o.Precision)); err != nil {
		o.Precision = DefaultOptions.Precision
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.opts = o
}

// Default is the display string used when there is no battery data.
func (r *Reader) Default() string {
	return format.Zero(r.Options().Precision)
}

// Read samples the batteries and formats the result.
func (r *Reader) Read() Reading {
	r.mu.RLock()
	opts := r.opts
	s := r.sampler
	r.mu.RUnlock()

	reading := Reading{
		Display: format.Zero(opts.Precision),
		Time:    time.Now().Round(0),
	}

	agg, err := s.Sample(r.enumerator)
	if err != nil {
		logrus.WithError(err).Debug("no battery data, using default display value")
		reading.Error = err.Error()
		return reading
	}
	reading.Aggregate = agg
	reading.HasData = true

	watts := agg.RateMilliwatts / 1000.0
	if opts.EstimateOnAC && agg.OnAC && !agg.Charging && math.Abs(watts) < s.NearZeroThreshold/1000.0 {
		reading.Estimated = true
		reading.EstimatedWatts = r.estimate(agg.NearZeroOnAC)
		reading.Display = format.Estimate(reading.EstimatedWatts)
		return reading
	}

	reading.Display = format.Rate(agg.RateMilliwatts, opts.Precision)
	return reading
}

// estimate measures the load when a battery reported an idle rate on AC,
// and falls back to the fixed figure otherwise or when measuring fails.
func (r *Reader) estimate(measured bool) float64 {
	if measured && r.estimator != nil {
		w, err := r.estimator.EstimateWatts()
		if err == nil && w > 0 {
			return w
		}
		if err != nil {
			logrus.WithError(err).Debug("failed to estimate system load")
		}
	}

	r.mu.RLock()
	fallback := r.fallback
	r.mu.RUnlock()

	w, err := fallback.EstimateWatts()
	if err != nil {
		logrus.WithError(err).Debug("failed to get fallback estimate")
		return estimate.DefaultFallbackWatts
	}
	return w
}
