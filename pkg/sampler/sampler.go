// Package sampler takes several consecutive rate readings from every
// battery and averages them to smooth out driver jitter.
package sampler

import (
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/device"
)

const (
	DefaultSamples           = 3
	DefaultInterval          = 50 * time.Millisecond
	DefaultNearZeroThreshold = 50.0 // mW
)

// ErrNoData is returned when no battery produced a single valid sample.
var ErrNoData = errors.New("no battery produced a valid sample")

// Aggregate is the averaged rate of one poll cycle, summed across all
// batteries.
type Aggregate struct {
	// RateMilliwatts is positive when charging and negative when discharging.
	RateMilliwatts float64 `json:"rateMilliwatts"`
	// Batteries is the number of batteries that produced at least one sample.
	Batteries int `json:"batteries"`
	// OnAC is true if any sample reported external power.
	OnAC bool `json:"onAC"`
	// Charging is true if any sample on external power had a clearly
	// positive rate.
	Charging bool `json:"charging"`
	// NearZeroOnAC is true if any sample on external power had a rate
	// within the near-zero threshold.
	NearZeroOnAC bool `json:"nearZeroOnAC"`
}

// Sampler reads Samples statuses per battery, Interval apart.
type Sampler struct {
	Samples           int
	Interval          time.Duration
	NearZeroThreshold float64

	sleep func(time.Duration)
}

// New returns a Sampler with the default policy.
func New() *Sampler {
	return &Sampler{
		Samples:           DefaultSamples,
		Interval:          DefaultInterval,
		NearZeroThreshold: DefaultNearZeroThreshold,
		sleep:             time.Sleep,
	}
}

// Sample enumerates the batteries and returns the aggregate rate. Devices
// that cannot be opened or report no tag are skipped. It blocks for about
// Samples * Interval per battery.
func (s *Sampler) Sample(e device.Enumerator) (Aggregate, error) {
	devices, err := e.Devices()
	if err != nil && len(devices) == 0 {
		return Aggregate{}, err
	}
	if err != nil {
		logrus.WithError(err).Debug("battery enumeration stopped early")
	}

	agg := Aggregate{}
	for _, d := range devices {
		avg, ok := s.sampleDevice(d, &agg)
		if !ok {
			continue
		}
		agg.RateMilliwatts += avg
		agg.Batteries++
	}

	if agg.Batteries == 0 {
		return Aggregate{}, ErrNoData
	}

	return agg, nil
}

func (s *Sampler) sampleDevice(d device.Device, agg *Aggregate) (float64, bool) {
	entry := logrus.WithField("device", d.Path())

	if err := d.Open(); err != nil {
		entry.WithError(err).Debug("skipping battery")
		return 0, false
	}
	defer func() {
		if err := d.Close(); err != nil {
			entry.WithError(err).Warn("failed to close battery device")
		}
	}()

	tag, err := d.Tag()
	if err != nil {
		entry.WithError(err).Debug("skipping battery")
		return 0, false
	}

	samples := s.Samples
	if samples < 1 {
		samples = 1
	}

	sum := 0.0
	valid := 0
	for i := 0; i < samples; i++ {
		rate, ok := s.readOnce(d, tag, agg)
		if ok {
			sum += rate
			valid++
		}

		if s.Interval > 0 {
			s.sleeper()(s.Interval)
		}
	}

	if valid == 0 {
		return 0, false
	}

	avg := sum / float64(valid)
	entry.WithFields(logrus.Fields{
		"samples": valid,
		"rate":    avg,
	}).Trace("battery sampled")

	return avg, true
}

// readOnce queries one status and folds its power flags into agg. An
// unknown rate on external power counts as an idle battery.
func (s *Sampler) readOnce(d device.Device, tag uint32, agg *Aggregate) (float64, bool) {
	entry := logrus.WithField("device", d.Path())

	st, err := d.Status(tag)
	if err != nil {
		entry.WithError(err).Debug("battery status query failed")
		return 0, false
	}

	if st.OnLine() {
		agg.OnAC = true
	}

	if !st.RateKnown() {
		entry.Debug("battery reported an unknown rate")
		if !st.OnLine() {
			return 0, false
		}
		agg.NearZeroOnAC = true
		return 0, true
	}

	if st.OnLine() {
		switch {
		case math.Abs(float64(st.Rate)) < s.NearZeroThreshold:
			agg.NearZeroOnAC = true
		case st.Rate > 0:
			agg.Charging = true
		}
	}

	return float64(st.Rate), true
}

func (s *Sampler) sleeper() func(time.Duration) {
	if s.sleep == nil {
		return time.Sleep
	}
	return s.sleep
}
