package powerrate

import (
	pkgerrors "github.com/pkg/errors"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/device"
	"github.com/biplobsd/battrate/pkg/estimate"
	"github.com/biplobsd/battrate/pkg/sampler"
)

// NewFromConfig builds a Reader from c: the battery source, the sampling
// policy, the estimator and the display options.
func NewFromConfig(c config.Config) (*Reader, error) {
	e, err := device.New(c.Source())
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open battery source %q", c.Source())
	}

	s := sampler.New()
	applySampling(s, c)

	r := New(e, s, estimate.NewLoad(), estimate.Fixed(c.FallbackWatts()))
	r.SetOptions(OptionsFromConfig(c))

	return r, nil
}

// OptionsFromConfig returns the display options stored in c.
func OptionsFromConfig(c config.Config) Options {
	return Options{
		Precision:    c.Precision(),
		EstimateOnAC: c.EstimateOnAC(),
	}
}

// Reconfigure applies the sampling policy and display options in c. The
// battery source is fixed for the lifetime of the Reader.
func (r *Reader) Reconfigure(c config.Config) {
	r.mu.Lock()
	s := *r.sampler
	applySampling(&s, c)
	r.sampler = &s
	r.fallback = estimate.Fixed(c.FallbackWatts())
	r.mu.Unlock()

	r.SetOptions(OptionsFromConfig(c))
}

func applySampling(s *sampler.Sampler, c config.Config) {
	s.Samples = c.Samples()
	s.Interval = c.SampleInterval()
	s.NearZeroThreshold = c.NearZeroThreshold()
}
