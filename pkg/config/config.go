package config

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/format"
)

type Config interface {
	Source() string
	Samples() int
	SampleInterval() time.Duration
	RefreshInterval() time.Duration
	Precision() format.Precision
	EstimateOnAC() bool
	NearZeroThreshold() float64
	FallbackWatts() float64
	AllowNonRootAccess() bool

	SetPrecision(format.Precision)
	SetEstimateOnAC(bool)
	SetRefreshInterval(time.Duration)
	SetAllowNonRootAccess(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
