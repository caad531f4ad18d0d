package config

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/device"
	"github.com/biplobsd/battrate/pkg/estimate"
	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/sampler"
	"github.com/biplobsd/battrate/pkg/utils/ptr"
)

// FileName is the config file name looked up in a config directory.
const FileName = "battrate.json"

const (
	minRefreshIntervalSec = 1
	maxRefreshIntervalSec = 3600
	maxSamples            = 20
)

var (
	defaultFileConfig = &RawFileConfig{
		Source:              ptr.To(device.SourceAuto),
		Samples:             ptr.To(sampler.DefaultSamples),
		SampleIntervalMs:    ptr.To(int(sampler.DefaultInterval / time.Millisecond)),
		RefreshIntervalSec:  ptr.To(1),
		Precision:           ptr.To(string(format.Decimal)),
		EstimateOnAC:        ptr.To(true),
		NearZeroThresholdMw: ptr.To(sampler.DefaultNearZeroThreshold),
		FallbackWatts:       ptr.To(estimate.DefaultFallbackWatts),
		AllowNonRootAccess:  ptr.To(false),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	Source              *string  `json:"source,omitempty"`
	Samples             *int     `json:"samples,omitempty"`
	SampleIntervalMs    *int     `json:"sampleIntervalMs,omitempty"`
	RefreshIntervalSec  *int     `json:"refreshIntervalSec,omitempty"`
	Precision           *string  `json:"precision,omitempty"`
	EstimateOnAC        *bool    `json:"estimateOnAC,omitempty"`
	NearZeroThresholdMw *float64 `json:"nearZeroThresholdMw,omitempty"`
	FallbackWatts       *float64 `json:"fallbackWatts,omitempty"`
	AllowNonRootAccess  *bool    `json:"allowNonRootAccess,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		Source:              ptr.To(c.Source()),
		Samples:             ptr.To(c.Samples()),
		SampleIntervalMs:    ptr.To(int(c.SampleInterval() / time.Millisecond)),
		RefreshIntervalSec:  ptr.To(int(c.RefreshInterval() / time.Second)),
		Precision:           ptr.To(string(c.Precision())),
		EstimateOnAC:        ptr.To(c.EstimateOnAC()),
		NearZeroThresholdMw: ptr.To(c.NearZeroThreshold()),
		FallbackWatts:       ptr.To(c.FallbackWatts()),
		AllowNonRootAccess:  ptr.To(c.AllowNonRootAccess()),
	}

	return rawConfig, nil
}

// Path returns the file the config is loaded from.
func (f *File) Path() string {
	return f.filepath
}

func (f *File) Source() string {
	f.mustRLock()
	defer f.mu.RUnlock()

	if f.c.Source != nil && device.ValidSource(*f.c.Source) {
		return *f.c.Source
	}
	return *defaultFileConfig.Source
}

func (f *File) Samples() int {
	f.mustRLock()
	defer f.mu.RUnlock()

	if f.c.Samples != nil && *f.c.Samples >= 1 && *f.c.Samples <= maxSamples {
		return *f.c.Samples
	}
	return *defaultFileConfig.Samples
}

func (f *File) SampleInterval() time.Duration {
	f.mustRLock()
	defer f.mu.RUnlock()

	ms := *defaultFileConfig.SampleIntervalMs
	if f.c.SampleIntervalMs != nil && *f.c.SampleIntervalMs >= 0 && *f.c.SampleIntervalMs <= 1000 {
		ms = *f.c.SampleIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}

func (f *File) RefreshInterval() time.Duration {
	f.mustRLock()
	defer f.mu.RUnlock()

	sec := *defaultFileConfig.RefreshIntervalSec
	if f.c.RefreshIntervalSec != nil && validRefreshInterval(*f.c.RefreshIntervalSec) {
		sec = *f.c.RefreshIntervalSec
	}
	return time.Duration(sec) * time.Second
}

func (f *File) Precision() format.Precision {
	f.mustRLock()
	defer f.mu.RUnlock()

	if f.c.Precision != nil {
		if p, err := format.ParsePrecision(*f.c.Precision); err == nil {
			return p
		}
	}
	return format.Precision(*defaultFileConfig.Precision)
}

func (f *File) EstimateOnAC() bool {
	f.mustRLock()
	defer f.mu.RUnlock()

	if f.c.EstimateOnAC != nil {
		return *f.c.EstimateOnAC
	}
	return *defaultFileConfig.EstimateOnAC
}

func (f *File) NearZeroThreshold() float64 {
	f.mustRLock()
	defer f.mu.RUnlock()

	if f.c.NearZeroThresholdMw != nil && *f.c.NearZeroThresholdMw >= 0 {
		return *f.c.NearZeroThresholdMw
	}
	return *defaultFileConfig.NearZeroThresholdMw
}

func (f *File) FallbackWatts() float64 {
	f.mustRLock()
	defer f.mu.RUnlock()

	if f.c.FallbackWatts != nil && *f.c.FallbackWatts > 0 {
		return *f.c.FallbackWatts
	}
	return *defaultFileConfig.FallbackWatts
}

func (f *File) AllowNonRootAccess() bool {
	f.mustRLock()
	defer f.mu.RUnlock()

	if f.c.AllowNonRootAccess != nil {
		return *f.c.AllowNonRootAccess
	}
	return *defaultFileConfig.AllowNonRootAccess
}

func (f *File) SetPrecision(p format.Precision) {
	if _, err := format.ParsePrecision(string(p)); err != nil {
		panic(err)
	}

	f.mustLock()
	defer f.mu.Unlock()

	s := string(p)
	f.c.Precision = &s
}

func (f *File) SetEstimateOnAC(b bool) {
	f.mustLock()
	defer f.mu.Unlock()

	f.c.EstimateOnAC = &b
}

func (f *File) SetRefreshInterval(d time.Duration) {
	sec := int(d / time.Second)
	if !validRefreshInterval(sec) {
		panic("refresh interval must be between 1s and 1h")
	}

	f.mustLock()
	defer f.mu.Unlock()

	f.c.RefreshIntervalSec = &sec
}

func (f *File) SetAllowNonRootAccess(b bool) {
	f.mustLock()
	defer f.mu.Unlock()

	f.c.AllowNonRootAccess = &b
}

// ValidRefreshInterval reports whether d is an accepted refresh interval.
func ValidRefreshInterval(d time.Duration) bool {
	return d%time.Second == 0 && validRefreshInterval(int(d/time.Second))
}

func validRefreshInterval(sec int) bool {
	return sec >= minRefreshIntervalSec && sec <= maxRefreshIntervalSec
}

func (f *File) mustRLock() {
	f.mu.RLock()
	if f.c == nil {
		f.mu.RUnlock()
		panic("config is nil")
	}
}

func (f *File) mustLock() {
	f.mu.Lock()
	if f.c == nil {
		f.mu.Unlock()
		panic("config is nil")
	}
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create config dir for %s", f.filepath)
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"source":             f.Source(),
		"samples":            f.Samples(),
		"sampleInterval":     f.SampleInterval().String(),
		"refreshInterval":    f.RefreshInterval().String(),
		"precision":          f.Precision(),
		"estimateOnAC":       f.EstimateOnAC(),
		"nearZeroThreshold":  f.NearZeroThreshold(),
		"fallbackWatts":      f.FallbackWatts(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
	}
}
