package plugin

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/powerrate"
	"github.com/biplobsd/battrate/pkg/version"
)

const (
	pluginName        = "BatteryPowerPlugin"
	pluginDescription = "Battery Power Rate Plugin for TrafficMonitor"
	pluginAuthor      = "biplobsd"
	pluginCopyright   = "Copyright (C) by Biplob Kumar Sutradhar 2025"
	pluginURL         = "https://github.com/biplobsd/BatteryPowerRatePluginForTrafficMonitor.git"
)

// Container is the plugin instance the host owns. Build it once with New
// and tie its lifetime to the host with Load and Unload.
type Container struct {
	reader       RateReader
	holder       *DataHolder
	items        []Item
	configLoader func(dir string) error

	// mu serializes refreshes and lifecycle changes.
	mu     sync.Mutex
	loaded bool

	listenersMu sync.RWMutex
	listeners   []func(powerrate.Reading)
}

var _ Plugin = &Container{}

// Option configures a Container.
type Option func(*Container)

// WithConfigLoader sets the function called when the host reports the
// configuration directory.
func WithConfigLoader(f func(dir string) error) Option {
	return func(c *Container) {
		c.configLoader = f
	}
}

// New returns an unloaded Container reading rates from reader.
func New(reader RateReader, opts ...Option) *Container {
	holder := &DataHolder{}
	holder.setDefault(reader.Default())
	c := &Container{
		reader: reader,
		holder: holder,
		items: []Item{
			&BatteryRateItem{holder: holder},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load is called when the host loads the plugin.
func (c *Container) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.holder.setDefault(c.reader.Default())
	c.loaded = true

	logrus.WithFields(logrus.Fields{
		"name":    pluginName,
		"version": version.Version,
	}).Info("plugin loaded")
}

// Unload is called when the host unloads the plugin. Refresh listeners
// are dropped.
func (c *Container) Unload() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loaded = false

	c.listenersMu.Lock()
	c.listeners = nil
	c.listenersMu.Unlock()

	logrus.WithField("name", pluginName).Info("plugin unloaded")
}

// Loaded reports whether the plugin is between Load and Unload.
func (c *Container) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loaded
}

// OnRefresh registers f to be called with every new reading.
func (c *Container) OnRefresh(f func(powerrate.Reading)) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	c.listeners = append(c.listeners, f)
}

// Items returns all items in index order.
func (c *Container) Items() []Item {
	return c.items
}

// LastReading returns the latest reading and whether a refresh happened yet.
func (c *Container) LastReading() (powerrate.Reading, bool) {
	return c.holder.Reading()
}

func (c *Container) Item(index int) Item {
	if index < 0 || index >= len(c.items) {
		return nil
	}
	return c.items[index]
}

// DataRequired reads the battery rate and stores it. It blocks for the
// whole sampling period.
func (c *Container) DataRequired() {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		logrus.Warn("data requested before the plugin was loaded")
		return
	}
	reading := c.reader.Read()
	c.holder.Set(reading)
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"display":   reading.Display,
		"estimated": reading.Estimated,
		"batteries": reading.Aggregate.Batteries,
	}).Debug("battery power rate refreshed")

	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()
	for _, f := range c.listeners {
		f(reading)
	}
}

func (c *Container) Info(index InfoIndex) string {
	switch index {
	case InfoName:
		return pluginName
	case InfoDescription:
		return pluginDescription
	case InfoAuthor:
		return pluginAuthor
	case InfoCopyright:
		return pluginCopyright
	case InfoVersion:
		return version.Version
	case InfoURL:
		return pluginURL
	default:
		return ""
	}
}

func (c *Container) TooltipInfo() string {
	return "Battery power rate: " + c.items[0].ValueText()
}

// ShowOptions applies opts and reports whether anything changed. The
// displayed value follows on the next refresh.
func (c *Container) ShowOptions(opts powerrate.Options) OptionResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reader.Options() == opts {
		return OptionUnchanged
	}

	c.reader.SetOptions(opts)
	c.holder.setDefault(c.reader.Default())

	logrus.WithFields(logrus.Fields{
		"precision":    opts.Precision,
		"estimateOnAC": opts.EstimateOnAC,
	}).Info("plugin options changed")

	return OptionChanged
}

func (c *Container) OnExtendedInfo(index ExtendedInfoIndex, data string) {
	switch index {
	case ExtendedConfigDir:
		if c.configLoader == nil {
			return
		}
		if err := c.configLoader(data); err != nil {
			logrus.WithField("dir", data).Errorf("failed to load config: %v", err)
		}
	}
}
