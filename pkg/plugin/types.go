// Package plugin implements the display host contract: a container that
// the host refreshes periodically and that hands out display items.
package plugin

import "github.com/biplobsd/battrate/pkg/powerrate"

// InfoIndex selects a metadata field returned by Plugin.Info.
type InfoIndex int

const (
	InfoName InfoIndex = iota
	InfoDescription
	InfoAuthor
	InfoCopyright
	InfoVersion
	InfoURL
)

// ExtendedInfoIndex selects what the host is telling the plugin in
// Plugin.OnExtendedInfo.
type ExtendedInfoIndex int

const (
	// ExtendedConfigDir carries the directory the plugin should keep its
	// configuration in.
	ExtendedConfigDir ExtendedInfoIndex = iota
)

// OptionResult is returned by Plugin.ShowOptions.
type OptionResult int

const (
	OptionUnchanged OptionResult = iota
	OptionChanged
)

// Item is one displayable value.
type Item interface {
	// Name is the human readable item name.
	Name() string
	// ID is a short, stable identifier.
	ID() string
	// LabelText is shown in front of the value.
	LabelText() string
	// ValueText is the current value.
	ValueText() string
	// ValueSampleText is a representative value the host uses for sizing.
	ValueSampleText() string
}

// Plugin is what the host drives.
type Plugin interface {
	// Item returns the item at index, or nil when out of range.
	Item(index int) Item
	// DataRequired refreshes every item. The host calls it on its own timer.
	DataRequired()
	Info(index InfoIndex) string
	TooltipInfo() string
	// ShowOptions applies options chosen by the user.
	ShowOptions(opts powerrate.Options) OptionResult
	OnExtendedInfo(index ExtendedInfoIndex, data string)
}

// RateReader produces battery power rate readings.
type RateReader interface {
	Read() powerrate.Reading
	Default() string
	Options() powerrate.Options
	SetOptions(powerrate.Options)
}
