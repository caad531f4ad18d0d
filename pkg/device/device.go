// Package device talks to the battery devices of the operating system.
//
// Every backend exposes the same two-step protocol the Windows battery
// class driver uses: a device is opened, asked for its tag, and then asked
// for a status block carrying the instantaneous rate.
package device

import (
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// Power state flags carried in Status.PowerState.
const (
	PowerOnLine uint32 = 0x00000001
	Discharging uint32 = 0x00000002
	Charging    uint32 = 0x00000004
	Critical    uint32 = 0x00000008
)

// UnknownRate is what drivers report when they cannot measure the rate.
const UnknownRate int32 = -0x80000000

// Names of the available backends.
const (
	SourceAuto     = "auto"
	SourceIOCTL    = "ioctl"
	SourceDistatus = "distatus"
	SourceSMC      = "smc"
)

// Status is a battery status block. The layout matches BATTERY_STATUS.
//
// Units:
// - Capacity: mWh
// - Voltage: mV
// - Rate: mW, positive when charging and negative when discharging
type Status struct {
	PowerState uint32 `json:"powerState"`
	Capacity   uint32 `json:"capacity"`
	Voltage    uint32 `json:"voltage"`
	Rate       int32  `json:"rate"`
}

// OnLine reports whether the system is running on external power.
func (s Status) OnLine() bool {
	return s.PowerState&PowerOnLine != 0
}

// RateKnown reports whether the driver was able to measure the rate.
func (s Status) RateKnown() bool {
	return s.Rate != UnknownRate
}

// Device is one battery class device.
type Device interface {
	// Path identifies the device, e.g. its interface path.
	Path() string
	// Open acquires the device handle.
	Open() error
	// Tag returns the tag of the battery currently in the slot. A zero tag
	// means there is no battery.
	Tag() (uint32, error)
	// Status queries the status block for the battery with the given tag.
	Status(tag uint32) (Status, error)
	// Close releases the device handle.
	Close() error
}

// Enumerator lists the battery class devices present in the system.
type Enumerator interface {
	Devices() ([]Device, error)
}

// New returns the enumerator for the given source. SourceAuto picks the
// native backend of the running OS.
func New(source string) (Enumerator, error) {
	switch source {
	case "", SourceAuto:
		switch runtime.GOOS {
		case "windows":
			return NewIOCTL(), nil
		case "darwin":
			return NewSMC(), nil
		default:
			return NewDistatus(), nil
		}
	case SourceIOCTL:
		return NewIOCTL(), nil
	case SourceDistatus:
		return NewDistatus(), nil
	case SourceSMC:
		return NewSMC(), nil
	default:
		return nil, pkgerrors.Errorf("unknown battery source %q", source)
	}
}

// ValidSource reports whether source names a known backend.
func ValidSource(source string) bool {
	switch source {
	case SourceAuto, SourceIOCTL, SourceDistatus, SourceSMC:
		return true
	}
	return false
}
