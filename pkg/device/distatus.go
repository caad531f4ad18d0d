package device

import (
	"fmt"
	"math"

	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
)

type distatusEnumerator struct {
	getAll func() ([]*battery.Battery, error)
	get    func(idx int) (*battery.Battery, error)
}

// NewDistatus returns an enumerator backed by github.com/distatus/battery,
// which works on every OS the library supports.
func NewDistatus() Enumerator {
	return &distatusEnumerator{
		getAll: battery.GetAll,
		get:    battery.Get,
	}
}

func (e *distatusEnumerator) Devices() ([]Device, error) {
	batteries, err := e.getAll()
	// Partial errors are reported per battery. Only give up when nothing
	// came back at all.
	if len(batteries) == 0 {
		if err != nil {
			return nil, pkgerrors.Wrap(ErrEnumeration, err.Error())
		}
		return nil, nil
	}

	errs, partial := err.(battery.Errors)

	devices := make([]Device, 0, len(batteries))
	for i := range batteries {
		d := &distatusDevice{idx: i, get: e.get}
		if partial && i < len(errs) && errs[i] != nil {
			d.openErr = errs[i]
		}
		devices = append(devices, d)
	}

	return devices, nil
}

type distatusDevice struct {
	idx     int
	get     func(idx int) (*battery.Battery, error)
	openErr error
}

func (d *distatusDevice) Path() string {
	return fmt.Sprintf("battery%d", d.idx)
}

func (d *distatusDevice) Open() error {
	if d.openErr != nil {
		return pkgerrors.Wrapf(ErrOpen, "%s: %v", d.Path(), d.openErr)
	}
	return nil
}

// Tag is the slot index plus one, so it is never zero.
func (d *distatusDevice) Tag() (uint32, error) {
	return uint32(d.idx + 1), nil
}

func (d *distatusDevice) Status(tag uint32) (Status, error) {
	if tag != uint32(d.idx+1) {
		return Status{}, pkgerrors.Wrapf(ErrQueryStatus, "stale tag %d", tag)
	}

	bat, err := d.get(d.idx)
	if bat == nil {
		if err == nil {
			err = fmt.Errorf("no data")
		}
		return Status{}, pkgerrors.Wrap(ErrQueryStatus, err.Error())
	}

	return statusFromBattery(bat), nil
}

func (d *distatusDevice) Close() error {
	return nil
}

// statusFromBattery converts the library's unsigned rate and state into a
// signed status block.
func statusFromBattery(bat *battery.Battery) Status {
	s := Status{
		Capacity: uint32(math.Max(bat.Current, 0)),
	}

	rate := int32(math.Round(math.Abs(bat.ChargeRate)))

	switch bat.State {
	case battery.Charging:
		s.PowerState = PowerOnLine | Charging
		s.Rate = rate
	case battery.Discharging:
		s.PowerState = Discharging
		s.Rate = -rate
	case battery.Full:
		s.PowerState = PowerOnLine
	case battery.Empty:
		s.PowerState = Critical
	default:
		s.Rate = UnknownRate
	}

	return s
}
