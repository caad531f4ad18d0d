//go:build darwin

package device

import (
	"github.com/charlie0129/gosmc"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type smcEnumerator struct {
	newConn func() gosmc.Connection
}

// NewSMC returns an enumerator that reads the battery power from the Apple
// SMC. Macs have a single battery, so it yields at most one device.
func NewSMC() Enumerator {
	return &smcEnumerator{newConn: func() gosmc.Connection { return gosmc.New() }}
}

func (e *smcEnumerator) Devices() ([]Device, error) {
	return []Device{&smcDevice{conn: e.newConn()}}, nil
}

type smcDevice struct {
	conn gosmc.Connection
}

func (d *smcDevice) Path() string {
	return "AppleSMC"
}

func (d *smcDevice) Open() error {
	if err := d.conn.Open(); err != nil {
		return pkgerrors.Wrap(ErrOpen, err.Error())
	}
	return nil
}

func (d *smcDevice) Tag() (uint32, error) {
	v, err := d.read(smcBatteryVoltageKey)
	if err != nil {
		return 0, pkgerrors.Wrap(ErrNoTag, err.Error())
	}
	// No voltage means no battery installed.
	if decodeUint16(v) == 0 {
		return 0, ErrNoTag
	}
	return 1, nil
}

func (d *smcDevice) Status(_ uint32) (Status, error) {
	current, err := d.read(smcBatteryCurrentKey)
	if err != nil {
		return Status{}, pkgerrors.Wrap(ErrQueryStatus, err.Error())
	}
	voltage, err := d.read(smcBatteryVoltageKey)
	if err != nil {
		return Status{}, pkgerrors.Wrap(ErrQueryStatus, err.Error())
	}
	acPower, err := d.read(smcACPowerKey)
	if err != nil {
		return Status{}, pkgerrors.Wrap(ErrQueryStatus, err.Error())
	}

	return smcStatus(current, voltage, acPower), nil
}

func (d *smcDevice) Close() error {
	return d.conn.Close()
}

func (d *smcDevice) read(key string) ([]byte, error) {
	logrus.WithFields(logrus.Fields{
		"key": key,
	}).Trace("Trying to read from SMC")

	v, err := d.conn.Read(key)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"key": key,
		"val": v,
	}).Trace("Load from SMC succeed")

	return v.Bytes, nil
}
