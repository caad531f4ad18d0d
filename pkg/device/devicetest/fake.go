// Package devicetest provides in-memory battery devices for tests.
package devicetest

import (
	"sync"

	"github.com/biplobsd/battrate/pkg/device"
)

// Enumerator is a fake device.Enumerator.
type Enumerator struct {
	Items []*Device
	Err   error
}

// Devices implements device.Enumerator.
func (e *Enumerator) Devices() ([]device.Device, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	out := make([]device.Device, 0, len(e.Items))
	for _, d := range e.Items {
		out = append(out, d)
	}
	return out, nil
}

// Device is a fake device.Device that replays a list of statuses. Once the
// list is exhausted the last status is repeated.
type Device struct {
	Name      string
	BatTag    uint32
	Statuses  []device.Status
	OpenErr   error
	TagErr    error
	StatusErr error

	mu      sync.Mutex
	next    int
	closed  int
	queries int
}

// NewDevice returns a fake device with tag 1 reporting the given rates.
func NewDevice(name string, powerState uint32, rates ...int32) *Device {
	d := &Device{Name: name, BatTag: 1}
	for _, r := range rates {
		d.Statuses = append(d.Statuses, device.Status{PowerState: powerState, Rate: r})
	}
	return d
}

func (d *Device) Path() string {
	return d.Name
}

func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.OpenErr != nil {
		return d.OpenErr
	}
	return nil
}

func (d *Device) Tag() (uint32, error) {
	if d.TagErr != nil {
		return 0, d.TagErr
	}
	if d.BatTag == 0 {
		return 0, device.ErrNoTag
	}
	return d.BatTag, nil
}

func (d *Device) Status(_ uint32) (device.Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queries++
	if d.StatusErr != nil {
		return device.Status{}, d.StatusErr
	}
	if len(d.Statuses) == 0 {
		return device.Status{}, device.ErrQueryStatus
	}

	s := d.Statuses[d.next]
	if d.next < len(d.Statuses)-1 {
		d.next++
	}
	return s, nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed++
	return nil
}

// Closed returns how many times Close was called.
func (d *Device) Closed() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.closed
}

// Queries returns how many status queries were issued.
func (d *Device) Queries() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.queries
}
