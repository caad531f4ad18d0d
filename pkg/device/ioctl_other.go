//go:build !windows

package device

import pkgerrors "github.com/pkg/errors"

type ioctlEnumerator struct{}

// NewIOCTL returns an enumerator that walks the battery device class with
// SetupAPI. It only has devices on Windows.
func NewIOCTL() Enumerator {
	return &ioctlEnumerator{}
}

func (e *ioctlEnumerator) Devices() ([]Device, error) {
	return nil, pkgerrors.Wrap(ErrNoBatteryClass, "battery IOCTLs are only available on windows")
}
