//go:build !darwin

package device

import pkgerrors "github.com/pkg/errors"

type smcEnumerator struct{}

// NewSMC returns an enumerator that reads the battery power from the Apple
// SMC. It only has devices on macOS.
func NewSMC() Enumerator {
	return &smcEnumerator{}
}

func (e *smcEnumerator) Devices() ([]Device, error) {
	return nil, pkgerrors.Wrap(ErrNoBatteryClass, "the SMC is only available on darwin")
}
