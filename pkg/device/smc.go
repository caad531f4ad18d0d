package device

import (
	"encoding/binary"
)

// SMC keys read by the darwin backend.
const (
	smcBatteryCurrentKey = "B0AC" // int16, mA, negative when discharging
	smcBatteryVoltageKey = "B0AV" // uint16, mV
	smcACPowerKey        = "AC-W" // int8, > 0 when plugged in
)

// smcStatus builds a status block from raw SMC key values.
func smcStatus(current, voltage, acPower []byte) Status {
	mA := int64(decodeInt16(current))
	mV := int64(decodeUint16(voltage))

	s := Status{
		Voltage: uint32(mV),
		Rate:    int32(mA * mV / 1000),
	}

	if len(acPower) == 1 && int8(acPower[0]) > 0 {
		s.PowerState |= PowerOnLine
	}
	switch {
	case s.Rate > 0:
		s.PowerState |= Charging
	case s.Rate < 0:
		s.PowerState |= Discharging
	}

	return s
}

// decodeInt16 decodes a 2-byte slice into a little-endian int16.
func decodeInt16(b []byte) int16 {
	if len(b) != 2 {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(b))
}

// decodeUint16 decodes a 2-byte slice into a little-endian uint16.
func decodeUint16(b []byte) uint16 {
	if len(b) != 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}
