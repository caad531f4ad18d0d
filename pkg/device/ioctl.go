package device

// Control code composition, see CTL_CODE in winioctl.h.
const (
	fileDeviceBattery = 0x00000029
	batteryIOCTLIndex = 0x10
	methodBuffered    = 0
	fileReadAccess    = 0x0001

	// maxDetailSize bounds the interface detail buffer. Device paths are
	// far shorter than this in practice.
	maxDetailSize = 4096
)

var (
	ioctlBatteryQueryTag    = ctlCode(fileDeviceBattery, batteryIOCTLIndex+0, methodBuffered, fileReadAccess)
	ioctlBatteryQueryStatus = ctlCode(fileDeviceBattery, batteryIOCTLIndex+3, methodBuffered, fileReadAccess)
)

func ctlCode(deviceType, function, method, access uint32) uint32 {
	return deviceType<<16 | access<<14 | function<<2 | method
}

// batteryWaitStatus mirrors BATTERY_WAIT_STATUS.
type batteryWaitStatus struct {
	BatteryTag   uint32
	Timeout      uint32
	PowerState   uint32
	LowCapacity  uint32
	HighCapacity uint32
}
