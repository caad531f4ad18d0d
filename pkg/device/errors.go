package device

import "errors"

var (
	// ErrNoBatteryClass is returned when the battery device class is absent.
	ErrNoBatteryClass = errors.New("battery device class not available")

	// ErrEnumeration is returned when listing devices fails midway.
	ErrEnumeration = errors.New("failed to enumerate battery devices")

	// ErrBufferTooSmall is returned when a device detail does not fit the
	// bounded detail buffer.
	ErrBufferTooSmall = errors.New("device detail exceeds buffer size")

	// ErrOpen is returned when a device handle cannot be opened.
	ErrOpen = errors.New("failed to open battery device")

	// ErrNoTag is returned when the tag query fails or reports no battery.
	ErrNoTag = errors.New("no battery tag")

	// ErrQueryStatus is returned when the status query fails.
	ErrQueryStatus = errors.New("failed to query battery status")
)
