//go:build windows

package device

import (
	"unsafe"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/windows"
)

var (
	// GUID_DEVCLASS_BATTERY
	guidDevClassBattery = windows.GUID{
		Data1: 0x72631E54,
		Data2: 0x78A4,
		Data3: 0x11D0,
		Data4: [8]byte{0xBC, 0xF7, 0x00, 0xAA, 0x00, 0xB7, 0xB3, 0x2A},
	}

	modsetupapi                          = windows.NewLazySystemDLL("setupapi.dll")
	procSetupDiEnumDeviceInterfaces      = modsetupapi.NewProc("SetupDiEnumDeviceInterfaces")
	procSetupDiGetDeviceInterfaceDetailW = modsetupapi.NewProc("SetupDiGetDeviceInterfaceDetailW")
)

// spDeviceInterfaceData mirrors SP_DEVICE_INTERFACE_DATA.
type spDeviceInterfaceData struct {
	cbSize             uint32
	interfaceClassGUID windows.GUID
	flags              uint32
	reserved           uintptr
}

// detailHeaderSize is sizeof(SP_DEVICE_INTERFACE_DETAIL_DATA_W) as the API
// expects it in cbSize: a DWORD followed by one WCHAR, padded.
func detailHeaderSize() uint32 {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return 8
	}
	return 6
}

type ioctlEnumerator struct{}

// NewIOCTL returns an enumerator that walks the battery device class with
// SetupAPI and queries each device with DeviceIoControl.
func NewIOCTL() Enumerator {
	return &ioctlEnumerator{}
}

func (e *ioctlEnumerator) Devices() ([]Device, error) {
	devInfo, err := windows.SetupDiGetClassDevsEx(&guidDevClassBattery, "", 0,
		windows.DIGCF_PRESENT|windows.DIGCF_DEVICEINTERFACE, 0, "")
	if err != nil {
		return nil, pkgerrors.Wrap(ErrNoBatteryClass, err.Error())
	}
	defer func() {
		if err := devInfo.Close(); err != nil {
			logrus.Warnf("failed to destroy device info list: %v", err)
		}
	}()

	var devices []Device
	for index := uint32(0); ; index++ {
		did := spDeviceInterfaceData{}
		did.cbSize = uint32(unsafe.Sizeof(did))

		r1, _, e1 := procSetupDiEnumDeviceInterfaces.Call(
			uintptr(devInfo),
			0,
			uintptr(unsafe.Pointer(&guidDevClassBattery)),
			uintptr(index),
			uintptr(unsafe.Pointer(&did)),
		)
		if r1 == 0 {
			if e1 == windows.ERROR_NO_MORE_ITEMS {
				break
			}
			return devices, pkgerrors.Wrapf(ErrEnumeration, "interface %d: %v", index, e1)
		}

		path, err := interfaceDetailPath(devInfo, &did)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"index": index,
				"error": err,
			}).Debug("skipping battery interface")
			continue
		}

		devices = append(devices, &ioctlDevice{path: path, handle: windows.InvalidHandle})
	}

	return devices, nil
}

// interfaceDetailPath reads the device path of one interface into a
// bounded buffer.
func interfaceDetailPath(devInfo windows.DevInfo, did *spDeviceInterfaceData) (string, error) {
	var required uint32
	// The first call only reports the required size and always fails.
	_, _, _ = procSetupDiGetDeviceInterfaceDetailW.Call(
		uintptr(devInfo),
		uintptr(unsafe.Pointer(did)),
		0,
		0,
		uintptr(unsafe.Pointer(&required)),
		0,
	)
	if required == 0 {
		return "", pkgerrors.Wrap(ErrEnumeration, "empty interface detail")
	}
	if required > maxDetailSize {
		return "", pkgerrors.Wrapf(ErrBufferTooSmall, "need %d bytes, have %d", required, maxDetailSize)
	}

	// Allocate in 4-byte words so the leading cbSize field is aligned.
	buf := make([]uint32, (required+3)/4)
	buf[0] = detailHeaderSize()

	r1, _, e1 := procSetupDiGetDeviceInterfaceDetailW.Call(
		uintptr(devInfo),
		uintptr(unsafe.Pointer(did)),
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(required),
		uintptr(unsafe.Pointer(&required)),
		0,
	)
	if r1 == 0 {
		return "", pkgerrors.Wrapf(ErrEnumeration, "interface detail: %v", e1)
	}

	// DevicePath starts right after the DWORD cbSize.
	chars := (required - 4) / 2
	path := unsafe.Slice((*uint16)(unsafe.Pointer(&buf[1])), chars)
	return windows.UTF16ToString(path), nil
}

type ioctlDevice struct {
	path   string
	handle windows.Handle
}

func (d *ioctlDevice) Path() string {
	return d.path
}

func (d *ioctlDevice) Open() error {
	p, err := windows.UTF16PtrFromString(d.path)
	if err != nil {
		return pkgerrors.Wrapf(ErrOpen, "%s: %v", d.path, err)
	}

	h, err := windows.CreateFile(
		p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL,
		0,
	)
	if err != nil {
		return pkgerrors.Wrapf(ErrOpen, "%s: %v", d.path, err)
	}
	d.handle = h

	return nil
}

func (d *ioctlDevice) Tag() (uint32, error) {
	var wait, tag, out uint32

	err := windows.DeviceIoControl(
		d.handle,
		ioctlBatteryQueryTag,
		(*byte)(unsafe.Pointer(&wait)),
		uint32(unsafe.Sizeof(wait)),
		(*byte)(unsafe.Pointer(&tag)),
		uint32(unsafe.Sizeof(tag)),
		&out,
		nil,
	)
	if err != nil {
		return 0, pkgerrors.Wrap(ErrNoTag, err.Error())
	}
	if tag == 0 {
		return 0, ErrNoTag
	}

	logrus.WithFields(logrus.Fields{
		"path": d.path,
		"tag":  tag,
	}).Trace("battery tag queried")

	return tag, nil
}

func (d *ioctlDevice) Status(tag uint32) (Status, error) {
	bws := batteryWaitStatus{BatteryTag: tag}
	var bs Status
	var out uint32

	err := windows.DeviceIoControl(
		d.handle,
		ioctlBatteryQueryStatus,
		(*byte)(unsafe.Pointer(&bws)),
		uint32(unsafe.Sizeof(bws)),
		(*byte)(unsafe.Pointer(&bs)),
		uint32(unsafe.Sizeof(bs)),
		&out,
		nil,
	)
	if err != nil {
		return Status{}, pkgerrors.Wrap(ErrQueryStatus, err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"path":       d.path,
		"powerState": bs.PowerState,
		"rate":       bs.Rate,
	}).Trace("battery status queried")

	return bs, nil
}

func (d *ioctlDevice) Close() error {
	if d.handle == windows.InvalidHandle {
		return nil
	}
	err := windows.CloseHandle(d.handle)
	d.handle = windows.InvalidHandle
	return err
}
