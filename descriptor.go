package adb

import "fmt"

// descriptorType distinguishes the ways a device can be addressed.
type descriptorType int

const (
	descriptorSerial descriptorType = iota
	descriptorTransportID
	descriptorUsb
	descriptorProduct
	descriptorAny
)

// DeviceDescriptor identifies one device for transport selection (spec.md
// §3/§4.3). At most one of serial, transportID or product is meaningful for
// a given descriptorType (none for the usb and any forms).
type DeviceDescriptor struct {
	descriptorType descriptorType
	serial         string
	transportID    uint8
	product        string
}

// DeviceWithSerial selects a device by its printed serial (e.g. "emulator-5554").
func DeviceWithSerial(serial string) DeviceDescriptor {
	return DeviceDescriptor{descriptorType: descriptorSerial, serial: serial}
}

// DeviceWithTransportID selects a device by the 8-bit transport id the
// server assigned it.
func DeviceWithTransportID(id uint8) DeviceDescriptor {
	return DeviceDescriptor{descriptorType: descriptorTransportID, transportID: id}
}

// DeviceWithProduct selects the (single) attached device whose product name
// matches. Rarely used; kept for parity with the pack's descriptor sets.
func DeviceWithProduct(product string) DeviceDescriptor {
	return DeviceDescriptor{descriptorType: descriptorProduct, product: product}
}

// AnyUsbDevice selects the single attached USB device. An error is
// returned by the server if there isn't exactly one.
func AnyUsbDevice() DeviceDescriptor {
	return DeviceDescriptor{descriptorType: descriptorUsb}
}

// AnyDevice selects whatever single device is attached, USB or not.
func AnyDevice() DeviceDescriptor {
	return DeviceDescriptor{descriptorType: descriptorAny}
}

func (d DeviceDescriptor) String() string {
	switch d.descriptorType {
	case descriptorSerial:
		return fmt.Sprintf("serial=%s", d.serial)
	case descriptorTransportID:
		return fmt.Sprintf("transport_id=%d", d.transportID)
	case descriptorUsb:
		return "usb"
	case descriptorProduct:
		return fmt.Sprintf("product=%s", d.product)
	default:
		return "any"
	}
}

// getHostPrefix returns the prefix used to address a sub-command to this
// device, e.g. "host-serial:S" or "host-transport-id:7" (spec.md §4.3's
// sub-command rows, minus the trailing ":<C>" — getAttribute appends that
// itself).
func (d DeviceDescriptor) getHostPrefix() string {
	switch d.descriptorType {
	case descriptorSerial:
		return fmt.Sprintf("host-serial:%s", d.serial)
	case descriptorTransportID:
		return fmt.Sprintf("host-transport-id:%d", d.transportID)
	case descriptorUsb:
		return "host-usb"
	case descriptorProduct:
		return fmt.Sprintf("host-product:%s", d.product)
	default:
		return "host"
	}
}

// transportSelector returns the full command used to pin a fresh
// connection's transport to this device (spec.md §4.3's "no sub-command"
// rows). Unlike getHostPrefix, the serial and transport_id forms are not
// symmetric: a serial pins via "host:transport:<serial>", while a
// transport_id pins via the bare "host-transport-id:<id>" with no "host:"
// prefix at all — spec.md's table is authoritative here, not an inferred
// pattern.
func (d DeviceDescriptor) transportSelector() string {
	switch d.descriptorType {
	case descriptorSerial:
		return fmt.Sprintf("host:transport:%s", d.serial)
	case descriptorTransportID:
		return fmt.Sprintf("host-transport-id:%d", d.transportID)
	case descriptorUsb:
		return "host:transport-usb"
	case descriptorProduct:
		return fmt.Sprintf("host:transport-product:%s", d.product)
	default:
		return "host:transport-any"
	}
}
