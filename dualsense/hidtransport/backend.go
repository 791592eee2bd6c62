// Package hidtransport defines the seam between the report codec/session
// layers and the host's HID stack. The OS-level HID binding itself is an
// external collaborator (spec's Non-goals explicitly exclude it); this
// package only describes the small interface a binding must satisfy.
// dualsense/hidfake provides the in-memory stand-in used by tests.
package hidtransport

import (
	"time"

	"github.com/dualsensed/dualsensed/dualsense/report"
)

// DeviceInfo identifies one enumerated HID device matching the DualSense
// vendor/product ids.
type DeviceInfo struct {
	Path      string
	Serial    string
	ProductID uint16
	Transport report.Transport
}

// Backend enumerates and opens HID devices. A real implementation wraps the
// host's native HID library; tests use dualsense/hidfake instead.
type Backend interface {
	Enumerate(vendorID, productID uint16) ([]DeviceInfo, error)
	Open(path string) (Handle, error)
}

// Handle is an open HID device session: raw input report reads (with a
// bounded wait), raw output report writes, and feature-report get/send for
// battery-adjacent and firmware queries.
type Handle interface {
	ReadTimeout(buf []byte, timeout time.Duration) (int, error)
	Write(buf []byte) (int, error)
	GetFeatureReport(reportID byte, buf []byte) (int, error)
	SendFeatureReport(buf []byte) (int, error)
	Close() error
}
