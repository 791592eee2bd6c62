package main

import (
	"errors"

	"github.com/dualsensed/dualsensed/dualsense/hidtransport"
)

// unimplementedBackend satisfies hidtransport.Backend without touching any
// OS HID stack. The HID OS backend is an external collaborator by design —
// enumeration always finds nothing, so the daemon's reconnection loop idles
// rather than crashing. A platform build that links a real HID library
// drops in its own hidtransport.Backend here instead.
type unimplementedBackend struct{}

func newUnimplementedBackend() hidtransport.Backend { return unimplementedBackend{} }

func (unimplementedBackend) Enumerate(vendorID, productID uint16) ([]hidtransport.DeviceInfo, error) {
	return nil, nil
}

func (unimplementedBackend) Open(path string) (hidtransport.Handle, error) {
	return nil, errors.New("dualsensed: no HID backend is linked into this build")
}
