// Package hidfake is an in-memory implementation of hidtransport.Backend
// and hidtransport.Handle, used by tests. No
// OS HID binding is implemented in this repository — that boundary is an
// external collaborator per spec, and this is its stand-in.
package hidfake

import (
	"errors"
	"sync"
	"time"

	"github.com/dualsensed/dualsensed/dualsense/hidtransport"
	"github.com/dualsensed/dualsensed/dualsense/report"
)

// ErrReadTimeout is returned by Fake.ReadTimeout when no input report has
// been queued before the timeout elapses.
var ErrReadTimeout = errors.New("hidfake: read timed out")

// Fake is an in-memory Backend/Handle pair. It holds a FIFO of queued input
// reports, captures every output write, and answers feature-report
// requests from caller-seeded buffers.
type Fake struct {
	mu sync.Mutex

	devices []hidtransport.DeviceInfo

	inputQueue  [][]byte
	outputLog   [][]byte
	featureByID map[byte][]byte
	closed      bool
}

var (
	_ hidtransport.Backend = (*Fake)(nil)
	_ hidtransport.Handle  = (*Fake)(nil)
)

// New returns an empty Fake with no devices enumerated.
func New() *Fake {
	return &Fake{featureByID: make(map[byte][]byte)}
}

// AddDevice registers a device Enumerate will return.
func (f *Fake) AddDevice(info hidtransport.DeviceInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = append(f.devices, info)
}

// QueueInputReport appends a raw report to be returned by the next
// ReadTimeout call.
func (f *Fake) QueueInputReport(buf []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(buf))
	copy(cp, buf)
	f.inputQueue = append(f.inputQueue, cp)
}

// SetFeatureReport seeds the buffer GetFeatureReport(reportID, ...) returns.
func (f *Fake) SetFeatureReport(reportID byte, buf []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(buf))
	copy(cp, buf)
	f.featureByID[reportID] = cp
}

// OutputLog returns every buffer passed to Write or SendFeatureReport, in
// call order.
func (f *Fake) OutputLog() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.outputLog))
	copy(out, f.outputLog)
	return out
}

func (f *Fake) Enumerate(vendorID, productID uint16) ([]hidtransport.DeviceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []hidtransport.DeviceInfo
	for _, d := range f.devices {
		if vendorID != 0 && vendorID != report.VendorID {
			continue
		}
		if productID != 0 && productID != d.ProductID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Open returns the Fake itself as the Handle for any known device path, or
// an error if no device with that path was registered.
func (f *Fake) Open(path string) (hidtransport.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.devices {
		if d.Path == path {
			return f, nil
		}
	}
	return nil, errors.New("hidfake: no device registered at path " + path)
}

func (f *Fake) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	f.mu.Lock()
	if len(f.inputQueue) > 0 {
		next := f.inputQueue[0]
		f.inputQueue = f.inputQueue[1:]
		f.mu.Unlock()
		n := copy(buf, next)
		return n, nil
	}
	f.mu.Unlock()

	if timeout > 0 {
		time.Sleep(timeout)
	}
	return 0, ErrReadTimeout
}

func (f *Fake) Write(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, errors.New("hidfake: write on closed handle")
	}
	cp := make([]byte, len(buf))
	copy(cp, buf)
	f.outputLog = append(f.outputLog, cp)
	return len(buf), nil
}

func (f *Fake) GetFeatureReport(reportID byte, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seeded, ok := f.featureByID[reportID]
	if !ok {
		return 0, errors.New("hidfake: no feature report seeded for id")
	}
	n := copy(buf, seeded)
	return n, nil
}

func (f *Fake) SendFeatureReport(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(buf))
	copy(cp, buf)
	f.outputLog = append(f.outputLog, cp)
	return len(buf), nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
