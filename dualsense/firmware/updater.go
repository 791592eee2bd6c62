// Package firmware implements the DualSense in-system firmware update state
// machine: preflight checks, the prologue/body/verify/finalize phases, and
// progress reporting.
package firmware

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/dualsensed/dualsensed/dualsense/hidtransport"
	"github.com/dualsensed/dualsensed/dualsense/report"
)

// Feature report codes used by the updater.
const (
	FWReportID       byte = 0xF4
	FWStatusReportID byte = 0xF5
)

// FirmwareSize is the exact expected payload length of a DualSense firmware
// image.
const FirmwareSize = 950272

const (
	prologueSize    = 256
	pageSize        = 0x8000
	chunkSize       = 57
	firstChunkSleep = 50 * time.Millisecond
	bodyChunkSleep  = 10 * time.Millisecond

	productIDOffset = 0x62
	versionOffset   = 0x78
)

// ProgressSink receives coarse progress milestones (0..100) as the update
// proceeds.
type ProgressSink func(percent uint32)

// Updater drives one firmware flash against an open USB handle.
type Updater struct {
	log    *slog.Logger
	handle hidtransport.Handle
	sink   ProgressSink
}

// New returns an Updater. sink may be nil, in which case progress is
// discarded.
func New(log *slog.Logger, handle hidtransport.Handle, sink ProgressSink) *Updater {
	if sink == nil {
		sink = func(uint32) {}
	}
	return &Updater{log: log, handle: handle, sink: sink}
}

// Flash runs the full precondition-check + prologue + body + verify +
// finalize sequence against firmware. transport and batteryPercent describe
// the currently connected device; productID is read from the device (e.g.
// via a ControllerInfo query) to compare against the image's embedded id.
func (u *Updater) Flash(t report.Transport, firmwareImg []byte, batteryPercent int, productID uint16) error {
	if err := u.preflight(t, firmwareImg, batteryPercent, productID); err != nil {
		return err
	}
	u.sink(0)

	if err := u.sendPrologue(firmwareImg); err != nil {
		return fmt.Errorf("firmware: prologue: %w", err)
	}
	u.sink(5)

	if err := u.sendBody(firmwareImg); err != nil {
		return fmt.Errorf("firmware: body: %w", err)
	}
	u.sink(95)

	if err := u.verify(); err != nil {
		return fmt.Errorf("firmware: verify: %w", err)
	}
	u.sink(98)

	if err := u.finalize(); err != nil {
		return fmt.Errorf("firmware: finalize: %w", err)
	}
	u.sink(100)

	return nil
}

func (u *Updater) preflight(t report.Transport, firmwareImg []byte, batteryPercent int, productID uint16) error {
	if t != report.USB {
		return fmt.Errorf("firmware: update requires a USB connection, got %s", t)
	}
	if len(firmwareImg) != FirmwareSize {
		return fmt.Errorf("firmware: image size %d does not match expected %d", len(firmwareImg), FirmwareSize)
	}
	if batteryPercent < 10 {
		return fmt.Errorf("firmware: battery at %d%%, need at least 10%% to flash", batteryPercent)
	}

	imgProductID := binary.LittleEndian.Uint16(firmwareImg[productIDOffset : productIDOffset+2])
	if imgProductID != productID {
		return fmt.Errorf("firmware: image product id 0x%04x does not match connected device 0x%04x", imgProductID, productID)
	}

	version := binary.LittleEndian.Uint16(firmwareImg[versionOffset : versionOffset+2])
	u.log.Info("firmware preflight passed", slog.Int("version", int(version)), slog.Int("battery_percent", batteryPercent))

	return nil
}

func (u *Updater) sendPrologue(firmwareImg []byte) error {
	data := firmwareImg[:prologueSize]

	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		buf := make([]byte, 3+len(chunk))
		buf[0] = FWReportID
		buf[1] = byte(PhasePrologue)
		buf[2] = byte(len(chunk))
		copy(buf[3:], chunk)

		if _, err := u.handle.SendFeatureReport(buf); err != nil {
			return fmt.Errorf("send prologue chunk at offset %d: %w", off, err)
		}

		if off == 0 {
			time.Sleep(firstChunkSleep)
		}
	}

	return waitStatus(u.log, u.handle, PhasePrologue)
}

func (u *Updater) sendBody(firmwareImg []byte) error {
	total := len(firmwareImg)
	body := firmwareImg[prologueSize:]
	bodyTotal := total - prologueSize

	for pageOff := 0; pageOff < len(body); pageOff += pageSize {
		pageEnd := pageOff + pageSize
		if pageEnd > len(body) {
			pageEnd = len(body)
		}
		page := body[pageOff:pageEnd]

		for chunkOff := 0; chunkOff < len(page); chunkOff += chunkSize {
			chunkEnd := chunkOff + chunkSize
			if chunkEnd > len(page) {
				chunkEnd = len(page)
			}
			chunk := page[chunkOff:chunkEnd]

			buf := make([]byte, 3+len(chunk))
			buf[0] = FWReportID
			buf[1] = byte(PhaseBody)
			buf[2] = byte(len(chunk))
			copy(buf[3:], chunk)

			if _, err := u.handle.SendFeatureReport(buf); err != nil {
				return fmt.Errorf("send body chunk at global offset %d: %w", prologueSize+pageOff+chunkOff, err)
			}

			if err := waitStatus(u.log, u.handle, PhaseBody); err != nil {
				return err
			}
			time.Sleep(bodyChunkSleep)

			written := pageOff + chunkOff + len(chunk)
			progress := uint32(5 + written*90/bodyTotal)
			if progress > 95 {
				progress = 95
			}
			u.sink(progress)
		}
	}

	return nil
}

func (u *Updater) verify() error {
	buf := []byte{FWReportID, byte(PhaseVerify)}
	if _, err := u.handle.SendFeatureReport(buf); err != nil {
		return fmt.Errorf("send verify request: %w", err)
	}
	return waitStatus(u.log, u.handle, PhaseVerify)
}

const finalizeCode byte = 0x03

func (u *Updater) finalize() error {
	buf := []byte{FWReportID, finalizeCode}
	if _, err := u.handle.SendFeatureReport(buf); err != nil {
		return fmt.Errorf("send finalize request: %w", err)
	}
	return nil
}
