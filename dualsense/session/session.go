// Package session holds the HID handle for one connected controller and
// exposes every per-feature operation as a method: lightbar, player LEDs,
// mic, triggers, vibration, speaker, volume, plus the input/battery/
// firmware-info queries and the update-mode gate.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dualsensed/dualsensed/dualsense/hidtransport"
	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/dualsensed/dualsensed/internal/log"
)

// ErrUpdateInProgress is returned by GetInputState and GetBattery while the
// update gate is held. Output operations are silently dropped (they return
// nil) and GetFirmwareInfo is not gated.
var ErrUpdateInProgress = errors.New("session: firmware update in progress")

const (
	inputReadTimeout  = time.Second
	updateDrainSleep  = 1100 * time.Millisecond
)

// Session owns one open HID handle and serializes every operation against
// it. A Session is built around a single device's Transport (USB or BT);
// callers never mix transports on one instance.
type Session struct {
	log *slog.Logger

	mu      sync.Mutex
	handle  hidtransport.Handle
	t       report.Transport
	encoder *report.Encoder
	rawLog  log.RawLogger

	updateMode atomic.Bool
}

// New wraps an already-open handle for the given transport.
func New(l *slog.Logger, handle hidtransport.Handle, t report.Transport) *Session {
	return &Session{
		log:     l,
		handle:  handle,
		t:       t,
		encoder: report.NewEncoder(),
		rawLog:  log.NewRaw(nil),
	}
}

// SetRawLog installs a raw wire-level HID logger used for every read/write
// on this session from this point on. Passing nil restores the no-op
// default.
func (s *Session) SetRawLog(l log.RawLogger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		l = log.NewRaw(nil)
	}
	s.rawLog = l
}

// Close releases the underlying HID handle.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle.Close()
}

// Transport reports which wire framing this session's device uses.
func (s *Session) Transport() report.Transport { return s.t }

func (s *Session) checkUpdateGate() error {
	if s.updateMode.Load() {
		return ErrUpdateInProgress
	}
	return nil
}

// GetInputState reads one input report with a 1s timeout and decodes it.
func (s *Session) GetInputState() (report.ControllerState, error) {
	if err := s.checkUpdateGate(); err != nil {
		return report.ControllerState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, report.InputSize(s.t))
	n, err := s.handle.ReadTimeout(buf, inputReadTimeout)
	if err != nil {
		return report.ControllerState{}, fmt.Errorf("session: read input report: %w", err)
	}
	s.rawLog.Log(true, buf[:n])

	return report.Decode(s.t, buf[:n])
}

// GetBattery reads one input report and derives battery status from it.
func (s *Session) GetBattery() (report.BatteryInfo, error) {
	if err := s.checkUpdateGate(); err != nil {
		return report.BatteryInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, report.InputSize(s.t))
	n, err := s.handle.ReadTimeout(buf, inputReadTimeout)
	if err != nil {
		return report.BatteryInfo{}, fmt.Errorf("session: read input report: %w", err)
	}
	s.rawLog.Log(true, buf[:n])
	if _, err := report.Decode(s.t, buf[:n]); err != nil {
		return report.BatteryInfo{}, err
	}

	return report.DecodeBattery(s.t, buf[:n])
}

// GetFirmwareInfo queries the 0x20 feature report for the running firmware's
// build identity.
func (s *Session) GetFirmwareInfo() (report.FirmwareInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, 64)
	n, err := s.handle.GetFeatureReport(report.FirmwareInfoReportID, buf)
	if err != nil {
		return report.FirmwareInfo{}, fmt.Errorf("session: get firmware-info feature report: %w", err)
	}
	s.rawLog.Log(true, buf[:n])

	return report.DecodeFirmwareInfo(buf[:n])
}

// sendOutputReport finalizes r (CRC + sequence on BT) and writes it. A
// no-op while the update gate is held, per the advisory-flag contract.
func (s *Session) sendOutputReport(r *report.OutputReport) error {
	if s.updateMode.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.encoder.Encode(s.t, r)
	s.rawLog.Log(false, buf)
	if _, err := s.handle.Write(buf); err != nil {
		return fmt.Errorf("session: write output report: %w", err)
	}
	return nil
}

// SetLightbar sets the lightbar color.
func (s *Session) SetLightbar(red, green, blue, brightness byte) error {
	r := report.NewOutputReport()
	r.SetLightbar(red, green, blue, brightness)
	return s.sendOutputReport(r)
}

// SetLightbarEnabled toggles the lightbar fade behavior independent of color.
func (s *Session) SetLightbarEnabled(enabled bool) error {
	r := report.NewOutputReport()
	r.SetLightbarEnabled(enabled)
	return s.sendOutputReport(r)
}

// SetPlayerLEDs selects one of the 8 fixed player-indicator patterns.
func (s *Session) SetPlayerLEDs(index int) error {
	if index < 0 || index >= len(report.PlayerLEDPatterns) {
		return fmt.Errorf("session: player led index %d out of range [0,%d)", index, len(report.PlayerLEDPatterns))
	}
	r := report.NewOutputReport()
	r.SetPlayerLEDs(index)
	return s.sendOutputReport(r)
}

// SetMic mutes or unmutes the microphone.
func (s *Session) SetMic(muted bool) error {
	r := report.NewOutputReport()
	r.SetMic(muted)
	return s.sendOutputReport(r)
}

// SetMicLED sets the microphone LED behavior.
func (s *Session) SetMicLED(state report.MicLEDState) error {
	r := report.NewOutputReport()
	r.SetMicLED(state)
	return s.sendOutputReport(r)
}

// SetTriggerEffect sets a raw trigger-effect mode and parameter block on
// either or both sides in a single output report, so a request naming both
// triggers produces exactly one HID write.
func (s *Session) SetTriggerEffect(left, right bool, mode byte, leftParams, rightParams [10]byte) error {
	r := report.NewOutputReport()
	if left {
		r.SetTriggerEffect(report.TriggerLeft, mode, leftParams)
	}
	if right {
		r.SetTriggerEffect(report.TriggerRight, mode, rightParams)
	}
	return s.sendOutputReport(r)
}

// SetTriggerOff disables resistance on both triggers.
func (s *Session) SetTriggerOff() error {
	r := report.NewOutputReport()
	r.SetTriggerOff()
	return s.sendOutputReport(r)
}

// SetVibration sets rumble/trigger vibration attenuation.
func (s *Session) SetVibration(rumble, trigger byte) error {
	r := report.NewOutputReport()
	r.SetVibration(rumble, trigger)
	return s.sendOutputReport(r)
}

// SetSpeaker selects audio output routing.
func (s *Session) SetSpeaker(mode report.SpeakerMode) error {
	r := report.NewOutputReport()
	r.SetSpeaker(mode)
	return s.sendOutputReport(r)
}

// SetVolume sets the master volume, scaled into both device volume ranges.
func (s *Session) SetVolume(volume byte) error {
	r := report.NewOutputReport()
	r.SetVolume(volume)
	return s.sendOutputReport(r)
}

// SetUpdateMode toggles the advisory update-in-progress flag. Entering
// update mode sleeps ~1.1s to let any inflight read/write drain before the
// caller reclaims the handle for flashing.
func (s *Session) SetUpdateMode(active bool) {
	s.updateMode.Store(active)
	if active {
		s.log.Info("entering update mode, draining inflight operations")
		time.Sleep(updateDrainSleep)
	} else {
		s.log.Info("leaving update mode")
	}
}

// UpdateInProgress reports the current state of the update gate.
func (s *Session) UpdateInProgress() bool {
	return s.updateMode.Load()
}

// Handle exposes the raw HID handle for the firmware updater, which needs
// direct feature-report access outside the per-feature operation surface.
// The caller must coordinate with SetUpdateMode itself; Session does not
// serialize against this method.
func (s *Session) Handle() hidtransport.Handle {
	return s.handle
}
