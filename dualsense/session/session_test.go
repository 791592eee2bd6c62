package session_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/dualsensed/dualsensed/dualsense/hidfake"
	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/dualsensed/dualsensed/dualsense/session"
	"github.com/dualsensed/dualsensed/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func usbReportWithBattery(batteryByte byte) []byte {
	raw := make([]byte, report.USBInputSize)
	raw[0] = report.ReportIDUSBInput
	raw[53] = batteryByte
	return raw
}

func TestSessionGetBattery(t *testing.T) {
	fake := hidfake.New()
	fake.QueueInputReport(usbReportWithBattery(0x1A))

	s := session.New(testLogger(), fake, report.USB)
	info, err := s.GetBattery()
	require.NoError(t, err)
	assert.Equal(t, byte(100), info.Capacity)
	assert.Equal(t, "Charging", info.Status.String())
}

func TestSessionGetInputStateRejectsShortRead(t *testing.T) {
	fake := hidfake.New()
	fake.QueueInputReport(make([]byte, 5)) // far too short, wrong id too

	s := session.New(testLogger(), fake, report.USB)
	_, err := s.GetInputState()
	assert.Error(t, err)
}

func TestSessionPlayerLEDsBoundsCheck(t *testing.T) {
	fake := hidfake.New()
	s := session.New(testLogger(), fake, report.USB)

	assert.Error(t, s.SetPlayerLEDs(-1))
	assert.Error(t, s.SetPlayerLEDs(len(report.PlayerLEDPatterns)))
	assert.NoError(t, s.SetPlayerLEDs(0))
}

func TestSessionUpdateModeSuppressesOutputWrites(t *testing.T) {
	fake := hidfake.New()
	s := session.New(testLogger(), fake, report.USB)

	require.NoError(t, s.SetLightbar(1, 2, 3, 4))
	assert.Len(t, fake.OutputLog(), 1)

	s.SetUpdateMode(true)
	require.NoError(t, s.SetLightbar(5, 6, 7, 8))
	assert.Len(t, fake.OutputLog(), 1, "writes while update mode is held must be suppressed")

	s.SetUpdateMode(false)
	require.NoError(t, s.SetLightbar(9, 10, 11, 12))
	assert.Len(t, fake.OutputLog(), 2)
}

func TestSessionRawLogSeesBothDirections(t *testing.T) {
	fake := hidfake.New()
	fake.QueueInputReport(usbReportWithBattery(0x1A))

	var buf bytes.Buffer
	s := session.New(testLogger(), fake, report.USB)
	s.SetRawLog(log.NewRaw(&buf))

	_, err := s.GetBattery()
	require.NoError(t, err)
	require.NoError(t, s.SetLightbar(1, 2, 3, 4))

	out := buf.String()
	assert.Contains(t, out, "DEV->HOST")
	assert.Contains(t, out, "HOST->DEV")
}

func TestSessionUpdateModeGatesBatteryQueries(t *testing.T) {
	fake := hidfake.New()
	fake.QueueInputReport(usbReportWithBattery(0x1A))

	s := session.New(testLogger(), fake, report.USB)
	s.SetUpdateMode(true)

	_, err := s.GetBattery()
	assert.ErrorIs(t, err, session.ErrUpdateInProgress)
}
