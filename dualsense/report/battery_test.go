package report_test

import (
	"testing"

	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/stretchr/testify/assert"
)

func TestDecodeBatteryBT(t *testing.T) {
	raw := make([]byte, report.BTInputSize)
	raw[0] = report.ReportIDBTInput
	raw[54] = 0x1A // charging=1 (Charging), batData=0xA -> 10*10+5=105, capped at 100

	info, err := report.DecodeBattery(report.BT, raw)
	assert.NoError(t, err)
	assert.Equal(t, byte(100), info.Capacity)
	assert.Equal(t, "Charging", info.Status.String())
}

func TestDecodeBatteryUSB(t *testing.T) {
	raw := make([]byte, report.USBInputSize)
	raw[0] = report.ReportIDUSBInput
	raw[53] = 0x05 // discharging, batData=5 -> 55%

	info, err := report.DecodeBattery(report.USB, raw)
	assert.NoError(t, err)
	assert.Equal(t, byte(55), info.Capacity)
	assert.Equal(t, "Discharging", info.Status.String())
}

func TestDecodeBatteryNotCharging(t *testing.T) {
	raw := make([]byte, report.USBInputSize)
	raw[0] = report.ReportIDUSBInput
	raw[53] = 0xB3

	info, err := report.DecodeBattery(report.USB, raw)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), info.Capacity)
	assert.Equal(t, "Not charging", info.Status.String())
}

func TestDecodeBatteryFull(t *testing.T) {
	raw := make([]byte, report.USBInputSize)
	raw[0] = report.ReportIDUSBInput
	raw[53] = 0x23 // charging=2 (Full), batData irrelevant

	info, err := report.DecodeBattery(report.USB, raw)
	assert.NoError(t, err)
	assert.Equal(t, byte(100), info.Capacity)
	assert.Equal(t, "Full", info.Status.String())
}

func TestDecodeBatteryUnknownNibble(t *testing.T) {
	raw := make([]byte, report.USBInputSize)
	raw[0] = report.ReportIDUSBInput
	raw[53] = 0xF7 // charging=0xF, unrecognized

	info, err := report.DecodeBattery(report.USB, raw)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), info.Capacity)
	assert.Equal(t, "Unknown", info.Status.String())
}

func TestDecodeBatteryIsIdempotent(t *testing.T) {
	raw := make([]byte, report.USBInputSize)
	raw[0] = report.ReportIDUSBInput
	raw[53] = 0x27

	first, err := report.DecodeBattery(report.USB, raw)
	assert.NoError(t, err)
	second, err := report.DecodeBattery(report.USB, raw)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecodeBatteryRejectsShortReport(t *testing.T) {
	_, err := report.DecodeBattery(report.USB, make([]byte, 10))
	assert.Error(t, err)
}
