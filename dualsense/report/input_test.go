package report_test

import (
	"testing"

	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/stretchr/testify/assert"
)

func buildUSBInputReport() []byte {
	raw := make([]byte, report.USBInputSize)
	raw[0] = report.ReportIDUSBInput

	p := raw[1:]
	p[0], p[1] = 0x80, 0x80 // left stick neutral
	p[2], p[3] = 0x10, 0x20 // right stick
	p[4], p[5] = 0x33, 0x44 // L2, R2

	p[7] = 0x94 // dpad=S(4), Square+Triangle pressed
	p[8] = 0x01 // L1 pressed
	p[9] = 0x02 // Touchpad pressed

	p[15], p[16] = 0xFF, 0xFF // gyroX = -1
	p[27], p[28], p[29], p[30] = 0x04, 0x03, 0x02, 0x01

	// touch1: active, id 0, x overflowing 1919, y=0
	p[32], p[33], p[34], p[35] = 0x00, 0xFF, 0x0F, 0x00
	// touch2: inactive
	p[36] = 0x80

	return raw
}

func TestDecodeInputReport(t *testing.T) {
	raw := buildUSBInputReport()

	st, err := report.Decode(report.USB, raw)
	assert.NoError(t, err)

	assert.Equal(t, byte(0x80), st.LeftX)
	assert.Equal(t, byte(0x80), st.LeftY)
	assert.Equal(t, byte(0x10), st.RightX)
	assert.Equal(t, byte(0x20), st.RightY)
	assert.Equal(t, byte(0x33), st.L2)
	assert.Equal(t, byte(0x44), st.R2)

	assert.Equal(t, report.DPadS, st.DPad)
	assert.Equal(t, report.ButtonSquare|report.ButtonTriangle|report.ButtonL1|report.ButtonTouchpad, st.Buttons)

	assert.Equal(t, int16(-1), st.Gyro[0])
	assert.Equal(t, uint32(0x01020304), st.SensorTimestamp)

	assert.True(t, st.TouchPoints[0].Active)
	assert.Equal(t, uint16(1919), st.TouchPoints[0].X, "touch x clamped to 1919")
	assert.False(t, st.TouchPoints[1].Active)
	assert.Equal(t, byte(1), st.TouchCount)
}

func TestDecodeRejectsShortReport(t *testing.T) {
	_, err := report.Decode(report.USB, make([]byte, 10))
	assert.Error(t, err)
}

func TestDecodeRejectsWrongReportID(t *testing.T) {
	raw := buildUSBInputReport()
	raw[0] = 0x99
	_, err := report.Decode(report.USB, raw)
	assert.Error(t, err)
}
