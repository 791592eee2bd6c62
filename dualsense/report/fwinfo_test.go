package report_test

import (
	"testing"

	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/stretchr/testify/assert"
)

func TestDecodeFirmwareInfo(t *testing.T) {
	payload := make([]byte, 64)
	payload[0] = report.FirmwareInfoReportID
	copy(payload[1:12], "Jun 7 2024")
	copy(payload[12:20], "10:30:00")
	payload[44], payload[45] = 0x34, 0x12 // version 0x1234, little-endian

	info, err := report.DecodeFirmwareInfo(payload)
	assert.NoError(t, err)
	assert.Equal(t, "Jun 7 2024", info.BuildDate)
	assert.Equal(t, "10:30:00", info.BuildTime)
	assert.Equal(t, uint16(0x1234), info.Version)
}

func TestDecodeFirmwareInfoRejectsShortPayload(t *testing.T) {
	_, err := report.DecodeFirmwareInfo(make([]byte, 10))
	assert.Error(t, err)
}
