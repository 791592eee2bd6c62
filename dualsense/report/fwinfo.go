package report

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// FirmwareInfoReportID is the feature report id used to query the running
// firmware's build identity.
const FirmwareInfoReportID byte = 0x20

const firmwareInfoMinLen = 50

// FirmwareInfo is the decoded identity of the firmware currently running on
// the device, as reported by the 0x20 feature report.
type FirmwareInfo struct {
	BuildDate string
	BuildTime string
	Version   uint16
}

// DecodeFirmwareInfo parses the 0x20 feature report payload (report id
// included at payload[0]) into a FirmwareInfo.
func DecodeFirmwareInfo(payload []byte) (FirmwareInfo, error) {
	if len(payload) < firmwareInfoMinLen {
		return FirmwareInfo{}, fmt.Errorf("report: short firmware-info report: got %d bytes, want at least %d", len(payload), firmwareInfoMinLen)
	}

	return FirmwareInfo{
		BuildDate: trimNUL(payload[1:12]),
		BuildTime: trimNUL(payload[12:20]),
		Version:   binary.LittleEndian.Uint16(payload[44:46]),
	}, nil
}

func trimNUL(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}
