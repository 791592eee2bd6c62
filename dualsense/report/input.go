package report

import (
	"encoding/binary"
	"fmt"
)

// TouchPoint is one decoded touchpad contact.
type TouchPoint struct {
	Active bool
	ID     byte
	X      uint16
	Y      uint16
}

const (
	touchMaxX = 1919
	touchMaxY = 1079
)

// ControllerState is the decoded form of one input report.
type ControllerState struct {
	LeftX, LeftY   byte
	RightX, RightY byte
	L2, R2         byte

	Buttons uint32
	DPad    byte

	Gyro  [3]int16
	Accel [3]int16

	SensorTimestamp uint32

	TouchCount  byte
	TouchPoints [2]TouchPoint
}

// Decode parses a raw input report for the given transport into a
// ControllerState. Reports shorter than the transport's expected size, or
// carrying the wrong report id, are rejected.
func Decode(t Transport, raw []byte) (ControllerState, error) {
	var s ControllerState

	expectedSize := InputSize(t)
	if len(raw) < expectedSize {
		return s, fmt.Errorf("report: short input report: got %d bytes, want at least %d", len(raw), expectedSize)
	}

	wantID := ReportIDUSBInput
	if t == BT {
		wantID = ReportIDBTInput
	}
	if raw[0] != wantID {
		return s, fmt.Errorf("report: unexpected input report id 0x%02x, want 0x%02x", raw[0], wantID)
	}

	p := raw[inputPayloadOffset(t):]

	s.LeftX, s.LeftY = p[0], p[1]
	s.RightX, s.RightY = p[2], p[3]
	s.L2, s.R2 = p[4], p[5]

	s.DPad = p[7] & 0x0F

	for _, b := range ButtonTable {
		if p[b.byteOffset]&b.mask != 0 {
			s.Buttons |= b.bit
		}
	}

	s.Gyro[0] = int16(binary.LittleEndian.Uint16(p[15:17]))
	s.Gyro[1] = int16(binary.LittleEndian.Uint16(p[17:19]))
	s.Gyro[2] = int16(binary.LittleEndian.Uint16(p[19:21]))
	s.Accel[0] = int16(binary.LittleEndian.Uint16(p[21:23]))
	s.Accel[1] = int16(binary.LittleEndian.Uint16(p[23:25]))
	s.Accel[2] = int16(binary.LittleEndian.Uint16(p[25:27]))
	s.SensorTimestamp = binary.LittleEndian.Uint32(p[27:31])

	for i := 0; i < 2; i++ {
		base := 32 + 4*i
		tp := TouchPoint{
			Active: p[base]&0x80 == 0,
			ID:     p[base] & 0x7F,
			X:      uint16(p[base+1]) | (uint16(p[base+2]&0x0F) << 8),
			Y:      (uint16(p[base+2]>>4) | (uint16(p[base+3]) << 4)),
		}
		if tp.X > touchMaxX {
			tp.X = touchMaxX
		}
		if tp.Y > touchMaxY {
			tp.Y = touchMaxY
		}
		if tp.Active {
			s.TouchCount++
		}
		s.TouchPoints[i] = tp
	}

	return s, nil
}
