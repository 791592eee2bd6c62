package transform

import "math"

const stickEpsilon = 1e-6

// StickSettings configures one analog stick's deadzone and response curve.
type StickSettings struct {
	Deadzone float64 // in [0,1)
	Curve    Curve
}

// applyStick reshapes one raw (x,y) stick pair (each a byte in [0,255])
// through the configured deadzone and curve, returning the reshaped pair.
func applyStick(x, y byte, s StickSettings) (byte, byte) {
	nx := (float64(x) - 128) / 127
	ny := (float64(y) - 128) / 127

	m := math.Sqrt(nx*nx + ny*ny)
	if m > 1 {
		m = 1
	}

	if m <= s.Deadzone {
		return 128, 128
	}

	denom := 1 - s.Deadzone
	if denom < stickEpsilon {
		denom = stickEpsilon
	}
	rescaled := (m - s.Deadzone) / denom

	curved := s.Curve.apply(rescaled)
	factor := curved / m

	outX := clampByteRound(nx*factor*127 + 128)
	outY := clampByteRound(ny*factor*127 + 128)
	return outX, outY
}

func clampByteRound(v float64) byte {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return byte(r)
}
