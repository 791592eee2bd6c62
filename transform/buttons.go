package transform

import "github.com/dualsensed/dualsensed/dualsense/report"

// Input identifies one of the 15 buttons or 4 dpad directions that can be
// disabled or remapped. Values 0..14 are the button bits in ButtonTable
// order; 15..18 are the dpad quad directions (up, right, down, left).
type Input int

const (
	InputSquare Input = iota
	InputCross
	InputCircle
	InputTriangle
	InputL1
	InputR1
	InputL2
	InputR2
	InputCreate
	InputOptions
	InputL3
	InputR3
	InputPS
	InputTouchpad
	InputMute

	InputDPadUp
	InputDPadRight
	InputDPadDown
	InputDPadLeft
)

const numButtons = 15
const numInputs = 19

var buttonBits = [numButtons]uint32{
	report.ButtonSquare, report.ButtonCross, report.ButtonCircle, report.ButtonTriangle,
	report.ButtonL1, report.ButtonR1, report.ButtonL2, report.ButtonR2,
	report.ButtonCreate, report.ButtonOptions, report.ButtonL3, report.ButtonR3,
	report.ButtonPS, report.ButtonTouchpad, report.ButtonMute,
}

// dpadToQuad decomposes an 8-way dpad code into the (up,right,down,left)
// booleans it implies.
func dpadToQuad(dpad byte) (up, right, down, left bool) {
	switch dpad {
	case report.DPadN:
		return true, false, false, false
	case report.DPadNE:
		return true, true, false, false
	case report.DPadE:
		return false, true, false, false
	case report.DPadSE:
		return false, true, true, false
	case report.DPadS:
		return false, false, true, false
	case report.DPadSW:
		return false, false, true, true
	case report.DPadW:
		return false, false, false, true
	case report.DPadNW:
		return true, false, false, true
	default:
		return false, false, false, false
	}
}

// quadToDPad re-encodes a (up,right,down,left) quad back into the 8-way
// code, defaulting to neutral for the zero or incoherent (opposite pair
// held) combinations.
func quadToDPad(up, right, down, left bool) byte {
	if up && down {
		up, down = false, false
	}
	if left && right {
		left, right = false, false
	}

	switch {
	case up && right:
		return report.DPadNE
	case down && right:
		return report.DPadSE
	case down && left:
		return report.DPadSW
	case up && left:
		return report.DPadNW
	case up:
		return report.DPadN
	case right:
		return report.DPadE
	case down:
		return report.DPadS
	case left:
		return report.DPadW
	default:
		return report.DPadNeutral
	}
}

func decomposeInputs(buttons uint32, dpad byte) [numInputs]bool {
	var in [numInputs]bool
	for i, bit := range buttonBits {
		in[i] = buttons&bit != 0
	}
	up, right, down, left := dpadToQuad(dpad)
	in[InputDPadUp] = up
	in[InputDPadRight] = right
	in[InputDPadDown] = down
	in[InputDPadLeft] = left
	return in
}

func recomposeInputs(in [numInputs]bool) (buttons uint32, dpad byte) {
	for i, bit := range buttonBits {
		if in[i] {
			buttons |= bit
		}
	}
	dpad = quadToDPad(in[InputDPadUp], in[InputDPadRight], in[InputDPadDown], in[InputDPadLeft])
	return buttons, dpad
}

// ButtonSettings configures which inputs are dropped entirely and which are
// remapped onto another input before re-encoding.
type ButtonSettings struct {
	Disabled map[Input]bool
	Remap    map[Input]Input
}

func applyButtons(buttons uint32, dpad byte, s ButtonSettings) (uint32, byte) {
	in := decomposeInputs(buttons, dpad)
	var out [numInputs]bool

	for i := 0; i < numInputs; i++ {
		src := Input(i)
		if !in[i] {
			continue
		}
		if s.Disabled[src] {
			continue
		}
		target := src
		if t, ok := s.Remap[src]; ok {
			target = t
		}
		out[target] = true
	}

	return recomposeInputs(out)
}
