package transform

import (
	"testing"

	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/stretchr/testify/assert"
)

func TestProfileApplyLeavesInputUnmodified(t *testing.T) {
	state := report.ControllerState{
		LeftX: 255, LeftY: 128,
		RightX: 128, RightY: 128,
		L2: 100, R2: 0,
		Buttons: report.ButtonSquare,
		DPad:    report.DPadN,
	}
	orig := state

	p := Profile{
		LeftStick: StickSettings{Deadzone: 0.2, Curve: CurveQuick},
		L2:        TriggerSettings{Release: 20, FullStroke: 220},
		Buttons:   ButtonSettings{Disabled: map[Input]bool{InputSquare: true}},
	}

	out := p.Apply(state)

	assert.Equal(t, orig, state, "Apply must not mutate its input")
	assert.Zero(t, out.Buttons&report.ButtonSquare)
	assert.Equal(t, report.DPadN, out.DPad)
}

func TestProfileZeroValueIsIdentityForDefaults(t *testing.T) {
	state := report.ControllerState{
		LeftX: 200, LeftY: 60,
		RightX: 10, RightY: 210,
		L2: 0, R2: 255,
		Buttons: report.ButtonCross | report.ButtonR1,
		DPad:    report.DPadW,
	}

	p := Profile{L2: TriggerSettings{Release: 0, FullStroke: 255}, R2: TriggerSettings{Release: 0, FullStroke: 255}}
	out := p.Apply(state)

	assert.Equal(t, state.L2, out.L2)
	assert.Equal(t, state.R2, out.R2)
	assert.Equal(t, state.Buttons, out.Buttons)
	assert.Equal(t, state.DPad, out.DPad)
}
