package transform

import (
	"testing"

	"github.com/dualsensed/dualsensed/dualsense/report"
	"github.com/stretchr/testify/assert"
)

func TestApplyButtonsIdentityIsIdempotent(t *testing.T) {
	buttons := report.ButtonSquare | report.ButtonL1 | report.ButtonPS
	dpad := report.DPadNE

	out1, dpad1 := applyButtons(buttons, dpad, ButtonSettings{})
	out2, dpad2 := applyButtons(out1, dpad1, ButtonSettings{})

	assert.Equal(t, buttons, out1)
	assert.Equal(t, dpad, dpad1)
	assert.Equal(t, out1, out2)
	assert.Equal(t, dpad1, dpad2)
}

func TestApplyButtonsDisabledNeverAppears(t *testing.T) {
	buttons := report.ButtonSquare | report.ButtonCross
	s := ButtonSettings{Disabled: map[Input]bool{InputSquare: true}}

	out, _ := applyButtons(buttons, report.DPadNeutral, s)
	assert.Zero(t, out&report.ButtonSquare)
	assert.NotZero(t, out&report.ButtonCross)
}

func TestApplyButtonsRemap(t *testing.T) {
	buttons := report.ButtonSquare
	s := ButtonSettings{Remap: map[Input]Input{InputSquare: InputCircle}}

	out, _ := applyButtons(buttons, report.DPadNeutral, s)
	assert.Zero(t, out&report.ButtonSquare)
	assert.NotZero(t, out&report.ButtonCircle)
}

func TestDPadQuadRoundTrip(t *testing.T) {
	for dpad := byte(0); dpad <= report.DPadNeutral; dpad++ {
		up, right, down, left := dpadToQuad(dpad)
		assert.Equal(t, dpad, quadToDPad(up, right, down, left))
	}
}

func TestQuadToDPadCancelsOpposingPairs(t *testing.T) {
	assert.Equal(t, report.DPadNeutral, quadToDPad(true, false, true, false))
	assert.Equal(t, report.DPadNeutral, quadToDPad(false, true, false, true))
}
