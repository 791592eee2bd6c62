package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyStickNeutralStaysNeutral(t *testing.T) {
	for _, dz := range []float64{0, 0.1, 0.3, 0.9} {
		x, y := applyStick(128, 128, StickSettings{Deadzone: dz})
		assert.Equal(t, byte(128), x)
		assert.Equal(t, byte(128), y)
	}
}

func TestApplyStickFullDeflectionNoDeadzone(t *testing.T) {
	x, y := applyStick(255, 128, StickSettings{Deadzone: 0, Curve: CurveDefault})
	assert.Equal(t, byte(255), x)
	assert.Equal(t, byte(128), y)
}

func TestApplyStickDigitalCurveSnaps(t *testing.T) {
	x, y := applyStick(255, 128, StickSettings{Deadzone: 0, Curve: CurveDigital})
	assert.Equal(t, byte(255), x)
	assert.Equal(t, byte(128), y)
}

func TestApplyStickWithinDeadzoneSnapsNeutral(t *testing.T) {
	x, y := applyStick(160, 128, StickSettings{Deadzone: 0.3, Curve: CurveDefault})
	assert.Equal(t, byte(128), x)
	assert.Equal(t, byte(128), y)
}
