package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurveBoundaries(t *testing.T) {
	for _, c := range []Curve{CurveDefault, CurveQuick, CurvePrecise, CurveSteady, CurveDynamic} {
		assert.InDelta(t, 0, c.apply(0), 1e-9, "curve %d at 0", c)
		assert.InDelta(t, 1, c.apply(1), 1e-9, "curve %d at 1", c)
	}
}

func TestCurveDigitalIsStepAtHalf(t *testing.T) {
	assert.Equal(t, 0.0, CurveDigital.apply(0))
	assert.Equal(t, 0.0, CurveDigital.apply(0.5))
	assert.Equal(t, 1.0, CurveDigital.apply(0.5001))
	assert.Equal(t, 1.0, CurveDigital.apply(1))
}

func TestCurveMonotonicBetweenBounds(t *testing.T) {
	for _, c := range []Curve{CurveDefault, CurveQuick, CurvePrecise, CurveSteady, CurveDynamic} {
		prev := c.apply(0)
		for i := 1; i <= 10; i++ {
			x := float64(i) / 10
			v := c.apply(x)
			assert.GreaterOrEqual(t, v, prev, "curve must not decrease")
			prev = v
		}
	}
}
