package FR2D

import "math"

// Motion prescribes a rigid grid velocity as a function of time. The
// residual pipeline queries it at each stage time, so the grid position
// and velocity stay consistent with the stage being evaluated.
type Motion interface {
	Velocity(t float64) (vx, vy float64)
}

// TranslatingMotion drifts the whole grid at a constant velocity.
type TranslatingMotion struct {
	VX, VY float64
}

func (m TranslatingMotion) Velocity(t float64) (float64, float64) {
	return m.VX, m.VY
}

// OscillatingMotion translates the grid sinusoidally with displacement
// amplitude (AX, AY) and frequency Freq in cycles per unit time.
type OscillatingMotion struct {
	AX, AY float64
	Freq   float64
}

func (m OscillatingMotion) Velocity(t float64) (float64, float64) {
	w := 2. * math.Pi * m.Freq
	c := w * math.Cos(w*t)
	return m.AX * c, m.AY * c
}
