package FR2D

import (
	"fmt"
)

/*
	RKScheme is an explicit low-storage Runge-Kutta scheme in the
	two-coefficient form used by the residual pipeline:
		stage s < last:  U = U0 - A[s]*dt/J * DivF[s],  t_stage = t + A[s]*dt
		final stage:     U = U0 - dt/J * sum_s B[s]*DivF[s]
	Each stage evaluates the residual into its own DivF slot, so the final
	blend sees every stage's divergence untouched.
*/
type RKScheme struct {
	NStages int
	A       []float64 // NStages-1 intermediate coefficients
	B       []float64 // NStages blend weights
}

// NewRKScheme builds the scheme for a selector value. 0 and 1 both name
// the single-stage forward Euler scheme, 4 the classical four-stage
// scheme; any other value is a fatal configuration error.
func NewRKScheme(nStages int) (rk *RKScheme, err error) {
	switch nStages {
	case 0, 1:
		rk = &RKScheme{
			NStages: 1,
			A:       []float64{},
			B:       []float64{1.},
		}
	case 4:
		rk = &RKScheme{
			NStages: 4,
			A:       []float64{0.5, 0.5, 1.},
			B:       []float64{1. / 6., 1. / 3., 1. / 3., 1. / 6.},
		}
	default:
		err = fmt.Errorf("unsupported Runge-Kutta stage count %d", nStages)
	}
	return
}

// StageTime returns the simulation time the given stage's residual should
// be evaluated at, relative to the step start time.
func (rk *RKScheme) StageTime(t, dt float64, stage int) float64 {
	if stage == 0 {
		return t
	}
	return t + rk.A[stage-1]*dt
}

// SimState tracks where the integration is within a run: the current step,
// time, step size and the convergence residual of the latest step.
type SimState struct {
	Step     int
	Time     float64
	DT       float64
	Residual [NFields]float64
}
