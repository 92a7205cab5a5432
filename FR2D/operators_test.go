package FR2D

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowphys/frsolve/utils"
)

// fptRefCoords returns the reference coordinates of one flux point.
func fptRefCoords(op *Operators, fpt int) (r, s float64) {
	f, k := op.FptFace[fpt], op.FptIdx[fpt]
	switch f {
	case 0:
		return op.X1D[k], -1
	case 1:
		return 1, op.X1D[k]
	case 2:
		return op.X1D[k], 1
	case 3:
		return -1, op.X1D[k]
	}
	return
}

func TestOperatorCache(t *testing.T) {
	{ // Build is idempotent and Get returns the identical object
		oc := NewOperatorCache()
		op1 := oc.Build(Quad, 2)
		op2 := oc.Build(Quad, 2)
		assert.True(t, op1 == op2)
		assert.True(t, op1 == oc.Get(Quad, 2))
	}
	{ // Unsupported shapes and unbuilt keys are fatal
		oc := NewOperatorCache()
		assert.Panics(t, func() { oc.Build(Tri, 2) })
		assert.Panics(t, func() { oc.Get(Quad, 3) })
	}
}

func TestExtrapolation(t *testing.T) {
	{ // Extrapolation is exact for every polynomial the basis spans
		for P := 0; P <= 4; P++ {
			op := NewOperatorCache().Build(Quad, P)
			for a := 0; a <= P; a++ {
				for b := 0; b <= P; b++ {
					U := utils.NewMatrix(op.Np, 1)
					for j := 0; j < op.N1; j++ {
						for i := 0; i < op.N1; i++ {
							U.Set(i+j*op.N1, 0,
								math.Pow(op.X1D[i], float64(a))*math.Pow(op.X1D[j], float64(b)))
						}
					}
					Uf := utils.NewMatrix(op.Nfpts, 1)
					op.ApplySptsFpts(U, Uf)
					for fpt := 0; fpt < op.Nfpts; fpt++ {
						r, s := fptRefCoords(op, fpt)
						exact := math.Pow(r, float64(a)) * math.Pow(s, float64(b))
						assert.InDelta(t, exact, Uf.At(fpt, 0), 1.e-10)
					}
				}
			}
		}
	}
}

func TestGradient(t *testing.T) {
	{ // The reference gradient is exact on the polynomial space
		P := 3
		op := NewOperatorCache().Build(Quad, P)
		U := utils.NewMatrix(op.Np, 1)
		for j := 0; j < op.N1; j++ {
			for i := 0; i < op.N1; i++ {
				r, s := op.X1D[i], op.X1D[j]
				U.Set(i+j*op.N1, 0, r*r*s+2*r*s*s-s)
			}
		}
		dUr := utils.NewMatrix(op.Np, 1)
		dUs := utils.NewMatrix(op.Np, 1)
		op.ApplyGradSpts(U, dUr, dUs)
		for j := 0; j < op.N1; j++ {
			for i := 0; i < op.N1; i++ {
				r, s := op.X1D[i], op.X1D[j]
				assert.InDelta(t, 2*r*s+2*s*s, dUr.At(i+j*op.N1, 0), 1.e-10)
				assert.InDelta(t, r*r+4*r*s-1, dUs.At(i+j*op.N1, 0), 1.e-10)
			}
		}
	}
}

func TestDivergenceCorrection(t *testing.T) {
	{ // A zero interface jump injects exactly zero correction
		op := NewOperatorCache().Build(Quad, 2)
		divF := utils.NewMatrix(op.Np, NFields)
		for i, v := range []float64{1, -2, 3, -4} {
			divF.Set(0, i, v)
		}
		before := make([]float64, len(divF.Data()))
		copy(before, divF.Data())
		dFn := utils.NewMatrix(op.Nfpts, NFields) // all zero
		op.ApplyCorrectDivF(dFn, divF)
		assert.Equal(t, before, divF.Data())
	}
	{ // The zeroth order collapses to the finite volume flux balance
		op := NewOperatorCache().Build(Quad, 0)
		divF := utils.NewMatrix(op.Np, 1)
		dFn := utils.NewMatrix(op.Nfpts, 1)
		// a unit jump on the east face only
		dFn.Set(1, 0, 1)
		op.ApplyCorrectDivF(dFn, divF)
		assert.InDelta(t, 0.5, divF.At(0, 0), 1.e-14)
	}
}

func TestShockSensor(t *testing.T) {
	op := NewOperatorCache().Build(Quad, 2)
	fill := func(f func(r, s float64) float64) utils.Matrix {
		U := utils.NewMatrix(op.Np, NFields)
		for j := 0; j < op.N1; j++ {
			for i := 0; i < op.N1; i++ {
				U.Set(i+j*op.N1, 0, f(op.X1D[i], op.X1D[j]))
				U.Set(i+j*op.N1, 3, 2.5)
			}
		}
		return U
	}
	{ // A resolved field carries no top-mode energy
		smooth := fill(func(r, s float64) float64 { return 1. + 0.05*r })
		assert.Less(t, op.ShockSensor(smooth), -10.)
	}
	{ // A near-discontinuous field lights the sensor up
		rough := fill(func(r, s float64) float64 {
			if r > 0 {
				return 2.
			}
			return 1.
		})
		assert.Greater(t, op.ShockSensor(rough), -3.)
	}
}

func TestCellAverage(t *testing.T) {
	{ // The weighted average of a linear field is its midpoint value
		op := NewOperatorCache().Build(Quad, 3)
		U := utils.NewMatrix(op.Np, NFields)
		for j := 0; j < op.N1; j++ {
			for i := 0; i < op.N1; i++ {
				r, s := op.X1D[i], op.X1D[j]
				for n := 0; n < NFields; n++ {
					U.Set(i+j*op.N1, n, float64(n+1)*(3.+r-2.*s))
				}
			}
		}
		var avg [NFields]float64
		op.CalcAvgU(U, 0.25, avg[:])
		for n := 0; n < NFields; n++ {
			assert.InDelta(t, float64(n+1)*3., avg[n], 1.e-12)
		}
	}
}
