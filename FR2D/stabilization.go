package FR2D

import (
	"math"
)

const admissibleEps = 1.e-10

// CalcSensor evaluates the modal shock sensor on the density field and
// records it on the element.
func (el *Element) CalcSensor() {
	el.Sensor = el.Op.ShockSensor(el.U)
}

// admissibleState checks pointwise positivity of density and pressure,
// plus an optional lower bound on the specific entropy p/rho^gamma.
func admissibleState(fs *FreeStream, Q [NFields]float64, entropyBound float64) bool {
	if Q[0] < admissibleEps {
		return false
	}
	p := fs.Pressure(Q)
	if p < admissibleEps {
		return false
	}
	if entropyBound > 0 && p/math.Pow(Q[0], fs.Gamma) < entropyBound {
		return false
	}
	return true
}

func admissibleField(fs *FreeStream, data []float64, npts int, entropyBound float64) bool {
	for i := 0; i < npts; i++ {
		var q [NFields]float64
		copy(q[:], data[i*NFields:(i+1)*NFields])
		if !admissibleState(fs, q, entropyBound) {
			return false
		}
	}
	return true
}

// MinEntropy returns the smallest specific entropy p/rho^gamma over the
// solution points, a non-mutating diagnostic for the entropy bound.
func (el *Element) MinEntropy(fs *FreeStream) (s float64) {
	var (
		uD = el.U.Data()
	)
	s = math.Inf(1)
	for isp := 0; isp < el.Op.Np; isp++ {
		var q [NFields]float64
		copy(q[:], uD[isp*NFields:(isp+1)*NFields])
		if v := fs.GetFlowFunctionQQ(q, Entropy); v < s {
			s = v
		}
	}
	return
}

/*
	SqueezeU blends the element solution toward its cell average,
	U <- Uavg + theta*(U - Uavg), with the largest theta in [0,1] that
	makes every solution and flux point admissible. The blend preserves
	the cell average exactly for any theta. Returns false when even the
	cell average is inadmissible, in which case the solution is left
	untouched and the state propagates as-is.
*/
func (el *Element) SqueezeU(fs *FreeStream, entropyBound float64) bool {
	var (
		op = el.Op
	)
	op.CalcAvgU(el.U, el.Geo.JacDet, el.Uavg[:])
	if !admissibleState(fs, el.Uavg, entropyBound) {
		return false
	}
	admissible := func(theta float64) bool {
		return el.thetaAdmissible(fs, theta, entropyBound)
	}
	if admissible(1) {
		return true
	}
	// bisection for the admissibility crossing; theta=0 is admissible by
	// the average check above
	lo, hi := 0., 1.
	for iter := 0; iter < 30; iter++ {
		mid := 0.5 * (lo + hi)
		if admissible(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	el.applyTheta(lo)
	return true
}

func (el *Element) thetaAdmissible(fs *FreeStream, theta, entropyBound float64) bool {
	check := func(data []float64, npts int) bool {
		for i := 0; i < npts; i++ {
			var q [NFields]float64
			for n := 0; n < NFields; n++ {
				q[n] = el.Uavg[n] + theta*(data[n+i*NFields]-el.Uavg[n])
			}
			if !admissibleState(fs, q, entropyBound) {
				return false
			}
		}
		return true
	}
	return check(el.U.Data(), el.Op.Np) && check(el.Ufpts.Data(), el.Op.Nfpts)
}

func (el *Element) applyTheta(theta float64) {
	apply := func(data []float64, npts int) {
		for i := 0; i < npts; i++ {
			for n := 0; n < NFields; n++ {
				data[n+i*NFields] = el.Uavg[n] + theta*(data[n+i*NFields]-el.Uavg[n])
			}
		}
	}
	apply(el.U.Data(), el.Op.Np)
	apply(el.Ufpts.Data(), el.Op.Nfpts)
}
