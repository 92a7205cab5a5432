package FR2D

import (
	"math"

	"github.com/flowphys/frsolve/utils"
)

/*
	Element holds the full state of one quad element: conserved solution at
	the solution and flux points, flux and gradient working storage, and
	the affine geometry of an axis-aligned rectangle. Field storage is
	point-major: matrices have one row per point and NFields columns.

	The divergence is held in transformed units, J times the physical
	divergence, so the semi-discrete update is dU/dt = -DivF/J. One DivF
	slot exists per Runge-Kutta stage.
*/
type Element struct {
	ID  int // global element id
	Op  *Operators
	Geo ElemGeometry

	U, U0  utils.Matrix // conserved solution at spts; U0 snapshots the stage-0 state
	Ufpts  utils.Matrix // solution extrapolated to flux points
	Fr, Fs utils.Matrix // flux pair at spts: transformed (static) or physical (moving)
	DisFn  utils.Matrix // discontinuous normal flux at fpts, dA-scaled units
	FnCom  utils.Matrix // common normal flux at fpts, dA-scaled units
	DivF   []utils.Matrix

	// viscous path
	DUr, DUs utils.Matrix // corrected reference-space gradient at spts
	DUx, DUy utils.Matrix // physical gradient at spts
	DUfptsX  utils.Matrix // physical gradient extrapolated to fpts
	DUfptsY  utils.Matrix
	DUc      utils.Matrix // common-minus-local solution jump at fpts

	frF, fsF utils.Matrix // fpt-space flux scratch

	Uavg      [NFields]float64
	Sensor    float64
	WaveSpeed float64
}

// ElemGeometry is the affine metric set of an axis-aligned rectangle. The
// reference map is x = X0 + Dx*(1+xi)/2, so the metric terms are constant
// over the element.
type ElemGeometry struct {
	X0, Y0  float64 // lower-left corner
	Dx, Dy  float64
	JacDet  float64      // Dx*Dy/4
	Rx, Sy  float64      // d(xi)/dx = 2/Dx, d(eta)/dy = 2/Dy
	DA      [4]float64   // face area scale per face: half the face length
	Norm    [4][2]float64 // unit outward physical normal per face
	GridVel [2]float64
	Moving  bool
}

func NewElemGeometry(x0, y0, dx, dy float64) (g ElemGeometry) {
	g = ElemGeometry{
		X0: x0, Y0: y0,
		Dx: dx, Dy: dy,
		JacDet: dx * dy / 4.,
		Rx:     2. / dx,
		Sy:     2. / dy,
		DA:     [4]float64{dx / 2., dy / 2., dx / 2., dy / 2.},
		Norm:   [4][2]float64{{0, -1}, {1, 0}, {0, 1}, {-1, 0}},
	}
	return
}

func NewElement(id int, op *Operators, geo ElemGeometry, nStages int) (el *Element) {
	var (
		Np, Nfpts = op.Np, op.Nfpts
	)
	el = &Element{
		ID:      id,
		Op:      op,
		Geo:     geo,
		U:       utils.NewMatrix(Np, NFields),
		U0:      utils.NewMatrix(Np, NFields),
		Ufpts:   utils.NewMatrix(Nfpts, NFields),
		Fr:      utils.NewMatrix(Np, NFields),
		Fs:      utils.NewMatrix(Np, NFields),
		DisFn:   utils.NewMatrix(Nfpts, NFields),
		FnCom:   utils.NewMatrix(Nfpts, NFields),
		DUr:     utils.NewMatrix(Np, NFields),
		DUs:     utils.NewMatrix(Np, NFields),
		DUx:     utils.NewMatrix(Np, NFields),
		DUy:     utils.NewMatrix(Np, NFields),
		DUfptsX: utils.NewMatrix(Nfpts, NFields),
		DUfptsY: utils.NewMatrix(Nfpts, NFields),
		DUc:     utils.NewMatrix(Nfpts, NFields),
		frF:     utils.NewMatrix(Nfpts, NFields),
		fsF:     utils.NewMatrix(Nfpts, NFields),
	}
	el.DivF = make([]utils.Matrix, nStages)
	for s := range el.DivF {
		el.DivF[s] = utils.NewMatrix(Np, NFields)
	}
	return
}

// SptCoords returns the physical location of one solution point.
func (el *Element) SptCoords(isp int) (x, y float64) {
	var (
		N1   = el.Op.N1
		i, j = isp % N1, isp / N1
		g    = el.Geo
	)
	x = g.X0 + g.Dx*(1.+el.Op.X1D[i])/2.
	y = g.Y0 + g.Dy*(1.+el.Op.X1D[j])/2.
	return
}

// InitFreeStream sets the uniform far-field state everywhere.
func (el *Element) InitFreeStream(fs *FreeStream) {
	uD := el.U.Data()
	for isp := 0; isp < el.Op.Np; isp++ {
		for n := 0; n < NFields; n++ {
			uD[n+isp*NFields] = fs.Qinf[n]
		}
	}
}

// InitFunc sets the solution from a pointwise state function.
func (el *Element) InitFunc(f func(x, y float64) [NFields]float64) {
	uD := el.U.Data()
	for isp := 0; isp < el.Op.Np; isp++ {
		x, y := el.SptCoords(isp)
		q := f(x, y)
		for n := 0; n < NFields; n++ {
			uD[n+isp*NFields] = q[n]
		}
	}
}

// SnapshotU0 captures the stage-0 solution used by the stage updates.
func (el *Element) SnapshotU0() {
	copy(el.U0.Data(), el.U.Data())
}

// ExtrapolateU fills the flux-point solution from the solution points.
func (el *Element) ExtrapolateU() {
	el.Op.ApplySptsFpts(el.U, el.Ufpts)
}

// CalcWaveSpeed records the maximum convective wavespeed |u|+c over the
// flux points.
func (el *Element) CalcWaveSpeed(fs *FreeStream) {
	var (
		uD  = el.Ufpts.Data()
		spd float64
	)
	for fpt := 0; fpt < el.Op.Nfpts; fpt++ {
		var q [NFields]float64
		copy(q[:], uD[fpt*NFields:(fpt+1)*NFields])
		if s := fs.MaxWaveSpeed(q); s > spd {
			spd = s
		}
	}
	el.WaveSpeed = spd
}

// CalcDt returns the local explicit step bound CFL*h/lambda.
func (el *Element) CalcDt(CFL float64) float64 {
	h := math.Min(el.Geo.Dx, el.Geo.Dy)
	if el.WaveSpeed <= 0 {
		return math.MaxFloat64
	}
	return CFL * h / el.WaveSpeed
}

// CalcFluxSpts fills the solution-point flux pair. On a static mesh the
// pair is the transformed flux J*(grad xi . F), which for the affine
// rectangle collapses to (Dy/2)*Fx and (Dx/2)*Fy. On a moving mesh the
// physical ALE flux is stored instead and the metric terms are applied in
// the divergence.
func (el *Element) CalcFluxSpts(fs *FreeStream) {
	var (
		uD       = el.U.Data()
		frD, fsD = el.Fr.Data(), el.Fs.Data()
		g        = el.Geo
		jrx      = g.JacDet * g.Rx
		jsy      = g.JacDet * g.Sy
	)
	for isp := 0; isp < el.Op.Np; isp++ {
		var q [NFields]float64
		copy(q[:], uD[isp*NFields:(isp+1)*NFields])
		if g.Moving {
			Fx, Fy := fs.CalcInviscidFlux(q, g.GridVel)
			for n := 0; n < NFields; n++ {
				frD[n+isp*NFields] = Fx[n]
				fsD[n+isp*NFields] = Fy[n]
			}
		} else {
			Fx, Fy := fs.CalcInviscidFlux(q, [2]float64{})
			for n := 0; n < NFields; n++ {
				frD[n+isp*NFields] = jrx * Fx[n]
				fsD[n+isp*NFields] = jsy * Fy[n]
			}
		}
	}
}

// AddViscousFluxSpts subtracts the viscous flux from the stored pair,
// using the corrected physical gradient at the solution points.
func (el *Element) AddViscousFluxSpts(fs *FreeStream) {
	var (
		uD       = el.U.Data()
		dxD, dyD = el.DUx.Data(), el.DUy.Data()
		frD, fsD = el.Fr.Data(), el.Fs.Data()
		g        = el.Geo
		jrx      = g.JacDet * g.Rx
		jsy      = g.JacDet * g.Sy
	)
	for isp := 0; isp < el.Op.Np; isp++ {
		var q, dqx, dqy [NFields]float64
		copy(q[:], uD[isp*NFields:(isp+1)*NFields])
		copy(dqx[:], dxD[isp*NFields:(isp+1)*NFields])
		copy(dqy[:], dyD[isp*NFields:(isp+1)*NFields])
		Fvx, Fvy := fs.CalcViscousFlux(q, dqx, dqy)
		if g.Moving {
			for n := 0; n < NFields; n++ {
				frD[n+isp*NFields] -= Fvx[n]
				fsD[n+isp*NFields] -= Fvy[n]
			}
		} else {
			for n := 0; n < NFields; n++ {
				frD[n+isp*NFields] -= jrx * Fvx[n]
				fsD[n+isp*NFields] -= jsy * Fvy[n]
			}
		}
	}
}

// CalcDisFn extrapolates the flux pair to the flux points and forms the
// discontinuous normal flux DisFn in the same dA-scaled units as the
// common flux, so a zero interface jump cancels exactly.
func (el *Element) CalcDisFn() {
	el.Op.ApplySptsFpts(el.Fr, el.frF)
	el.Op.ApplySptsFpts(el.Fs, el.fsF)
	var (
		frD, fsD = el.frF.Data(), el.fsF.Data()
		dfD      = el.DisFn.Data()
		g        = el.Geo
	)
	for fpt := 0; fpt < el.Op.Nfpts; fpt++ {
		f := el.Op.FptFace[fpt]
		tn := el.Op.TNorm[fpt]
		if g.Moving {
			// physical flux dotted with the physical normal, dA-scaled
			nrm := g.Norm[f]
			da := g.DA[f]
			for n := 0; n < NFields; n++ {
				dfD[n+fpt*NFields] = da * (nrm[0]*frD[n+fpt*NFields] + nrm[1]*fsD[n+fpt*NFields])
			}
		} else {
			for n := 0; n < NFields; n++ {
				dfD[n+fpt*NFields] = tn[0]*frD[n+fpt*NFields] + tn[1]*fsD[n+fpt*NFields]
			}
		}
	}
}

// CalcDivF computes the direct flux divergence into the given stage slot.
// On a static mesh the transformed pair differentiates directly; on a
// moving mesh the chain rule applies the constant metric terms to the
// physical pair and the result is rescaled into transformed units.
func (el *Element) CalcDivF(stage int) {
	if !el.Geo.Moving {
		el.Op.ApplyDivFSpts(el.Fr, el.Fs, el.DivF[stage])
		return
	}
	var (
		g   = el.Geo
		jrx = g.JacDet * g.Rx
		jsy = g.JacDet * g.Sy
	)
	// d(Fx)/dxi and d(Fy)/deta are the only nonzero metric pairings for
	// the axis-aligned rectangle
	el.Op.ApplyGradSpts(el.Fr, el.DUx, el.DUy) // DUx <- dFx/dxi (scratch reuse)
	dxD := el.DUx.Data()
	divD := el.DivF[stage].Data()
	for i := range divD {
		divD[i] = jrx * dxD[i]
	}
	el.Op.ApplyGradSpts(el.Fs, el.DUx, el.DUy)
	dyD := el.DUy.Data()
	for i := range divD {
		divD[i] += jsy * dyD[i]
	}
}

// CorrectDivF injects the normal-flux jump (common minus discontinuous)
// into the stage divergence slot.
func (el *Element) CorrectDivF(stage int) {
	var (
		dfD, cfD = el.DisFn.Data(), el.FnCom.Data()
		jump     = el.DUc.Data() // fpt-shaped scratch
	)
	for i := range jump {
		jump[i] = cfD[i] - dfD[i]
	}
	el.Op.ApplyCorrectDivF(el.DUc, el.DivF[stage])
}

// CalcGradU computes the uncorrected reference gradient, applies the
// solution-jump correction accumulated in DUc, transforms to physical
// space and extrapolates the physical gradient to the flux points.
func (el *Element) CalcGradU() {
	el.Op.ApplyGradSpts(el.U, el.DUr, el.DUs)
	el.Op.ApplyCorrectGradU(el.DUc, el.DUr, el.DUs)
	var (
		g          = el.Geo
		durD, dusD = el.DUr.Data(), el.DUs.Data()
		dxD, dyD   = el.DUx.Data(), el.DUy.Data()
	)
	for i := range durD {
		dxD[i] = g.Rx * durD[i]
		dyD[i] = g.Sy * dusD[i]
	}
	el.Op.ApplySptsFpts(el.DUx, el.DUfptsX)
	el.Op.ApplySptsFpts(el.DUy, el.DUfptsY)
}

// TimeStepA applies one intermediate stage update from the stage-0
// snapshot: U = U0 - a*dt/J * DivF[stage].
func (el *Element) TimeStepA(stage int, a, dt float64) {
	var (
		u0D  = el.U0.Data()
		uD   = el.U.Data()
		divD = el.DivF[stage].Data()
		fac  = a * dt / el.Geo.JacDet
	)
	for i := range uD {
		uD[i] = u0D[i] - fac*divD[i]
	}
}

// TimeStepB applies the final stage blend: U = U0 - dt/J * sum_s b_s*DivF[s].
func (el *Element) TimeStepB(b []float64, dt float64) {
	var (
		u0D = el.U0.Data()
		uD  = el.U.Data()
		fac = dt / el.Geo.JacDet
	)
	copy(uD, u0D)
	for s, bs := range b {
		divD := el.DivF[s].Data()
		for i := range uD {
			uD[i] -= fac * bs * divD[i]
		}
	}
}

// AccumResidual folds this element's per-field dU/dt maxima into r.
func (el *Element) AccumResidual(stage int, r *[NFields]float64) {
	var (
		divD = el.DivF[stage].Data()
		ooJ  = 1. / el.Geo.JacDet
	)
	for isp := 0; isp < el.Op.Np; isp++ {
		for n := 0; n < NFields; n++ {
			if v := math.Abs(divD[n+isp*NFields]) * ooJ; v > r[n] {
				r[n] = v
			}
		}
	}
}

// Move translates the element by the grid velocity over dt and records
// the velocity for the ALE flux terms.
func (el *Element) Move(vx, vy, dt float64) {
	el.Geo.X0 += vx * dt
	el.Geo.Y0 += vy * dt
	el.Geo.GridVel = [2]float64{vx, vy}
	el.Geo.Moving = true
}
