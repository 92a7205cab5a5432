package FR2D

import (
	"fmt"
	"math"
	"strings"
)

type FluxType uint8

const (
	FLUX_Average FluxType = iota
	FLUX_LaxFriedrichs
	FLUX_Roe
)

var (
	fluxNames = map[string]FluxType{
		"average": FLUX_Average,
		"lax":     FLUX_LaxFriedrichs,
		"roe":     FLUX_Roe,
	}
	FluxNames = []string{"average", "lax", "roe"}
)

func (ft FluxType) String() string {
	return FluxNames[ft]
}

func NewFluxType(label string) (ft FluxType, err error) {
	ft, ok := fluxNames[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		err = fmt.Errorf("unable to use flux named [%s]", label)
	}
	return
}

/*
	CalcCommonFlux computes the single-valued normal flux at one interface
	point from the left and right conserved states. norm is the unit
	outward normal of the left side, vg the grid velocity at the point
	(zero on a static mesh). The ALE convective speed is (u.n - vg.n)
	throughout, so a mesh moving with the flow sees zero convective
	upwinding.
*/
func (fs *FreeStream) CalcCommonFlux(ft FluxType, QL, QR [NFields]float64, norm, vg [2]float64) (Fn [NFields]float64) {
	switch ft {
	case FLUX_Average:
		Fn = fs.averageFlux(QL, QR, norm, vg)
	case FLUX_LaxFriedrichs:
		Fn = fs.laxFlux(QL, QR, norm, vg)
	case FLUX_Roe:
		Fn = fs.roeFlux(QL, QR, norm, vg)
	}
	return
}

func (fs *FreeStream) normalFlux(Q [NFields]float64, norm, vg [2]float64) (Fn [NFields]float64) {
	Fx, Fy := fs.CalcInviscidFlux(Q, vg)
	for n := 0; n < NFields; n++ {
		Fn[n] = norm[0]*Fx[n] + norm[1]*Fy[n]
	}
	return
}

func (fs *FreeStream) averageFlux(QL, QR [NFields]float64, norm, vg [2]float64) (Fn [NFields]float64) {
	FnL := fs.normalFlux(QL, norm, vg)
	FnR := fs.normalFlux(QR, norm, vg)
	for n := 0; n < NFields; n++ {
		Fn[n] = 0.5 * (FnL[n] + FnR[n])
	}
	return
}

func (fs *FreeStream) laxFlux(QL, QR [NFields]float64, norm, vg [2]float64) (Fn [NFields]float64) {
	var (
		vgn    = vg[0]*norm[0] + vg[1]*norm[1]
		unL    = (QL[1]*norm[0] + QL[2]*norm[1]) / QL[0]
		unR    = (QR[1]*norm[0] + QR[2]*norm[1]) / QR[0]
		cL     = fs.GetFlowFunctionQQ(QL, SoundSpeed)
		cR     = fs.GetFlowFunctionQQ(QR, SoundSpeed)
		maxvel = math.Max(math.Abs(unL-vgn)+cL, math.Abs(unR-vgn)+cR)
	)
	Fn = fs.averageFlux(QL, QR, norm, vg)
	for n := 0; n < NFields; n++ {
		Fn[n] -= 0.5 * maxvel * (QR[n] - QL[n])
	}
	return
}

/*
	roeFlux implements the Roe approximate Riemann solver in the face
	normal frame with an entropy fix on the acoustic waves. The grid
	velocity shifts every convective eigenvalue by vg.n, which reduces to
	the classical static form when vg is zero.
*/
func (fs *FreeStream) roeFlux(QL, QR [NFields]float64, norm, vg [2]float64) (Fn [NFields]float64) {
	var (
		Gamma  = fs.Gamma
		GM1    = Gamma - 1.
		vgn    = vg[0]*norm[0] + vg[1]*norm[1]
		nx, ny = norm[0], norm[1]
	)
	rhoL, uL, vL := QL[0], QL[1]/QL[0], QL[2]/QL[0]
	rhoR, uR, vR := QR[0], QR[1]/QR[0], QR[2]/QR[0]
	pL := fs.Pressure(QL)
	pR := fs.Pressure(QR)
	hL := (QL[3] + pL) / rhoL
	hR := (QR[3] + pR) / rhoR

	// Roe averages
	srL, srR := math.Sqrt(rhoL), math.Sqrt(rhoR)
	oosr := 1. / (srL + srR)
	u := (srL*uL + srR*uR) * oosr
	v := (srL*vL + srR*vR) * oosr
	h := (srL*hL + srR*hR) * oosr
	c2 := GM1 * (h - 0.5*(u*u+v*v))
	c := math.Sqrt(math.Max(c2, 1.e-14))
	un := u*nx + v*ny

	rho := srL * srR // Roe-averaged density
	drho := rhoR - rhoL
	dp := pR - pL
	dun := (uR*nx + vR*ny) - (uL*nx + vL*ny)
	dut := (-uR*ny + vR*nx) - (-uL*ny + vL*nx)

	// wave strengths
	alpha1 := (dp - rho*c*dun) / (2 * c2)
	alpha2 := drho - dp/c2
	alpha3 := rho * dut
	alpha4 := (dp + rho*c*dun) / (2 * c2)

	// eigenvalues with ALE shift and Harten entropy fix on the acoustics
	lam1 := entropyFix(math.Abs(un-c-vgn), c)
	lam2 := math.Abs(un - vgn)
	lam4 := entropyFix(math.Abs(un+c-vgn), c)

	FnL := fs.normalFlux(QL, norm, vg)
	FnR := fs.normalFlux(QR, norm, vg)

	// eigenvectors in conserved variables
	ut := -u*ny + v*nx
	diss := [NFields]float64{}
	addWave := func(lam, alpha float64, r [NFields]float64) {
		for n := 0; n < NFields; n++ {
			diss[n] += lam * alpha * r[n]
		}
	}
	addWave(lam1, alpha1, [NFields]float64{1, u - c*nx, v - c*ny, h - c*un})
	addWave(lam2, alpha2, [NFields]float64{1, u, v, 0.5 * (u*u + v*v)})
	addWave(lam2, alpha3, [NFields]float64{0, -ny, nx, ut})
	addWave(lam4, alpha4, [NFields]float64{1, u + c*nx, v + c*ny, h + c*un})

	for n := 0; n < NFields; n++ {
		Fn[n] = 0.5*(FnL[n]+FnR[n]) - 0.5*diss[n]
	}
	return
}

// entropyFix smooths acoustic eigenvalues near zero to avoid expansion
// shocks (Harten's fix with delta = c/10).
func entropyFix(lam, c float64) float64 {
	delta := 0.1 * c
	if lam < delta {
		return (lam*lam + delta*delta) / (2 * delta)
	}
	return lam
}
