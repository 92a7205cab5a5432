package FR2D

import (
	"math"
)

// NFields is the number of conserved variables: [rho, rhoU, rhoV, E].
const NFields = 4

// FreeStream carries the non-dimensional far-field state and the gas
// properties shared by every flux evaluation.
type FreeStream struct {
	Gamma            float64
	Qinf             [NFields]float64
	Pinf, QQinf, Cinf float64
	Alpha            float64
	Minf             float64
	Mu, Prandtl      float64
}

func NewFreeStream(Minf, Gamma, Alpha float64) (fs *FreeStream) {
	var (
		ooggm1 = 1. / (Gamma * (Gamma - 1.))
		uinf   = Minf * math.Cos(Alpha*math.Pi/180.)
		vinf   = Minf * math.Sin(Alpha*math.Pi/180.)
	)
	fs = &FreeStream{
		Gamma: Gamma,
		Qinf:  [NFields]float64{1, uinf, vinf, ooggm1 + 0.5*Minf*Minf},
		Alpha: Alpha,
		Minf:  Minf,
	}
	fs.Pinf = fs.GetFlowFunctionQQ(fs.Qinf, StaticPressure)
	fs.QQinf = fs.GetFlowFunctionQQ(fs.Qinf, DynamicPressure)
	fs.Cinf = fs.GetFlowFunctionQQ(fs.Qinf, SoundSpeed)
	return
}

type FlowFunction uint8

const (
	Density FlowFunction = iota
	XMomentum
	YMomentum
	Energy
	Mach
	StaticPressure
	DynamicPressure
	PressureCoefficient
	SoundSpeed
	Velocity
	XVelocity
	YVelocity
	Enthalpy
	Entropy
)

func (pn FlowFunction) String() string {
	strings := []string{
		"Density", "XMomentum", "YMomentum", "Energy", "Mach",
		"Static Pressure", "Dynamic Pressure", "Pressure Coefficient",
		"Sound Speed", "Velocity", "X Velocity", "Y Velocity",
		"Enthalpy", "Entropy",
	}
	if int(pn) < len(strings) {
		return strings[pn]
	}
	return "Unknown"
}

func (fs *FreeStream) GetFlowFunctionQQ(Q [NFields]float64, pf FlowFunction) (f float64) {
	var (
		Gamma = fs.Gamma
		GM1   = Gamma - 1.
		q, qq = Q[1] / Q[0], Q[2] / Q[0]
		oorho = 1. / Q[0]
	)
	switch pf {
	case Density:
		f = Q[0]
	case XMomentum:
		f = Q[1]
	case YMomentum:
		f = Q[2]
	case Energy:
		f = Q[3]
	case StaticPressure:
		f = GM1 * (Q[3] - 0.5*(Q[1]*q+Q[2]*qq))
	case DynamicPressure:
		f = 0.5 * (Q[1]*q + Q[2]*qq)
	case PressureCoefficient:
		p := fs.GetFlowFunctionQQ(Q, StaticPressure)
		f = (p - fs.Pinf) / fs.QQinf
	case SoundSpeed:
		p := fs.GetFlowFunctionQQ(Q, StaticPressure)
		f = math.Sqrt(math.Abs(Gamma * p * oorho))
	case Velocity:
		f = math.Sqrt(q*q + qq*qq)
	case XVelocity:
		f = q
	case YVelocity:
		f = qq
	case Mach:
		f = fs.GetFlowFunctionQQ(Q, Velocity) / fs.GetFlowFunctionQQ(Q, SoundSpeed)
	case Enthalpy:
		p := fs.GetFlowFunctionQQ(Q, StaticPressure)
		f = (Q[3] + p) * oorho
	case Entropy:
		p := fs.GetFlowFunctionQQ(Q, StaticPressure)
		f = p / math.Pow(Q[0], Gamma)
	}
	return
}

// Pressure returns the static pressure of one conserved state.
func (fs *FreeStream) Pressure(Q [NFields]float64) float64 {
	return (fs.Gamma - 1.) * (Q[3] - 0.5*(Q[1]*Q[1]+Q[2]*Q[2])/Q[0])
}

// MaxWaveSpeed returns |u|+c for one conserved state.
func (fs *FreeStream) MaxWaveSpeed(Q [NFields]float64) float64 {
	var (
		u = Q[1] / Q[0]
		v = Q[2] / Q[0]
		c = fs.GetFlowFunctionQQ(Q, SoundSpeed)
	)
	return math.Sqrt(u*u+v*v) + c
}

// CalcInviscidFlux computes the compressible Euler flux pair for one
// conserved state Q, optionally shifted by the grid velocity vg (ALE form
// F - vg Q for a moving frame; pass a zero vg for a static mesh).
func (fs *FreeStream) CalcInviscidFlux(Q [NFields]float64, vg [2]float64) (Fx, Fy [NFields]float64) {
	var (
		oorho = 1. / Q[0]
		u     = Q[1] * oorho
		v     = Q[2] * oorho
		p     = fs.Pressure(Q)
	)
	Fx = [NFields]float64{
		Q[1],
		Q[1]*u + p,
		Q[2] * u,
		u * (Q[3] + p),
	}
	Fy = [NFields]float64{
		Q[2],
		Q[1] * v,
		Q[2]*v + p,
		v * (Q[3] + p),
	}
	if vg[0] != 0 || vg[1] != 0 {
		for n := 0; n < NFields; n++ {
			Fx[n] -= vg[0] * Q[n]
			Fy[n] -= vg[1] * Q[n]
		}
	}
	return
}

/*
	CalcViscousFlux computes the Navier-Stokes viscous flux pair from the
	conserved state and its physical gradient. The stress tensor uses a
	constant dynamic viscosity with the Stokes hypothesis, and the heat
	flux uses a constant Prandtl number:
		k = Mu * Gamma / (Prandtl * (Gamma-1))
	The returned pair carries the sign convention F_total = F_inv - F_visc.
*/
func (fs *FreeStream) CalcViscousFlux(Q [NFields]float64, dQdx, dQdy [NFields]float64) (Fx, Fy [NFields]float64) {
	var (
		oorho = 1. / Q[0]
		u     = Q[1] * oorho
		v     = Q[2] * oorho
		Mu    = fs.Mu
		kCond = Mu * fs.Gamma / (fs.Prandtl * (fs.Gamma - 1.))
	)
	// velocity gradients from conserved-variable gradients
	dudx := oorho * (dQdx[1] - u*dQdx[0])
	dudy := oorho * (dQdy[1] - u*dQdy[0])
	dvdx := oorho * (dQdx[2] - v*dQdx[0])
	dvdy := oorho * (dQdy[2] - v*dQdy[0])

	div := dudx + dvdy
	tauxx := 2. * Mu * (dudx - div/3.)
	tauyy := 2. * Mu * (dvdy - div/3.)
	tauxy := Mu * (dudy + dvdx)

	// internal energy e = (E - 0.5 rho(u^2+v^2))/rho; temperature gradient
	// in non-dimensional form is proportional to grad(e)*(gamma-1)*gamma
	ke := 0.5 * (u*u + v*v)
	e := Q[3]*oorho - ke
	dedx := oorho*(dQdx[3]-e*dQdx[0]) - ke*oorho*dQdx[0] - (u*dudx + v*dvdx)
	dedy := oorho*(dQdy[3]-e*dQdy[0]) - ke*oorho*dQdy[0] - (u*dudy + v*dvdy)
	dTdx := (fs.Gamma - 1.) * dedx
	dTdy := (fs.Gamma - 1.) * dedy

	Fx = [NFields]float64{
		0,
		tauxx,
		tauxy,
		u*tauxx + v*tauxy + kCond*dTdx,
	}
	Fy = [NFields]float64{
		0,
		tauxy,
		tauyy,
		u*tauxy + v*tauyy + kCond*dTdy,
	}
	return
}
