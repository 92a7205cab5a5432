package FR2D

import "math"

/*
	IsentropicVortexIC returns the pointwise state of an isentropic vortex
	of strength Beta centered at (X0, Y0), superposed on the freestream.
	The vortex is an exact solution of the Euler equations advecting with
	the freestream, so it doubles as an accuracy benchmark.
*/
func (fs *FreeStream) IsentropicVortexIC(X0, Y0, Beta float64) func(x, y float64) [NFields]float64 {
	var (
		Gamma = fs.Gamma
		GM1   = Gamma - 1.
		uinf  = fs.Qinf[1] / fs.Qinf[0]
		vinf  = fs.Qinf[2] / fs.Qinf[0]
	)
	return func(x, y float64) [NFields]float64 {
		var (
			dx, dy = x - X0, y - Y0
			r2     = dx*dx + dy*dy
			expf   = math.Exp(0.5 * (1. - r2))
			du     = -Beta / (2. * math.Pi) * expf * dy
			dv     = Beta / (2. * math.Pi) * expf * dx
			dT     = -GM1 * Beta * Beta / (8. * Gamma * math.Pi * math.Pi) * expf * expf
		)
		T := 1. + dT
		rho := math.Pow(T, 1./GM1)
		p := math.Pow(T, Gamma/GM1) / Gamma
		u := uinf + du
		v := vinf + dv
		return [NFields]float64{
			rho,
			rho * u,
			rho * v,
			p/GM1 + 0.5*rho*(u*u+v*v),
		}
	}
}
