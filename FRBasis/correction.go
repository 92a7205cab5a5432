package FRBasis

// CorrectionFunctionDeriv evaluates the derivatives of the left and right
// flux-reconstruction correction functions at the 1D points X, for
// polynomial order P. The correction functions are the Radau polynomials
//
//	gL(x) = (-1)^P / 2 * (L_P(x) - L_{P+1}(x))
//	gR(x) = 1/2 * (L_P(x) + L_{P+1}(x))
//
// which satisfy gL(-1) = 1, gL(1) = 0 and gR(-1) = 0, gR(1) = 1. Blending
// face-point flux jumps through these recovers the nodal DG scheme. When the
// jump vanishes the injected correction vanishes with it, preserving the
// direct-divergence residual.
func CorrectionFunctionDeriv(P int, X []float64) (gl, gr []float64) {
	var (
		sign = 1.
	)
	if P%2 == 1 {
		sign = -1.
	}
	gl = make([]float64, len(X))
	gr = make([]float64, len(X))
	for i, x := range X {
		_, Lp := LegendreAndDeriv(x, P+1)
		gl[i] = 0.5 * sign * (Lp[P] - Lp[P+1])
		gr[i] = 0.5 * (Lp[P] + Lp[P+1])
	}
	return
}
