package FRBasis

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/flowphys/frsolve/utils"
)

// GaussLegendre returns the order-P Gauss-Legendre quadrature: P+1 nodes on
// (-1,1) and their weights, via the Golub-Welsch eigenvalue problem.
func GaussLegendre(P int) (X, W []float64) {
	var (
		N = P + 1
	)
	if P == 0 {
		return []float64{0}, []float64{2}
	}
	J := mat.NewSymDense(N, nil)
	for i := 1; i < N; i++ {
		fi := float64(i)
		J.SetSym(i-1, i, fi/math.Sqrt(4*fi*fi-1))
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(J, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)
	V := mat.NewDense(N, N, nil)
	eig.VectorsTo(V)
	W = make([]float64, N)
	for j := 0; j < N; j++ {
		v0 := V.At(0, j)
		W[j] = 2 * v0 * v0
	}
	return
}

// LegendreAndDeriv evaluates the unnormalized Legendre polynomials L_0..L_P
// and their derivatives at x, using the three-term recurrences.
func LegendreAndDeriv(x float64, P int) (L, Lp []float64) {
	L = make([]float64, P+1)
	Lp = make([]float64, P+1)
	L[0] = 1
	if P == 0 {
		return
	}
	L[1], Lp[1] = x, 1
	for n := 1; n < P; n++ {
		fn := float64(n)
		L[n+1] = ((2*fn+1)*x*L[n] - fn*L[n-1]) / (fn + 1)
		Lp[n+1] = Lp[n-1] + (2*fn+1)*L[n]
	}
	return
}

// legendreNorm is the L2 normalization factor turning L_n into an
// orthonormal basis on (-1,1).
func legendreNorm(n int) float64 {
	return math.Sqrt((2*float64(n) + 1) / 2)
}

// Vandermonde builds the orthonormal-Legendre Vandermonde at the given
// points: V[i][n] = Lhat_n(x_i).
func Vandermonde(X []float64) (V utils.Matrix) {
	var (
		N = len(X)
	)
	V = utils.NewMatrix(N, N)
	for i, x := range X {
		L, _ := LegendreAndDeriv(x, N-1)
		for n := 0; n < N; n++ {
			V.Set(i, n, L[n]*legendreNorm(n))
		}
	}
	return
}

// GradVandermonde builds Vr[i][n] = Lhat'_n(x_i).
func GradVandermonde(X []float64) (Vr utils.Matrix) {
	var (
		N = len(X)
	)
	Vr = utils.NewMatrix(N, N)
	for i, x := range X {
		_, Lp := LegendreAndDeriv(x, N-1)
		for n := 0; n < N; n++ {
			Vr.Set(i, n, Lp[n]*legendreNorm(n))
		}
	}
	return
}

// DMatrix is the nodal differentiation matrix D = Vr V^-1 at the points X.
func DMatrix(X []float64) (D utils.Matrix) {
	var (
		V  = Vandermonde(X)
		Vr = GradVandermonde(X)
	)
	Vinv, err := V.Inverse()
	if err != nil {
		panic(err)
	}
	D = Vr.Mul(Vinv)
	return
}

// LagrangeAt evaluates the Lagrange cardinal functions of the node set X at
// the point xp: l_j(xp), j = 0..len(X)-1.
func LagrangeAt(X []float64, xp float64) (l []float64) {
	var (
		N = len(X)
	)
	l = make([]float64, N)
	for j := 0; j < N; j++ {
		v := 1.
		for m := 0; m < N; m++ {
			if m == j {
				continue
			}
			v *= (xp - X[m]) / (X[j] - X[m])
		}
		l[j] = v
	}
	return
}
