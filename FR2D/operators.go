package FR2D

import (
	"fmt"
	"math"

	"github.com/james-bowman/sparse"

	"github.com/flowphys/frsolve/FRBasis"
	"github.com/flowphys/frsolve/utils"
)

type ElemShape uint8

const (
	Quad ElemShape = iota
	Tri
	Hex
)

func (s ElemShape) String() string {
	switch s {
	case Quad:
		return "quad"
	case Tri:
		return "tri"
	case Hex:
		return "hex"
	}
	return "unknown"
}

// OperKey identifies one set of shared operators: every element of the same
// shape and polynomial order uses the same matrices.
type OperKey struct {
	Shape ElemShape
	Order int
}

/*
	Operators are the precomputed linear maps between the point sets of one
	element type:
		- solution points: (P+1)^2 tensor Gauss-Legendre points, index
		  isp = i + j*N1 with i the xi index and j the eta index
		- flux points: N1 points per face, index f*N1 + k, face numbering
		  0 = eta-1, 1 = xi+1, 2 = eta+1, 3 = xi-1; face point k sits at the
		  k-th 1D solution point abscissa along the face
	All matrices are built once at setup and never mutated afterwards, so
	they are shared read-only across the parallel element loops.
*/
type Operators struct {
	Shape ElemShape
	P     int // polynomial order
	N1    int // P+1
	Np    int // solution points per element
	Nfpts int // flux points per element

	X1D, W1D []float64 // 1D Gauss-Legendre points and weights

	D1         utils.Matrix // 1D differentiation matrix at the solution points
	InterpFpts utils.Matrix // Nfpts x Np extrapolation from solution to flux points
	CorrDiv    *sparse.CSR  // Np x Nfpts divergence correction (line-sparse)
	GL, GR     []float64    // correction function derivative at the 1D points
	WSpts      []float64    // tensor quadrature weight per solution point
	Clipper    utils.Matrix // Np x Np projection dropping the top modes (shock sensor)

	TNorm   [][2]float64 // reference outward normal per flux point
	FptFace []int        // face of each flux point
	FptIdx  []int        // 1D index of each flux point along its face
}

// OperatorCache maps (shape, order) to the shared operator set. Built
// serially before the first residual evaluation; Get never builds.
type OperatorCache struct {
	opers map[OperKey]*Operators
}

func NewOperatorCache() *OperatorCache {
	return &OperatorCache{opers: make(map[OperKey]*Operators)}
}

// Build constructs the operators for one (shape, order) pair. An unsupported
// combination is a fatal configuration error.
func (oc *OperatorCache) Build(shape ElemShape, order int) *Operators {
	key := OperKey{Shape: shape, Order: order}
	if op, ok := oc.opers[key]; ok {
		return op
	}
	if shape != Quad || order < 0 {
		panic(fmt.Errorf("FR operators not supported for shape [%s], order %d", shape, order))
	}
	op := newQuadOperators(order)
	oc.opers[key] = op
	return op
}

// Get returns the operators for a pair built during setup.
func (oc *OperatorCache) Get(shape ElemShape, order int) *Operators {
	op, ok := oc.opers[OperKey{Shape: shape, Order: order}]
	if !ok {
		panic(fmt.Errorf("FR operators for shape [%s], order %d were not built at setup", shape, order))
	}
	return op
}

func newQuadOperators(P int) (op *Operators) {
	var (
		N1    = P + 1
		Np    = N1 * N1
		Nfpts = 4 * N1
	)
	X, W := FRBasis.GaussLegendre(P)
	op = &Operators{
		Shape:   Quad,
		P:       P,
		N1:      N1,
		Np:      Np,
		Nfpts:   Nfpts,
		X1D:     X,
		W1D:     W,
		D1:      FRBasis.DMatrix(X),
		WSpts:   make([]float64, Np),
		TNorm:   make([][2]float64, Nfpts),
		FptFace: make([]int, Nfpts),
		FptIdx:  make([]int, Nfpts),
	}
	for j := 0; j < N1; j++ {
		for i := 0; i < N1; i++ {
			op.WSpts[i+j*N1] = W[i] * W[j]
		}
	}
	op.buildFptLayout()
	op.buildInterpFpts()
	op.buildCorrection()
	op.buildClipper()
	return
}

var quadRefNormals = [4][2]float64{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

func (op *Operators) buildFptLayout() {
	for f := 0; f < 4; f++ {
		for k := 0; k < op.N1; k++ {
			fpt := f*op.N1 + k
			op.FptFace[fpt] = f
			op.FptIdx[fpt] = k
			op.TNorm[fpt] = quadRefNormals[f]
		}
	}
}

func (op *Operators) buildInterpFpts() {
	var (
		N1  = op.N1
		lm1 = FRBasis.LagrangeAt(op.X1D, -1)
		lp1 = FRBasis.LagrangeAt(op.X1D, 1)
	)
	op.InterpFpts = utils.NewMatrix(op.Nfpts, op.Np)
	for fpt := 0; fpt < op.Nfpts; fpt++ {
		f, k := op.FptFace[fpt], op.FptIdx[fpt]
		for j := 0; j < N1; j++ {
			for i := 0; i < N1; i++ {
				isp := i + j*N1
				var v float64
				switch f {
				case 0: // eta = -1, runs along xi
					if i == k {
						v = lm1[j]
					}
				case 1: // xi = +1, runs along eta
					if j == k {
						v = lp1[i]
					}
				case 2: // eta = +1
					if i == k {
						v = lp1[j]
					}
				case 3: // xi = -1
					if j == k {
						v = lm1[i]
					}
				}
				if v != 0 {
					op.InterpFpts.Set(fpt, isp, v)
				}
			}
		}
	}
}

/*
	The divergence correction blends the outward-normal flux jump at each
	flux point through the Radau correction function derivative along the
	line of solution points normal to that face. The jump is supplied in
	outward-normal terms, so faces whose outward normal opposes the
	coordinate direction (faces 0 and 3) carry a sign flip converting the
	jump back to coordinate orientation.
*/
func (op *Operators) buildCorrection() {
	var (
		N1 = op.N1
	)
	op.GL, op.GR = FRBasis.CorrectionFunctionDeriv(op.P, op.X1D)
	dok := sparse.NewDOK(op.Np, op.Nfpts)
	for fpt := 0; fpt < op.Nfpts; fpt++ {
		f, k := op.FptFace[fpt], op.FptIdx[fpt]
		for m := 0; m < N1; m++ {
			var isp int
			var v float64
			switch f {
			case 0:
				isp = k + m*N1
				v = -op.GL[m]
			case 1:
				isp = m + k*N1
				v = op.GR[m]
			case 2:
				isp = k + m*N1
				v = op.GR[m]
			case 3:
				isp = m + k*N1
				v = -op.GL[m]
			}
			if v != 0 {
				dok.Set(isp, fpt, v)
			}
		}
	}
	op.CorrDiv = dok.ToCSR()
}

// buildClipper forms the tensor projection keeping only modes below the top
// 1D mode in each direction. U minus the clipped field isolates the highest
// modal content, the smoothness measure used by the shock sensor.
func (op *Operators) buildClipper() {
	var (
		N1 = op.N1
		V  = FRBasis.Vandermonde(op.X1D)
	)
	Vinv, err := V.Inverse()
	if err != nil {
		panic(err)
	}
	// C1 = V diag(1,...,1,0) Vinv clips the top 1D mode
	C1 := utils.NewMatrix(N1, N1)
	for i := 0; i < N1; i++ {
		for j := 0; j < N1; j++ {
			var v float64
			for n := 0; n < N1-1; n++ {
				v += V.At(i, n) * Vinv.At(n, j)
			}
			C1.Set(i, j, v)
		}
	}
	op.Clipper = utils.NewMatrix(op.Np, op.Np)
	for j := 0; j < N1; j++ {
		for i := 0; i < N1; i++ {
			for l := 0; l < N1; l++ {
				for m := 0; m < N1; m++ {
					op.Clipper.Set(i+j*N1, m+l*N1, C1.At(i, m)*C1.At(j, l))
				}
			}
		}
	}
}

// ApplySptsFpts extrapolates solution-point values to the flux points.
func (op *Operators) ApplySptsFpts(U, Ufpts utils.Matrix) {
	op.InterpFpts.Mul(U, Ufpts)
}

// ApplyGradSpts computes the reference-space gradient of U at the solution
// points.
func (op *Operators) ApplyGradSpts(U, dUr, dUs utils.Matrix) {
	var (
		N1           = op.N1
		_, nf        = U.Dims()
		d1           = op.D1.Data()
		uD           = U.Data()
		durD, dusD   = dUr.Data(), dUs.Data()
		lineR, lineS float64
	)
	for j := 0; j < N1; j++ {
		for i := 0; i < N1; i++ {
			isp := i + j*N1
			for n := 0; n < nf; n++ {
				lineR, lineS = 0, 0
				for m := 0; m < N1; m++ {
					lineR += d1[m+i*N1] * uD[n+(m+j*N1)*nf]
					lineS += d1[m+j*N1] * uD[n+(i+m*N1)*nf]
				}
				durD[n+isp*nf] = lineR
				dusD[n+isp*nf] = lineS
			}
		}
	}
}

// ApplyDivFSpts computes the direct divergence of the transformed flux pair
// (Fr, Fs) at the solution points.
func (op *Operators) ApplyDivFSpts(Fr, Fs, divF utils.Matrix) {
	var (
		N1         = op.N1
		_, nf      = Fr.Dims()
		d1         = op.D1.Data()
		frD, fsD   = Fr.Data(), Fs.Data()
		divD       = divF.Data()
		sumR, sumS float64
	)
	for j := 0; j < N1; j++ {
		for i := 0; i < N1; i++ {
			isp := i + j*N1
			for n := 0; n < nf; n++ {
				sumR, sumS = 0, 0
				for m := 0; m < N1; m++ {
					sumR += d1[m+i*N1] * frD[n+(m+j*N1)*nf]
					sumS += d1[m+j*N1] * fsD[n+(i+m*N1)*nf]
				}
				divD[n+isp*nf] = sumR + sumS
			}
		}
	}
}

// ApplyCorrectDivF injects the flux-point normal-flux jump dFn into the
// divergence field through the correction basis. A zero jump injects
// exactly zero.
func (op *Operators) ApplyCorrectDivF(dFn, divF utils.Matrix) {
	var (
		_, nf = dFn.Dims()
		dfD   = dFn.Data()
		divD  = divF.Data()
	)
	op.CorrDiv.DoNonZero(func(isp, fpt int, v float64) {
		for n := 0; n < nf; n++ {
			divD[n+isp*nf] += v * dfD[n+fpt*nf]
		}
	})
}

// ApplyCorrectGradU adds the face-jump correction dUc (common minus local
// solution at the flux points) into the reference-space gradient. Solution
// jumps carry no normal orientation, so no sign flip appears here.
func (op *Operators) ApplyCorrectGradU(dUc, dUr, dUs utils.Matrix) {
	var (
		N1         = op.N1
		_, nf      = dUc.Dims()
		ducD       = dUc.Data()
		durD, dusD = dUr.Data(), dUs.Data()
	)
	for fpt := 0; fpt < op.Nfpts; fpt++ {
		f, k := op.FptFace[fpt], op.FptIdx[fpt]
		for m := 0; m < N1; m++ {
			var isp int
			var g float64
			switch f {
			case 0:
				isp, g = k+m*N1, op.GL[m]
			case 1:
				isp, g = m+k*N1, op.GR[m]
			case 2:
				isp, g = k+m*N1, op.GR[m]
			case 3:
				isp, g = m+k*N1, op.GL[m]
			}
			for n := 0; n < nf; n++ {
				switch f {
				case 0, 2:
					dusD[n+isp*nf] += g * ducD[n+fpt*nf]
				case 1, 3:
					durD[n+isp*nf] += g * ducD[n+fpt*nf]
				}
			}
		}
	}
}

// CalcAvgU computes the Jacobian-weighted element average of U.
func (op *Operators) CalcAvgU(U utils.Matrix, detJac float64, Uavg []float64) {
	var (
		_, nf = U.Dims()
		uD    = U.Data()
		wsum  float64
	)
	for n := 0; n < nf; n++ {
		Uavg[n] = 0
	}
	for isp := 0; isp < op.Np; isp++ {
		w := op.WSpts[isp] * detJac
		wsum += w
		for n := 0; n < nf; n++ {
			Uavg[n] += w * uD[n+isp*nf]
		}
	}
	for n := 0; n < nf; n++ {
		Uavg[n] /= wsum
	}
}

// ShockSensor returns the log10 modal-energy ratio of the top modes of the
// density field, the smoothness indicator used by the shock-capture pass.
func (op *Operators) ShockSensor(U utils.Matrix) (sigma float64) {
	var (
		_, nf    = U.Dims()
		uD       = U.Data()
		clipD    = op.Clipper.Data()
		num, den float64
	)
	for isp := 0; isp < op.Np; isp++ {
		var clipped float64
		for m := 0; m < op.Np; m++ {
			clipped += clipD[m+isp*op.Np] * uD[0+m*nf]
		}
		rho := uD[0+isp*nf]
		d := rho - clipped
		w := op.WSpts[isp]
		num += w * d * d
		den += w * rho * rho
	}
	if den < 1.e-300 {
		return math.Inf(-1)
	}
	return math.Log10(num/den + 1.e-16)
}
