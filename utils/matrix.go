package utils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a thin wrapper over gonum's dense matrix with the small set of
// chainable helpers the solver needs. Raw data is row-major: ind = j + i*nc.
type Matrix struct {
	M *mat.Dense
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v",
				nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{m}
	return
}

func (m Matrix) Dims() (r, c int)    { return m.M.Dims() }
func (m Matrix) At(i, j int) float64 { return m.M.At(i, j) }

func (m Matrix) Set(i, j int, val float64) Matrix { // Changes receiver
	m.M.Set(i, j, val)
	return m
}

func (m Matrix) Data() []float64 {
	return m.M.RawMatrix().Data
}

func (m Matrix) Copy() (R Matrix) { // Does not change receiver
	var (
		nr, nc = m.Dims()
		data   = m.Data()
		dataR  = make([]float64, nr*nc)
	)
	copy(dataR, data)
	R = NewMatrix(nr, nc, dataR)
	return
}

func (m Matrix) CopyInto(R Matrix) Matrix { // Changes R
	copy(R.Data(), m.Data())
	return R
}

// Mul computes m x A. When RO is given its memory is reused for the result,
// otherwise a new matrix is allocated.
func (m Matrix) Mul(A Matrix, RO ...Matrix) (R Matrix) {
	var (
		nrM, _ = m.M.Dims()
		_, ncA = A.M.Dims()
	)
	if len(RO) != 0 {
		R = RO[0]
	} else {
		R = NewMatrix(nrM, ncA)
	}
	R.M.Mul(m.M, A.M)
	return R
}

func (m Matrix) Inverse() (R Matrix, err error) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	err = R.M.Inverse(m.M)
	return
}

func (m Matrix) Max() (max float64) {
	for i, val := range m.Data() {
		if i == 0 || val > max {
			max = val
		}
	}
	return
}

func (m Matrix) MaxAbs() (max float64) {
	for _, val := range m.Data() {
		if val < 0 {
			val = -val
		}
		if val > max {
			max = val
		}
	}
	return
}
