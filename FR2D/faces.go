package FR2D

import (
	"github.com/flowphys/frsolve/mesh"
)

/*
	Face couplers produce the single-valued interface data shared by the
	two sides of each face: the common solution (for the viscous gradient
	correction) and the common normal flux. Every coupler writes into the
	DUc and FnCom storage of its adjacent element(s), in each element's
	own outward-normal orientation.

	The Cartesian mesh orders face points along the coordinate axes, so
	point k of the left face always matches point k of the right face.
*/
type FaceCoupler interface {
	ComputeCommonU()
	ComputeCommonFlux(fs *FreeStream, ft FluxType, viscous bool)
}

type InteriorFace struct {
	L, R   *Element
	FL, FR int
}

func (f *InteriorFace) ComputeCommonU() {
	var (
		N1       = f.L.Op.N1
		uL, uR   = f.L.Ufpts.Data(), f.R.Ufpts.Data()
		dcL, dcR = f.L.DUc.Data(), f.R.DUc.Data()
	)
	for k := 0; k < N1; k++ {
		pL := (f.FL*N1 + k) * NFields
		pR := (f.FR*N1 + k) * NFields
		for n := 0; n < NFields; n++ {
			uc := 0.5 * (uL[pL+n] + uR[pR+n])
			dcL[pL+n] = uc - uL[pL+n]
			dcR[pR+n] = uc - uR[pR+n]
		}
	}
}

func (f *InteriorFace) ComputeCommonFlux(fs *FreeStream, ft FluxType, viscous bool) {
	var (
		N1       = f.L.Op.N1
		uL, uR   = f.L.Ufpts.Data(), f.R.Ufpts.Data()
		fcL, fcR = f.L.FnCom.Data(), f.R.FnCom.Data()
		nrm      = f.L.Geo.Norm[f.FL]
		da       = f.L.Geo.DA[f.FL]
		vg       = f.L.Geo.GridVel
	)
	for k := 0; k < N1; k++ {
		fptL := f.FL*N1 + k
		fptR := f.FR*N1 + k
		var QL, QR [NFields]float64
		copy(QL[:], uL[fptL*NFields:(fptL+1)*NFields])
		copy(QR[:], uR[fptR*NFields:(fptR+1)*NFields])
		Fn := fs.CalcCommonFlux(ft, QL, QR, nrm, vg)
		if viscous {
			addViscCommon(fs, f.L, f.R, fptL, fptR, QL, QR, nrm, &Fn)
		}
		for n := 0; n < NFields; n++ {
			fcL[n+fptL*NFields] = da * Fn[n]
			fcR[n+fptR*NFields] = -da * Fn[n]
		}
	}
}

// addViscCommon subtracts the centrally averaged viscous normal flux of
// the two sides from Fn, using the corrected gradients at the flux points.
func addViscCommon(fs *FreeStream, eL, eR *Element, fptL, fptR int, QL, QR [NFields]float64, nrm [2]float64, Fn *[NFields]float64) {
	var dqxL, dqyL, dqxR, dqyR [NFields]float64
	copy(dqxL[:], eL.DUfptsX.Data()[fptL*NFields:(fptL+1)*NFields])
	copy(dqyL[:], eL.DUfptsY.Data()[fptL*NFields:(fptL+1)*NFields])
	copy(dqxR[:], eR.DUfptsX.Data()[fptR*NFields:(fptR+1)*NFields])
	copy(dqyR[:], eR.DUfptsY.Data()[fptR*NFields:(fptR+1)*NFields])
	FvxL, FvyL := fs.CalcViscousFlux(QL, dqxL, dqyL)
	FvxR, FvyR := fs.CalcViscousFlux(QR, dqxR, dqyR)
	for n := 0; n < NFields; n++ {
		Fn[n] -= 0.5 * (nrm[0]*(FvxL[n]+FvxR[n]) + nrm[1]*(FvyL[n]+FvyR[n]))
	}
}

// BoundaryFace couples one element face to a ghost state built from the
// boundary condition.
type BoundaryFace struct {
	El      *Element
	F       int
	BC      mesh.BCType
	FS      *FreeStream
	Viscous bool
}

// ghostState mirrors the interior state across the boundary. Freestream
// imposes the far-field; a wall reflects the normal momentum (slip) or the
// full velocity (no-slip when viscous).
func (f *BoundaryFace) ghostState(QL [NFields]float64) (QR [NFields]float64) {
	switch f.BC {
	case mesh.BCFreestream:
		QR = f.FS.Qinf
	case mesh.BCWall:
		QR = QL
		if f.Viscous {
			QR[1], QR[2] = -QL[1], -QL[2]
		} else {
			nrm := f.El.Geo.Norm[f.F]
			mn := QL[1]*nrm[0] + QL[2]*nrm[1]
			QR[1] = QL[1] - 2.*mn*nrm[0]
			QR[2] = QL[2] - 2.*mn*nrm[1]
		}
	default:
		QR = QL
	}
	return
}

func (f *BoundaryFace) ComputeCommonU() {
	var (
		N1 = f.El.Op.N1
		uL = f.El.Ufpts.Data()
		dc = f.El.DUc.Data()
	)
	for k := 0; k < N1; k++ {
		p := (f.F*N1 + k) * NFields
		var QL [NFields]float64
		copy(QL[:], uL[p:p+NFields])
		QR := f.ghostState(QL)
		for n := 0; n < NFields; n++ {
			dc[p+n] = 0.5*(QL[n]+QR[n]) - QL[n]
		}
	}
}

func (f *BoundaryFace) ComputeCommonFlux(fs *FreeStream, ft FluxType, viscous bool) {
	var (
		N1  = f.El.Op.N1
		uL  = f.El.Ufpts.Data()
		fc  = f.El.FnCom.Data()
		nrm = f.El.Geo.Norm[f.F]
		da  = f.El.Geo.DA[f.F]
		vg  = f.El.Geo.GridVel
	)
	for k := 0; k < N1; k++ {
		fpt := f.F*N1 + k
		var QL [NFields]float64
		copy(QL[:], uL[fpt*NFields:(fpt+1)*NFields])
		QR := f.ghostState(QL)
		Fn := fs.CalcCommonFlux(ft, QL, QR, nrm, vg)
		if viscous {
			// one-sided gradient, mirrored state
			var dqx, dqy [NFields]float64
			copy(dqx[:], f.El.DUfptsX.Data()[fpt*NFields:(fpt+1)*NFields])
			copy(dqy[:], f.El.DUfptsY.Data()[fpt*NFields:(fpt+1)*NFields])
			Fvx, Fvy := fs.CalcViscousFlux(QL, dqx, dqy)
			for n := 0; n < NFields; n++ {
				Fn[n] -= nrm[0]*Fvx[n] + nrm[1]*Fvy[n]
			}
		}
		for n := 0; n < NFields; n++ {
			fc[n+fpt*NFields] = da * Fn[n]
		}
	}
}

/*
	PartitionFace couples one element face to a face owned by another
	partition. Each side holds a send/receive channel pair of capacity
	two, the in-process analogue of nonblocking point-to-point exchange:
	every residual evaluation posts all sends before draining any
	receives, so the exchange cannot deadlock, and FIFO channel order
	keeps the solution and gradient rounds separated.
*/
type PartitionFace struct {
	El  *Element
	F   int
	Tag int // global face id, stable across partitions

	Send chan<- []float64
	Recv <-chan []float64

	remoteU   []float64
	remoteDUx []float64
	remoteDUy []float64
}

func NewPartitionFace(el *Element, face, tag int) *PartitionFace {
	n := el.Op.N1 * NFields
	return &PartitionFace{
		El: el, F: face, Tag: tag,
		remoteU:   make([]float64, n),
		remoteDUx: make([]float64, n),
		remoteDUy: make([]float64, n),
	}
}

// faceSlice copies the N1 face points of src (an fpt-shaped matrix) for
// this face into a fresh buffer.
func (f *PartitionFace) faceSlice(src []float64) []float64 {
	var (
		N1  = f.El.Op.N1
		out = make([]float64, N1*NFields)
	)
	copy(out, src[f.F*N1*NFields:(f.F*N1+N1)*NFields])
	return out
}

// PostU sends this side's face solution to the remote partition.
func (f *PartitionFace) PostU() {
	f.Send <- f.faceSlice(f.El.Ufpts.Data())
}

// RecvU receives the remote face solution posted by the other side.
func (f *PartitionFace) RecvU() {
	copy(f.remoteU, <-f.Recv)
}

// PostGradU sends the face physical gradient, x then y.
func (f *PartitionFace) PostGradU() {
	f.Send <- f.faceSlice(f.El.DUfptsX.Data())
	f.Send <- f.faceSlice(f.El.DUfptsY.Data())
}

func (f *PartitionFace) RecvGradU() {
	copy(f.remoteDUx, <-f.Recv)
	copy(f.remoteDUy, <-f.Recv)
}

func (f *PartitionFace) ComputeCommonU() {
	var (
		N1 = f.El.Op.N1
		uL = f.El.Ufpts.Data()
		dc = f.El.DUc.Data()
	)
	for k := 0; k < N1; k++ {
		p := (f.F*N1 + k) * NFields
		for n := 0; n < NFields; n++ {
			uc := 0.5 * (uL[p+n] + f.remoteU[k*NFields+n])
			dc[p+n] = uc - uL[p+n]
		}
	}
}

func (f *PartitionFace) ComputeCommonFlux(fs *FreeStream, ft FluxType, viscous bool) {
	var (
		N1  = f.El.Op.N1
		uL  = f.El.Ufpts.Data()
		fc  = f.El.FnCom.Data()
		nrm = f.El.Geo.Norm[f.F]
		da  = f.El.Geo.DA[f.F]
		vg  = f.El.Geo.GridVel
	)
	for k := 0; k < N1; k++ {
		fpt := f.F*N1 + k
		var QL, QR [NFields]float64
		copy(QL[:], uL[fpt*NFields:(fpt+1)*NFields])
		copy(QR[:], f.remoteU[k*NFields:(k+1)*NFields])
		Fn := fs.CalcCommonFlux(ft, QL, QR, nrm, vg)
		if viscous {
			var dqxL, dqyL, dqxR, dqyR [NFields]float64
			copy(dqxL[:], f.El.DUfptsX.Data()[fpt*NFields:(fpt+1)*NFields])
			copy(dqyL[:], f.El.DUfptsY.Data()[fpt*NFields:(fpt+1)*NFields])
			copy(dqxR[:], f.remoteDUx[k*NFields:(k+1)*NFields])
			copy(dqyR[:], f.remoteDUy[k*NFields:(k+1)*NFields])
			FvxL, FvyL := fs.CalcViscousFlux(QL, dqxL, dqyL)
			FvxR, FvyR := fs.CalcViscousFlux(QR, dqxR, dqyR)
			for n := 0; n < NFields; n++ {
				Fn[n] -= 0.5 * (nrm[0]*(FvxL[n]+FvxR[n]) + nrm[1]*(FvyL[n]+FvyR[n]))
			}
		}
		for n := 0; n < NFields; n++ {
			fc[n+fpt*NFields] = da * Fn[n]
		}
	}
}
