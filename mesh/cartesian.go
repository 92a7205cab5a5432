package mesh

import "fmt"

// BCType labels the physical boundary condition attached to a boundary face.
type BCType uint8

const (
	BCNone BCType = iota
	BCFreestream
	BCWall
)

func (bc BCType) String() string {
	switch bc {
	case BCFreestream:
		return "freestream"
	case BCWall:
		return "wall"
	}
	return "none"
}

// Local face numbering for quads, fixed across the solver:
// 0 = south (eta=-1), 1 = east (xi=+1), 2 = north (eta=+1), 3 = west (xi=-1).
const NumQuadFaces = 4

// ElemGeom holds the corner geometry of one quad element, corners CCW from
// the lower-left.
type ElemGeom struct {
	ID   int
	X, Y [4]float64
}

// Face connects two elements (EleR >= 0) or one element and a boundary.
// Face-point ordering on both sides runs with the increasing global
// coordinate along the face, so paired points share indices with no
// reversal.
type Face struct {
	EleL, EleR   int
	FaceL, FaceR int
	BC           BCType
}

type Mesh struct {
	Nx, Ny int
	K      int
	Elems  []ElemGeom
	Faces  []Face
	EToE   [][NumQuadFaces]int // neighbor element per local face, -1 on boundary
	EToP   []int               // partition id per element
	NParts int
}

// NewCartesianMesh builds a uniform Nx x Ny quad mesh over the rectangle
// [xmin,xmax] x [ymin,ymax] with the same BC applied to the entire outer
// boundary. Element k = i + j*Nx.
func NewCartesianMesh(Nx, Ny int, xmin, xmax, ymin, ymax float64, bc BCType) (m *Mesh) {
	if Nx < 1 || Ny < 1 {
		panic(fmt.Errorf("invalid mesh dimensions %dx%d", Nx, Ny))
	}
	var (
		K  = Nx * Ny
		dx = (xmax - xmin) / float64(Nx)
		dy = (ymax - ymin) / float64(Ny)
	)
	m = &Mesh{
		Nx:     Nx,
		Ny:     Ny,
		K:      K,
		Elems:  make([]ElemGeom, K),
		EToE:   make([][NumQuadFaces]int, K),
		EToP:   make([]int, K),
		NParts: 1,
	}
	for j := 0; j < Ny; j++ {
		for i := 0; i < Nx; i++ {
			k := i + j*Nx
			x0, y0 := xmin+float64(i)*dx, ymin+float64(j)*dy
			m.Elems[k] = ElemGeom{
				ID: k,
				X:  [4]float64{x0, x0 + dx, x0 + dx, x0},
				Y:  [4]float64{y0, y0, y0 + dy, y0 + dy},
			}
			m.EToE[k] = [NumQuadFaces]int{-1, -1, -1, -1}
			if j > 0 {
				m.EToE[k][0] = i + (j-1)*Nx
			}
			if i < Nx-1 {
				m.EToE[k][1] = (i + 1) + j*Nx
			}
			if j < Ny-1 {
				m.EToE[k][2] = i + (j+1)*Nx
			}
			if i > 0 {
				m.EToE[k][3] = (i - 1) + j*Nx
			}
		}
	}
	// Interior faces: east and north of each element, so each shared face is
	// emitted exactly once. Boundary faces close out the remainder.
	for j := 0; j < Ny; j++ {
		for i := 0; i < Nx; i++ {
			k := i + j*Nx
			if i < Nx-1 {
				m.Faces = append(m.Faces, Face{EleL: k, FaceL: 1, EleR: k + 1, FaceR: 3})
			} else {
				m.Faces = append(m.Faces, Face{EleL: k, FaceL: 1, EleR: -1, BC: bc})
			}
			if j < Ny-1 {
				m.Faces = append(m.Faces, Face{EleL: k, FaceL: 2, EleR: k + Nx, FaceR: 0})
			} else {
				m.Faces = append(m.Faces, Face{EleL: k, FaceL: 2, EleR: -1, BC: bc})
			}
			if i == 0 {
				m.Faces = append(m.Faces, Face{EleL: k, FaceL: 3, EleR: -1, BC: bc})
			}
			if j == 0 {
				m.Faces = append(m.Faces, Face{EleL: k, FaceL: 0, EleR: -1, BC: bc})
			}
		}
	}
	return
}

// PartFace is a face whose neighbor element lives on another partition. Tag
// identifies the shared face globally so the two sides can be linked.
type PartFace struct {
	Ele, LocalFace int
	RemotePart     int
	Tag            int
}

// SubMesh is the view of one partition: local elements plus the interior,
// boundary and partition-boundary faces touching them.
type SubMesh struct {
	Part      int
	GlobalIDs []int // local element index -> global element id
	Elems     []ElemGeom
	Faces     []Face // interior and boundary faces, local element indices
	PartFaces []PartFace
}

// Extract builds the SubMesh for partition p from the current EToP
// assignment.
func (m *Mesh) Extract(p int) (sm *SubMesh) {
	sm = &SubMesh{Part: p}
	local := make(map[int]int)
	for k := 0; k < m.K; k++ {
		if m.EToP[k] == p {
			local[k] = len(sm.GlobalIDs)
			sm.GlobalIDs = append(sm.GlobalIDs, k)
			sm.Elems = append(sm.Elems, m.Elems[k])
		}
	}
	for fi, f := range m.Faces {
		lL, okL := local[f.EleL]
		if f.EleR < 0 {
			if okL {
				bf := f
				bf.EleL = lL
				sm.Faces = append(sm.Faces, bf)
			}
			continue
		}
		lR, okR := local[f.EleR]
		switch {
		case okL && okR:
			inf := f
			inf.EleL, inf.EleR = lL, lR
			sm.Faces = append(sm.Faces, inf)
		case okL:
			sm.PartFaces = append(sm.PartFaces, PartFace{
				Ele: lL, LocalFace: f.FaceL, RemotePart: m.EToP[f.EleR], Tag: fi,
			})
		case okR:
			sm.PartFaces = append(sm.PartFaces, PartFace{
				Ele: lR, LocalFace: f.FaceR, RemotePart: m.EToP[f.EleL], Tag: fi,
			})
		}
	}
	return
}
