package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartesianMesh(t *testing.T) {
	var (
		Nx, Ny = 3, 2
	)
	m := NewCartesianMesh(Nx, Ny, 0, 3, 0, 2, BCFreestream)
	{ // Element layout and geometry
		assert.Equal(t, 6, m.K)
		// element 4 is (i=1, j=1), lower-left corner at (1,1)
		assert.Equal(t, 1., m.Elems[4].X[0])
		assert.Equal(t, 1., m.Elems[4].Y[0])
		assert.Equal(t, 2., m.Elems[4].X[1])
		assert.Equal(t, 2., m.Elems[4].Y[3])
	}
	{ // Face counts: shared faces once, boundary closes the rest
		nInterior := (Nx-1)*Ny + Nx*(Ny-1)
		nBoundary := 2*Nx + 2*Ny
		assert.Equal(t, nInterior+nBoundary, len(m.Faces))
		var gotInt, gotBnd int
		for _, f := range m.Faces {
			if f.EleR >= 0 {
				gotInt++
			} else {
				gotBnd++
				assert.Equal(t, BCFreestream, f.BC)
			}
		}
		assert.Equal(t, nInterior, gotInt)
		assert.Equal(t, nBoundary, gotBnd)
	}
	{ // Neighbor symmetry: my east neighbor's west neighbor is me
		for k := 0; k < m.K; k++ {
			if nbr := m.EToE[k][1]; nbr >= 0 {
				assert.Equal(t, k, m.EToE[nbr][3])
			}
			if nbr := m.EToE[k][2]; nbr >= 0 {
				assert.Equal(t, k, m.EToE[nbr][0])
			}
		}
	}
}

func TestPartitionStripes(t *testing.T) {
	m := NewCartesianMesh(4, 3, 0, 4, 0, 3, BCFreestream)
	m.PartitionStripes(2)
	assert.Equal(t, 2, m.NParts)
	for j := 0; j < 3; j++ {
		for i := 0; i < 4; i++ {
			want := 0
			if i >= 2 {
				want = 1
			}
			assert.Equal(t, want, m.EToP[i+j*4])
		}
	}
}

func TestExtract(t *testing.T) {
	m := NewCartesianMesh(4, 2, 0, 4, 0, 2, BCWall)
	m.PartitionStripes(2)
	sm0 := m.Extract(0)
	sm1 := m.Extract(1)
	{ // Elements split evenly, global ids preserved
		assert.Equal(t, 4, len(sm0.Elems))
		assert.Equal(t, 4, len(sm1.Elems))
		for li, gid := range sm0.GlobalIDs {
			assert.Equal(t, gid, sm0.Elems[li].ID)
			assert.Equal(t, 0, m.EToP[gid])
		}
	}
	{ // The partition seam produces matching tagged faces on both sides
		assert.Equal(t, 2, len(sm0.PartFaces))
		assert.Equal(t, 2, len(sm1.PartFaces))
		tags0 := map[int]bool{}
		for _, pf := range sm0.PartFaces {
			tags0[pf.Tag] = true
			assert.Equal(t, 1, pf.RemotePart)
			assert.Equal(t, 1, pf.LocalFace) // east side of the seam
		}
		for _, pf := range sm1.PartFaces {
			assert.True(t, tags0[pf.Tag])
			assert.Equal(t, 0, pf.RemotePart)
			assert.Equal(t, 3, pf.LocalFace) // west side of the seam
		}
	}
	{ // No interior face of a submesh crosses the seam
		for _, f := range sm0.Faces {
			if f.EleR >= 0 {
				assert.Equal(t, 0, m.EToP[sm0.GlobalIDs[f.EleL]])
				assert.Equal(t, 0, m.EToP[sm0.GlobalIDs[f.EleR]])
			}
		}
	}
}
