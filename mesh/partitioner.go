package mesh

import (
	"fmt"

	metis "github.com/notargets/go-metis"
)

// PartitionStripes assigns elements to np partitions by contiguous vertical
// stripes of mesh columns. Deterministic and dependency-free, used by tests
// and small runs.
func (m *Mesh) PartitionStripes(np int) {
	if np < 1 {
		np = 1
	}
	if np > m.Nx {
		np = m.Nx
	}
	m.NParts = np
	for j := 0; j < m.Ny; j++ {
		for i := 0; i < m.Nx; i++ {
			m.EToP[i+j*m.Nx] = i * np / m.Nx
		}
	}
}

// PartitionMetis assigns elements to np partitions with a METIS k-way
// decomposition of the element adjacency graph, minimizing the number of
// partition-boundary faces (the communication surface).
func (m *Mesh) PartitionMetis(np int) error {
	if np < 2 {
		m.PartitionStripes(np)
		return nil
	}
	xadj, adjncy := m.buildMetisGraph()

	opts := make([]int32, metis.NoOptions)
	if err := metis.SetDefaultOptions(opts); err != nil {
		return fmt.Errorf("failed to set METIS options: %w", err)
	}
	opts[metis.OptionObjType] = metis.ObjTypeCut

	ubvec := []float32{1.05}
	part, _, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, nil, nil, int32(np), nil, ubvec, opts,
	)
	if err != nil {
		return fmt.Errorf("METIS partitioning failed: %w", err)
	}
	for k := 0; k < m.K; k++ {
		m.EToP[k] = int(part[k])
	}
	m.NParts = np
	return nil
}

func (m *Mesh) buildMetisGraph() (xadj, adjncy []int32) {
	xadj = make([]int32, m.K+1)
	for k := 0; k < m.K; k++ {
		for _, nbr := range m.EToE[k] {
			if nbr >= 0 {
				adjncy = append(adjncy, int32(nbr))
			}
		}
		xadj[k+1] = int32(len(adjncy))
	}
	return
}
