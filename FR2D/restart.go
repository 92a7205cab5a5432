package FR2D

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

// RestartData is the YAML snapshot of a run: the integration state plus
// the solution-point values of every element, keyed by global element id
// so the snapshot is independent of the partition count.
type RestartData struct {
	Title string               `yaml:"Title"`
	Step  int                  `yaml:"Step"`
	Time  float64              `yaml:"Time"`
	Order int                  `yaml:"Order"`
	K     int                  `yaml:"K"`
	U     map[string][]float64 `yaml:"U"` // global element id -> spt-major conserved values
}

func (s *Solver) snapshot() *RestartData {
	rd := &RestartData{
		Title: s.IP.Title,
		Step:  s.State.Step,
		Time:  s.State.Time,
		Order: s.IP.PolynomialOrder,
		K:     s.Msh.K,
		U:     make(map[string][]float64, s.Msh.K),
	}
	for _, p := range s.Parts {
		for _, el := range p.Elems {
			u := make([]float64, len(el.U.Data()))
			copy(u, el.U.Data())
			rd.U[fmt.Sprintf("%d", el.ID)] = u
		}
	}
	return rd
}

// WriteRestart writes the current solution snapshot to path.
func (s *Solver) WriteRestart(path string) error {
	data, err := yaml.Marshal(s.snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadRestart loads a snapshot written by WriteRestart and installs it as
// the current state. The mesh and polynomial order must match the running
// configuration.
func (s *Solver) ReadRestart(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var rd RestartData
	if err = yaml.Unmarshal(data, &rd); err != nil {
		return err
	}
	if rd.K != s.Msh.K {
		return fmt.Errorf("restart has %d elements, mesh has %d", rd.K, s.Msh.K)
	}
	if rd.Order != s.IP.PolynomialOrder {
		return fmt.Errorf("restart has order %d, configuration has %d", rd.Order, s.IP.PolynomialOrder)
	}
	for _, p := range s.Parts {
		for _, el := range p.Elems {
			u, ok := rd.U[fmt.Sprintf("%d", el.ID)]
			if !ok {
				return fmt.Errorf("restart is missing element %d", el.ID)
			}
			if len(u) != len(el.U.Data()) {
				return fmt.Errorf("restart element %d has %d values, want %d",
					el.ID, len(u), len(el.U.Data()))
			}
			copy(el.U.Data(), u)
		}
	}
	s.State.Step = rd.Step
	s.State.Time = rd.Time
	return nil
}
