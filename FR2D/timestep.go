package FR2D

import "math"

// calcLocalDT records the wave speeds of every local element and returns
// the tightest CFL step bound within the partition.
func (p *Partition) calcLocalDT(fs *FreeStream, CFL float64) (dt float64) {
	dt = math.MaxFloat64
	for _, el := range p.Elems {
		el.CalcWaveSpeed(fs)
		if d := el.CalcDt(CFL); d < dt {
			dt = d
		}
	}
	return
}

// adoptStepSize installs the step size for the current step: the fixed
// size, or the global CFL bound the stage-0 evaluation reduced across
// partitions, clamped so the step lands exactly on the final time.
func (s *Solver) adoptStepSize(t0 float64) {
	if s.IP.DTPolicy == "fixed" {
		s.State.DT = s.IP.FixedDT
	} else {
		s.State.DT = s.Parts[0].LocalDT
	}
	if s.IP.FinalTime > 0 && t0+s.State.DT > s.IP.FinalTime {
		s.State.DT = s.IP.FinalTime - t0
	}
}

// ComputeStepSize evaluates the initial step size without advancing: the
// fixed size under the fixed policy, otherwise the global CFL bound of
// the current solution.
func (s *Solver) ComputeStepSize() (dt float64) {
	if s.IP.DTPolicy == "fixed" {
		return s.IP.FixedDT
	}
	s.parallel(func(p *Partition) {
		for _, el := range p.Elems {
			el.ExtrapolateU()
		}
		p.LocalDT = s.DTReducer.ReduceMin(p.Rank, p.calcLocalDT(s.FS, s.IP.CFL))
	})
	return s.Parts[0].LocalDT
}
