package FR2D

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowphys/frsolve/InputParameters"
)

func testIP() *InputParameters.InputParameters2D {
	ip := InputParameters.NewDefaults()
	ip.Title = "test"
	ip.Nx, ip.Ny = 4, 3
	ip.XMin, ip.XMax = 0, 2
	ip.YMin, ip.YMax = 0, 1.5
	ip.PolynomialOrder = 2
	ip.DTPolicy = "fixed"
	ip.FixedDT = 1.e-3
	ip.FinalTime = 0
	ip.MaxIterations = 0
	return ip
}

// smoothBump is a subsonic perturbation of the freestream, used where the
// tests need a non-trivial field.
func smoothBump(fs *FreeStream) func(x, y float64) [NFields]float64 {
	return func(x, y float64) [NFields]float64 {
		q := fs.Qinf
		b := 0.1 * math.Exp(-((x-1.)*(x-1.)+(y-0.75)*(y-0.75))/0.1)
		q[0] += b
		q[3] += 2.5 * b
		return q
	}
}

func maxFreestreamError(s *Solver) (r float64) {
	for _, p := range s.Parts {
		for _, el := range p.Elems {
			uD := el.U.Data()
			for i := 0; i < el.Op.Np; i++ {
				for n := 0; n < NFields; n++ {
					if v := math.Abs(uD[n+i*NFields] - s.FS.Qinf[n]); v > r {
						r = v
					}
				}
			}
		}
	}
	return
}

func TestFreestreamPreservation(t *testing.T) {
	{ // A uniform flow stays uniform under every scheme selector
		for _, scheme := range []int{0, 1, 4} {
			ip := testIP()
			ip.TimeScheme = scheme
			s, err := NewSolver(ip)
			assert.NoError(t, err)
			for i := 0; i < 5; i++ {
				s.Step()
			}
			assert.Less(t, maxFreestreamError(s), 1.e-10)
			for n := 0; n < NFields; n++ {
				assert.Less(t, s.State.Residual[n], 1.e-10)
			}
		}
	}
	{ // Every flux catalogue entry preserves it too
		for _, ftName := range FluxNames {
			ip := testIP()
			ip.FluxType = ftName
			s, err := NewSolver(ip)
			assert.NoError(t, err)
			for i := 0; i < 3; i++ {
				s.Step()
			}
			assert.Less(t, maxFreestreamError(s), 1.e-10)
		}
	}
	{ // Viscous terms vanish on a uniform flow
		ip := testIP()
		ip.Viscous = true
		ip.Mu = 1.e-3
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		for i := 0; i < 3; i++ {
			s.Step()
		}
		assert.Less(t, maxFreestreamError(s), 1.e-10)
	}
	{ // A rigid grid translation leaves the uniform flow untouched
		ip := testIP()
		ip.Motion = true
		ip.MotionVelX, ip.MotionVelY = 0.3, -0.1
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		for i := 0; i < 5; i++ {
			s.Step()
		}
		assert.Less(t, maxFreestreamError(s), 1.e-10)
	}
	{ // Same with a prescribed grid oscillation
		ip := testIP()
		ip.Motion = true
		ip.MotionType = "oscillate"
		ip.MotionAmpX, ip.MotionAmpY = 0.05, 0.02
		ip.MotionFreq = 2.
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		assert.IsType(t, OscillatingMotion{}, s.Motion)
		for i := 0; i < 5; i++ {
			s.Step()
		}
		assert.Less(t, maxFreestreamError(s), 1.e-10)
	}
}

func TestMotionVelocity(t *testing.T) {
	{ // Translation is constant in time
		m := TranslatingMotion{VX: 0.3, VY: -0.1}
		vx, vy := m.Velocity(7.)
		assert.Equal(t, 0.3, vx)
		assert.Equal(t, -0.1, vy)
	}
	{ // Oscillation velocity is the derivative of A*sin(2*pi*f*t)
		m := OscillatingMotion{AX: 0.05, AY: 0.02, Freq: 2.}
		w := 2. * math.Pi * m.Freq
		vx, vy := m.Velocity(0.)
		assert.InDelta(t, 0.05*w, vx, 1.e-14)
		assert.InDelta(t, 0.02*w, vy, 1.e-14)
		// a quarter period later the grid is at peak displacement, at rest
		vx, vy = m.Velocity(0.25 / m.Freq)
		assert.InDelta(t, 0., vx, 1.e-12)
		assert.InDelta(t, 0., vy, 1.e-12)
	}
}

func TestStageBookkeeping(t *testing.T) {
	{ // Four-stage stage times follow the classical pattern
		rk, err := NewRKScheme(4)
		assert.NoError(t, err)
		t0, dt := 2., 0.1
		assert.InDelta(t, 2., rk.StageTime(t0, dt, 0), 1.e-14)
		assert.InDelta(t, 2.05, rk.StageTime(t0, dt, 1), 1.e-14)
		assert.InDelta(t, 2.05, rk.StageTime(t0, dt, 2), 1.e-14)
		assert.InDelta(t, 2.1, rk.StageTime(t0, dt, 3), 1.e-14)
	}
	{ // Selector 0 is an alias for the single-stage scheme
		rk, err := NewRKScheme(0)
		assert.NoError(t, err)
		assert.Equal(t, 1, rk.NStages)
		assert.Equal(t, []float64{1.}, rk.B)
	}
	{ // Stage counts outside the catalogue are fatal
		_, err := NewRKScheme(3)
		assert.Error(t, err)
	}
	{ // Each stage writes its own divergence slot
		ip := testIP()
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		s.SetInitialCondition(smoothBump(s.FS))
		el := s.Parts[0].Elems[0]
		s.CalcResidual(0)
		d0 := append([]float64{}, el.DivF[0].Data()...)
		s.CalcResidual(1)
		assert.Equal(t, d0, el.DivF[0].Data())
	}
	{ // A zero step size leaves the state untouched
		ip := testIP()
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		s.SetInitialCondition(smoothBump(s.FS))
		el := s.Parts[0].Elems[2]
		el.SnapshotU0()
		before := append([]float64{}, el.U.Data()...)
		s.CalcResidual(0)
		el.TimeStepA(0, 0.5, 0)
		assert.InDeltaSlice(t, before, el.U.Data(), 1.e-14)
		el.TimeStepB([]float64{1}, 0)
		assert.InDeltaSlice(t, before, el.U.Data(), 1.e-14)
	}
}

func TestStepSize(t *testing.T) {
	{ // The adaptive bound reflects the global fastest wave
		ip := testIP()
		ip.DTPolicy = "cfl"
		ip.CFL = 1.
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		dt := s.ComputeStepSize()
		// uniform freestream: lambda = Minf + Cinf everywhere
		var (
			h      = math.Min(0.5, 0.5) // element size in both directions
			lambda = s.FS.Minf + s.FS.Cinf
		)
		assert.InDelta(t, h/lambda, dt, 1.e-12)
	}
	{ // The adaptive bound is a global min across partitions
		ip := testIP()
		ip.DTPolicy = "cfl"
		ip.NPartitions = 3
		ip.Partitioner = "split"
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		// speed up one element in the last partition
		el := s.Parts[2].Elems[0]
		uD := el.U.Data()
		for i := 0; i < el.Op.Np; i++ {
			uD[1+i*NFields] = 2.0 // much faster x momentum
		}
		dtUniform := h_over_lambda(s)
		dt := s.ComputeStepSize()
		assert.Less(t, dt, dtUniform)
	}
	{ // The final step clamps to land exactly on the final time
		ip := testIP()
		ip.FinalTime = 2.5e-3 // two and a half fixed steps
		ip.MaxIterations = 100
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		for !s.finished() {
			s.Step()
		}
		assert.Equal(t, 3, s.State.Step)
		assert.InDelta(t, 2.5e-3, s.State.Time, 1.e-14)
	}
}

func h_over_lambda(s *Solver) float64 {
	return 0.5 / (s.FS.Minf + s.FS.Cinf)
}

func TestPartitionEquivalence(t *testing.T) {
	{ // Multi-partition runs reproduce the single-partition states
		run := func(np int, partitioner string) map[string][]float64 {
			ip := testIP()
			ip.Nx, ip.Ny = 6, 4
			ip.NPartitions = np
			ip.Partitioner = partitioner
			s, err := NewSolver(ip)
			assert.NoError(t, err)
			s.SetInitialCondition(smoothBump(s.FS))
			for i := 0; i < 5; i++ {
				s.Step()
			}
			return s.snapshot().U
		}
		ref := run(1, "stripes")
		for _, tc := range []struct {
			np          int
			partitioner string
		}{{2, "stripes"}, {3, "stripes"}, {4, "split"}} {
			got := run(tc.np, tc.partitioner)
			assert.Equal(t, len(ref), len(got))
			for id, uRef := range ref {
				assert.InDeltaSlice(t, uRef, got[id], 1.e-12)
			}
		}
	}
}

func TestSqueeze(t *testing.T) {
	ip := testIP()
	s, err := NewSolver(ip)
	assert.NoError(t, err)
	el := s.Parts[0].Elems[0]
	{ // An inadmissible overshoot is pulled back; the average is untouched
		el.InitFreeStream(s.FS)
		uD := el.U.Data()
		uD[0] = -0.2 // negative density at one solution point
		el.ExtrapolateU()
		var before [NFields]float64
		el.Op.CalcAvgU(el.U, el.Geo.JacDet, before[:])
		ok := el.SqueezeU(s.FS, 0)
		assert.True(t, ok)
		var after [NFields]float64
		el.Op.CalcAvgU(el.U, el.Geo.JacDet, after[:])
		for n := 0; n < NFields; n++ {
			assert.InDelta(t, before[n], after[n], 1.e-12)
		}
		assert.True(t, admissibleField(s.FS, el.U.Data(), el.Op.Np, 0))
		assert.True(t, admissibleField(s.FS, el.Ufpts.Data(), el.Op.Nfpts, 0))
	}
	{ // An admissible field passes through unchanged
		el.InitFreeStream(s.FS)
		el.ExtrapolateU()
		before := append([]float64{}, el.U.Data()...)
		ok := el.SqueezeU(s.FS, 0)
		assert.True(t, ok)
		assert.Equal(t, before, el.U.Data())
	}
	{ // A hopeless cell average is reported, not repaired
		el.InitFreeStream(s.FS)
		uD := el.U.Data()
		for i := 0; i < el.Op.Np; i++ {
			uD[0+i*NFields] = -1.
		}
		el.ExtrapolateU()
		assert.False(t, el.SqueezeU(s.FS, 0))
	}
}

func TestRestartRoundTrip(t *testing.T) {
	{ // Write, reload into a fresh solver, continue identically
		path := filepath.Join(t.TempDir(), "restart.yaml")
		ip := testIP()
		s1, err := NewSolver(ip)
		assert.NoError(t, err)
		s1.SetInitialCondition(smoothBump(s1.FS))
		for i := 0; i < 3; i++ {
			s1.Step()
		}
		assert.NoError(t, s1.WriteRestart(path))

		s2, err := NewSolver(testIP())
		assert.NoError(t, err)
		assert.NoError(t, s2.ReadRestart(path))
		assert.Equal(t, s1.State.Step, s2.State.Step)
		assert.InDelta(t, s1.State.Time, s2.State.Time, 1.e-14)

		s1.Step()
		s2.State.DT = s1.State.DT
		s2.Step()
		u1 := s1.snapshot().U
		u2 := s2.snapshot().U
		for id, u := range u1 {
			assert.InDeltaSlice(t, u, u2[id], 1.e-12)
		}
	}
	{ // Mismatched configurations are rejected
		path := filepath.Join(t.TempDir(), "restart.yaml")
		s1, _ := NewSolver(testIP())
		assert.NoError(t, s1.WriteRestart(path))
		ipBad := testIP()
		ipBad.PolynomialOrder = 3
		s2, _ := NewSolver(ipBad)
		assert.Error(t, s2.ReadRestart(path))
	}
}

func TestIsentropicVortexIC(t *testing.T) {
	fs := NewFreeStream(0.5, 1.4, 0)
	ic := fs.IsentropicVortexIC(0, 0, 5)
	sInf := fs.GetFlowFunctionQQ(fs.Qinf, Entropy)
	{ // The vortex is isentropic everywhere at the freestream entropy
		for _, xy := range [][2]float64{{0, 0}, {0.3, -0.2}, {1, 1}, {-2, 0.5}} {
			q := ic(xy[0], xy[1])
			assert.InDelta(t, sInf, fs.GetFlowFunctionQQ(q, Entropy), 1.e-12)
		}
	}
	{ // Far from the core the state decays to the freestream
		q := ic(20, 20)
		for n := 0; n < NFields; n++ {
			assert.InDelta(t, fs.Qinf[n], q[n], 1.e-10)
		}
	}
	{ // The element entropy diagnostic sees it too
		ip := testIP()
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		s.SetInitialCondition(s.FS.IsentropicVortexIC(1, 0.75, 2))
		for _, p := range s.Parts {
			for _, el := range p.Elems {
				assert.InDelta(t, sInf, el.MinEntropy(s.FS), 1.e-10)
			}
		}
	}
}

func TestShockCaptureWiring(t *testing.T) {
	{ // The sensor+squeeze path keeps a strong perturbation admissible
		ip := testIP()
		ip.ShockCapture = true
		ip.Squeeze = true
		ip.SensorThreshold = -8
		ip.Minf = 1.5
		ip.FluxType = "roe"
		s, err := NewSolver(ip)
		assert.NoError(t, err)
		s.SetInitialCondition(func(x, y float64) [NFields]float64 {
			q := s.FS.Qinf
			if x < 1. {
				q[0] *= 3.
				q[3] *= 3.
			}
			return q
		})
		for i := 0; i < 10; i++ {
			s.Step()
		}
		for _, p := range s.Parts {
			for _, el := range p.Elems {
				assert.True(t, admissibleField(s.FS, el.U.Data(), el.Op.Np, 0))
			}
		}
	}
}
