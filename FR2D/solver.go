package FR2D

import (
	"fmt"
	"sync"
	"time"

	"github.com/flowphys/frsolve/InputParameters"
	"github.com/flowphys/frsolve/mesh"
	"github.com/flowphys/frsolve/utils"
)

/*
	Partition owns a contiguous chunk of the solver state: its elements,
	the interior and boundary face couplers among them, and the partition
	faces linking it to its neighbors. All partitions advance in lockstep
	through fork-join phases driven by the Solver; within a phase the
	partitions run concurrently and exchange face data over their channel
	pairs.
*/
type Partition struct {
	Rank      int
	Elems     []*Element
	Couplers  []FaceCoupler
	PartFaces []*PartitionFace

	LocalDT float64
	Res     [NFields]float64
}

type Solver struct {
	IP    *InputParameters.InputParameters2D
	FS    *FreeStream
	FT    FluxType
	RK    *RKScheme
	Cache *OperatorCache
	Msh   *mesh.Mesh
	Parts []*Partition

	DTReducer utils.Reducer
	Motion    Motion
	State     SimState

	// OnUpdate, when set, observes the state after every completed step.
	OnUpdate func(SimState)

	meshTime  float64
	startTime time.Time
}

func NewSolver(ip *InputParameters.InputParameters2D) (s *Solver, err error) {
	if err = ip.Validate(); err != nil {
		return
	}
	ft, err := NewFluxType(ip.FluxType)
	if err != nil {
		return
	}
	rk, err := NewRKScheme(ip.TimeScheme)
	if err != nil {
		return
	}
	bc := mesh.BCFreestream
	if ip.BCType == "wall" {
		bc = mesh.BCWall
	}
	s = &Solver{
		IP:    ip,
		FS:    newFreeStreamFromIP(ip),
		FT:    ft,
		RK:    rk,
		Cache: NewOperatorCache(),
		Msh:   mesh.NewCartesianMesh(ip.Nx, ip.Ny, ip.XMin, ip.XMax, ip.YMin, ip.YMax, bc),
	}
	s.Cache.Build(Quad, ip.PolynomialOrder)

	if err = s.partitionMesh(); err != nil {
		return
	}
	s.buildPartitions()
	s.connectPartitions()

	if ip.NPartitions > 1 {
		s.DTReducer = utils.NewMinAllReducer(ip.NPartitions)
	} else {
		s.DTReducer = utils.IdentityReducer{}
	}
	if ip.Motion {
		s.Motion = newMotionFromIP(ip)
	}
	s.parallel(func(p *Partition) {
		for _, el := range p.Elems {
			el.InitFreeStream(s.FS)
		}
	})
	return
}

func newFreeStreamFromIP(ip *InputParameters.InputParameters2D) *FreeStream {
	fs := NewFreeStream(ip.Minf, ip.Gamma, ip.Alpha)
	fs.Mu = ip.Mu
	fs.Prandtl = ip.Prandtl
	return fs
}

func newMotionFromIP(ip *InputParameters.InputParameters2D) Motion {
	if ip.MotionType == "oscillate" {
		return OscillatingMotion{AX: ip.MotionAmpX, AY: ip.MotionAmpY, Freq: ip.MotionFreq}
	}
	return TranslatingMotion{VX: ip.MotionVelX, VY: ip.MotionVelY}
}

func (s *Solver) partitionMesh() error {
	var (
		np = s.IP.NPartitions
	)
	switch s.IP.Partitioner {
	case "metis":
		return s.Msh.PartitionMetis(np)
	case "split":
		// contiguous element-id ranges, remainder spread across the
		// leading buckets
		pm := utils.NewPartitionMap(np, s.Msh.K)
		for b := 0; b < pm.ParallelDegree; b++ {
			kMin, kMax := pm.GetBucketRange(b)
			for k := kMin; k < kMax; k++ {
				s.Msh.EToP[k] = b
			}
		}
		s.Msh.NParts = pm.ParallelDegree
		s.IP.NPartitions = pm.ParallelDegree
		return nil
	default:
		s.Msh.PartitionStripes(np)
		s.IP.NPartitions = s.Msh.NParts
		return nil
	}
}

func (s *Solver) buildPartitions() {
	var (
		op = s.Cache.Get(Quad, s.IP.PolynomialOrder)
	)
	s.Parts = make([]*Partition, s.IP.NPartitions)
	for pn := range s.Parts {
		sm := s.Msh.Extract(pn)
		p := &Partition{Rank: pn}
		p.Elems = make([]*Element, len(sm.Elems))
		for li, eg := range sm.Elems {
			geo := NewElemGeometry(eg.X[0], eg.Y[0], eg.X[1]-eg.X[0], eg.Y[3]-eg.Y[0])
			p.Elems[li] = NewElement(sm.GlobalIDs[li], op, geo, s.RK.NStages)
		}
		for _, f := range sm.Faces {
			if f.EleR < 0 {
				p.Couplers = append(p.Couplers, &BoundaryFace{
					El: p.Elems[f.EleL], F: f.FaceL,
					BC: f.BC, FS: s.FS, Viscous: s.IP.Viscous,
				})
				continue
			}
			p.Couplers = append(p.Couplers, &InteriorFace{
				L: p.Elems[f.EleL], R: p.Elems[f.EleR],
				FL: f.FaceL, FR: f.FaceR,
			})
		}
		for _, pf := range sm.PartFaces {
			p.PartFaces = append(p.PartFaces,
				NewPartitionFace(p.Elems[pf.Ele], pf.LocalFace, pf.Tag))
		}
		s.Parts[pn] = p
	}
}

// connectPartitions pairs the two PartitionFace endpoints of every shared
// face by Tag, crossing two buffered channels between them. Capacity two
// covers the deepest per-round posting (the gradient pair), so posting
// never blocks when every partition posts before receiving.
func (s *Solver) connectPartitions() {
	byTag := make(map[int][]*PartitionFace)
	for _, p := range s.Parts {
		for _, pf := range p.PartFaces {
			byTag[pf.Tag] = append(byTag[pf.Tag], pf)
		}
	}
	for tag, pair := range byTag {
		if len(pair) != 2 {
			panic(fmt.Errorf("partition face tag %d has %d endpoints", tag, len(pair)))
		}
		ab := make(chan []float64, 2)
		ba := make(chan []float64, 2)
		pair[0].Send, pair[0].Recv = ab, ba
		pair[1].Send, pair[1].Recv = ba, ab
	}
}

func (s *Solver) parallel(f func(p *Partition)) {
	var wg sync.WaitGroup
	for _, p := range s.Parts {
		wg.Add(1)
		go func(p *Partition) {
			defer wg.Done()
			f(p)
		}(p)
	}
	wg.Wait()
}

func (s *Solver) needGrad() bool { return s.IP.Viscous || s.IP.Motion }

/*
	CalcResidual evaluates the spatial residual for one Runge-Kutta stage
	into each element's DivF[stage] slot. The evaluation runs as three
	fork-join phases so that every partition posts its face data before
	any partition waits on a receive:
		1. sensor, extrapolation, squeeze, post solution
		2. receive solution, adaptive step size (stage 0), common
		   solution and corrected gradients, post gradients
		3. receive gradients, fluxes, common fluxes, divergence and
		   its correction
*/
func (s *Solver) CalcResidual(stage int) {
	var (
		ip      = s.IP
		squeeze = ip.Squeeze
		capture = ip.ShockCapture
		viscous = ip.Viscous
	)
	s.parallel(func(p *Partition) {
		for _, el := range p.Elems {
			if stage == 0 {
				el.SnapshotU0()
			}
			if capture {
				el.CalcSensor()
			}
			el.ExtrapolateU()
			if squeeze && (!capture || el.Sensor > ip.SensorThreshold) {
				el.SqueezeU(s.FS, ip.EntropyBound)
			}
		}
		for _, pf := range p.PartFaces {
			pf.PostU()
		}
	})
	s.parallel(func(p *Partition) {
		for _, pf := range p.PartFaces {
			pf.RecvU()
		}
		if stage == 0 && ip.DTPolicy == "cfl" {
			p.LocalDT = s.DTReducer.ReduceMin(p.Rank, p.calcLocalDT(s.FS, ip.CFL))
		}
		if s.needGrad() {
			for _, c := range p.Couplers {
				c.ComputeCommonU()
			}
			for _, pf := range p.PartFaces {
				pf.ComputeCommonU()
			}
			for _, el := range p.Elems {
				el.CalcGradU()
			}
			if viscous {
				for _, pf := range p.PartFaces {
					pf.PostGradU()
				}
			}
		}
	})
	s.parallel(func(p *Partition) {
		if viscous {
			for _, pf := range p.PartFaces {
				pf.RecvGradU()
			}
		}
		for _, el := range p.Elems {
			el.CalcFluxSpts(s.FS)
			if viscous {
				el.AddViscousFluxSpts(s.FS)
			}
			el.CalcDisFn()
		}
		for _, c := range p.Couplers {
			c.ComputeCommonFlux(s.FS, s.FT, viscous)
		}
		for _, pf := range p.PartFaces {
			pf.ComputeCommonFlux(s.FS, s.FT, viscous)
		}
		for _, el := range p.Elems {
			el.CalcDivF(stage)
			el.CorrectDivF(stage)
		}
	})
}

/*
	Step advances the solution by one time step. The step size is fixed or
	recomputed from the CFL bound during the stage-0 residual evaluation;
	later stages reuse that size even though a moving mesh has shifted
	the geometry by then.
*/
func (s *Solver) Step() {
	var (
		rk = s.RK
		t0 = s.State.Time
	)
	for stage := 0; stage < rk.NStages; stage++ {
		if s.Motion != nil {
			s.moveMesh(rk.StageTime(t0, s.State.DT, stage))
		}
		s.CalcResidual(stage)
		if stage == 0 {
			s.adoptStepSize(t0)
		}
		if stage < rk.NStages-1 {
			a, dt := rk.A[stage], s.State.DT
			s.parallel(func(p *Partition) {
				for _, el := range p.Elems {
					el.TimeStepA(stage, a, dt)
				}
			})
		}
	}
	dt := s.State.DT
	s.parallel(func(p *Partition) {
		p.Res = [NFields]float64{}
		for _, el := range p.Elems {
			el.TimeStepB(rk.B, dt)
			el.AccumResidual(rk.NStages-1, &p.Res)
		}
	})
	for n := 0; n < NFields; n++ {
		s.State.Residual[n] = 0
		for _, p := range s.Parts {
			if p.Res[n] > s.State.Residual[n] {
				s.State.Residual[n] = p.Res[n]
			}
		}
	}
	s.State.Time = t0 + dt
	s.State.Step++
}

func (s *Solver) moveMesh(tNew float64) {
	vx, vy := s.Motion.Velocity(tNew)
	dtm := tNew - s.meshTime
	s.parallel(func(p *Partition) {
		for _, el := range p.Elems {
			el.Move(vx, vy, dtm)
		}
	})
	s.meshTime = tNew
}

func (s *Solver) finished() bool {
	if s.IP.FinalTime > 0 && s.State.Time >= s.IP.FinalTime-1.e-14 {
		return true
	}
	return s.IP.MaxIterations > 0 && s.State.Step >= s.IP.MaxIterations
}

// Solve runs the time integration to the final time or iteration limit.
func (s *Solver) Solve() {
	s.PrintInitialization()
	var printInterval = 50
	if s.RK.NStages == 1 {
		printInterval = 500
	}
	for !s.finished() {
		s.Step()
		if s.State.Step%printInterval == 0 || s.finished() {
			s.PrintUpdate()
		}
		if s.OnUpdate != nil {
			s.OnUpdate(s.State)
		}
	}
	s.PrintFinal()
	if r, ok := s.DTReducer.(*utils.MinAllReducer); ok {
		r.Close()
	}
}

func (s *Solver) PrintInitialization() {
	s.startTime = time.Now()
	s.IP.Print()
	fmt.Printf("[%d] elements in [%d] partitions\n", s.Msh.K, len(s.Parts))
	fmt.Printf("       step         time           dt      Res[Rho]     Res[RhoU]     Res[RhoV]      Res[E]\n")
}

func (s *Solver) PrintUpdate() {
	fmt.Printf("%11d %12.5e %12.5e", s.State.Step, s.State.Time, s.State.DT)
	for n := 0; n < NFields; n++ {
		fmt.Printf(" %12.5e", s.State.Residual[n])
	}
	fmt.Printf("\n")
}

func (s *Solver) PrintFinal() {
	elapsed := time.Since(s.startTime)
	fmt.Printf("\nDone: [%d] steps to time [%8.5f] in [%s]\n",
		s.State.Step, s.State.Time, elapsed.Round(time.Millisecond))
	if s.IP.BCType == "wall" {
		fx, fy := s.WallForce()
		fmt.Printf("Wall force: Fx [%12.5e] Fy [%12.5e]\n", fx, fy)
	}
}

// SetInitialCondition overwrites the solution everywhere from a pointwise
// state function of the physical coordinates.
func (s *Solver) SetInitialCondition(f func(x, y float64) [NFields]float64) {
	s.parallel(func(p *Partition) {
		for _, el := range p.Elems {
			el.InitFunc(f)
		}
	})
}

// WallForce integrates the pressure over every wall boundary face, using
// the face quadrature weights. The force is on the fluid-facing side, in
// the outward normal direction of the wall elements.
func (s *Solver) WallForce() (fx, fy float64) {
	for _, p := range s.Parts {
		for _, c := range p.Couplers {
			bf, ok := c.(*BoundaryFace)
			if !ok || bf.BC != mesh.BCWall {
				continue
			}
			var (
				el  = bf.El
				N1  = el.Op.N1
				uD  = el.Ufpts.Data()
				nrm = el.Geo.Norm[bf.F]
				da  = el.Geo.DA[bf.F]
			)
			for k := 0; k < N1; k++ {
				fpt := bf.F*N1 + k
				var q [NFields]float64
				copy(q[:], uD[fpt*NFields:(fpt+1)*NFields])
				pw := s.FS.Pressure(q) * el.Op.W1D[k] * da
				fx += pw * nrm[0]
				fy += pw * nrm[1]
			}
		}
	}
	return
}
