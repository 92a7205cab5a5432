package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type InputParameters2D struct {
	Title           string  `yaml:"Title"`
	Gamma           float64 `yaml:"Gamma"`
	Minf            float64 `yaml:"Minf"`
	Alpha           float64 `yaml:"Alpha"`
	Mu              float64 `yaml:"Mu"`
	Prandtl         float64 `yaml:"Prandtl"`
	CFL             float64 `yaml:"CFL"`
	FixedDT         float64 `yaml:"FixedDT"`
	DTPolicy        string  `yaml:"DTPolicy"`   // "fixed" or "cfl"
	TimeScheme      int     `yaml:"TimeScheme"` // 0 or 1 = forward Euler, 4 = RK4
	PolynomialOrder int     `yaml:"PolynomialOrder"`
	NDims           int     `yaml:"NDims"`
	FinalTime       float64 `yaml:"FinalTime"`
	MaxIterations   int     `yaml:"MaxIterations"`
	Viscous         bool    `yaml:"Viscous"`
	Motion          bool    `yaml:"Motion"`
	Squeeze         bool    `yaml:"Squeeze"`
	ShockCapture    bool    `yaml:"ShockCapture"`
	SensorThreshold float64 `yaml:"SensorThreshold"`
	EntropyBound    float64 `yaml:"EntropyBound"`
	FluxType        string  `yaml:"FluxType"`
	BCType          string  `yaml:"BCType"`
	Nx              int     `yaml:"Nx"`
	Ny              int     `yaml:"Ny"`
	XMin            float64 `yaml:"XMin"`
	XMax            float64 `yaml:"XMax"`
	YMin            float64 `yaml:"YMin"`
	YMax            float64 `yaml:"YMax"`
	NPartitions     int     `yaml:"NPartitions"`
	Partitioner     string  `yaml:"Partitioner"` // "stripes", "split" or "metis"
	ProcLimit       int     `yaml:"ProcLimit"`
	MonitorAddr     string  `yaml:"MonitorAddr"`
	MotionType      string  `yaml:"MotionType"` // "translate" or "oscillate"
	MotionVelX      float64 `yaml:"MotionVelX"`
	MotionVelY      float64 `yaml:"MotionVelY"`
	MotionAmpX      float64 `yaml:"MotionAmpX"`
	MotionAmpY      float64 `yaml:"MotionAmpY"`
	MotionFreq      float64 `yaml:"MotionFreq"`
}

// NewDefaults fills the fields a minimal input file may omit.
func NewDefaults() *InputParameters2D {
	return &InputParameters2D{
		Title:           "unnamed",
		Gamma:           1.4,
		Minf:            0.5,
		Prandtl:         0.72,
		CFL:             1.0,
		DTPolicy:        "cfl",
		TimeScheme:      4,
		PolynomialOrder: 2,
		NDims:           2,
		FinalTime:       1.0,
		MaxIterations:   10000,
		SensorThreshold: 0.0075,
		FluxType:        "lax",
		BCType:          "freestream",
		Nx:              10,
		Ny:              10,
		XMin:            0,
		XMax:            1,
		YMin:            0,
		YMax:            1,
		NPartitions:     1,
		Partitioner:     "stripes",
		MotionType:      "translate",
	}
}

func (ip *InputParameters2D) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	return ip.Validate()
}

// Validate catches fatal configuration errors at setup time, before any
// solver state is built.
func (ip *InputParameters2D) Validate() error {
	switch ip.TimeScheme {
	case 0, 1, 4:
	default:
		return fmt.Errorf("time-stepping scheme [%d] not supported", ip.TimeScheme)
	}
	switch ip.DTPolicy {
	case "fixed", "cfl":
	default:
		return fmt.Errorf("unknown DT policy [%s]", ip.DTPolicy)
	}
	if ip.DTPolicy == "fixed" && ip.FixedDT <= 0 {
		return fmt.Errorf("fixed DT policy requires FixedDT > 0, have %g", ip.FixedDT)
	}
	if ip.NDims != 2 {
		return fmt.Errorf("%d spatial dimensions not supported", ip.NDims)
	}
	if ip.PolynomialOrder < 0 {
		return fmt.Errorf("invalid polynomial order %d", ip.PolynomialOrder)
	}
	if ip.Nx < 1 || ip.Ny < 1 {
		return fmt.Errorf("invalid mesh dimensions %dx%d", ip.Nx, ip.Ny)
	}
	if ip.NPartitions < 1 {
		ip.NPartitions = 1
	}
	if ip.ProcLimit > 0 && ip.NPartitions > ip.ProcLimit {
		ip.NPartitions = ip.ProcLimit
	}
	switch ip.Partitioner {
	case "", "stripes", "split", "metis":
	default:
		return fmt.Errorf("unknown partitioner [%s]", ip.Partitioner)
	}
	switch ip.MotionType {
	case "", "translate", "oscillate":
	default:
		return fmt.Errorf("unknown motion type [%s]", ip.MotionType)
	}
	return nil
}

func (ip *InputParameters2D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.FluxType)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Time Scheme (RK stages)\n", ip.TimeScheme)
	fmt.Printf("[%s]\t\t\t= DT Policy\n", ip.DTPolicy)
	fmt.Printf("%v\t\t\t= Viscous\n", ip.Viscous)
	fmt.Printf("%v\t\t\t= Motion\n", ip.Motion)
	fmt.Printf("%v\t\t\t= Squeeze\n", ip.Squeeze)
	fmt.Printf("%v\t\t\t= ShockCapture\n", ip.ShockCapture)
	fmt.Printf("[%dx%d]\t\t\t= Mesh\n", ip.Nx, ip.Ny)
}
