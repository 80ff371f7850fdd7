// Package sim implements the engine's external interface: a Simulation
// describes elements, variables, and the ordered commands/options a
// frontend wants run; a Simulator executes them against pkg/analysis's
// drivers and returns a SimulationResults of typed Sim variants, instead
// of the ad hoc map[string][]float64 the analysis drivers use internally.
package sim

import (
	"github.com/voidheart88/gospice/pkg/device"
	"github.com/voidheart88/gospice/pkg/netlist"
	"github.com/voidheart88/gospice/pkg/variable"
)

// Simulation is the complete input a frontend hands to a Simulator:
// ordered elements, the variables they reference, the analysis commands
// to run, and any options modifying how they run.
type Simulation struct {
	Elements  []netlist.Element
	Variables []variable.Variable
	Commands  []SimulationCommand
	Options   []SimulationOption
}

// SimulationCommand is the sealed set of analysis requests a Simulation
// may carry. Every variant satisfies the marker method so a switch over
// concrete types is exhaustive by construction.
type SimulationCommand interface {
	isSimulationCommand()
}

// OpCommand requests a single operating-point solve.
type OpCommand struct{}

func (OpCommand) isSimulationCommand() {}

// TranCommand requests a transient sweep from t=0 to Stop with initial
// timestep Step (clamped internally to MaxStep per accepted step if
// MaxStep > 0), optionally starting from the netlist's .ic values instead
// of a computed operating point.
type TranCommand struct {
	Step    float64
	Stop    float64
	MaxStep float64
	UseIC   bool
}

func (TranCommand) isSimulationCommand() {}

// SweepMode selects how an AcCommand spaces its frequency points.
type SweepMode int

const (
	LinSweep SweepMode = iota
	DecSweep
	OctSweep
)

func (m SweepMode) String() string {
	switch m {
	case DecSweep:
		return "DEC"
	case OctSweep:
		return "OCT"
	default:
		return "LIN"
	}
}

// AcCommand requests a frequency sweep of Steps intervals (Steps+1
// points, per the N+1-point convention) between FStart and FEnd.
type AcCommand struct {
	FStart float64
	FEnd   float64
	Steps  int
	Mode   SweepMode
}

func (AcCommand) isSimulationCommand() {}

// DcCommand requests a DC sweep of one independent source, or two nested
// sources when Source2 is non-empty.
type DcCommand struct {
	Source1    string
	Start1     float64
	Stop1      float64
	Increment1 float64

	Source2    string
	Start2     float64
	Stop2      float64
	Increment2 float64
}

func (DcCommand) isSimulationCommand() {}

// SimulationOption is the sealed set of run-wide modifiers a Simulation
// may carry.
type SimulationOption interface {
	isSimulationOption()
}

// OutOption advises which variables a backend should report. Analysis
// drivers still compute every variable; this only filters Sim output.
type OutOption struct {
	Variables []string
}

func (OutOption) isSimulationOption() {}

// IntegrationMethodOption overrides the TRAN driver's default integration
// method (BackwardEuler) for every TranCommand in the run.
type IntegrationMethodOption struct {
	Method IntegrationMethod
}

func (IntegrationMethodOption) isSimulationOption() {}

// IntegrationMethod mirrors pkg/device's BE/TR/FE constants at the
// external-interface boundary, so callers of this package don't need to
// import pkg/device to pick a method.
type IntegrationMethod int

const (
	BackwardEuler IntegrationMethod = device.BE
	Trapezoidal   IntegrationMethod = device.TR
	ForwardEuler  IntegrationMethod = device.FE
)
