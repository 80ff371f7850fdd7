// Package device implements the element stamp contracts: each Device
// contributes real or complex stamps to the MNA matrix and right-hand
// side for one or more of the OP/DC/AC/TRAN analysis modes.
package device

import (
	"github.com/voidheart88/gospice/pkg/matrix"
	"github.com/voidheart88/gospice/pkg/stamp"
)

// Device is the single interface every element variant implements. Adding
// a new element kind means adding one type that satisfies this interface
// (plus whichever of ACElement/TimeDependent/NonLinear it needs) and one
// constructor case in the netlist front end — the "one central registry"
// the design calls for.
type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error
	GetValue() float64
	SetNodes(nodes []int)
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

// ModelParam is a parsed `.model` card: a named parameter bundle a device
// instance binds to at construction time.
type ModelParam struct {
	Type   string
	Name   string
	Params map[string]float64
}

// ACElement is implemented by devices whose small-signal stamp differs
// from their DC/transient stamp (reactive elements, AC-only sources).
type ACElement interface {
	StampAC(matrix matrix.DeviceMatrix, status *CircuitStatus) error
}

// TimeDependent is implemented by reactive elements that carry history
// state across transient steps.
type TimeDependent interface {
	SetTimeStep(dt float64)
	UpdateState(voltages []float64, status *CircuitStatus)
	CalculateLTE(voltages map[string]float64, status *CircuitStatus) float64
}

// NonLinear is implemented by elements whose stamp depends on the current
// solution and must be relinearized every Newton iteration.
type NonLinear interface {
	LoadConductance(matrix matrix.DeviceMatrix) error
	LoadCurrent(matrix matrix.DeviceMatrix) error
	UpdateVoltages(voltages []float64) error
}

// InductorComponent is the subset of Inductor's surface a CoupledInductors
// element needs from its two constituent windings.
type InductorComponent interface {
	Device
	GetValue() float64
	GetCurrent() float64
	GetPreviousCurrent() float64
	GetVoltage() float64
	GetPreviousVoltage() float64
	GetNodes() []int
	BranchIndex() int
}

// BranchOwner is implemented by every element that introduces its own
// branch-current unknown (VSource family, VCVS, CCVS, Inductor).
type BranchOwner interface {
	BranchIndex() int
	SetBranchIndex(idx int)
}

// Patterned is implemented by elements that can independently declare the
// full set of (row,col) positions they may ever stamp into, derived only
// from their own node/branch indices rather than from a recorded Stamp
// call. Tests use it to check spec §8's universal invariant: every actual
// stamp is a subset of the element's declared pattern.
type Patterned interface {
	Pattern() stamp.TripleIdx
}

// nodePairPattern returns the two-terminal resistor-stamp pattern: every
// (row,col) combination of n1 and n2 with a nonzero (non-ground) index.
func nodePairPattern(n1, n2 int) stamp.TripleIdx {
	var idx stamp.TripleIdx
	if n1 != 0 {
		idx.Add(n1, n1)
		if n2 != 0 {
			idx.Add(n1, n2)
		}
	}
	if n2 != 0 {
		idx.Add(n2, n2)
		if n1 != 0 {
			idx.Add(n2, n1)
		}
	}
	return idx
}

// branchPattern returns the pattern of a branch-current device: the
// node-branch cross terms for each ungrounded terminal plus the branch's
// own self term.
func branchPattern(n1, n2, branch int) stamp.TripleIdx {
	var idx stamp.TripleIdx
	if n1 != 0 {
		idx.Add(n1, branch)
		idx.Add(branch, n1)
	}
	if n2 != 0 {
		idx.Add(n2, branch)
		idx.Add(branch, n2)
	}
	idx.Add(branch, branch)
	return idx
}

// ControlNodeResolver is implemented by voltage-controlled sources (VCCS,
// VCVS): their control-node names are resolved to matrix indices after the
// whole netlist's node map has been assigned.
type ControlNodeResolver interface {
	GetControlNodeNames() []string
	SetControlNodes(nodes [2]int)
}

// ControlBranchResolver is implemented by current-controlled sources (CCCS,
// CCVS): their gain multiplies another element's branch current, resolved
// by name once every BranchOwner has been assigned a branch index.
type ControlBranchResolver interface {
	GetControlName() string
	SetControlBranch(idx int)
}

// WaveformKind selects the time-domain waveform of a VSource or ISource.
// VoltageSource and CurrentSource previously carried two differently named
// but identically shaped enums for this; they now share one.
type WaveformKind int

const (
	DC WaveformKind = iota
	SIN
	PULSE
	PWL
)

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	TransientAnalysis
	ACAnalysis
	DCSweep
)

const (
	BE = iota // Backward Euler
	TR        // Trapezoidal
	FE        // Forward Euler
)

const (
	NormalMode = iota
	PredictMode
)

// CircuitStatus carries everything a Stamp call needs to know about the
// current analysis step that isn't part of the device's own state.
type CircuitStatus struct {
	Time      float64
	TimeStep  float64
	Gmin      float64
	Mode      AnalysisMode
	Method    int // BE, TR or FE
	IntegMode int // Normal or Predict mode
	Temp      float64
	Order     int
	MaxOrder  int
	Frequency float64 // AC frequency
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func NewBaseDevice(name string, value float64, nodeNames []string, devType string) *BaseDevice {
	return &BaseDevice{
		Name:      name,
		Value:     value,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
	}
}
