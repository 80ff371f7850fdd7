package sim

// Point is a single (variable, value) pair in a real-valued result.
type Point struct {
	Variable string
	Value    float64
}

// ComplexPoint is a single (variable, value) pair in a complex-valued
// result, reported as magnitude/phase the way the AC driver computes it.
type ComplexPoint struct {
	Variable string
	Magnitude float64
	Phase     float64 // degrees
}

// Sim is the sealed set of result variants a SimulationCommand produces,
// matching it one-for-one and in order.
type Sim interface {
	isSim()
}

// OpResult is the outcome of an OpCommand: one value per variable.
type OpResult struct {
	Values []Point
}

func (OpResult) isSim() {}

// DcStep is one point of a DC sweep: the swept source value(s) and the
// resulting variable values.
type DcStep struct {
	Sweep1 float64
	Sweep2 float64 // zero unless the command swept two sources
	Values []Point
}

// DcResult is the outcome of a DcCommand: one DcStep per sweep point.
type DcResult struct {
	Steps []DcStep
}

func (DcResult) isSim() {}

// TranStep is one accepted transient timestep.
type TranStep struct {
	Time   float64
	Values []Point
}

// TranResult is the outcome of a TranCommand: one TranStep per accepted
// step, in time order.
type TranResult struct {
	Steps []TranStep
}

func (TranResult) isSim() {}

// AcStep is one frequency point of an AC sweep.
type AcStep struct {
	Frequency float64
	Values    []ComplexPoint
}

// AcResult is the outcome of an AcCommand: one AcStep per frequency
// point, in frequency order.
type AcResult struct {
	Steps []AcStep
}

func (AcResult) isSim() {}

// SimulationResults is the ordered list of Sim variants produced by a
// Simulator run, one per input SimulationCommand in the same order.
type SimulationResults struct {
	Results []Sim
}
