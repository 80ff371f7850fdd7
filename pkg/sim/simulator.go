package sim

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/voidheart88/gospice/pkg/analysis"
	"github.com/voidheart88/gospice/pkg/circuit"
)

// Simulator owns the assembled circuit for one Simulation and dispatches
// each SimulationCommand to the matching pkg/analysis driver, the way
// spec §2's data flow describes: one Simulator per Simulation, one driver
// invocation per command, collected into a SimulationResults.
type Simulator struct {
	circuit *circuit.Circuit
	method  IntegrationMethod
	outVars map[string]bool // nil means report everything
}

// NewSimulator assembles a circuit from sim.Elements and applies every
// SimulationOption, ready to Run sim.Commands (or any other command list
// against the same assembled circuit).
func NewSimulator(s Simulation) (*Simulator, error) {
	if err := validateVariables(s); err != nil {
		return nil, err
	}

	isComplex := hasACCommand(s.Commands)
	ckt := circuit.NewWithComplex("sim", isComplex)

	if err := ckt.AssignNodeBranchMaps(s.Elements); err != nil {
		return nil, fmt.Errorf("assigning node/branch maps: %w", err)
	}
	ckt.CreateMatrix()
	if err := ckt.SetupDevices(s.Elements); err != nil {
		switch {
		case errors.Is(err, circuit.ErrConstantMatrixEmpty):
			return nil, fmt.Errorf("%w: %v", ErrConstantMatrixEmpty, err)
		case errors.Is(err, circuit.ErrConstantVectorEmpty):
			return nil, fmt.Errorf("%w: %v", ErrConstantVectorEmpty, err)
		default:
			return nil, fmt.Errorf("setting up devices: %w", err)
		}
	}

	sr := &Simulator{circuit: ckt, method: BackwardEuler}
	for _, opt := range s.Options {
		switch o := opt.(type) {
		case IntegrationMethodOption:
			sr.method = o.Method
		case OutOption:
			sr.outVars = make(map[string]bool, len(o.Variables))
			for _, name := range o.Variables {
				sr.outVars[name] = true
			}
		}
	}

	return sr, nil
}

// validateVariables checks spec §6's invariant that every element
// references only variable handles present in the declared list, when
// the frontend bothered to declare one. An empty list is treated as "not
// declared" rather than "no variables allowed", since most frontends
// (our own netlist parser included) derive variables from elements
// instead of declaring them upfront.
func validateVariables(s Simulation) error {
	if len(s.Variables) == 0 {
		return nil
	}

	known := make(map[string]bool, len(s.Variables))
	for _, v := range s.Variables {
		known[v.Name] = true
	}

	for _, elem := range s.Elements {
		for _, nodeName := range elem.Nodes {
			if nodeName == "0" || nodeName == "gnd" {
				continue
			}
			if !known[nodeName] {
				return fmt.Errorf("%w: element %s references undeclared variable %q",
					ErrUnimplemented, elem.Name, nodeName)
			}
		}
	}
	return nil
}

func hasACCommand(commands []SimulationCommand) bool {
	for _, cmd := range commands {
		if _, ok := cmd.(AcCommand); ok {
			return true
		}
	}
	return false
}

// Run executes every command in order against the assembled circuit,
// returning one Sim result per command.
func (s *Simulator) Run(commands []SimulationCommand) (*SimulationResults, error) {
	results := make([]Sim, 0, len(commands))

	for _, cmd := range commands {
		result, err := s.runOne(cmd)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return &SimulationResults{Results: results}, nil
}

func (s *Simulator) runOne(cmd SimulationCommand) (Sim, error) {
	switch c := cmd.(type) {
	case OpCommand:
		return s.runOp()
	case TranCommand:
		return s.runTran(c)
	case AcCommand:
		return s.runAc(c)
	case DcCommand:
		return s.runDc(c)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnimplemented, cmd)
	}
}

func (s *Simulator) runOp() (Sim, error) {
	op := analysis.NewOP()
	if err := op.Setup(s.circuit); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}
	if err := op.Execute(); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}

	values := s.points(op.GetResults(), 0)
	return OpResult{Values: values}, nil
}

func (s *Simulator) runTran(c TranCommand) (Sim, error) {
	tr := analysis.NewTransient(0, c.Stop, c.Step, c.MaxStep, c.UseIC)
	tr.SetMethod(int(s.method))

	if err := tr.Setup(s.circuit); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}
	if err := tr.Execute(); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}

	res := tr.GetResults()
	times := res["TIME"]
	steps := make([]TranStep, len(times))
	for i, t := range times {
		steps[i] = TranStep{Time: t, Values: s.points(res, i)}
	}
	return TranResult{Steps: steps}, nil
}

func (s *Simulator) runAc(c AcCommand) (Sim, error) {
	ac := analysis.NewAC(c.FStart, c.FEnd, c.Steps, c.Mode.String())
	if err := ac.Setup(s.circuit); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}
	if err := ac.Execute(); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}

	res := ac.GetResults()
	freqs := res["FREQ"]
	steps := make([]AcStep, len(freqs))
	for i, f := range freqs {
		steps[i] = AcStep{Frequency: f, Values: s.complexPoints(res, i)}
	}
	return AcResult{Steps: steps}, nil
}

func (s *Simulator) runDc(c DcCommand) (Sim, error) {
	var dc *analysis.DCSweep
	if c.Source2 != "" {
		dc = analysis.NewDCSweep(
			[]string{c.Source1, c.Source2},
			[]float64{c.Start1, c.Start2},
			[]float64{c.Stop1, c.Stop2},
			[]float64{c.Increment1, c.Increment2},
		)
	} else {
		dc = analysis.NewDCSweep(
			[]string{c.Source1},
			[]float64{c.Start1},
			[]float64{c.Stop1},
			[]float64{c.Increment1},
		)
	}

	if err := dc.Setup(s.circuit); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}
	if err := dc.Execute(); err != nil {
		return nil, s.wrapAnalysisErr(err)
	}

	res := dc.GetResults()
	sweep1 := res["SWEEP1"]
	sweep2 := res["SWEEP2"]
	steps := make([]DcStep, len(sweep1))
	for i := range sweep1 {
		step := DcStep{Sweep1: sweep1[i], Values: s.points(res, i)}
		if i < len(sweep2) {
			step.Sweep2 = sweep2[i]
		}
		steps[i] = step
	}
	return DcResult{Steps: steps}, nil
}

// points extracts the i-th value of every non-sweep, non-time variable in
// res, sorted by name for deterministic output, filtered by s.outVars
// when set.
func (s *Simulator) points(res map[string][]float64, i int) []Point {
	names := make([]string, 0, len(res))
	for name := range res {
		if isMeta(name) {
			continue
		}
		if s.outVars != nil && !s.outVars[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	points := make([]Point, len(names))
	for j, name := range names {
		points[j] = Point{Variable: name, Value: res[name][i]}
	}
	return points
}

func (s *Simulator) complexPoints(res map[string][]float64, i int) []ComplexPoint {
	names := make([]string, 0, len(res))
	for name := range res {
		if !strings.HasSuffix(name, "_MAG") {
			continue
		}
		base := strings.TrimSuffix(name, "_MAG")
		if s.outVars != nil && !s.outVars[base] {
			continue
		}
		names = append(names, base)
	}
	sort.Strings(names)

	points := make([]ComplexPoint, len(names))
	for j, base := range names {
		points[j] = ComplexPoint{
			Variable:  base,
			Magnitude: res[base+"_MAG"][i],
			Phase:     res[base+"_PHASE"][i],
		}
	}
	return points
}

func isMeta(name string) bool {
	switch name {
	case "TIME", "FREQ", "SWEEP1", "SWEEP2":
		return true
	}
	return strings.HasSuffix(name, "_MAG") || strings.HasSuffix(name, "_PHASE")
}

// wrapAnalysisErr maps a pkg/analysis sentinel error onto this package's
// external error kinds, per spec §7's error taxonomy.
func (s *Simulator) wrapAnalysisErr(err error) error {
	switch {
	case errors.Is(err, analysis.ErrSingularMatrix):
		return fmt.Errorf("%w: %v", ErrMatrixNonInvertible, err)
	case errors.Is(err, analysis.ErrConvergence), errors.Is(err, analysis.ErrMinTimestep):
		return fmt.Errorf("%w: %v", ErrNonConvergentMaxIter, err)
	case errors.Is(err, analysis.ErrSourceNotFound):
		return fmt.Errorf("%w: %v", ErrVoltageSourceNotFound, err)
	default:
		return err
	}
}
