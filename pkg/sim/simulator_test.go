package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidheart88/gospice/pkg/netlist"
	"github.com/voidheart88/gospice/pkg/variable"
)

func voltageDividerElements() []netlist.Element {
	return []netlist.Element{
		{Type: "V", Name: "V1", Nodes: []string{"n1", "0"}, Value: 10, Params: map[string]string{"type": "dc"}},
		{Type: "R", Name: "R1", Nodes: []string{"n1", "n2"}, Value: 10},
		{Type: "R", Name: "R2", Nodes: []string{"n2", "0"}, Value: 10},
	}
}

func TestSimulatorOpVoltageDividerMatchesScenario(t *testing.T) {
	s := Simulation{
		Elements: voltageDividerElements(),
		Commands: []SimulationCommand{OpCommand{}},
	}

	simulator, err := NewSimulator(s)
	require.NoError(t, err)

	results, err := simulator.Run(s.Commands)
	require.NoError(t, err)
	require.Len(t, results.Results, 1)

	op, ok := results.Results[0].(OpResult)
	require.True(t, ok)

	values := map[string]float64{}
	for _, p := range op.Values {
		values[p.Variable] = p.Value
	}

	assert.InDelta(t, 10.0, values["V(n1)"], 1e-9)
	assert.InDelta(t, 5.0, values["V(n2)"], 1e-9)
	assert.InDelta(t, -0.5, values["I(V1)"], 1e-9)
}

func TestSimulatorTranResistiveCircuitHoldsAtOperatingPoint(t *testing.T) {
	s := Simulation{
		Elements: voltageDividerElements(),
		Commands: []SimulationCommand{
			TranCommand{Step: 1e-3, Stop: 1e-2},
		},
	}

	simulator, err := NewSimulator(s)
	require.NoError(t, err)

	results, err := simulator.Run(s.Commands)
	require.NoError(t, err)
	require.Len(t, results.Results, 1)

	tran, ok := results.Results[0].(TranResult)
	require.True(t, ok)
	require.NotEmpty(t, tran.Steps)

	for _, step := range tran.Steps {
		for _, p := range step.Values {
			if p.Variable == "V(n2)" {
				assert.InDelta(t, 5.0, p.Value, 1e-6)
			}
		}
	}
}

func TestSimulatorRejectsUndeclaredVariable(t *testing.T) {
	s := Simulation{
		Elements: voltageDividerElements(),
		Variables: []variable.Variable{
			{Name: "n1", Unit: variable.Volt, Index: 0},
		},
	}

	_, err := NewSimulator(s)
	require.Error(t, err)
}

func TestSimulatorAppliesOutFilter(t *testing.T) {
	s := Simulation{
		Elements: voltageDividerElements(),
		Commands: []SimulationCommand{OpCommand{}},
		Options:  []SimulationOption{OutOption{Variables: []string{"V(n2)"}}},
	}

	simulator, err := NewSimulator(s)
	require.NoError(t, err)

	results, err := simulator.Run(s.Commands)
	require.NoError(t, err)

	op := results.Results[0].(OpResult)
	require.Len(t, op.Values, 1)
	assert.Equal(t, "V(n2)", op.Values[0].Variable)
}

func TestSimulatorAppliesIntegrationMethodOption(t *testing.T) {
	s := Simulation{
		Elements: voltageDividerElements(),
		Options:  []SimulationOption{IntegrationMethodOption{Method: Trapezoidal}},
	}

	simulator, err := NewSimulator(s)
	require.NoError(t, err)
	assert.Equal(t, Trapezoidal, simulator.method)
}

func TestSimulatorDcSweepTracksOhmsLaw(t *testing.T) {
	elements := []netlist.Element{
		{Type: "V", Name: "V1", Nodes: []string{"n1", "0"}, Value: 0, Params: map[string]string{"type": "dc"}},
		{Type: "R", Name: "R1", Nodes: []string{"n1", "0"}, Value: 1000},
	}
	s := Simulation{
		Elements: elements,
		Commands: []SimulationCommand{
			DcCommand{Source1: "V1", Start1: 0, Stop1: 5, Increment1: 0.1},
		},
	}

	simulator, err := NewSimulator(s)
	require.NoError(t, err)

	results, err := simulator.Run(s.Commands)
	require.NoError(t, err)
	require.Len(t, results.Results, 1)

	dc, ok := results.Results[0].(DcResult)
	require.True(t, ok)
	require.Len(t, dc.Steps, 51)

	for _, step := range dc.Steps {
		values := map[string]float64{}
		for _, p := range step.Values {
			values[p.Variable] = p.Value
		}
		assert.InDelta(t, step.Sweep1, values["V(n1)"], 1e-9)
		assert.InDelta(t, -step.Sweep1/1000, values["I(V1)"], 1e-9)
	}
}

func TestSimulatorAcSinglePoleRolloff(t *testing.T) {
	elements := []netlist.Element{
		{Type: "V", Name: "V1", Nodes: []string{"in", "0"}, Value: 1,
			Params: map[string]string{"type": "ac", "phase": "0"}},
		{Type: "R", Name: "R1", Nodes: []string{"in", "out"}, Value: 1000},
		{Type: "C", Name: "C1", Nodes: []string{"out", "0"}, Value: 1e-6},
	}
	s := Simulation{
		Elements: elements,
		Commands: []SimulationCommand{
			AcCommand{FStart: 1, FEnd: 1e4, Steps: 40, Mode: DecSweep},
		},
	}

	simulator, err := NewSimulator(s)
	require.NoError(t, err)

	results, err := simulator.Run(s.Commands)
	require.NoError(t, err)
	require.Len(t, results.Results, 1)

	ac, ok := results.Results[0].(AcResult)
	require.True(t, ok)
	require.Len(t, ac.Steps, 41)

	first := ac.Steps[0]
	for _, p := range first.Values {
		if p.Variable == "V(out)" {
			assert.InDelta(t, 1.0, p.Magnitude, 0.05)
		}
	}

	var atCutoff *AcStep
	cutoff := 1.0 / (2 * 3.141592653589793 * 1000 * 1e-6)
	best := -1.0
	for i := range ac.Steps {
		diff := ac.Steps[i].Frequency - cutoff
		if diff < 0 {
			diff = -diff
		}
		if best < 0 || diff < best {
			best = diff
			atCutoff = &ac.Steps[i]
		}
	}
	require.NotNil(t, atCutoff)
	for _, p := range atCutoff.Values {
		if p.Variable == "V(out)" {
			assert.InDelta(t, 1.0/1.4142135623730951, p.Magnitude, 0.05)
		}
	}
}

func TestSimulatorRejectsEmptyCircuit(t *testing.T) {
	s := Simulation{Elements: nil}

	_, err := NewSimulator(s)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstantMatrixEmpty)
}
