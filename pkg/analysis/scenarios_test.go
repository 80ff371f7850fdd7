package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/circuit"
	"github.com/voidheart88/gospice/pkg/netlist"
)

// buildCircuit runs a netlist through the same parse/assign/stamp pipeline
// the command-line driver uses, returning a ready-to-solve Circuit and its
// parsed analysis parameters.
func buildCircuit(t *testing.T, src string) (*netlist.Circuit, *circuit.Circuit) {
	t.Helper()

	ckt, err := netlist.Parse(src)
	require.NoError(t, err)

	isComplex := ckt.Analysis == netlist.AnalysisAC
	circ := circuit.NewWithComplex(ckt.Title, isComplex)
	circ.SetModels(ckt.Models)

	require.NoError(t, circ.AssignNodeBranchMaps(ckt.Elements))
	circ.CreateMatrix()
	require.NoError(t, circ.SetupDevices(ckt.Elements))

	return ckt, circ
}

func TestVoltageDividerOperatingPoint(t *testing.T) {
	src := "divider\n" +
		"V1 n1 0 DC 10\n" +
		"R1 n1 n2 10\n" +
		"R2 n2 0 10\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	results := op.GetResults()
	assert.InDelta(t, 10.0, results["V(n1)"][0], 1e-9)
	assert.InDelta(t, 5.0, results["V(n2)"][0], 1e-9)
	assert.InDelta(t, -0.5, results["I(V1)"][0], 1e-9)
}

func TestDiodeClampOperatingPointConverges(t *testing.T) {
	src := "clamp\n" +
		"V1 anode 0 DC 0.7\n" +
		"D1 anode 0\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	results := op.GetResults()
	assert.InDelta(t, 0.7, results["V(anode)"][0], 1e-9)
}

func TestDCSweepSingleSourceTracksOhmsLaw(t *testing.T) {
	src := "sweep\n" +
		"V1 n1 0 DC 0\n" +
		"R1 n1 0 1k\n" +
		".dc V1 0 5 0.1\n"

	ckt, circ := buildCircuit(t, src)
	require.Equal(t, netlist.AnalysisDC, ckt.Analysis)

	dc := NewDCSweep([]string{"V1"}, []float64{0}, []float64{5}, []float64{0.1})
	require.NoError(t, dc.Setup(circ))
	require.NoError(t, dc.Execute())

	results := dc.GetResults()
	require.Len(t, results["SWEEP1"], 51)

	for i, sweptVal := range results["SWEEP1"] {
		assert.InDelta(t, sweptVal, results["V(n1)"][i], 1e-9)
		assert.InDelta(t, -sweptVal/1000.0, results["I(V1)"][i], 1e-9)
	}
}

func TestTransientRCStepResponseChargesTowardFinalValue(t *testing.T) {
	src := "rc\n" +
		"V1 in 0 PULSE(0 10 0 1n 1n 1 1)\n" +
		"R1 in out 1k\n" +
		"C1 out 0 1u\n" +
		".tran 1e-4 1e-2\n"

	ckt, circ := buildCircuit(t, src)
	require.Equal(t, netlist.AnalysisTRAN, ckt.Analysis)

	p := ckt.TranParam
	tr := NewTransient(p.TStart, p.TStop, p.TStep, p.TMax, p.UIC)
	require.NoError(t, tr.Setup(circ))
	require.NoError(t, tr.Execute())

	results := tr.GetResults()
	times := results["TIME"]
	voltages := results["V(out)"]
	require.NotEmpty(t, times)

	assert.Less(t, voltages[0], 1.0)
	assert.Greater(t, voltages[len(voltages)-1], 9.0)

	for i := 1; i < len(voltages); i++ {
		assert.GreaterOrEqual(t, voltages[i]+1e-9, voltages[i-1])
	}
}

func TestACSinglePoleLowPassRolloff(t *testing.T) {
	src := "lowpass\n" +
		"V1 in 0 AC 1\n" +
		"R1 in out 1k\n" +
		"C1 out 0 1u\n" +
		".ac DEC 10 10 100k\n"

	ckt, circ := buildCircuit(t, src)
	require.Equal(t, netlist.AnalysisAC, ckt.Analysis)

	p := ckt.ACParam
	ac := NewAC(p.FStart, p.FStop, p.Points, p.Sweep)
	require.NoError(t, ac.Setup(circ))
	require.NoError(t, ac.Execute())

	results := ac.GetResults()
	freqs := results["FREQ"]
	mags := results["V(out)_MAG"]
	require.NotEmpty(t, freqs)

	cutoff := 1.0 / (2 * math.Pi * 1000 * 1e-6)

	lowIdx, highIdx := 0, 0
	bestLow, bestHigh := math.Inf(1), math.Inf(1)
	for i, f := range freqs {
		if d := math.Abs(f - cutoff/10); d < bestLow {
			bestLow, lowIdx = d, i
		}
		if d := math.Abs(f - cutoff*10); d < bestHigh {
			bestHigh, highIdx = d, i
		}
	}

	assert.Greater(t, mags[lowIdx], mags[highIdx])
	assert.InDelta(t, 1.0, mags[lowIdx], 0.05)
	assert.Less(t, mags[highIdx], 0.2)
}

func TestSingularShortCircuitReportsSingularMatrix(t *testing.T) {
	src := "short\n" +
		"V1 n1 0 DC 5\n" +
		"V2 n1 0 DC 3\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	err := op.Execute()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConvergence) || errors.Is(err, ErrSingularMatrix),
		"expected a convergence or singular-matrix error, got %v", err)
}

func TestRepeatedOperatingPointSolvesAreIdempotent(t *testing.T) {
	src := "divider\n" +
		"V1 n1 0 DC 10\n" +
		"R1 n1 n2 10\n" +
		"R2 n2 0 10\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())
	first := circ.GetSolution()

	op2 := NewOP()
	require.NoError(t, op2.Setup(circ))
	require.NoError(t, op2.Execute())
	second := circ.GetSolution()

	for key, want := range first {
		assert.Equal(t, want, second[key], "solution for %s changed across repeated solves", key)
	}
}

// TestCoupledInductorsTransientScenario exercises supplemental scenario 9:
// a primary RL loop (L1 driven through R1 by a step source) magnetically
// coupled into a secondary RL loop (L2, R2) with no source of its own.
// R2 is chosen far above L2's impedance at the primary's time scale so the
// secondary settles almost instantly (tau2 = L2/R2 two orders of magnitude
// below tau1 = L1/R1), leaving the induced voltage V(b) tracking M*dI1/dt.
func TestCoupledInductorsTransientScenario(t *testing.T) {
	src := "coupling\n" +
		"V1 in 0 PULSE(0 5 0 1n 1n 1 1)\n" +
		"R1 in a 100\n" +
		"L1 a 0 1m\n" +
		"L2 b 0 1m\n" +
		"R2 b 0 10k\n" +
		"K1 L1 L2 0.5\n" +
		".tran 2e-6 3e-5\n"

	ckt, circ := buildCircuit(t, src)
	require.Equal(t, netlist.AnalysisTRAN, ckt.Analysis)

	p := ckt.TranParam
	tr := NewTransient(p.TStart, p.TStop, p.TStep, p.TMax, p.UIC)
	require.NoError(t, tr.Setup(circ))
	require.NoError(t, tr.Execute())

	results := tr.GetResults()
	times := results["TIME"]
	i1 := results["I(L1)"]
	vb := results["V(b)"]
	require.Greater(t, len(times), 4)

	const m = 0.5 * 1e-3 // M = k*sqrt(L1*L2) = 0.5*sqrt(1e-3*1e-3)

	mid := len(times) / 2
	dIdt := (i1[mid+1] - i1[mid-1]) / (times[mid+1] - times[mid-1])
	expected := m * dIdt

	assert.InDelta(t, math.Abs(expected), math.Abs(vb[mid]), math.Abs(expected)*0.05+1e-6)
}

// TestBJTCommonEmitterOperatingPoint exercises supplemental scenario 10: an
// NPN common-emitter stage with every terminal voltage independently pinned
// (base and collector by ideal sources, emitter by ground), the same
// direct-clamp technique TestDiodeClampOperatingPointConverges uses, so the
// textbook Ebers-Moll forward-active prediction Ic = Is*(exp(Vbe/Vt)-1) can
// be checked without needing to solve a self-biasing feedback network.
func TestBJTCommonEmitterOperatingPoint(t *testing.T) {
	src := "commonEmitter\n" +
		"Vb b 0 DC 0.7\n" +
		"Vc c 0 DC 5\n" +
		"Q1 c b 0\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	results := op.GetResults()

	const (
		is = 1e-16
		vt = consts.ThermalVoltage
	)
	expectedIc := is * (math.Exp(0.7/vt) - 1)

	actualIc := math.Abs(results["I(Vc)"][0])
	assert.InDelta(t, expectedIc, actualIc, expectedIc*0.1)
}

func TestTransientOfResistiveCircuitHoldsAtOperatingPoint(t *testing.T) {
	src := "resistive\n" +
		"V1 n1 0 DC 10\n" +
		"R1 n1 n2 10\n" +
		"R2 n2 0 10\n" +
		".tran 1e-3 1e-2\n"

	ckt, circ := buildCircuit(t, src)

	p := ckt.TranParam
	tr := NewTransient(p.TStart, p.TStop, p.TStep, p.TMax, p.UIC)
	require.NoError(t, tr.Setup(circ))
	require.NoError(t, tr.Execute())

	results := tr.GetResults()
	for _, v := range results["V(n2)"] {
		assert.InDelta(t, 5.0, v, 1e3*2.22e-16*10)
	}
}
