package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These exercise the control-node/control-branch resolution SetupDevices
// performs after every BranchOwner has a branch index: VCCS/VCVS resolve a
// pair of control-node names to matrix indices, CCCS/CCVS resolve a
// controlling source's name to its branch row.

func TestVCCSCurrentIsGainTimesControlVoltage(t *testing.T) {
	src := "vccs\n" +
		"Vc c 0 DC 2\n" +
		"G1 n1 0 c 0 0.01\n" +
		"R1 n1 0 100\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	results := op.GetResults()
	assert.InDelta(t, 2.0, results["V(c)"][0], 1e-9)
	assert.InDelta(t, -2.0, results["V(n1)"][0], 1e-9)
}

func TestVCVSOutputTracksControlVoltageTimesGain(t *testing.T) {
	src := "vcvs\n" +
		"Vc c 0 DC 3\n" +
		"E1 out 0 c 0 2\n" +
		"Rout out 0 1k\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	results := op.GetResults()
	assert.InDelta(t, 6.0, results["V(out)"][0], 1e-9)
}

func TestCCCSCurrentIsGainTimesControlBranchCurrent(t *testing.T) {
	src := "cccs\n" +
		"Vctrl n1 0 DC 5\n" +
		"R1 n1 0 1\n" +
		"F1 out 0 Vctrl 1\n" +
		"Rout out 0 1\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	results := op.GetResults()
	assert.InDelta(t, -5.0, results["I(Vctrl)"][0], 1e-9)
	assert.InDelta(t, 5.0, results["V(out)"][0], 1e-9)
}

func TestCCVSOutputTracksControlBranchCurrentTimesGain(t *testing.T) {
	src := "ccvs\n" +
		"Vctrl n1 0 DC 5\n" +
		"R1 n1 0 1\n" +
		"H1 out 0 Vctrl 2\n" +
		"Rout out 0 1\n" +
		".op\n"

	_, circ := buildCircuit(t, src)

	op := NewOP()
	require.NoError(t, op.Setup(circ))
	require.NoError(t, op.Execute())

	results := op.GetResults()
	assert.InDelta(t, -10.0, results["V(out)"][0], 1e-9)
	assert.InDelta(t, 10.0, results["I(H1)"][0], 1e-9)
}
