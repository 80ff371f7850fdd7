package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoupledInductorsStampMatchesMutualInductanceLaw(t *testing.T) {
	l1 := NewInductor("L1", []string{"a", "b"}, 1.0)
	l1.SetBranchIndex(5)
	l1.Current1 = 2.0

	l2 := NewInductor("L2", []string{"c", "d"}, 4.0)
	l2.SetBranchIndex(6)
	l2.Current1 = 3.0

	k := NewCoupledInductors("K1", []string{"L1", "L2"}, 0.5)
	require.NoError(t, k.SetInductor(0, l1))
	require.NoError(t, k.SetInductor(1, l2))
	require.NoError(t, k.Validate())

	m := &recordingMatrix{}
	status := &CircuitStatus{Mode: TransientAnalysis, TimeStep: 0.1}
	require.NoError(t, k.Stamp(m, status))

	// M = k*sqrt(L1*L2) = 0.5*sqrt(4) = 1.0
	assert.InDelta(t, -10.0, m.at(5, 6), 1e-12)
	assert.InDelta(t, -10.0, m.at(6, 5), 1e-12)
	assert.InDelta(t, -30.0, m.rhsAt(5), 1e-12)
	assert.InDelta(t, -20.0, m.rhsAt(6), 1e-12)
}

func TestCoupledInductorsValidateRejectsOutOfRangeCoefficient(t *testing.T) {
	l1 := NewInductor("L1", []string{"a", "b"}, 1.0)
	l2 := NewInductor("L2", []string{"c", "d"}, 1.0)

	k := NewCoupledInductors("K1", []string{"L1", "L2"}, 1.5)
	require.NoError(t, k.SetInductor(0, l1))
	require.NoError(t, k.SetInductor(1, l2))

	assert.Error(t, k.Validate())
}

func TestCoupledInductorsStampIsNoopOutsideTransient(t *testing.T) {
	l1 := NewInductor("L1", []string{"a", "b"}, 1.0)
	l2 := NewInductor("L2", []string{"c", "d"}, 1.0)
	k := NewCoupledInductors("K1", []string{"L1", "L2"}, 0.5)
	require.NoError(t, k.SetInductor(0, l1))
	require.NoError(t, k.SetInductor(1, l2))

	m := &recordingMatrix{}
	err := k.Stamp(m, &CircuitStatus{Mode: OperatingPointAnalysis})
	require.NoError(t, err)
	assert.Equal(t, 0, m.elements.Len())
}
