package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInductorCompanionMatchesNortonLaw(t *testing.T) {
	geq, hist := InductorCompanion(2.0, 0.01, 0.5)

	assert.InDelta(t, 0.005, geq, 1e-12)
	assert.InDelta(t, 0.0025, hist, 1e-12)
}

func TestInductorBranchStampUsesGearCoefficient(t *testing.T) {
	l := NewInductor("L1", []string{"a", "b"}, 2.0)
	l.SetNodes([]int{1, 2})
	l.SetBranchIndex(3)
	l.Current1 = 0.5

	m := &recordingMatrix{}
	status := &CircuitStatus{TimeStep: 0.01}

	err := l.Stamp(m, status)
	assert.NoError(t, err)

	assert.InDelta(t, -1.0, m.at(1, 3), 1e-12)
	assert.InDelta(t, -1.0, m.at(3, 1), 1e-12)
	assert.InDelta(t, 1.0, m.at(2, 3), 1e-12)
	assert.InDelta(t, 1.0, m.at(3, 2), 1e-12)

	assert.InDelta(t, -2.0/0.01, m.at(3, 3), 1e-9)
	assert.InDelta(t, -(2.0/0.01)*0.5, m.rhsAt(3), 1e-9)
}
