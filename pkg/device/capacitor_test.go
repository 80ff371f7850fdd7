package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voidheart88/gospice/pkg/util"
)

func TestCapacitorTransientStampMatchesCompanionLaw(t *testing.T) {
	c := NewCapacitor("C1", []string{"a", "b"}, 1e-6)
	c.SetNodes([]int{1, 2})
	c.Voltage0 = 5.0

	m := &recordingMatrix{}
	status := &CircuitStatus{Mode: TransientAnalysis, TimeStep: 1e-6}

	err := c.Stamp(m, status)
	assert.NoError(t, err)

	assert.InDelta(t, 1.0, m.at(1, 1), 1e-9)
	assert.InDelta(t, 1.0, m.at(2, 2), 1e-9)
	assert.InDelta(t, -1.0, m.at(1, 2), 1e-9)
	assert.InDelta(t, -1.0, m.at(2, 1), 1e-9)

	assert.InDelta(t, 5.0, m.rhsAt(1), 1e-9)
	assert.InDelta(t, -5.0, m.rhsAt(2), 1e-9)
}

func TestCapacitorForwardEulerMatchesBackwardEulerCompanionLaw(t *testing.T) {
	c := NewCapacitor("C1", []string{"a", "b"}, 1e-6)
	c.SetNodes([]int{1, 2})
	c.Voltage0 = 5.0

	m := &recordingMatrix{}
	status := &CircuitStatus{
		Mode:     TransientAnalysis,
		TimeStep: 1e-6,
		Method:   int(util.ForwardEulerMethod),
	}

	err := c.Stamp(m, status)
	assert.NoError(t, err)

	assert.InDelta(t, 1.0, m.at(1, 1), 1e-9)
	assert.InDelta(t, 1.0, m.at(2, 2), 1e-9)
	assert.InDelta(t, -1.0, m.at(1, 2), 1e-9)
	assert.InDelta(t, -1.0, m.at(2, 1), 1e-9)

	assert.InDelta(t, 5.0, m.rhsAt(1), 1e-9)
	assert.InDelta(t, -5.0, m.rhsAt(2), 1e-9)
}

func TestCapacitorOperatingPointUsesGminFloor(t *testing.T) {
	c := NewCapacitor("C1", []string{"a", "b"}, 1e-6)
	c.SetNodes([]int{1, 2})

	m := &recordingMatrix{}
	status := &CircuitStatus{Mode: OperatingPointAnalysis, Gmin: 0}

	err := c.Stamp(m, status)
	assert.NoError(t, err)

	assert.InDelta(t, 1e-12, m.at(1, 1), 1e-20)
}

func TestCapacitorACStampIsPureSusceptance(t *testing.T) {
	c := NewCapacitor("C1", []string{"a", "b"}, 1e-6)
	c.SetNodes([]int{1, 2})

	m := &recordingMatrix{}
	status := &CircuitStatus{Mode: ACAnalysis, Frequency: 1e3}

	err := c.Stamp(m, status)
	assert.NoError(t, err)
	assert.Equal(t, 0, m.elements.Len())
	assert.Equal(t, 4, m.celems.Len())
}
