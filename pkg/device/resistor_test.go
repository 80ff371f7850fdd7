package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResistorStampMatchesConductanceLaw(t *testing.T) {
	r := NewResistor("R1", []string{"a", "b"}, 10.0)
	r.SetNodes([]int{1, 2})

	m := &recordingMatrix{}
	status := &CircuitStatus{Temp: r.Tnom}

	err := r.Stamp(m, status)
	assert.NoError(t, err)

	assert.InDelta(t, 0.1, m.at(1, 1), 1e-12)
	assert.InDelta(t, 0.1, m.at(2, 2), 1e-12)
	assert.InDelta(t, -0.1, m.at(1, 2), 1e-12)
	assert.InDelta(t, -0.1, m.at(2, 1), 1e-12)
	assert.Equal(t, 4, m.elements.Len())
}

func TestResistorStampDegeneratesAtGround(t *testing.T) {
	r := NewResistor("R1", []string{"a", "0"}, 10.0)
	r.SetNodes([]int{1, 0})

	m := &recordingMatrix{}
	status := &CircuitStatus{Temp: r.Tnom}

	err := r.Stamp(m, status)
	assert.NoError(t, err)

	assert.Equal(t, 1, m.elements.Len())
	assert.InDelta(t, 0.1, m.at(1, 1), 1e-12)
}

func TestResistorTemperatureCoefficient(t *testing.T) {
	r := NewResistor("R1", []string{"a", "b"}, 100.0)
	r.Tc1 = 0.01
	r.SetNodes([]int{1, 2})

	m := &recordingMatrix{}
	status := &CircuitStatus{Temp: r.Tnom + 10}

	err := r.Stamp(m, status)
	assert.NoError(t, err)

	want := 1.0 / (100.0 * 1.1)
	assert.InDelta(t, want, m.at(1, 1), 1e-12)
}
