package variable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryAssignsDenseIndicesInDeclarationOrder(t *testing.T) {
	r := NewRegistry()

	n1 := r.Get("n1", Volt)
	n2 := r.Get("n2", Volt)
	br := r.Get("V1#branch", Ampere)

	assert.Equal(t, 0, n1)
	assert.Equal(t, 1, n2)
	assert.Equal(t, 2, br)
	assert.Equal(t, 3, r.Len())
}

func TestRegistryGetIsIdempotent(t *testing.T) {
	r := NewRegistry()

	first := r.Get("n1", Volt)
	second := r.Get("n1", Volt)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGroundNamesNeverAllocate(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, GroundIndex, r.Get("0", Volt))
	assert.Equal(t, GroundIndex, r.Get("gnd", Volt))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryLookupReportsUnknownNames(t *testing.T) {
	r := NewRegistry()
	r.Get("n1", Volt)

	idx, ok := r.Lookup("n1")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = r.Lookup("n2")
	assert.False(t, ok)

	idx, ok = r.Lookup("0")
	assert.True(t, ok)
	assert.Equal(t, GroundIndex, idx)
}

func TestRegistryNameRoundTrips(t *testing.T) {
	r := NewRegistry()
	r.Get("n1", Volt)
	r.Get("V1#branch", Ampere)

	assert.Equal(t, "n1", r.Name(0))
	assert.Equal(t, "V1#branch", r.Name(1))
	assert.Equal(t, "0", r.Name(GroundIndex))
}

func TestUnitString(t *testing.T) {
	assert.Equal(t, "V", Volt.String())
	assert.Equal(t, "A", Ampere.String())
}
