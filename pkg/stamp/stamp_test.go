package stamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriplesAccumulatesInOrder(t *testing.T) {
	var tr Triples[float64]
	tr.Add(1, 1, 0.1)
	tr.Add(2, 2, 0.1)
	tr.Add(1, 2, -0.1)

	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, Triple[float64]{Row: 1, Col: 1, Value: 0.1}, tr.At(0))
	assert.Equal(t, Triple[float64]{Row: 1, Col: 2, Value: -0.1}, tr.At(2))
}

func TestPairsAccumulatesInOrder(t *testing.T) {
	var p Pairs[float64]
	p.Add(1, 5.0)
	p.Add(2, -5.0)

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, Pair[float64]{Row: 2, Value: -5.0}, p.At(1))
}

func TestTripleIdxContainsDeclaredPattern(t *testing.T) {
	var idx TripleIdx
	idx.Add(1, 1)
	idx.Add(1, 2)

	assert.True(t, idx.Contains(1, 1))
	assert.True(t, idx.Contains(1, 2))
	assert.False(t, idx.Contains(2, 2))
}

func TestComplexTriplesHoldComplexValues(t *testing.T) {
	var tr Triples[complex128]
	tr.Add(1, 1, ComplexFromReal(0.1))
	tr.Add(1, 1, complex(0, 2.0))

	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, complex(0.1, 0), tr.At(0).Value)
	assert.Equal(t, complex(0, 2.0), tr.At(1).Value)
}

func TestComplexFromReal(t *testing.T) {
	assert.Equal(t, complex(3.5, 0), ComplexFromReal(3.5))
}
