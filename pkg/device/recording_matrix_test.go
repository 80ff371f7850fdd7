package device

import (
	"testing"

	"github.com/voidheart88/gospice/pkg/stamp"
)

// recordingMatrix is a matrix.DeviceMatrix that records every contribution
// into the fixed-capacity stamp containers instead of assembling a real
// linear system, letting tests assert exactly what an element stamped.
type recordingMatrix struct {
	elements stamp.Triples[float64]
	rhs      stamp.Pairs[float64]
	celems   stamp.Triples[complex128]
	crhs     stamp.Pairs[complex128]
}

func (m *recordingMatrix) AddElement(i, j int, value float64) {
	m.elements.Add(i, j, value)
}

func (m *recordingMatrix) AddRHS(i int, value float64) {
	m.rhs.Add(i, value)
}

func (m *recordingMatrix) AddComplexElement(i, j int, real, imag float64) {
	m.celems.Add(i, j, complex(real, imag))
}

func (m *recordingMatrix) AddComplexRHS(i int, real, imag float64) {
	m.crhs.Add(i, complex(real, imag))
}

// at sums every recorded contribution at (row,col), the way a sparse
// matrix accumulates repeated additive stamps.
func (m *recordingMatrix) at(row, col int) float64 {
	var sum float64
	for i := 0; i < m.elements.Len(); i++ {
		t := m.elements.At(i)
		if t.Row == row && t.Col == col {
			sum += t.Value
		}
	}
	return sum
}

func (m *recordingMatrix) rhsAt(row int) float64 {
	var sum float64
	for i := 0; i < m.rhs.Len(); i++ {
		p := m.rhs.At(i)
		if p.Row == row {
			sum += p.Value
		}
	}
	return sum
}

// assertStampsSubsetOfPattern fails the test if any recorded contribution
// falls outside dev's independently declared Pattern(), exercising spec
// §8's universal invariant that stamps are a subset of triple_idx.
func (m *recordingMatrix) assertStampsSubsetOfPattern(t *testing.T, dev Patterned) {
	t.Helper()
	pattern := dev.Pattern()
	for i := 0; i < m.elements.Len(); i++ {
		triple := m.elements.At(i)
		if !pattern.Contains(triple.Row, triple.Col) {
			t.Errorf("stamp at (%d,%d) is not in the declared pattern", triple.Row, triple.Col)
		}
	}
	for i := 0; i < m.celems.Len(); i++ {
		triple := m.celems.At(i)
		if !pattern.Contains(triple.Row, triple.Col) {
			t.Errorf("complex stamp at (%d,%d) is not in the declared pattern", triple.Row, triple.Col)
		}
	}
}
