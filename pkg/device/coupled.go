package device

import (
	"fmt"
	"math"

	"github.com/voidheart88/gospice/pkg/matrix"
	"github.com/voidheart88/gospice/pkg/stamp"
	"github.com/voidheart88/gospice/pkg/util"
)

var _ Patterned = (*CoupledInductors)(nil)

// CoupledInductors stamps a K element: a magnetic coupling coefficient
// between two or more previously-declared inductors, M_ij = k*sqrt(L_i*L_j)
// per pair. The four-term cross-node pattern in StampAC is the complete AC
// stamp, not an abbreviation of a larger one: a coupled pair only interacts
// through its two terminal pairs.
type CoupledInductors struct {
	BaseDevice
	inductors   []InductorComponent
	names       []string
	coefficient float64
}

func NewCoupledInductors(name string, indNames []string, k float64) *CoupledInductors {
	return &CoupledInductors{
		BaseDevice:  BaseDevice{Name: name},
		names:       indNames,
		coefficient: k,
		inductors:   make([]InductorComponent, len(indNames)),
	}
}

func (m *CoupledInductors) GetType() string { return "K" }

func (m *CoupledInductors) SetInductor(index int, ind InductorComponent) error {
	if index < 0 || index >= len(m.inductors) {
		return fmt.Errorf("invalid inductor index: %d", index)
	}
	m.inductors[index] = ind
	return nil
}

func (m *CoupledInductors) GetInductor(index int) (InductorComponent, error) {
	if index < 0 || index >= len(m.inductors) {
		return nil, fmt.Errorf("invalid inductor index: %d", index)
	}
	return m.inductors[index], nil
}

func (m *CoupledInductors) GetInductors() []InductorComponent { return m.inductors }

func (m *CoupledInductors) GetInductorNames() []string { return m.names }

func (m *CoupledInductors) GetNumInductors() int { return len(m.inductors) }

func (m *CoupledInductors) GetCoefficient() float64 { return m.coefficient }

// Validate checks that every named inductor was resolved and the coupling
// coefficient is physically sane (0 < k <= 1). Call after SetInductor has
// bound all windings, before the first Stamp.
func (m *CoupledInductors) Validate() error {
	if len(m.inductors) < 2 {
		return fmt.Errorf("coupled inductors %s: requires at least two windings", m.Name)
	}
	for i, ind := range m.inductors {
		if ind == nil {
			return fmt.Errorf("coupled inductors %s: winding %s not resolved", m.Name, m.names[i])
		}
	}
	if m.coefficient <= 0 || m.coefficient > 1 {
		return fmt.Errorf("coupled inductors %s: coupling coefficient %g out of (0,1]", m.Name, m.coefficient)
	}
	return nil
}

// Pattern declares the union of positions a coupled pair may stamp: the
// branch-branch cross terms of the transient formulation plus the
// node-node cross terms of StampAC, for every winding pair.
func (m *CoupledInductors) Pattern() stamp.TripleIdx {
	var idx stamp.TripleIdx
	add := func(row, col int) {
		if row != 0 && col != 0 && !idx.Contains(row, col) {
			idx.Add(row, col)
		}
	}
	for i := range m.inductors {
		for j := i + 1; j < len(m.inductors); j++ {
			bi, bj := m.inductors[i].BranchIndex(), m.inductors[j].BranchIndex()
			add(bi, bj)
			add(bj, bi)

			ni, nj := m.inductors[i].GetNodes(), m.inductors[j].GetNodes()
			add(ni[0], nj[0])
			add(ni[0], nj[1])
			add(ni[1], nj[0])
			add(ni[1], nj[1])
			add(nj[0], ni[0])
			add(nj[0], ni[1])
			add(nj[1], ni[0])
			add(nj[1], ni[1])
		}
	}
	return idx
}

func (m *CoupledInductors) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(m.inductors) < 2 {
		return fmt.Errorf("coupled inductors %s requires at least two inductors", m.Name)
	}

	if status.Mode != TransientAnalysis {
		return nil
	}

	dt := status.TimeStep
	if dt <= 0 {
		return nil
	}

	type winding struct {
		branchIdx int
		value     float64
		prevI     float64
	}

	w := make([]winding, len(m.inductors))
	for i, ind := range m.inductors {
		w[i] = winding{
			branchIdx: ind.BranchIndex(),
			value:     ind.GetValue(),
			prevI:     ind.GetPreviousCurrent(),
		}
	}

	method := util.IntegrationMethod(status.Method)

	if method == util.ForwardEulerMethod {
		// Explicit: the coupling term is carried entirely by the other
		// winding's known last current, with no new matrix dependency.
		for i := range w {
			for j := i + 1; j < len(w); j++ {
				Mij := m.coefficient * math.Sqrt(w[i].value*w[j].value)
				matrix.AddRHS(w[i].branchIdx, -Mij*w[j].prevI/dt)
				matrix.AddRHS(w[j].branchIdx, -Mij*w[i].prevI/dt)
			}
		}
		return nil
	}

	order := 1
	if method == util.TrapezoidalMethod {
		order = 2
	}
	coeffs := util.GetIntegratorCoeffs(method, order, dt)
	c0 := coeffs[0]

	for i := range w {
		for j := i + 1; j < len(w); j++ {
			Mij := m.coefficient * math.Sqrt(w[i].value*w[j].value)

			matrix.AddElement(w[i].branchIdx, w[j].branchIdx, -Mij*c0)
			matrix.AddElement(w[j].branchIdx, w[i].branchIdx, -Mij*c0)

			matrix.AddRHS(w[i].branchIdx, -Mij*c0*w[j].prevI)
			matrix.AddRHS(w[j].branchIdx, -Mij*c0*w[i].prevI)
		}
	}

	return nil
}

func (m *CoupledInductors) StampAC(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(m.inductors) < 2 {
		return fmt.Errorf("coupled inductors %s requires at least two inductors", m.Name)
	}

	omega := 2 * math.Pi * status.Frequency
	n := len(m.inductors)

	L := make([]float64, n)
	nodes := make([][2]int, n)
	for i := range n {
		L[i] = m.inductors[i].GetValue()
		nodes[i] = [2]int{m.inductors[i].GetNodes()[0], m.inductors[i].GetNodes()[1]}
	}

	for i := range n {
		for j := i + 1; j < n; j++ {
			Mij := m.coefficient * math.Sqrt(L[i]*L[j])
			if Mij == 0.0 {
				continue
			}

			yImag := omega * Mij

			if nodes[i][0] > 0 {
				if nodes[j][0] > 0 {
					matrix.AddComplexElement(nodes[i][0], nodes[j][0], 0, yImag)
				}
				if nodes[j][1] > 0 {
					matrix.AddComplexElement(nodes[i][0], nodes[j][1], 0, -yImag)
				}
			}
			if nodes[i][1] > 0 {
				if nodes[j][0] > 0 {
					matrix.AddComplexElement(nodes[i][1], nodes[j][0], 0, -yImag)
				}
				if nodes[j][1] > 0 {
					matrix.AddComplexElement(nodes[i][1], nodes[j][1], 0, yImag)
				}
			}
			if nodes[j][0] > 0 {
				if nodes[i][0] > 0 {
					matrix.AddComplexElement(nodes[j][0], nodes[i][0], 0, yImag)
				}
				if nodes[i][1] > 0 {
					matrix.AddComplexElement(nodes[j][0], nodes[i][1], 0, -yImag)
				}
			}
			if nodes[j][1] > 0 {
				if nodes[i][0] > 0 {
					matrix.AddComplexElement(nodes[j][1], nodes[i][0], 0, -yImag)
				}
				if nodes[i][1] > 0 {
					matrix.AddComplexElement(nodes[j][1], nodes[i][1], 0, yImag)
				}
			}
		}
	}

	return nil
}
