package device

import (
	"fmt"

	"github.com/voidheart88/gospice/pkg/matrix"
)

// VCCS is a voltage-controlled current source (G element): a pure
// conductance-like four-terminal stamp with no new MNA unknown, since its
// output current is a linear function of an already-existing voltage
// difference.
type VCCS struct {
	BaseDevice
	gain           float64
	ctrlNodeNames  []string
	ctrlNodes      [2]int
}

func NewVCCS(name string, nodeNames []string, ctrlNodeNames []string, gain float64) *VCCS {
	return &VCCS{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     gain,
		},
		gain:          gain,
		ctrlNodeNames: ctrlNodeNames,
	}
}

func (g *VCCS) GetType() string { return "G" }

func (g *VCCS) SetControlNodes(nodes [2]int) { g.ctrlNodes = nodes }

func (g *VCCS) GetControlNodeNames() []string { return g.ctrlNodeNames }

func (g *VCCS) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := g.Nodes[0], g.Nodes[1]
	nc1, nc2 := g.ctrlNodes[0], g.ctrlNodes[1]

	if n1 != 0 {
		if nc1 != 0 {
			m.AddElement(n1, nc1, g.gain)
		}
		if nc2 != 0 {
			m.AddElement(n1, nc2, -g.gain)
		}
	}
	if n2 != 0 {
		if nc1 != 0 {
			m.AddElement(n2, nc1, -g.gain)
		}
		if nc2 != 0 {
			m.AddElement(n2, nc2, g.gain)
		}
	}

	return nil
}

// VCVS is a voltage-controlled voltage source (E element): an ideal source
// whose value is a gain times a control-node voltage difference, so unlike
// VCCS it needs its own branch-current MNA unknown just as VoltageSource
// does.
type VCVS struct {
	BaseDevice
	gain          float64
	ctrlNodeNames []string
	ctrlNodes     [2]int
	branchIdx     int
}

var _ BranchOwner = (*VCVS)(nil)

func NewVCVS(name string, nodeNames []string, ctrlNodeNames []string, gain float64) *VCVS {
	return &VCVS{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     gain,
		},
		gain:          gain,
		ctrlNodeNames: ctrlNodeNames,
	}
}

func (e *VCVS) GetType() string { return "E" }

func (e *VCVS) SetControlNodes(nodes [2]int) { e.ctrlNodes = nodes }

func (e *VCVS) GetControlNodeNames() []string { return e.ctrlNodeNames }

func (e *VCVS) BranchIndex() int { return e.branchIdx }

func (e *VCVS) SetBranchIndex(idx int) { e.branchIdx = idx }

func (e *VCVS) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := e.Nodes[0], e.Nodes[1]
	nc1, nc2 := e.ctrlNodes[0], e.ctrlNodes[1]
	bIdx := e.branchIdx

	if n1 != 0 {
		m.AddElement(n1, bIdx, 1)
		m.AddElement(bIdx, n1, 1)
	}
	if n2 != 0 {
		m.AddElement(n2, bIdx, -1)
		m.AddElement(bIdx, n2, -1)
	}
	if nc1 != 0 {
		m.AddElement(bIdx, nc1, -e.gain)
	}
	if nc2 != 0 {
		m.AddElement(bIdx, nc2, e.gain)
	}

	return nil
}

// CCCS is a current-controlled current source (F element): its output is a
// gain times the branch current of an already-declared voltage source
// (typically a zero-volt ammeter), so it needs no new unknown, only a
// reference to that source's existing branch row.
type CCCS struct {
	BaseDevice
	gain       float64
	ctrlName   string
	ctrlBranch int
}

func NewCCCS(name string, nodeNames []string, ctrlName string, gain float64) *CCCS {
	return &CCCS{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     gain,
		},
		gain:     gain,
		ctrlName: ctrlName,
	}
}

func (f *CCCS) GetType() string { return "F" }

func (f *CCCS) GetControlName() string { return f.ctrlName }

func (f *CCCS) SetControlBranch(idx int) { f.ctrlBranch = idx }

func (f *CCCS) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	if f.ctrlBranch == 0 {
		return fmt.Errorf("cccs %s: controlling source %s not resolved", f.Name, f.ctrlName)
	}

	n1, n2 := f.Nodes[0], f.Nodes[1]
	if n1 != 0 {
		m.AddElement(n1, f.ctrlBranch, f.gain)
	}
	if n2 != 0 {
		m.AddElement(n2, f.ctrlBranch, -f.gain)
	}

	return nil
}

// CCVS is a current-controlled voltage source (H element): an ideal
// voltage source whose value is a gain times another source's branch
// current, so it needs both its own branch unknown (like VCVS) and a
// resolved reference to the controlling branch (like CCCS).
type CCVS struct {
	BaseDevice
	gain       float64
	ctrlName   string
	ctrlBranch int
	branchIdx  int
}

var _ BranchOwner = (*CCVS)(nil)

func NewCCVS(name string, nodeNames []string, ctrlName string, gain float64) *CCVS {
	return &CCVS{
		BaseDevice: BaseDevice{
			Name:      name,
			Nodes:     make([]int, len(nodeNames)),
			NodeNames: nodeNames,
			Value:     gain,
		},
		gain:     gain,
		ctrlName: ctrlName,
	}
}

func (h *CCVS) GetType() string { return "H" }

func (h *CCVS) GetControlName() string { return h.ctrlName }

func (h *CCVS) SetControlBranch(idx int) { h.ctrlBranch = idx }

func (h *CCVS) BranchIndex() int { return h.branchIdx }

func (h *CCVS) SetBranchIndex(idx int) { h.branchIdx = idx }

func (h *CCVS) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	if h.ctrlBranch == 0 {
		return fmt.Errorf("ccvs %s: controlling source %s not resolved", h.Name, h.ctrlName)
	}

	n1, n2 := h.Nodes[0], h.Nodes[1]
	bIdx := h.branchIdx

	if n1 != 0 {
		m.AddElement(n1, bIdx, 1)
		m.AddElement(bIdx, n1, 1)
	}
	if n2 != 0 {
		m.AddElement(n2, bIdx, -1)
		m.AddElement(bIdx, n2, -1)
	}
	m.AddElement(bIdx, h.ctrlBranch, -h.gain)

	return nil
}
