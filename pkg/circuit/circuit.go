package circuit

import (
	"fmt"
	"sort"

	"github.com/voidheart88/gospice/pkg/device"
	"github.com/voidheart88/gospice/pkg/matrix"
	"github.com/voidheart88/gospice/pkg/netlist"
	"github.com/voidheart88/gospice/pkg/variable"
)

type Circuit struct {
	name             string
	nodeMap          map[string]int
	branchMap        map[string]int
	devices          []device.Device
	numNodes         int
	Matrix           matrix.Backend
	Status           *device.CircuitStatus
	Time             float64
	timeStep         float64
	isComplex        bool
	prevSolution     map[string]float64
	nonlinearDevices []device.NonLinear
	Models           map[string]device.ModelParam
}

func New(name string) *Circuit {
	return NewWithComplex(name, false)
}

func NewWithComplex(name string, isComplex bool) *Circuit {
	return &Circuit{
		name:         name,
		nodeMap:      make(map[string]int),
		branchMap:    make(map[string]int),
		devices:      make([]device.Device, 0),
		Status:       &device.CircuitStatus{},
		prevSolution: make(map[string]float64),
		isComplex:    isComplex,
		Models:       make(map[string]device.ModelParam),
	}
}

func (c *Circuit) SetModels(models map[string]device.ModelParam) {
	c.Models = models
}

// branchOwningTypes lists the netlist element type codes that introduce
// their own MNA branch-current unknown, beyond the node unknowns.
func branchOwningTypes(elemType string) bool {
	switch elemType {
	case "V", "L", "E", "H":
		return true
	default:
		return false
	}
}

func (c *Circuit) AssignNodeBranchMaps(elements []netlist.Element) error {
	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if nodeName == "0" || nodeName == "gnd" {
				continue
			}
			if _, exists := c.nodeMap[nodeName]; !exists {
				idx := len(c.nodeMap) + 1
				c.nodeMap[nodeName] = idx
			}
		}
	}

	branchStart := len(c.nodeMap) + 1
	for _, elem := range elements {
		if branchOwningTypes(elem.Type) {
			c.branchMap[elem.Name] = branchStart
			branchStart++
		}
	}

	c.numNodes = len(c.nodeMap)
	return nil
}

// CreateMatrix sizes the solver to this circuit's variable count and picks
// a backend per spec §4.8's size policy: matrix.Select returns a dense
// gonum-backed solver below matrix's size cutover and the sparse
// edp1096/sparse-backed one above it, both satisfying matrix.Backend
// identically as far as Circuit is concerned.
func (c *Circuit) CreateMatrix() {
	matrixSize := len(c.nodeMap) + len(c.branchMap)
	c.Matrix = matrix.Select(matrixSize, c.isComplex)
}

func (c *Circuit) SetupDevices(elements []netlist.Element) error {
	deviceMap := make(map[string]device.Device)

	for _, elem := range elements {
		if elem.Type == "K" {
			continue // coupled inductors reference other devices, handled below
		}
		dev, err := netlist.CreateDevice(elem, c.nodeMap, c.Models)
		if err != nil {
			return fmt.Errorf("creating device %s: %v", elem.Name, err)
		}

		nodeIndices := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			if nodeName == "0" || nodeName == "gnd" {
				nodeIndices[i] = 0
				continue
			}
			nodeIndices[i] = c.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		if bo, ok := dev.(device.BranchOwner); ok {
			if bIdx, ok := c.branchMap[elem.Name]; ok {
				bo.SetBranchIndex(bIdx)
			}
		}

		if nl, ok := dev.(device.NonLinear); ok {
			c.nonlinearDevices = append(c.nonlinearDevices, nl)
		}

		deviceMap[elem.Name] = dev
		c.devices = append(c.devices, dev)
	}

	for _, dev := range c.devices {
		if cr, ok := dev.(device.ControlNodeResolver); ok {
			names := cr.GetControlNodeNames()
			var nodes [2]int
			for i, name := range names {
				if i >= 2 {
					break
				}
				if name == "0" || name == "gnd" {
					continue
				}
				nodes[i] = c.nodeMap[name]
			}
			cr.SetControlNodes(nodes)
		}

		if cb, ok := dev.(device.ControlBranchResolver); ok {
			ctrlName := cb.GetControlName()
			bIdx, ok := c.branchMap[ctrlName]
			if !ok {
				return fmt.Errorf("device %s: controlling source %s has no branch current", dev.GetName(), ctrlName)
			}
			cb.SetControlBranch(bIdx)
		}
	}

	for _, elem := range elements {
		if elem.Type != "K" {
			continue
		}
		dev, err := netlist.CreateDevice(elem, c.nodeMap, c.Models)
		if err != nil {
			return fmt.Errorf("creating coupled inductors %s: %v", elem.Name, err)
		}

		coupled := dev.(*device.CoupledInductors)
		for i, name := range coupled.GetInductorNames() {
			ind, ok := deviceMap[name]
			if !ok {
				return fmt.Errorf("inductor %s not found for coupling %s", name, coupled.GetName())
			}
			indComp, ok := ind.(device.InductorComponent)
			if !ok {
				return fmt.Errorf("device %s is not an inductor component", name)
			}
			if err := coupled.SetInductor(i, indComp); err != nil {
				return fmt.Errorf("setting inductor %s in coupling %s: %v", name, coupled.GetName(), err)
			}
		}
		if err := coupled.Validate(); err != nil {
			return fmt.Errorf("validating coupled inductors %s: %v", coupled.GetName(), err)
		}

		c.devices = append(c.devices, dev)
	}

	cktStatus := &device.CircuitStatus{Time: 0}
	if err := c.Stamp(cktStatus); err != nil {
		return fmt.Errorf("initial stamping failed: %v", err)
	}

	// An element-free circuit stamps nothing into either A or b, the
	// malformed-circuit case spec §7's ConstantMatrixEmpty/
	// ConstantVectorEmpty kinds describe (e.g. an empty netlist); it is
	// reported as ErrConstantMatrixEmpty. A
	// circuit with devices but no independent source can legitimately
	// leave b all-zero (a pure resistor network), so that case is not an
	// error.
	if len(c.devices) == 0 {
		return ErrConstantMatrixEmpty
	}

	if si, ok := c.Matrix.(structureInitializer); ok {
		si.SetupElements()
	}

	return nil
}

func (c *Circuit) Stamp(status *device.CircuitStatus) error {
	for _, dev := range c.devices {
		if acDev, ok := dev.(device.ACElement); ok && status.Mode == device.ACAnalysis {
			if err := acDev.StampAC(c.Matrix, status); err != nil {
				return fmt.Errorf("stamping device %s: %v", dev.GetName(), err)
			}
			continue
		}
		if err := dev.Stamp(c.Matrix, status); err != nil {
			return fmt.Errorf("stamping device %s: %v", dev.GetName(), err)
		}
	}
	return nil
}

func (c *Circuit) SetTimeStep(dt float64) {
	c.timeStep = dt
	if c.Status != nil {
		c.Status.TimeStep = dt
	}

	for _, dev := range c.devices {
		if td, ok := dev.(device.TimeDependent); ok {
			td.SetTimeStep(dt)
		}
	}
}

func (c *Circuit) Update() {
	solution := c.Matrix.Solution()

	for _, dev := range c.devices {
		if td, ok := dev.(device.TimeDependent); ok {
			td.UpdateState(solution, c.Status)
		}
	}

	for nodeName, nodeIdx := range c.nodeMap {
		key := fmt.Sprintf("V(%s)", nodeName)
		c.prevSolution[key] = solution[nodeIdx]
	}

	for devName, branchIdx := range c.branchMap {
		key := fmt.Sprintf("I(%s)", devName)
		c.prevSolution[key] = solution[branchIdx]
	}
}

func (c *Circuit) GetMatrix() matrix.Backend { return c.Matrix }

func (c *Circuit) GetNodeMap() map[string]int { return c.nodeMap }

func (c *Circuit) GetBranchMap() map[string]int { return c.branchMap }

// Variables returns a snapshot of every non-ground unknown in this
// circuit's MNA system, node voltages first then branch currents, each in
// ascending matrix-index order, built through a variable.Registry the way
// a frontend would describe the system to a backend.
func (c *Circuit) Variables() []variable.Variable {
	type entry struct {
		name string
		idx  int
		unit variable.Unit
	}

	entries := make([]entry, 0, len(c.nodeMap)+len(c.branchMap))
	for name, idx := range c.nodeMap {
		entries = append(entries, entry{name, idx, variable.Volt})
	}
	for name, idx := range c.branchMap {
		entries = append(entries, entry{name, idx, variable.Ampere})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	reg := variable.NewRegistry()
	for _, e := range entries {
		reg.Get(e.name, e.unit)
	}
	return reg.All()
}

func (c *Circuit) GetDevices() []device.Device { return c.devices }

func (c *Circuit) GetSolution() map[string]float64 {
	solution := make(map[string]float64)
	matrixSolution := c.Matrix.Solution()

	for name, idx := range c.nodeMap {
		solution[fmt.Sprintf("V(%s)", name)] = matrixSolution[idx]
	}

	for name, idx := range c.branchMap {
		solution[fmt.Sprintf("I(%s)", name)] = matrixSolution[idx]
	}

	for _, dev := range c.devices {
		if dev.GetType() == "R" {
			nodes := dev.GetNodes()
			v1, v2 := 0.0, 0.0
			if nodes[0] > 0 {
				v1 = matrixSolution[nodes[0]]
			}
			if nodes[1] > 0 {
				v2 = matrixSolution[nodes[1]]
			}
			current := (v1 - v2) / dev.GetValue()
			solution[fmt.Sprintf("I(%s)", dev.GetName())] = current
		}
	}

	return solution
}

func (c *Circuit) Destroy() {
	if c.Matrix != nil {
		c.Matrix.Destroy()
	}
}

func (c *Circuit) Name() string { return c.name }

func (c *Circuit) GetNumNodes() int { return c.numNodes }

func (c *Circuit) GetNodeVoltage(nodeIdx int) float64 {
	if nodeIdx <= 0 {
		return 0
	}

	solution := c.Matrix.Solution()
	if nodeIdx >= len(solution) {
		return 0
	}

	return solution[nodeIdx]
}

func (c *Circuit) UpdateNonlinearVoltages(solution []float64) error {
	for _, dev := range c.nonlinearDevices {
		if err := dev.UpdateVoltages(solution); err != nil {
			return fmt.Errorf("updating voltages: %v", err)
		}
	}
	return nil
}
