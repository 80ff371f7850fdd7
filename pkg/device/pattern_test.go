package device

import "testing"

// TestStampsAreSubsetOfDeclaredPattern exercises spec §8's universal
// invariant ("stamps are a subset of E's advertised triple_idx") against
// every Patterned element, across every mode that changes its stamp shape.
func TestStampsAreSubsetOfDeclaredPattern(t *testing.T) {
	r := NewResistor("R1", []string{"1", "2"}, 1000)
	r.SetNodes([]int{1, 2})

	c := NewCapacitor("C1", []string{"1", "2"}, 1e-6)
	c.SetNodes([]int{1, 2})

	l := NewInductor("L1", []string{"1", "3"}, 1e-3)
	l.SetNodes([]int{1, 3})
	l.SetBranchIndex(4)

	d := NewDiode("D1", []string{"1", "2"})
	d.SetNodes([]int{1, 2})

	for _, mode := range []AnalysisMode{OperatingPointAnalysis, TransientAnalysis, ACAnalysis} {
		status := &CircuitStatus{Mode: mode, TimeStep: 1e-6, Frequency: 1e3, Gmin: 1e-9}

		for _, dev := range []Device{r, c, l, d} {
			m := &recordingMatrix{}
			if err := dev.Stamp(m, status); err != nil {
				t.Fatalf("%s stamp at mode %v: %v", dev.GetName(), mode, err)
			}
			m.assertStampsSubsetOfPattern(t, dev.(Patterned))
		}
	}
}

func TestCoupledInductorsStampsAreSubsetOfDeclaredPattern(t *testing.T) {
	l1 := NewInductor("L1", []string{"1", "2"}, 1e-3)
	l1.SetNodes([]int{1, 2})
	l1.SetBranchIndex(5)

	l2 := NewInductor("L2", []string{"3", "0"}, 1e-3)
	l2.SetNodes([]int{3, 0})
	l2.SetBranchIndex(6)

	k := NewCoupledInductors("K1", []string{"L1", "L2"}, 0.5)
	if err := k.SetInductor(0, l1); err != nil {
		t.Fatal(err)
	}
	if err := k.SetInductor(1, l2); err != nil {
		t.Fatal(err)
	}

	transientStatus := &CircuitStatus{Mode: TransientAnalysis, TimeStep: 1e-6}
	m := &recordingMatrix{}
	if err := k.Stamp(m, transientStatus); err != nil {
		t.Fatal(err)
	}
	m.assertStampsSubsetOfPattern(t, k)

	acStatus := &CircuitStatus{Mode: ACAnalysis, Frequency: 1e3}
	m2 := &recordingMatrix{}
	if err := k.StampAC(m2, acStatus); err != nil {
		t.Fatal(err)
	}
	m2.assertStampsSubsetOfPattern(t, k)
}
