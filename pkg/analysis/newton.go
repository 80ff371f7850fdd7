package analysis

import (
	"fmt"
	"math"

	"github.com/voidheart88/gospice/internal/consts"
	"github.com/voidheart88/gospice/pkg/circuit"
	"github.com/voidheart88/gospice/pkg/device"
)

// newtonSolve runs Newton-Raphson on ckt under the given status (status.Gmin
// is whatever the caller wants stamped this pass) until every entry of the
// solution vector moves by less than consts.VecTol between iterations, or
// maxIter is exhausted. It replaces the three near-identical doNRiter copies
// op.go/dc.go/tran.go used to carry.
func newtonSolve(ckt *circuit.Circuit, status *device.CircuitStatus, maxIter int) error {
	mat := ckt.GetMatrix()
	ckt.Status = status

	var oldSolution []float64

	for iter := 0; iter < maxIter; iter++ {
		mat.Clear()

		if iter > 0 {
			if err := ckt.UpdateNonlinearVoltages(oldSolution); err != nil {
				return fmt.Errorf("updating nonlinear voltages: %w", err)
			}
		}

		if err := ckt.Stamp(status); err != nil {
			return fmt.Errorf("stamping error: %w", err)
		}
		mat.LoadGmin(status.Gmin)

		if err := mat.Solve(); err != nil {
			return fmt.Errorf("%w: %v", ErrSingularMatrix, err)
		}

		solution := mat.Solution()

		if iter > 0 && converged(oldSolution, solution) {
			return nil
		}

		if oldSolution == nil {
			oldSolution = make([]float64, len(solution))
		}
		copy(oldSolution, solution)
	}

	return fmt.Errorf("%w: %d iterations", ErrConvergence, maxIter)
}

// converged applies spec's single absolute VECTOL test across every
// unknown, node voltages and branch currents alike, in place of the
// combined relative+absolute check: one fixed threshold for every entry,
// with no special case for near-zero solution entries.
func converged(oldSol, newSol []float64) bool {
	if len(oldSol) != len(newSol) {
		return false
	}
	for i := range newSol {
		if math.Abs(newSol[i]-oldSol[i]) > consts.VecTol {
			return false
		}
	}
	return true
}

// gminStepCascade retries newtonSolve across a descending gmin ladder, the
// standard fallback when a zero-gmin solve fails to converge from a cold
// start.
func gminStepCascade(ckt *circuit.Circuit, status *device.CircuitStatus, maxIter int) error {
	gminValues := []float64{1e-2, 1e-3, 1e-4, 1e-5, 1e-6, 1e-7, 1e-8, 1e-9, 1e-10, 1e-11, 1e-12}

	// Each rung is a best-effort warm start for the next; only the final
	// zero-gmin solve's error is authoritative.
	for _, gmin := range gminValues {
		status.Gmin = gmin
		_ = newtonSolve(ckt, status, maxIter)
	}

	status.Gmin = 0
	return newtonSolve(ckt, status, maxIter)
}

// sourceStepCascade ramps every independent voltage source from 10% to 100%
// of its target value, relying on each step's converged solution as the
// initial guess for the next — the last-resort fallback for circuits gmin
// stepping alone cannot carry to convergence.
func sourceStepCascade(ckt *circuit.Circuit, status *device.CircuitStatus, maxIter int) error {
	originals := make(map[string]float64)
	for _, dev := range ckt.GetDevices() {
		if v, ok := dev.(*device.VoltageSource); ok {
			originals[v.GetName()] = v.GetValue()
		}
	}

	defer func() {
		for _, dev := range ckt.GetDevices() {
			if v, ok := dev.(*device.VoltageSource); ok {
				if orig, ok := originals[v.GetName()]; ok {
					v.SetValue(orig)
				}
			}
		}
	}()

	for factor := 0.1; factor <= 1.0+1e-9; factor += 0.1 {
		for _, dev := range ckt.GetDevices() {
			if v, ok := dev.(*device.VoltageSource); ok {
				if orig, ok := originals[v.GetName()]; ok {
					v.SetValue(orig * factor)
				}
			}
		}

		status.Gmin = 0
		if err := newtonSolve(ckt, status, maxIter); err != nil {
			return fmt.Errorf("source stepping at %.0f%%: %w", factor*100, err)
		}
	}

	return nil
}
