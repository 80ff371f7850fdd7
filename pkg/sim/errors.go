package sim

import "errors"

// Sentinel errors surfaced by Simulator.Run, named after spec §7's error
// kinds. They wrap the underlying pkg/analysis/pkg/circuit error so
// callers can still errors.Is against the lower-level cause.
var (
	// ErrMatrixNonInvertible means the solver detected a singular A
	// (e.g. two ideal voltage sources shorting each other).
	ErrMatrixNonInvertible = errors.New("sim: matrix not invertible")

	// ErrNonConvergentMaxIter means Newton-Raphson exhausted MAXITER
	// iterations without meeting VECTOL.
	ErrNonConvergentMaxIter = errors.New("sim: non-convergent after max iterations")

	// ErrVoltageSourceNotFound means a DC sweep command named a source
	// absent from the circuit's elements.
	ErrVoltageSourceNotFound = errors.New("sim: voltage source not found")

	// ErrUnimplemented means the command is not a supported variant.
	ErrUnimplemented = errors.New("sim: unimplemented command")

	// ErrConstantMatrixEmpty means no element stamped anything into the
	// constant A matrix, the signature of a malformed circuit such as an
	// empty netlist.
	ErrConstantMatrixEmpty = errors.New("sim: constant matrix empty")

	// ErrConstantVectorEmpty means no element stamped anything into the
	// constant b vector. circuit.SetupDevices does not return its
	// lower-level counterpart (an element-free circuit is reported as
	// ErrConstantMatrixEmpty), so NewSimulator never produces this value.
	ErrConstantVectorEmpty = errors.New("sim: constant vector empty")
)
