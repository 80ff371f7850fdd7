package analysis

import "errors"

// Sentinel errors returned (wrapped with fmt.Errorf("%w", ...)) by the
// analysis drivers so callers can distinguish failure modes with
// errors.Is instead of parsing messages.
var (
	// ErrConvergence is returned when Newton-Raphson iteration exhausts
	// its iteration budget without satisfying the VECTOL absolute
	// convergence test. OP first retries with gmin stepping and then
	// source stepping, TRAN with gmin stepping; DC sweep points are not
	// retried.
	ErrConvergence = errors.New("analysis: failed to converge")

	// ErrSingularMatrix is returned when the linear solve backend reports
	// a singular or near-singular system.
	ErrSingularMatrix = errors.New("analysis: singular matrix")

	// ErrMinTimestep is returned when adaptive timestep control shrinks
	// below the configured floor without finding an acceptable step.
	ErrMinTimestep = errors.New("analysis: timestep below minimum")

	// ErrInvalidSweep is returned for a DC sweep with an unsupported
	// sweep source count. Mismatched source/start/stop/step lengths are
	// not reported through it: NewDCSweep panics on those.
	ErrInvalidSweep = errors.New("analysis: invalid sweep specification")

	// ErrSourceNotFound is returned when a DC sweep references a source
	// name absent from the circuit.
	ErrSourceNotFound = errors.New("analysis: source not found")
)
