package circuit

import "errors"

// Sentinel errors named after spec §7's ConstantMatrixEmpty/
// ConstantVectorEmpty kinds: no element produced any constant stamp at
// all, the signature of a malformed circuit such as an empty netlist.
// SetupDevices returns ErrConstantMatrixEmpty when the circuit has no
// elements; it does not return ErrConstantVectorEmpty, since an all-zero b
// from a circuit that has devices is accepted.
var (
	ErrConstantMatrixEmpty = errors.New("circuit: no element stamped a into the constant matrix")
	ErrConstantVectorEmpty = errors.New("circuit: no element stamped b into the constant vector")
)
