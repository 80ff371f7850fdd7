package matrix

// Backend is the linear-system surface a Circuit needs from its solver:
// stamp real or complex entries, load a minimum conductance floor onto the
// diagonal, solve, and read back the solution. CircuitMatrix (backed by
// github.com/edp1096/sparse) and DenseMatrix (backed by gonum.org/v1/gonum/mat)
// both satisfy it.
type Backend interface {
	AddElement(i, j int, value float64)
	AddComplexElement(i, j int, real, imag float64)
	AddRHS(i int, value float64)
	AddComplexRHS(i int, real, imag float64)
	LoadGmin(gmin float64)
	Clear()
	Solve() error
	Solution() []float64
	GetComplexSolution(i int) (float64, float64)
	Dim() int
	Destroy()
}

// structureInitializer is implemented by backends (CircuitMatrix) that
// benefit from pre-declaring every (row,col) position once, up front, so
// the sparse library's symbolic factorization can be reused across
// Clear/Solve cycles. DenseMatrix needs no such step: gonum's backing
// store is already dense.
type structureInitializer interface {
	SetupElements()
}

// Printer is implemented by backends that can render the assembled system
// for debugging (--dump-matrix). Not every Backend need support it.
type Printer interface {
	PrintSystem()
}

// denseCutover is the system size below which DenseMatrix's O(n^3) direct
// factorization outperforms the sparse backend's bookkeeping overhead.
const denseCutover = 30

// Select picks DenseMatrix for small systems (op-point checks on
// handful-of-node circuits, the common case while iterating on a netlist)
// and CircuitMatrix's sparse backend once a circuit grows past denseCutover
// unknowns.
func Select(size int, isComplex bool) Backend {
	if size < denseCutover {
		return NewDenseMatrix(size, isComplex)
	}
	return NewMatrix(size, isComplex)
}

func (m *CircuitMatrix) Dim() int { return m.Size }
