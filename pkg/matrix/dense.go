package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DenseMatrix is a gonum-backed Backend for small circuits, where a direct
// dense LU factorization is cheaper than sparse bookkeeping. Real and
// imaginary parts are accumulated separately and only combined into the
// block-real 2n-by-2n system (the standard [[A,-B],[B,A]] embedding of a
// complex linear system) at Solve time.
type DenseMatrix struct {
	size      int
	isComplex bool
	a         *mat.Dense // real part, n x n
	b         *mat.Dense // imaginary part, n x n (AC only)
	rhs       []float64  // 1-based, length size+1
	rhsImag   []float64
	solution  []float64
	solImag   []float64
}

func NewDenseMatrix(size int, isComplex bool) *DenseMatrix {
	return &DenseMatrix{
		size:      size,
		isComplex: isComplex,
		a:         mat.NewDense(size, size, nil),
		b:         mat.NewDense(size, size, nil),
		rhs:       make([]float64, size+1),
		rhsImag:   make([]float64, size+1),
		solution:  make([]float64, size+1),
		solImag:   make([]float64, size+1),
	}
}

func (m *DenseMatrix) inBounds(i, j int) bool {
	return i >= 1 && i <= m.size && j >= 1 && j <= m.size
}

func (m *DenseMatrix) AddElement(i, j int, value float64) {
	if !m.inBounds(i, j) {
		return
	}
	m.a.Set(i-1, j-1, m.a.At(i-1, j-1)+value)
}

func (m *DenseMatrix) AddComplexElement(i, j int, real, imag float64) {
	if !m.inBounds(i, j) {
		return
	}
	m.a.Set(i-1, j-1, m.a.At(i-1, j-1)+real)
	m.b.Set(i-1, j-1, m.b.At(i-1, j-1)+imag)
}

func (m *DenseMatrix) AddRHS(i int, value float64) {
	if i < 1 || i > m.size {
		return
	}
	m.rhs[i] += value
}

func (m *DenseMatrix) AddComplexRHS(i int, real, imag float64) {
	if i < 1 || i > m.size {
		return
	}
	m.rhs[i] += real
	m.rhsImag[i] += imag
}

func (m *DenseMatrix) LoadGmin(gmin float64) {
	for i := 0; i < m.size; i++ {
		m.a.Set(i, i, m.a.At(i, i)+gmin)
	}
}

func (m *DenseMatrix) Clear() {
	m.a = mat.NewDense(m.size, m.size, nil)
	m.b = mat.NewDense(m.size, m.size, nil)
	for i := range m.rhs {
		m.rhs[i] = 0
		m.rhsImag[i] = 0
	}
}

func (m *DenseMatrix) Solve() error {
	if m.isComplex {
		return m.solveComplex()
	}

	x := mat.NewVecDense(m.size, nil)
	rhsVec := mat.NewVecDense(m.size, m.rhs[1:m.size+1])

	var lu mat.LU
	lu.Factorize(m.a)
	if err := x.SolveVec(&lu, rhsVec); err != nil {
		return fmt.Errorf("dense solve failed: %v", err)
	}

	for i := 0; i < m.size; i++ {
		m.solution[i+1] = x.AtVec(i)
	}
	return nil
}

// solveComplex embeds the complex system (A+jB)(x+jy) = (bx+jby) as the
// real 2n-by-2n system [[A,-B],[B,A]] [x;y] = [bx;by].
func (m *DenseMatrix) solveComplex() error {
	n := m.size
	full := mat.NewDense(2*n, 2*n, nil)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			full.Set(i, j, m.a.At(i, j))
			full.Set(i, j+n, -m.b.At(i, j))
			full.Set(i+n, j, m.b.At(i, j))
			full.Set(i+n, j+n, m.a.At(i, j))
		}
	}

	rhs := mat.NewVecDense(2*n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, m.rhs[i+1])
		rhs.SetVec(i+n, m.rhsImag[i+1])
	}

	x := mat.NewVecDense(2*n, nil)
	var lu mat.LU
	lu.Factorize(full)
	if err := x.SolveVec(&lu, rhs); err != nil {
		return fmt.Errorf("dense complex solve failed: %v", err)
	}

	for i := 0; i < n; i++ {
		m.solution[i+1] = x.AtVec(i)
		m.solImag[i+1] = x.AtVec(i + n)
	}
	return nil
}

func (m *DenseMatrix) Solution() []float64 { return m.solution }

func (m *DenseMatrix) GetComplexSolution(i int) (float64, float64) {
	if !m.isComplex || i < 1 || i > m.size {
		return 0, 0
	}
	return m.solution[i], m.solImag[i]
}

func (m *DenseMatrix) Dim() int { return m.size }

func (m *DenseMatrix) Destroy() {}
