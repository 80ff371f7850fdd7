// Package variable implements the append-only variable registry that
// backs the MNA solution vector.
package variable

// Unit tags what kind of unknown a Variable represents.
type Unit int

const (
	Volt Unit = iota
	Ampere
)

func (u Unit) String() string {
	if u == Ampere {
		return "A"
	}
	return "V"
}

// Variable is a single unknown in the MNA system: a node voltage or a
// branch current, with a stable name and a dense index into the solution
// vector.
type Variable struct {
	Name  string
	Unit  Unit
	Index int
}

// GroundIndex is returned for the literal ground node; no Variable is ever
// created for it.
const GroundIndex = -1

// Registry is a thin append-only vector of Variables plus a name->index
// map, populated once before a simulation run and read-only thereafter.
type Registry struct {
	vars  []Variable
	index map[string]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Get returns the index of the Variable named name, creating it with the
// given unit if it does not already exist. The ground names "0" and "gnd"
// always resolve to GroundIndex without allocating a Variable.
func (r *Registry) Get(name string, unit Unit) int {
	if name == "0" || name == "gnd" {
		return GroundIndex
	}
	if i, ok := r.index[name]; ok {
		return i
	}
	idx := len(r.vars)
	r.vars = append(r.vars, Variable{Name: name, Unit: unit, Index: idx})
	r.index[name] = idx
	return idx
}

// Lookup returns the index of an existing Variable, or ok=false if name is
// unknown (ground is reported as GroundIndex, ok=true).
func (r *Registry) Lookup(name string) (int, bool) {
	if name == "0" || name == "gnd" {
		return GroundIndex, true
	}
	i, ok := r.index[name]
	return i, ok
}

// Len is the MNA system dimension: the number of non-ground unknowns.
func (r *Registry) Len() int { return len(r.vars) }

// All returns the Variables in declaration order.
func (r *Registry) All() []Variable { return r.vars }

// Name returns the name of the variable at idx, or "0" for ground.
func (r *Registry) Name(idx int) string {
	if idx == GroundIndex {
		return "0"
	}
	return r.vars[idx].Name
}
