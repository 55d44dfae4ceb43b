// molecule.go --  This file is part of the goscf project.
//
//	goscf is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------

// Package mol holds the molecule descriptor: atoms, nuclear charges,
// contracted-Gaussian shells and the basis-function layout derived from them.
// A Molecule is immutable once built; the solver holds a read-only reference
// for the duration of a run.
package mol

import (
	"errors"
	"fmt"
	"math"
)

// Bohr radius in angstrom, used when converting input geometries.
const Bohr = 0.52917720859

var (
	ErrUnknownElement = errors.New("mol: unknown element symbol")
	ErrUnknownBasis   = errors.New("mol: unknown basis set")
	ErrNoElectrons    = errors.New("mol: molecule has no electrons")
)

// Shell is one contracted Gaussian shell. L is the angular momentum,
// Exps/Coeffs the primitive exponents and contraction coefficients.
type Shell struct {
	L      int
	Exps   []float64
	Coeffs []float64
}

// NumFuncs returns the number of basis functions the shell spans.
func (s Shell) NumFuncs() int { return 2*s.L + 1 }

// Atom is one nucleus with its basis shells. Coords are in bohr.
type Atom struct {
	Symbol string
	Z      int
	Coords [3]float64
	Shells []Shell
}

// Molecule is the full system descriptor.
type Molecule struct {
	Atoms     []Atom
	Charge    int
	BasisName string
}

// New builds a molecule from atom symbols/positions (bohr) and attaches the
// named basis set from the embedded tables. The electron count must be
// positive after the charge adjustment.
func New(basis string, charge int, atoms ...Atom) (*Molecule, error) {
	set, ok := Sets[basis]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBasis, basis)
	}
	m := &Molecule{Charge: charge, BasisName: basis}
	for _, a := range atoms {
		z, err := ZOf(a.Symbol)
		if err != nil {
			return nil, err
		}
		shells, ok := set[a.Symbol]
		if !ok {
			return nil, fmt.Errorf("%w: no %s entry for element %s", ErrUnknownBasis, basis, a.Symbol)
		}
		a.Z = z
		a.Shells = shells
		m.Atoms = append(m.Atoms, a)
	}
	if m.Nelec() < 1 {
		return nil, ErrNoElectrons
	}
	return m, nil
}

// WithShells returns a copy of the molecule carrying the given per-element
// shells instead of its own basis. Used for minimal-basis projections.
func (m *Molecule) WithShells(name string, set map[string][]Shell) (*Molecule, error) {
	out := &Molecule{Charge: m.Charge, BasisName: name}
	for _, a := range m.Atoms {
		shells, ok := set[a.Symbol]
		if !ok {
			return nil, fmt.Errorf("%w: no %s entry for element %s", ErrUnknownBasis, name, a.Symbol)
		}
		b := a
		b.Shells = shells
		out.Atoms = append(out.Atoms, b)
	}
	return out, nil
}

// Nelec is the electron count: sum of nuclear charges minus the molecular charge.
func (m *Molecule) Nelec() int {
	n := -m.Charge
	for _, a := range m.Atoms {
		n += a.Z
	}
	return n
}

// NumBasis is the total number of basis functions.
func (m *Molecule) NumBasis() int {
	n := 0
	for _, a := range m.Atoms {
		for _, s := range a.Shells {
			n += s.NumFuncs()
		}
	}
	return n
}

// AtomOffsets gives the index of the first basis function of each atom.
func (m *Molecule) AtomOffsets() []int {
	offs := make([]int, len(m.Atoms))
	n := 0
	for i, a := range m.Atoms {
		offs[i] = n
		for _, s := range a.Shells {
			n += s.NumFuncs()
		}
	}
	return offs
}

// NuclearRepulsion is the classical nucleus-nucleus energy in hartree.
func (m *Molecule) NuclearRepulsion() float64 {
	res := 0.0
	for i := range m.Atoms {
		for j := 0; j < i; j++ {
			dx := m.Atoms[i].Coords[0] - m.Atoms[j].Coords[0]
			dy := m.Atoms[i].Coords[1] - m.Atoms[j].Coords[1]
			dz := m.Atoms[i].Coords[2] - m.Atoms[j].Coords[2]
			res += float64(m.Atoms[i].Z) * float64(m.Atoms[j].Z) / math.Sqrt(dx*dx+dy*dy+dz*dz)
		}
	}
	return res
}

// SameStructure reports whether two molecules describe the same nuclear
// frame: equal atom counts and equal nuclear charge sequences.
func (m *Molecule) SameStructure(o *Molecule) bool {
	if o == nil || len(m.Atoms) != len(o.Atoms) {
		return false
	}
	for i := range m.Atoms {
		if m.Atoms[i].Z != o.Atoms[i].Z {
			return false
		}
	}
	return true
}

// FromAngstrom converts a coordinate triple from angstrom to bohr.
func FromAngstrom(xyz [3]float64) [3]float64 {
	return [3]float64{xyz[0] / Bohr, xyz[1] / Bohr, xyz[2] / Bohr}
}
