// provider.go --  This file is part of the goscf project.
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

// Package integ defines the integral-provider contract the SCF core is
// written against, together with a native pure-Go backend for s-type
// contracted Gaussians. The solver treats a Provider as an opaque service;
// any backend (including a cgo binding to an external integral library) can
// stand in as long as it honors the contract.
package integ

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/mol"
)

var ErrUnsupportedShell = errors.New("integ: only s-type shells are supported by the native backend")

// Provider supplies one- and two-electron integrals over atomic orbitals.
type Provider interface {
	// Hcore returns the one-electron core Hamiltonian (kinetic + nuclear
	// attraction).
	Hcore(m *mol.Molecule) (*mat.Dense, error)

	// Overlap returns the basis overlap matrix.
	Overlap(m *mol.Molecule) (*mat.Dense, error)

	// CrossOverlap returns the rectangular overlap between the basis of a
	// (rows) and the basis of b (columns). Used by guess projections.
	CrossOverlap(a, b *mol.Molecule) (*mat.Dense, error)

	// ERI returns the full two-electron repulsion tensor (ij|kl), flattened
	// as ((i*n+j)*n+k)*n+l. Used by the in-memory potential strategy.
	ERI(m *mol.Molecule) ([]float64, error)

	// JK contracts the two-electron integrals with a density on the fly,
	// returning the Coulomb and exchange matrices without caching the tensor.
	JK(m *mol.Molecule, dm *mat.Dense) (*mat.Dense, *mat.Dense, error)

	// NewScreener initializes the run-scoped direct-SCF screening state.
	// The caller owns the handle and must Release it at run end.
	NewScreener(m *mol.Molecule, threshold float64) (Screener, error)
}

// Screener is the run-scoped state of the direct (integral-recomputing)
// strategy. Not safe for concurrent use; one handle per run.
type Screener interface {
	// JK contracts against dm, skipping integral blocks the screening bound
	// proves negligible. dm is typically a density difference.
	JK(dm *mat.Dense) (*mat.Dense, *mat.Dense, error)

	// Release frees the screening state. Safe to call more than once.
	Release()
}

// DotERIDM contracts a cached integral tensor with a density matrix,
// returning the Coulomb matrix J and exchange matrix K.
func DotERIDM(eri []float64, n int, dm *mat.Dense) (*mat.Dense, *mat.Dense) {
	j := mat.NewDense(n, n, nil)
	k := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for jj := 0; jj < n; jj++ {
			var sj, sk float64
			for kk := 0; kk < n; kk++ {
				for l := 0; l < n; l++ {
					d := dm.At(kk, l)
					sj += d * eri[((i*n+jj)*n+kk)*n+l]
					sk += d * eri[((i*n+l)*n+kk)*n+jj]
				}
			}
			j.Set(i, jj, sj)
			k.Set(i, jj, sk)
		}
	}
	return j, k
}
