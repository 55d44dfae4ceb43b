// minao.go --  This file is part of the goscf project.
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
package scf

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/integ"
	"github.com/goscf/goscf/mol"
)

// minaoShells is the minimal reference basis used by the projection guess,
// kept separate from the computational basis tables so the two can diverge.
var minaoShells = map[string][]mol.Shell{
	"H": {
		{L: 0,
			Exps:   []float64{0.3425250914e+01, 0.6239137298e+00, 0.1688554040e+00},
			Coeffs: []float64{0.1543289673e+00, 0.5353281423e+00, 0.4446345422e+00}},
	},
	"He": {
		{L: 0,
			Exps:   []float64{0.6362421394e+01, 0.1158922999e+01, 0.3136497915e+00},
			Coeffs: []float64{0.1543289673e+00, 0.5353281423e+00, 0.4446345422e+00}},
	},
}

// minaoOcc gives the neutral-atom occupation of each minimal-basis function.
var minaoOcc = map[string][]float64{
	"H":  {1},
	"He": {2},
}

// minaoProjection projects the occupied minimal-basis atomic orbitals into
// the computational basis: C = S^{-1} <comp|minao>. The returned coefficient
// matrix is rectangular, one column per minimal-basis function, with the
// matching neutral-atom occupations.
func minaoProjection(prov integ.Provider, m *mol.Molecule, s1e *mat.Dense) (*mat.Dense, []float64, error) {
	minMol, err := m.WithShells("minao", minaoShells)
	if err != nil {
		return nil, nil, err
	}
	var occ []float64
	for _, a := range minMol.Atoms {
		ao, ok := minaoOcc[a.Symbol]
		if !ok {
			return nil, nil, fmt.Errorf("%w: no minao occupation for element %s", mol.ErrUnknownBasis, a.Symbol)
		}
		occ = append(occ, ao...)
	}
	cross, err := prov.CrossOverlap(m, minMol)
	if err != nil {
		return nil, nil, err
	}
	var c mat.Dense
	if err := c.Solve(s1e, cross); err != nil {
		return nil, nil, fmt.Errorf("scf: minao projection: %w", err)
	}
	return &c, occ, nil
}
