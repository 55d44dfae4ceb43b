// screen.go --  This file is part of the goscf project.
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
package integ

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/mol"
)

var ErrReleased = errors.New("integ: screener used after Release")

// schwarzScreener is the direct-SCF state of the native backend: the AO list
// plus the Schwarz diagonal q_ij = sqrt((ij|ij)) built once per run.
type schwarzScreener struct {
	aos       []ao
	q         []float64
	threshold float64
}

func (Gaussian) NewScreener(m *mol.Molecule, threshold float64) (Screener, error) {
	aos, err := aosOf(m)
	if err != nil {
		return nil, err
	}
	n := len(aos)
	q := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			q[i*n+j] = math.Sqrt(eriAO(aos[i], aos[j], aos[i], aos[j]))
		}
	}
	return &schwarzScreener{aos: aos, q: q, threshold: threshold}, nil
}

func (s *schwarzScreener) JK(dm *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if s.aos == nil {
		return nil, nil, ErrReleased
	}
	j, k := contractJK(s.aos, dm, s.q, s.threshold)
	return j, k, nil
}

func (s *schwarzScreener) Release() {
	s.aos = nil
	s.q = nil
}
