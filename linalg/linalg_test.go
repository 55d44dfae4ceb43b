// linalg_test.go --  This file is part of the goscf project.
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
package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSqrtInverse(t *testing.T) {
	s := mat.NewDense(2, 2, []float64{1, 0.5, 0.5, 1})
	x, err := SqrtInverse(s)
	require.NoError(t, err)

	// X S X must recover the identity
	var prod mat.Dense
	prod.Mul(x, s)
	prod.Mul(&prod, x)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, prod.At(i, j), 1e-12)
		}
	}
}

func TestSqrtInverseRejectsIndefinite(t *testing.T) {
	s := mat.NewDense(2, 2, []float64{1, 2, 2, 1}) // eigenvalues -1, 3
	_, err := SqrtInverse(s)
	assert.ErrorIs(t, err, ErrNotPosDef)
}

func TestEigOrtho(t *testing.T) {
	// with an orthonormal basis the orthogonalizer is the identity and the
	// problem reduces to plain diagonalization
	f := mat.NewDense(2, 2, []float64{2, 0, 0, -1})
	x := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	e, c, err := EigOrtho(f, x)
	require.NoError(t, err)

	require.Len(t, e, 2)
	assert.InDelta(t, -1, e[0], 1e-12)
	assert.InDelta(t, 2, e[1], 1e-12)

	// eigenvectors diagonalize F: C^T F C = diag(e)
	var d mat.Dense
	d.Mul(c.T(), f)
	d.Mul(&d, c)
	assert.InDelta(t, e[0], d.At(0, 0), 1e-12)
	assert.InDelta(t, e[1], d.At(1, 1), 1e-12)
	assert.InDelta(t, 0, d.At(0, 1), 1e-12)
}

func TestEigOrthoGeneralized(t *testing.T) {
	s := mat.NewDense(2, 2, []float64{1, 0.4, 0.4, 1})
	f := mat.NewDense(2, 2, []float64{-1, -0.6, -0.6, -0.5})
	x, err := SqrtInverse(s)
	require.NoError(t, err)
	e, c, err := EigOrtho(f, x)
	require.NoError(t, err)
	assert.True(t, e[0] <= e[1], "energies must come out ascending")

	// residual check F c = e S c per column
	for col := 0; col < 2; col++ {
		for i := 0; i < 2; i++ {
			lhs := f.At(i, 0)*c.At(0, col) + f.At(i, 1)*c.At(1, col)
			rhs := e[col] * (s.At(i, 0)*c.At(0, col) + s.At(i, 1)*c.At(1, col))
			assert.InDelta(t, rhs, lhs, 1e-10)
		}
	}
}

func TestTraceProduct(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	b := mat.NewDense(2, 2, []float64{5, 6, 7, 8})
	// tr(A B) = sum_ij A_ij B_ji
	assert.InDelta(t, 1*5+2*7+3*6+4*8, TraceProduct(a, b), 1e-14)
}
