// linalg.go --  This file is part of the goscf project.
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

// Package linalg adapts gonum's symmetric eigensolver to the generalized
// eigenproblem F C = S C e through symmetric orthogonalization. Numerical
// failure (non-positive-definite overlap, factorization breakdown) comes
// back as an error value for the caller to report; it is never fatal here.
package linalg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEigFailed = errors.New("linalg: eigendecomposition failed")
	ErrNotPosDef = errors.New("linalg: overlap matrix is not positive definite")
)

// minimum overlap eigenvalue before the basis counts as linearly dependent
const posDefTol = 1e-10

// SqrtInverse returns S^{-1/2} for a symmetric positive-definite matrix.
func SqrtInverse(s *mat.Dense) (*mat.Dense, error) {
	n, _ := s.Dims()
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, s.At(i, j))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, ErrEigFailed
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	inv := make([]float64, n)
	for i, v := range vals {
		if v < posDefTol {
			return nil, ErrNotPosDef
		}
		inv[i] = 1 / math.Sqrt(v)
	}
	var x mat.Dense
	x.Mul(&vecs, mat.NewDiagDense(n, inv))
	x.Mul(&x, vecs.T())
	return &x, nil
}

// EigOrtho solves F C = S C e given the orthogonalizer X = S^{-1/2}:
// it diagonalizes X F X and back-transforms the vectors. Energies come
// out ascending with C columns in matching order.
func EigOrtho(f, x *mat.Dense) ([]float64, *mat.Dense, error) {
	n, _ := f.Dims()
	var ft mat.Dense
	ft.Mul(x, f)
	ft.Mul(&ft, x)

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// symmetrize against roundoff drift
			sym.SetSym(i, j, 0.5*(ft.At(i, j)+ft.At(j, i)))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, nil, ErrEigFailed
	}
	e := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	var c mat.Dense
	c.Mul(x, &vecs)
	return e, &c, nil
}

// TraceProduct returns trace(a·b).
func TraceProduct(a, b *mat.Dense) float64 {
	n, _ := a.Dims()
	res := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			res += a.At(i, j) * b.At(j, i)
		}
	}
	return res
}
