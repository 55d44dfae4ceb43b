// gaussian.go --  This file is part of the goscf project.
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
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"

	"github.com/goscf/goscf/mol"
)

// Gaussian is the native integral backend over contracted s-type Gaussians.
// Stateless; all run-scoped state lives in the Screener it hands out.
type Gaussian struct{}

var _ Provider = Gaussian{}

// ao is one contracted s function. Primitive norms and the contracted
// renormalization are folded into coeffs at build time.
type ao struct {
	exps   []float64
	coeffs []float64
	center [3]float64
}

// aosOf expands a molecule into its contracted AO list.
func aosOf(m *mol.Molecule) ([]ao, error) {
	var aos []ao
	for _, a := range m.Atoms {
		for _, sh := range a.Shells {
			if sh.L != 0 {
				return nil, ErrUnsupportedShell
			}
			f := ao{center: a.Coords}
			f.exps = append(f.exps, sh.Exps...)
			for i, c := range sh.Coeffs {
				f.coeffs = append(f.coeffs, c*math.Pow(2*sh.Exps[i]/math.Pi, 0.75))
			}
			// renormalize the contraction so <f|f> = 1
			raw := overlapAO(f, f)
			scale := 1 / math.Sqrt(raw)
			for i := range f.coeffs {
				f.coeffs[i] *= scale
			}
			aos = append(aos, f)
		}
	}
	return aos, nil
}

func dist2(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return dx*dx + dy*dy + dz*dz
}

// gaussianProduct returns the center of the product Gaussian (a1*A+a2*B)/p.
func gaussianProduct(a1, a2 float64, va, vb [3]float64) [3]float64 {
	p := a1 + a2
	return [3]float64{
		(a1*va[0] + a2*vb[0]) / p,
		(a1*va[1] + a2*vb[1]) / p,
		(a1*va[2] + a2*vb[2]) / p,
	}
}

// boys is the zeroth-order Boys function F0.
func boys(x float64) float64 {
	if x == 0 {
		return 1
	}
	return mathext.GammaIncReg(0.5, x) * math.Gamma(0.5) / (2 * math.Sqrt(x))
}

func overlapAO(f1, f2 ao) float64 {
	res := 0.0
	q2 := dist2(f1.center, f2.center)
	for i, a1 := range f1.exps {
		for j, a2 := range f2.exps {
			p := a1 + a2
			q := a1 * a2 / p
			res += f1.coeffs[i] * f2.coeffs[j] * math.Exp(-q*q2) * math.Pow(math.Pi/p, 1.5)
		}
	}
	return res
}

func kineticAO(f1, f2 ao) float64 {
	res := 0.0
	q2 := dist2(f1.center, f2.center)
	for i, a1 := range f1.exps {
		for j, a2 := range f2.exps {
			p := a1 + a2
			q := a1 * a2 / p
			s := f1.coeffs[i] * f2.coeffs[j] * math.Exp(-q*q2) * math.Pow(math.Pi/p, 1.5)
			pp := gaussianProduct(a1, a2, f1.center, f2.center)
			res += 3 * a2 * s
			for ax := 0; ax < 3; ax++ {
				pg := pp[ax] - f2.center[ax]
				res -= 2 * a2 * a2 * s * (pg*pg + 0.5/p)
			}
		}
	}
	return res
}

func nuclearAO(f1, f2 ao, atoms []mol.Atom) float64 {
	res := 0.0
	q2 := dist2(f1.center, f2.center)
	for i, a1 := range f1.exps {
		for j, a2 := range f2.exps {
			p := a1 + a2
			q := a1 * a2 / p
			pre := f1.coeffs[i] * f2.coeffs[j] * math.Exp(-q*q2) * (2 * math.Pi / p)
			pp := gaussianProduct(a1, a2, f1.center, f2.center)
			for _, at := range atoms {
				res -= float64(at.Z) * pre * boys(p*dist2(pp, at.Coords))
			}
		}
	}
	return res
}

// eriAO computes the repulsion integral (f1 f2 | f3 f4).
func eriAO(f1, f2, f3, f4 ao) float64 {
	res := 0.0
	q2ij := dist2(f1.center, f2.center)
	q2kl := dist2(f3.center, f4.center)
	for i, ai := range f1.exps {
		for j, aj := range f2.exps {
			pij := ai + aj
			qij := ai * aj / pij
			ppij := gaussianProduct(ai, aj, f1.center, f2.center)
			cij := f1.coeffs[i] * f2.coeffs[j] * math.Exp(-qij*q2ij)
			for k, ak := range f3.exps {
				for l, al := range f4.exps {
					pkl := ak + al
					qkl := ak * al / pkl
					ppkl := gaussianProduct(ak, al, f3.center, f4.center)
					ckl := f3.coeffs[k] * f4.coeffs[l] * math.Exp(-qkl*q2kl)
					denom := 1/pij + 1/pkl
					t := 2 * math.Pi * math.Pi / (pij * pkl) * math.Sqrt(math.Pi/(pij+pkl))
					res += cij * ckl * t * boys(dist2(ppij, ppkl)/denom)
				}
			}
		}
	}
	return res
}

func (Gaussian) Overlap(m *mol.Molecule) (*mat.Dense, error) {
	aos, err := aosOf(m)
	if err != nil {
		return nil, err
	}
	n := len(aos)
	s := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			v := overlapAO(aos[i], aos[j])
			s.Set(i, j, v)
			s.Set(j, i, v)
		}
	}
	return s, nil
}

func (Gaussian) CrossOverlap(a, b *mol.Molecule) (*mat.Dense, error) {
	fa, err := aosOf(a)
	if err != nil {
		return nil, err
	}
	fb, err := aosOf(b)
	if err != nil {
		return nil, err
	}
	s := mat.NewDense(len(fa), len(fb), nil)
	for i := range fa {
		for j := range fb {
			s.Set(i, j, overlapAO(fa[i], fb[j]))
		}
	}
	return s, nil
}

func (Gaussian) Hcore(m *mol.Molecule) (*mat.Dense, error) {
	aos, err := aosOf(m)
	if err != nil {
		return nil, err
	}
	n := len(aos)
	h := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			v := kineticAO(aos[i], aos[j]) + nuclearAO(aos[i], aos[j], m.Atoms)
			h.Set(i, j, v)
			h.Set(j, i, v)
		}
	}
	return h, nil
}

func (Gaussian) ERI(m *mol.Molecule) ([]float64, error) {
	aos, err := aosOf(m)
	if err != nil {
		return nil, err
	}
	n := len(aos)
	eri := make([]float64, n*n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					eri[((i*n+j)*n+k)*n+l] = eriAO(aos[i], aos[j], aos[k], aos[l])
				}
			}
		}
	}
	return eri, nil
}

func (Gaussian) JK(m *mol.Molecule, dm *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	aos, err := aosOf(m)
	if err != nil {
		return nil, nil, err
	}
	j, k := contractJK(aos, dm, nil, 0)
	return j, k, nil
}

// contractJK evaluates J and K from on-the-fly integrals. When q is non-nil
// the Schwarz bound q_ij*q_kl*max|dm| < threshold skips negligible blocks.
func contractJK(aos []ao, dm *mat.Dense, q []float64, threshold float64) (*mat.Dense, *mat.Dense) {
	n := len(aos)
	j := mat.NewDense(n, n, nil)
	k := mat.NewDense(n, n, nil)
	maxD := 0.0
	for i := 0; i < n; i++ {
		for jj := 0; jj < n; jj++ {
			if a := math.Abs(dm.At(i, jj)); a > maxD {
				maxD = a
			}
		}
	}
	for i := 0; i < n; i++ {
		for jj := 0; jj < n; jj++ {
			for kk := 0; kk < n; kk++ {
				for l := 0; l < n; l++ {
					if q != nil && q[i*n+jj]*q[kk*n+l]*maxD < threshold {
						continue
					}
					// v = (i jj | kk l); exchange picks up the same value
					// through the (a d | c b) relabeling.
					v := eriAO(aos[i], aos[jj], aos[kk], aos[l])
					j.Set(i, jj, j.At(i, jj)+dm.At(kk, l)*v)
					k.Set(i, l, k.At(i, l)+dm.At(kk, jj)*v)
				}
			}
		}
	}
	return j, k
}
