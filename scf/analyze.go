// analyze.go --  This file is part of the goscf project.
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
	"math"

	"gonum.org/v1/gonum/mat"
)

// Analyze logs the orbital spectrum of a finished run.
func (r *RHF) Analyze(res *Result) {
	logSpectrum(r.SCF, "MO", res.MOEnergy[0], res.MOOcc[0])
}

// Analyze logs both spin channels and the spin expectation values.
func (u *UHF) Analyze(res *Result) {
	logSpectrum(u.SCF, "alpha MO", res.MOEnergy[0], res.MOOcc[0])
	logSpectrum(u.SCF, "beta  MO", res.MOEnergy[1], res.MOOcc[1])
	ss, mult := u.SpinSquare(res)
	u.log.Infof("<S^2> = %.8g, 2S+1 = %.8g", ss, mult)
}

func logSpectrum(s *SCF, label string, energies, occ []float64) {
	for i, e := range energies {
		if occ[i] > 0 {
			s.log.Infof("%s #%d (occupied), energy = %.12g, occ = %g", label, i+1, e, occ[i])
		} else {
			s.log.Infof("%s #%d (virtual),  energy = %.12g", label, i+1, e)
		}
	}
}

// MullikenPop computes Mulliken basis populations and per-atom partial
// charges from the spin-summed density: pop_i = sum_j D_ij S_ij.
func (s *SCF) MullikenPop(dm []*mat.Dense) (pop []float64, charges []float64) {
	total := mat.DenseCopyOf(dm[0])
	for _, d := range dm[1:] {
		total.Add(total, d)
	}
	n, _ := total.Dims()
	pop = make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pop[i] += total.At(i, j) * s.s1e.At(i, j)
		}
	}
	offs := s.mol.AtomOffsets()
	charges = make([]float64, len(s.mol.Atoms))
	for ai, a := range s.mol.Atoms {
		end := n
		if ai+1 < len(offs) {
			end = offs[ai+1]
		}
		q := float64(a.Z)
		for i := offs[ai]; i < end; i++ {
			q -= pop[i]
		}
		charges[ai] = q
		s.log.Infof("mulliken charge of atom %d %s = %.6f", ai+1, a.Symbol, q)
	}
	return pop, charges
}

// SpinSquare evaluates <S^2> and the effective multiplicity 2S+1 from the
// overlap of occupied alpha and beta orbitals.
func (u *UHF) SpinSquare(res *Result) (ss, mult float64) {
	occA := occupiedColumns(res.MOCoeff[0], res.MOOcc[0])
	occB := occupiedColumns(res.MOCoeff[1], res.MOOcc[1])
	na, nb := 0.0, 0.0
	overlap2 := 0.0
	if occA != nil {
		_, c := occA.Dims()
		na = float64(c)
	}
	if occB != nil {
		_, c := occB.Dims()
		nb = float64(c)
	}
	if occA != nil && occB != nil {
		var tmp, cross mat.Dense
		tmp.Mul(occA.T(), u.s1e)
		cross.Mul(&tmp, occB)
		rr, cc := cross.Dims()
		for i := 0; i < rr; i++ {
			for j := 0; j < cc; j++ {
				v := cross.At(i, j)
				overlap2 += v * v
			}
		}
	}
	ssxy := (na+nb)/2 - overlap2
	ssz := (na - nb) * (na - nb) / 4
	ss = ssxy + ssz
	mult = 2*(math.Sqrt(ss+0.25)-0.5) + 1
	return ss, mult
}

// occupiedColumns extracts the coefficient columns with occupation > 0, nil
// when the channel is empty.
func occupiedColumns(c *mat.Dense, occ []float64) *mat.Dense {
	n, cols := c.Dims()
	var idx []int
	for o := 0; o < cols && o < len(occ); o++ {
		if occ[o] > 0 {
			idx = append(idx, o)
		}
	}
	if len(idx) == 0 {
		return nil
	}
	out := mat.NewDense(n, len(idx), nil)
	for j, o := range idx {
		for i := 0; i < n; i++ {
			out.Set(i, j, c.At(i, o))
		}
	}
	return out
}
