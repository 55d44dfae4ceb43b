// rhf.go --  This file is part of the goscf project.
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
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/integ"
	"github.com/goscf/goscf/mol"
)

// RHF is the spin-restricted formulation: one density matrix, paired
// occupations of 0 or 2.
type RHF struct {
	*SCF
}

var _ Formulation = (*RHF)(nil)

// NewRHF builds a restricted solver. The electron count must be even (the
// one-electron system is the only exception, solved without iteration) and
// must fit the doubly-occupied basis capacity.
func NewRHF(m *mol.Molecule, cfg Config, prov integ.Provider, log *zap.SugaredLogger) (*RHF, error) {
	n := m.Nelec()
	if n != 1 && n%2 != 0 {
		return nil, fmt.Errorf("%w: invalid electron number %d for restricted SCF", ErrConfig, n)
	}
	if n > 2*m.NumBasis() {
		return nil, fmt.Errorf("%w: %d electrons do not fit %d basis functions", ErrConfig, n, m.NumBasis())
	}
	s, err := newSCF(m, cfg, prov, log)
	if err != nil {
		return nil, err
	}
	return &RHF{SCF: s}, nil
}

func (r *RHF) Name() string { return "RHF" }

// Run executes the full SCF procedure.
func (r *RHF) Run() (*Result, error) { return Run(r) }

// SetOcc fills the lowest nelec/2 orbitals with occupation 2.
func (r *RHF) SetOcc(moEnergy [][]float64) [][]float64 {
	e := moEnergy[0]
	occ := make([]float64, len(e))
	nocc := r.mol.Nelec() / 2
	for i := 0; i < nocc; i++ {
		occ[i] = 2
	}
	switch {
	case nocc == 0:
	case nocc < len(e):
		r.log.Debugf("HOMO = %.12g, LUMO = %.12g", e[nocc-1], e[nocc])
	default:
		r.log.Debugf("HOMO = %.12g", e[nocc-1])
	}
	return [][]float64{occ}
}

func (r *RHF) MakeDensity(coeff []*mat.Dense, occ [][]float64) []*mat.Dense {
	return []*mat.Dense{densityMatrix(coeff[0], occ[0])}
}

func (r *RHF) ElecEnergy(vhf, dm []*mat.Dense, moEnergy, occ [][]float64) float64 {
	return elecEnergy(vhf, dm, moEnergy, occ)
}

// EffPotential builds J(D) - K(D)/2. In direct mode with history available
// the contraction runs over the density difference and updates vhfLast.
func (r *RHF) EffPotential(dm, dmLast, vhfLast []*mat.Dense) ([]*mat.Dense, error) {
	if r.incremental() && dmLast != nil && vhfLast != nil {
		var diff mat.Dense
		diff.Sub(dm[0], dmLast[0])
		j, k, err := r.jk(&diff)
		if err != nil {
			return nil, err
		}
		v := combineJK(j, k, 0.5)
		v.Add(v, vhfLast[0])
		return []*mat.Dense{v}, nil
	}
	j, k, err := r.jk(dm[0])
	if err != nil {
		return nil, err
	}
	return []*mat.Dense{combineJK(j, k, 0.5)}, nil
}

// combineJK returns J - kWeight*K.
func combineJK(j, k *mat.Dense, kWeight float64) *mat.Dense {
	out := mat.DenseCopyOf(k)
	out.Scale(-kWeight, out)
	out.Add(out, j)
	return out
}

// AdjustFock applies the accelerator regimes: extrapolation from the DIIS
// start cycle, damping plus level shifting before the boundary, and level
// shifting at an exponentially decayed factor from the boundary on.
func (r *RHF) AdjustFock(cycle int, dm, fock []*mat.Dense) []*mat.Dense {
	cfg := r.cfg
	d := dm[0]
	f := fock[0]
	if cycle >= cfg.DIISStartCycle {
		errv := r.errVecOrtho(d, f, nil)
		f = r.acc.Update(mat.NewVecDense(len(errv), errv), []*mat.Dense{f})[0]
	}
	half := mat.DenseCopyOf(d)
	half.Scale(0.5, half)
	if cycle < cfg.DIISStartCycle-1 {
		f = r.dampR(d, f, cfg.DampFactor)
		f = r.levelShift(half, f, cfg.LevelShiftFactor)
	} else {
		fac := cfg.LevelShiftFactor * math.Exp(float64(cfg.DIISStartCycle-cycle-1))
		f = r.levelShift(half, f, fac)
	}
	return []*mat.Dense{f}
}

// solveOneElectron handles the single-electron molecule without iterating.
func (s *SCF) solveOneElectron() (*Result, error) {
	moE, coeff, err := s.Eig([]*mat.Dense{s.h1e})
	if err != nil {
		return nil, err
	}
	occ := make([]float64, len(moE[0]))
	occ[0] = 1
	res := &Result{
		Converged: true,
		Energy:    moE[0][0],
		MOEnergy:  moE,
		MOOcc:     [][]float64{occ},
		MOCoeff:   coeff,
	}
	s.log.Infof("1 electron energy = %.15g", res.Energy)
	s.dumpChk(res.Energy, res.MOEnergy, res.MOOcc, res.MOCoeff)
	return res, nil
}
