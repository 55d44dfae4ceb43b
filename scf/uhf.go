// uhf.go --  This file is part of the goscf project.
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
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/integ"
	"github.com/goscf/goscf/mol"
)

// UHF is the spin-unrestricted formulation: separate alpha/beta densities,
// occupations of 0 or 1 per channel.
type UHF struct {
	*SCF

	nelecAlpha int
	sinv       *mat.Dense

	// alpha-partition bookkeeping for the oscillation diagnostic
	occCalls   int
	changes    int
	lastChange int
}

var _ Formulation = (*UHF)(nil)

// NewUHF builds an unrestricted solver. Each spin channel's electron count
// must fit the basis.
func NewUHF(m *mol.Molecule, cfg Config, prov integ.Provider, log *zap.SugaredLogger) (*UHF, error) {
	s, err := newSCF(m, cfg, prov, log)
	if err != nil {
		return nil, err
	}
	n := m.Nelec()
	na := (n + 1) / 2
	if cfg.FixedNelecAlpha > 0 {
		if cfg.FixedNelecAlpha > n {
			return nil, fmt.Errorf("%w: fixed alpha count %d exceeds %d electrons", ErrConfig, cfg.FixedNelecAlpha, n)
		}
		na = cfg.FixedNelecAlpha
	}
	if nb := n - na; na > m.NumBasis() || nb > m.NumBasis() {
		return nil, fmt.Errorf("%w: alpha/beta %d/%d electrons do not fit %d basis functions", ErrConfig, na, nb, m.NumBasis())
	}
	return &UHF{SCF: s, nelecAlpha: na}, nil
}

func (u *UHF) Name() string { return "UHF" }

// Run executes the full SCF procedure.
func (u *UHF) Run() (*Result, error) { return Run(u) }

// NelecAlpha is the current alpha electron count.
func (u *UHF) NelecAlpha() int { return u.nelecAlpha }

// SetOcc assigns one electron each to the lowest orbitals of the merged
// alpha/beta spectrum: with a fixed alpha count configured that split is
// used, otherwise the count follows the lowest nelec entries of the merged
// energy list, alpha preferred on exact ties. A change of the partition
// between calls is logged.
func (u *UHF) SetOcc(moEnergy [][]float64) [][]float64 {
	nelec := u.mol.Nelec()
	var na int
	if u.cfg.FixedNelecAlpha > 0 {
		na = u.cfg.FixedNelecAlpha
	} else {
		type level struct {
			e    float64
			spin int
		}
		var levels []level
		for i, ch := range moEnergy {
			for _, e := range ch {
				levels = append(levels, level{e: e, spin: i})
			}
		}
		slices.SortStableFunc(levels, func(a, b level) int {
			switch {
			case a.e < b.e:
				return -1
			case a.e > b.e:
				return 1
			default:
				return a.spin - b.spin
			}
		})
		for _, l := range levels[:nelec] {
			if l.spin == 0 {
				na++
			}
		}
	}
	nb := nelec - na
	if na != u.nelecAlpha {
		u.log.Infof("change num. alpha/beta electrons %d / %d -> %d / %d",
			u.nelecAlpha, nelec-u.nelecAlpha, na, nb)
		u.nelecAlpha = na
		u.changes++
		u.lastChange = u.occCalls
	}
	u.occCalls++

	occ := make([][]float64, 2)
	for ch, n := range []int{na, nb} {
		occ[ch] = make([]float64, len(moEnergy[ch]))
		for i := 0; i < n && i < len(occ[ch]); i++ {
			occ[ch][i] = 1
		}
	}
	if na > 0 && na < len(moEnergy[0]) {
		u.log.Debugf("alpha nocc = %d, HOMO = %.12g, LUMO = %.12g", na, moEnergy[0][na-1], moEnergy[0][na])
	}
	if nb > 0 && nb < len(moEnergy[1]) {
		u.log.Debugf("beta  nocc = %d, HOMO = %.12g, LUMO = %.12g", nb, moEnergy[1][nb-1], moEnergy[1][nb])
	}
	return occ
}

// partitionOscillating reports a still-flipping alpha/beta partition: several
// changes over the run with the latest close to the final cycle.
func (u *UHF) partitionOscillating(cycle int) bool {
	return u.changes >= 4 && u.occCalls-u.lastChange <= 2
}

func (u *UHF) MakeDensity(coeff []*mat.Dense, occ [][]float64) []*mat.Dense {
	return []*mat.Dense{
		densityMatrix(coeff[0], occ[0]),
		densityMatrix(coeff[1], occ[1]),
	}
}

func (u *UHF) ElecEnergy(vhf, dm []*mat.Dense, moEnergy, occ [][]float64) float64 {
	return elecEnergy(vhf, dm, moEnergy, occ)
}

// EffPotential builds the alpha/beta potentials J_total - K_sigma with
// J_total = J(D_alpha) + J(D_beta).
func (u *UHF) EffPotential(dm, dmLast, vhfLast []*mat.Dense) ([]*mat.Dense, error) {
	da, db := dm[0], dm[1]
	incr := u.incremental() && dmLast != nil && vhfLast != nil
	if incr {
		var da2, db2 mat.Dense
		da2.Sub(dm[0], dmLast[0])
		db2.Sub(dm[1], dmLast[1])
		da, db = &da2, &db2
	}
	ja, ka, err := u.jk(da)
	if err != nil {
		return nil, err
	}
	jb, kb, err := u.jk(db)
	if err != nil {
		return nil, err
	}
	var jt mat.Dense
	jt.Add(ja, jb)
	va := combineJK(&jt, ka, 1)
	vb := combineJK(&jt, kb, 1)
	if incr {
		va.Add(va, vhfLast[0])
		vb.Add(vb, vhfLast[1])
	}
	return []*mat.Dense{va, vb}, nil
}

// sInv caches S^{-1}, needed only by the unrestricted damping form.
func (u *UHF) sInv() *mat.Dense {
	if u.sinv == nil {
		var inv mat.Dense
		if err := inv.Inverse(u.s1e); err != nil {
			// damping is an optional stabilizer; fall back to identity pass
			u.log.Warnf("cannot invert overlap for damping: %v", err)
			n, _ := u.s1e.Dims()
			return identity(n)
		}
		u.sinv = &inv
	}
	return u.sinv
}

// AdjustFock mirrors the restricted regimes with full density weight and the
// per-channel error vectors concatenated for extrapolation.
func (u *UHF) AdjustFock(cycle int, dm, fock []*mat.Dense) []*mat.Dense {
	cfg := u.cfg
	f := []*mat.Dense{fock[0], fock[1]}
	if cycle >= cfg.DIISStartCycle {
		errv := u.errVecOrtho(dm[0], f[0], nil)
		errv = u.errVecOrtho(dm[1], f[1], errv)
		f = u.acc.Update(mat.NewVecDense(len(errv), errv), f)
	}
	if cycle < cfg.DIISStartCycle-1 {
		for ch := 0; ch < 2; ch++ {
			f[ch] = u.dampU(u.sInv(), dm[ch], f[ch], cfg.DampFactor)
			f[ch] = u.levelShift(dm[ch], f[ch], cfg.LevelShiftFactor)
		}
	} else {
		fac := cfg.LevelShiftFactor * math.Exp(float64(cfg.DIISStartCycle-cycle-1))
		for ch := 0; ch < 2; ch++ {
			f[ch] = u.levelShift(dm[ch], f[ch], fac)
		}
	}
	return f
}

// solveOneElectron puts the lone electron in the alpha channel.
func (u *UHF) solveOneElectron() (*Result, error) {
	moE, coeff, err := u.Eig([]*mat.Dense{u.h1e, u.h1e})
	if err != nil {
		return nil, err
	}
	occA := make([]float64, len(moE[0]))
	occA[0] = 1
	occB := make([]float64, len(moE[1]))
	res := &Result{
		Converged: true,
		Energy:    moE[0][0],
		MOEnergy:  moE,
		MOOcc:     [][]float64{occA, occB},
		MOCoeff:   coeff,
	}
	u.log.Infof("1 electron energy = %.15g", res.Energy)
	u.dumpChk(res.Energy, res.MOEnergy, res.MOOcc, res.MOCoeff)
	return res, nil
}

// finalize swaps the channels when alpha ended up the minority spin, so that
// callers always see alpha as the majority channel.
func (u *UHF) finalize(res *Result) {
	if u.nelecAlpha*2 >= u.mol.Nelec() {
		return
	}
	res.MOEnergy[0], res.MOEnergy[1] = res.MOEnergy[1], res.MOEnergy[0]
	res.MOOcc[0], res.MOOcc[1] = res.MOOcc[1], res.MOOcc[0]
	res.MOCoeff[0], res.MOCoeff[1] = res.MOCoeff[1], res.MOCoeff[0]
	u.nelecAlpha = u.mol.Nelec() - u.nelecAlpha
}

// breakSpinSym perturbs the beta orbitals of a symmetric guess so the
// iteration can leave the spin-restricted solution.
func (u *UHF) breakSpinSym(coeff []*mat.Dense) []*mat.Dense {
	if u.cfg.BreakSymmetry == BreakNone {
		return coeff
	}
	nocc := u.mol.Nelec() / 2
	if nocc < 1 {
		return coeff
	}
	alpha, beta := coeff[0], mat.DenseCopyOf(coeff[1])
	n, nmo := beta.Dims()
	switch u.cfg.BreakSymmetry {
	case BreakSpatial:
		nvir := nmo - nocc
		hi, scale := nocc+5, 0.5
		if nvir < 5 {
			hi, scale = nmo, 1/float64(nvir+1)
		}
		for i := 0; i < n; i++ {
			v := beta.At(i, nocc-1)
			for o := nocc - 1; o < hi; o++ {
				v += alpha.At(i, o)
			}
			beta.Set(i, nocc-1, v*scale)
		}
	case BreakSwap:
		if nocc < nmo {
			for i := 0; i < n; i++ {
				beta.Set(i, nocc-1, alpha.At(i, nocc))
			}
		}
	case BreakZero:
		lo := nocc - 1
		if nocc == 1 {
			lo = 0
		}
		for i := 0; i < n; i++ {
			for o := lo; o < nocc; o++ {
				beta.Set(i, o, 0)
			}
		}
	}
	return []*mat.Dense{alpha, beta}
}
