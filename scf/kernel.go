// kernel.go --  This file is part of the goscf project.
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

// Run drives a complete SCF calculation for either formulation: resource
// setup, the one-electron bypass, the fixed-point loop, the final refinement
// pass and the summary bookkeeping.
func Run(f Formulation) (*Result, error) {
	logOptions(f)
	if err := f.setup(); err != nil {
		return nil, err
	}
	defer f.teardown()

	m := f.Molecule()
	var res *Result
	var err error
	if m.Nelec() == 1 {
		res, err = f.solveOneElectron()
	} else {
		res, err = kernel(f, nil, 0)
	}
	if err != nil {
		return nil, err
	}

	res.NuclearRepulsion = m.NuclearRepulsion()
	res.TotalEnergy = res.Energy + res.NuclearRepulsion
	f.finalize(res)

	log := f.Logger()
	log.Infof("nuclear repulsion = %.15g", res.NuclearRepulsion)
	if res.Converged {
		log.Infof("converged electronic energy = %.15g", res.Energy)
	} else {
		log.Warnf("SCF not converged, electronic energy = %.15g after %d cycles",
			res.Energy, res.Cycles)
	}
	log.Infof("total molecular energy = %.15g", res.TotalEnergy)
	return res, nil
}

// kernel is the fixed-point loop. initDM, when non-nil, replaces the
// configured initial guess (initE is then the matching energy estimate).
func kernel(f Formulation, initDM []*mat.Dense, initE float64) (*Result, error) {
	cfg := f.Conf()
	log := f.Logger()

	energy := initE
	dm := initDM
	if dm == nil {
		var err error
		if energy, dm, err = f.InitGuess(); err != nil {
			return nil, err
		}
	}

	maxCycle := cfg.MaxCycle
	if maxCycle < 1 {
		maxCycle = 1
	}

	conv := false
	cycle := 0
	var vhf, dmLast, coeff []*mat.Dense
	var moEnergy, occ [][]float64
	log.Debug("start scf cycle")
	for !conv && cycle < maxCycle {
		var err error
		if vhf, err = f.EffPotential(dm, dmLast, vhf); err != nil {
			return nil, err
		}
		fock := f.MakeFock(vhf)
		fock = f.AdjustFock(cycle, dm, fock)

		dmLast = dm
		lastE := energy
		if moEnergy, coeff, err = f.Eig(fock); err != nil {
			return nil, err
		}
		occ = f.SetOcc(moEnergy)
		dm = f.MakeDensity(coeff, occ)
		energy = f.ElecEnergy(vhf, dm, moEnergy, occ)

		log.Infof("cycle= %d E=%.15g delta_E= %g", cycle+1, energy, energy-lastE)
		if math.Abs((energy-lastE)/energy) < cfg.Threshold &&
			dmConverged(f, dm, dmLast, cfg.Threshold) {
			conv = true
		}
		f.dumpChk(energy, moEnergy, occ, coeff)
		cycle++
	}

	if f.partitionOscillating(cycle) {
		log.Warnf("alpha/beta partition still oscillating after %d cycles, flagging non-convergence", cycle)
		conv = false
	}

	// One extra refinement pass: the loop's last potential was built from
	// the previous density, so rebuild everything once from the final
	// orbital set before reporting.
	dm = f.MakeDensity(coeff, occ)
	var err error
	if vhf, err = f.EffPotential(dm, nil, nil); err != nil {
		return nil, err
	}
	fock := f.MakeFock(vhf)
	if moEnergy, coeff, err = f.Eig(fock); err != nil {
		return nil, err
	}
	occ = f.SetOcc(moEnergy)
	dm = f.MakeDensity(coeff, occ)
	energy = f.ElecEnergy(vhf, dm, moEnergy, occ)
	f.dumpChk(energy, moEnergy, occ, coeff)

	return &Result{
		Converged: conv,
		Cycles:    cycle,
		Energy:    energy,
		MOEnergy:  moEnergy,
		MOOcc:     occ,
		MOCoeff:   coeff,
	}, nil
}

// dmConverged applies the density criterion: sum of absolute element
// changes, normalized by the previous density's magnitude, against
// threshold*100.
func dmConverged(f Formulation, dm, dmLast []*mat.Dense, threshold float64) bool {
	if dmLast == nil {
		return false
	}
	delta, norm := 0.0, 0.0
	for ch := range dm {
		r, c := dm[ch].Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				delta += math.Abs(dm[ch].At(i, j) - dmLast[ch].At(i, j))
				norm += math.Abs(dmLast[ch].At(i, j))
			}
		}
	}
	if norm == 0 {
		return false
	}
	change := delta / norm
	f.Logger().Infof("sum(delta_dm)=%g (~ %g%%)", delta, change*100)
	return change < threshold*100
}

func logOptions(f Formulation) {
	c := f.Conf()
	f.Logger().Infow("******** SCF options ********",
		"method", f.Name(),
		"initial_guess", string(c.InitGuess),
		"damping_factor", c.DampFactor,
		"level_shift_factor", c.LevelShiftFactor,
		"diis_start_cycle", c.DIISStartCycle,
		"diis_space", c.DIISSpace,
		"scf_threshold", c.Threshold,
		"max_scf_cycle", c.MaxCycle,
		"direct_scf", c.DirectSCF,
		"direct_scf_threshold", c.DirectThreshold,
		"chkfile", c.ChkPath,
	)
}
