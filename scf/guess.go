// guess.go --  This file is part of the goscf project.
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
	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/chkfile"
	"github.com/goscf/goscf/integ"
	"github.com/goscf/goscf/mol"
)

// InitGuess dispatches the configured guess strategy. Recoverable failures
// fall through the chain chkfile -> minao -> 1e with a warning at each step;
// only the core-Hamiltonian guess itself can fail the run.
func (r *RHF) InitGuess() (float64, []*mat.Dense, error) {
	switch r.cfg.InitGuess {
	case Guess1e:
		return r.guess1e()
	case GuessAtom:
		return r.guessAtom()
	case GuessChkfile:
		return r.guessChk()
	default:
		return r.guessMinAO()
	}
}

// guess1e diagonalizes the core Hamiltonian alone.
func (r *RHF) guess1e() (float64, []*mat.Dense, error) {
	r.log.Info("initial guess from core hamiltonian")
	moE, coeff, err := r.Eig([]*mat.Dense{r.h1e})
	if err != nil {
		return 0, nil, err
	}
	occ := r.SetOcc(moE)
	return 0, r.MakeDensity(coeff, occ), nil
}

func (r *RHF) guessMinAO() (float64, []*mat.Dense, error) {
	r.log.Info("initial guess from minao projection")
	c, occ, err := minaoProjection(r.prov, r.mol, r.s1e)
	if err != nil {
		r.log.Warnf("fail in generating initial guess from minao (%v), use 1e initial guess", err)
		return r.guess1e()
	}
	return 0, []*mat.Dense{densityMatrix(c, occ)}, nil
}

func (r *RHF) guessAtom() (float64, []*mat.Dense, error) {
	r.log.Info("initial guess from superposition of atomic densities")
	dm, e, err := atomicDensity(r.prov, r.mol)
	if err != nil {
		r.log.Warnf("fail in generating atomic initial guess (%v), use 1e initial guess", err)
		return r.guess1e()
	}
	return e, []*mat.Dense{dm}, nil
}

// guessChk restarts from a checkpoint record, projecting its orbitals onto
// the current basis. An unreadable record falls back to the minao guess; a
// record for a different nuclear frame is projected anyway with a warning.
func (r *RHF) guessChk() (float64, []*mat.Dense, error) {
	rec, proj, err := loadProjection(r.SCF)
	if err != nil {
		r.log.Warnf("fail in reading checkpoint %s (%v), use minao initial guess", r.cfg.ChkPath, err)
		return r.guessMinAO()
	}
	n, _ := r.s1e.Dims()
	dm := mat.NewDense(n, n, nil)
	for ch := range rec.MOCoeff {
		var mo mat.Dense
		mo.Mul(proj, slicesToDense(rec.MOCoeff[ch]))
		dm.Add(dm, densityMatrix(&mo, rec.MOOcc[ch]))
	}
	return rec.Energy, []*mat.Dense{dm}, nil
}

// InitGuess mirrors the restricted dispatch with per-channel densities and
// optional spin-symmetry breaking.
func (u *UHF) InitGuess() (float64, []*mat.Dense, error) {
	switch u.cfg.InitGuess {
	case Guess1e:
		return u.guess1e()
	case GuessAtom:
		return u.guessAtom()
	case GuessChkfile:
		return u.guessChk()
	default:
		return u.guessMinAO()
	}
}

func (u *UHF) guess1e() (float64, []*mat.Dense, error) {
	u.log.Info("initial guess from core hamiltonian")
	moE, coeff, err := u.Eig([]*mat.Dense{u.h1e, u.h1e})
	if err != nil {
		return 0, nil, err
	}
	coeff = u.breakSpinSym(coeff)
	occ := u.SetOcc(moE)
	return 0, u.MakeDensity(coeff, occ), nil
}

func (u *UHF) guessMinAO() (float64, []*mat.Dense, error) {
	u.log.Info("initial guess from minao projection")
	c, occ, err := minaoProjection(u.prov, u.mol, u.s1e)
	if err != nil {
		u.log.Warnf("fail in generating initial guess from minao (%v), use 1e initial guess", err)
		return u.guess1e()
	}
	occA, occB := splitOcc(occ)
	return 0, []*mat.Dense{densityMatrix(c, occA), densityMatrix(c, occB)}, nil
}

func (u *UHF) guessAtom() (float64, []*mat.Dense, error) {
	u.log.Info("initial guess from superposition of atomic densities")
	dm, e, err := atomicDensity(u.prov, u.mol)
	if err != nil {
		u.log.Warnf("fail in generating atomic initial guess (%v), use 1e initial guess", err)
		return u.guess1e()
	}
	da := mat.DenseCopyOf(dm)
	da.Scale(0.5, da)
	return e, []*mat.Dense{da, mat.DenseCopyOf(da)}, nil
}

func (u *UHF) guessChk() (float64, []*mat.Dense, error) {
	rec, proj, err := loadProjection(u.SCF)
	if err != nil {
		u.log.Warnf("fail in reading checkpoint %s (%v), use minao initial guess", u.cfg.ChkPath, err)
		return u.guessMinAO()
	}
	if len(rec.MOCoeff) == 2 {
		dm := make([]*mat.Dense, 2)
		for ch := range rec.MOCoeff {
			var mo mat.Dense
			mo.Mul(proj, slicesToDense(rec.MOCoeff[ch]))
			dm[ch] = densityMatrix(&mo, rec.MOOcc[ch])
		}
		return rec.Energy, dm, nil
	}
	// restricted record: duplicate the channel, split the paired occupations
	// and let the symmetry breaker separate the spins
	var mo mat.Dense
	mo.Mul(proj, slicesToDense(rec.MOCoeff[0]))
	pair := u.breakSpinSym([]*mat.Dense{&mo, mat.DenseCopyOf(&mo)})
	occA, occB := splitOcc(rec.MOOcc[0])
	return rec.Energy, []*mat.Dense{
		densityMatrix(pair[0], occA),
		densityMatrix(pair[1], occB),
	}, nil
}

// splitOcc divides spin-summed occupations into alpha/beta channels, alpha
// taking at most one electron per orbital first.
func splitOcc(occ []float64) (alpha, beta []float64) {
	alpha = make([]float64, len(occ))
	beta = make([]float64, len(occ))
	for i, o := range occ {
		if o > 1 {
			alpha[i] = 1
			beta[i] = o - 1
		} else {
			alpha[i] = o
		}
	}
	return alpha, beta
}

// loadProjection reads the configured checkpoint and prepares the basis
// projection P = S^{-1} <comp|chk> onto the current basis.
func loadProjection(s *SCF) (*chkfile.Record, *mat.Dense, error) {
	rec, err := chkfile.Load(s.cfg.ChkPath)
	if err != nil {
		return nil, nil, err
	}
	chkMol, err := rec.Mol.Unpack()
	if err != nil {
		return nil, nil, err
	}
	if !s.mol.SameStructure(chkMol) {
		s.log.Warnf("input molecule is incompatible with the chkfile molecule, projecting anyway")
	}
	cross, err := s.prov.CrossOverlap(s.mol, chkMol)
	if err != nil {
		return nil, nil, err
	}
	var proj mat.Dense
	if err := proj.Solve(s.s1e, cross); err != nil {
		return nil, nil, err
	}
	return rec, &proj, nil
}

// atomicDensity assembles the block-diagonal superposition of converged
// free-atom densities, one SCF run per distinct element. The atomic energy
// sum estimates the molecular total, so the electronic estimate handed to the
// driver is that sum less the nuclear repulsion.
func atomicDensity(prov integ.Provider, m *mol.Molecule) (*mat.Dense, float64, error) {
	cfg := DefaultConfig()
	cfg.InitGuess = Guess1e
	cfg.BreakSymmetry = BreakNone
	cfg.MaxCycle = 30
	cfg.Threshold = 1e-9
	cfg.DirectSCF = false
	cfg.ChkPath = ""

	type atomRes struct {
		dm     *mat.Dense
		energy float64
	}
	cache := make(map[string]atomRes)
	n := m.NumBasis()
	dm := mat.NewDense(n, n, nil)
	offs := m.AtomOffsets()
	energy := 0.0
	for i, a := range m.Atoms {
		res, ok := cache[a.Symbol]
		if !ok {
			free, err := mol.New(m.BasisName, 0, mol.Atom{Symbol: a.Symbol})
			if err != nil {
				return nil, 0, err
			}
			var f Formulation
			if free.Nelec()%2 == 0 {
				f, err = NewRHF(free, cfg, prov, nil)
			} else {
				f, err = NewUHF(free, cfg, prov, nil)
			}
			if err != nil {
				return nil, 0, err
			}
			out, err := Run(f)
			if err != nil {
				return nil, 0, err
			}
			blk := mat.NewDense(free.NumBasis(), free.NumBasis(), nil)
			for ch := range out.MOCoeff {
				blk.Add(blk, densityMatrix(out.MOCoeff[ch], out.MOOcc[ch]))
			}
			res = atomRes{dm: blk, energy: out.Energy}
			cache[a.Symbol] = res
		}
		nb, _ := res.dm.Dims()
		for p := 0; p < nb; p++ {
			for q := 0; q < nb; q++ {
				dm.Set(offs[i]+p, offs[i]+q, res.dm.At(p, q))
			}
		}
		energy += res.energy
	}
	return dm, energy - m.NuclearRepulsion(), nil
}
