// scf.go --  This file is part of the goscf project.
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

// Package scf implements the self-consistent-field solver: the fixed-point
// iteration driver, Fock construction with three two-electron strategies,
// DIIS/damping/level-shift acceleration, four initial-guess strategies with
// an ordered fallback chain, and restricted/unrestricted spin formulations
// behind one driver.
//
// Matrix-valued quantities are carried as one *mat.Dense per spin channel:
// restricted runs use a single channel, unrestricted runs an alpha/beta pair.
package scf

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/goscf/goscf/chkfile"
	"github.com/goscf/goscf/diis"
	"github.com/goscf/goscf/integ"
	"github.com/goscf/goscf/linalg"
	"github.com/goscf/goscf/mol"
)

// accelerator factors below this are treated as switched off
const factorOff = 1e-3

// Formulation is the spin-treatment capability the driver is written
// against: restricted and unrestricted variants implement density build,
// occupation selection, potential build and energy evaluation; the driver
// never depends on the concrete variant.
type Formulation interface {
	Name() string
	Molecule() *mol.Molecule
	Conf() Config
	Logger() *zap.SugaredLogger

	// InitGuess produces a starting energy estimate and density per the
	// configured strategy, applying the warn-and-fall-back chain.
	InitGuess() (float64, []*mat.Dense, error)

	// EffPotential builds the Coulomb/exchange potential. dmLast/vhfLast
	// may be nil, which forces a full (non-incremental) build.
	EffPotential(dm, dmLast, vhfLast []*mat.Dense) ([]*mat.Dense, error)

	// MakeFock assembles core Hamiltonian + effective potential.
	MakeFock(vhf []*mat.Dense) []*mat.Dense

	// AdjustFock applies the accelerator regime for the given cycle:
	// damping and level shifting before the DIIS window, decayed level
	// shifting at the boundary, subspace extrapolation afterwards.
	AdjustFock(cycle int, dm, fock []*mat.Dense) []*mat.Dense

	// Eig solves the generalized eigenproblem per spin channel.
	Eig(fock []*mat.Dense) ([][]float64, []*mat.Dense, error)

	// SetOcc assigns occupation numbers from orbital energies.
	SetOcc(moEnergy [][]float64) [][]float64

	// MakeDensity builds the density from coefficients and occupations.
	MakeDensity(coeff []*mat.Dense, occ [][]float64) []*mat.Dense

	// ElecEnergy evaluates the electronic energy
	// sum(e_i n_i) - 1/2 tr(D V) summed over channels.
	ElecEnergy(vhf, dm []*mat.Dense, moEnergy, occ [][]float64) float64

	setup() error
	teardown()
	solveOneElectron() (*Result, error)
	partitionOscillating(cycle int) bool
	finalize(res *Result)
	dumpChk(energy float64, moEnergy, occ [][]float64, coeff []*mat.Dense)
}

// Result is the outcome of a run. Non-convergence is reported here, not as
// an error.
type Result struct {
	Converged        bool
	Cycles           int
	Energy           float64 // electronic
	NuclearRepulsion float64
	TotalEnergy      float64
	MOEnergy         [][]float64
	MOOcc            [][]float64
	MOCoeff          []*mat.Dense
}

// SCF carries the state shared by both formulations. All of it is scoped to
// one run of one molecule; independent runs own independent instances.
type SCF struct {
	mol  *mol.Molecule
	cfg  Config
	prov integ.Provider
	log  *zap.SugaredLogger

	h1e, s1e, x *mat.Dense
	eriInMem    bool
	eri         []float64
	screen      integ.Screener
	acc         *diis.DIIS
}

func newSCF(m *mol.Molecule, cfg Config, prov integ.Provider, log *zap.SugaredLogger) (*SCF, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SCF{mol: m, cfg: cfg, prov: prov, log: log}, nil
}

func (s *SCF) Molecule() *mol.Molecule { return s.mol }

func (s *SCF) Conf() Config { return s.cfg }

func (s *SCF) Logger() *zap.SugaredLogger { return s.log }

// memFit is the strategy predicate: keep the integral tensor in memory when
// nbf^4 doubles fit under the configured ceiling.
func memFit(nbf, maxMemoryMB int) bool {
	words := float64(nbf) * float64(nbf) * float64(nbf) * float64(nbf)
	return words*8/(1024*1024) < float64(maxMemoryMB)
}

// setup acquires the run-scoped resources: core integrals, orthogonalizer,
// accelerator history and, for the direct strategy, the screening state.
func (s *SCF) setup() error {
	var err error
	if s.h1e, err = s.prov.Hcore(s.mol); err != nil {
		return fmt.Errorf("scf: core hamiltonian: %w", err)
	}
	if s.s1e, err = s.prov.Overlap(s.mol); err != nil {
		return fmt.Errorf("scf: overlap: %w", err)
	}
	if s.x, err = linalg.SqrtInverse(s.s1e); err != nil {
		return fmt.Errorf("scf: orthogonalizer: %w", err)
	}
	s.eriInMem = memFit(s.mol.NumBasis(), s.cfg.MaxMemoryMB)
	if !s.eriInMem && s.cfg.DirectSCF {
		if s.screen, err = s.prov.NewScreener(s.mol, s.cfg.DirectThreshold); err != nil {
			return fmt.Errorf("scf: direct screening: %w", err)
		}
	}
	s.acc = diis.New(s.cfg.DIISSpace, s.log)
	return nil
}

// teardown releases run-scoped resources unconditionally.
func (s *SCF) teardown() {
	if s.screen != nil {
		s.screen.Release()
		s.screen = nil
	}
	s.eri = nil
	s.acc = nil
}

// jk returns Coulomb/exchange matrices for one density, routed through the
// strategy selected at setup. dm may be a density difference in direct mode.
func (s *SCF) jk(dm *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if s.eriInMem {
		if s.eri == nil {
			var err error
			if s.eri, err = s.prov.ERI(s.mol); err != nil {
				return nil, nil, fmt.Errorf("scf: integral tensor: %w", err)
			}
		}
		j, k := integ.DotERIDM(s.eri, s.mol.NumBasis(), dm)
		return j, k, nil
	}
	if s.screen != nil {
		return s.screen.JK(dm)
	}
	return s.prov.JK(s.mol, dm)
}

// incremental reports whether the incremental direct update applies.
func (s *SCF) incremental() bool { return !s.eriInMem && s.screen != nil }

// MakeFock assembles h1e + vhf per channel.
func (s *SCF) MakeFock(vhf []*mat.Dense) []*mat.Dense {
	out := make([]*mat.Dense, len(vhf))
	for ch, v := range vhf {
		f := mat.DenseCopyOf(s.h1e)
		f.Add(f, v)
		out[ch] = f
	}
	return out
}

// Eig solves the generalized eigenproblem channel by channel through the
// orthogonalizer computed at setup.
func (s *SCF) Eig(fock []*mat.Dense) ([][]float64, []*mat.Dense, error) {
	energies := make([][]float64, len(fock))
	coeffs := make([]*mat.Dense, len(fock))
	for ch, f := range fock {
		e, c, err := linalg.EigOrtho(f, s.x)
		if err != nil {
			return nil, nil, fmt.Errorf("scf: eigensolver: %w", err)
		}
		energies[ch] = e
		coeffs[ch] = c
	}
	return energies, coeffs, nil
}

// densityMatrix builds sum_o occ_o C[:,o] C[:,o]^T. C may be rectangular
// (projected guesses); occ runs over its columns.
func densityMatrix(c *mat.Dense, occ []float64) *mat.Dense {
	n, cols := c.Dims()
	dm := mat.NewDense(n, n, nil)
	for o := 0; o < cols && o < len(occ); o++ {
		if occ[o] <= 0 {
			continue
		}
		for i := 0; i < n; i++ {
			ci := occ[o] * c.At(i, o)
			if ci == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				dm.Set(i, j, dm.At(i, j)+ci*c.At(j, o))
			}
		}
	}
	return dm
}

// elecEnergy is sum(e_i n_i) - 1/2 tr(D V) accumulated over channels.
func elecEnergy(vhf, dm []*mat.Dense, moEnergy, occ [][]float64) float64 {
	e := 0.0
	for ch := range dm {
		for i, v := range moEnergy[ch] {
			e += v * occ[ch][i]
		}
		e -= 0.5 * linalg.TraceProduct(dm[ch], vhf[ch])
	}
	return e
}

// levelShift adds factor*(S - S Dw S) to push virtual orbitals up. dw is the
// weighted density: half for restricted, full for unrestricted.
func (s *SCF) levelShift(dw, f *mat.Dense, factor float64) *mat.Dense {
	if factor < factorOff {
		return f
	}
	var sds mat.Dense
	sds.Mul(s.s1e, dw)
	sds.Mul(&sds, s.s1e)
	var vir mat.Dense
	vir.Sub(s.s1e, &sds)
	vir.Scale(factor, &vir)
	out := mat.DenseCopyOf(f)
	out.Add(out, &vir)
	return out
}

// dampR is the restricted damping: F - sym((I - S D/2) F D S)*fac/(fac+1).
func (s *SCF) dampR(d, f *mat.Dense, factor float64) *mat.Dense {
	if factor < factorOff {
		return f
	}
	n, _ := d.Dims()
	var sd mat.Dense
	half := mat.DenseCopyOf(d)
	half.Scale(0.5, half)
	sd.Mul(s.s1e, half)
	eye := identity(n)
	var vir mat.Dense
	vir.Sub(eye, &sd)
	var f0 mat.Dense
	f0.Mul(&vir, f)
	f0.Mul(&f0, d)
	f0.Mul(&f0, s.s1e)
	symmetrizeScale(&f0, factor/(factor+1))
	out := mat.DenseCopyOf(f)
	out.Sub(out, &f0)
	return out
}

// dampU is the unrestricted damping with full density weight:
// F - sym((S - S D S) S^-1 F D S)*fac/(fac+1).
func (s *SCF) dampU(sinv, d, f *mat.Dense, factor float64) *mat.Dense {
	if factor < factorOff {
		return f
	}
	var sds mat.Dense
	sds.Mul(s.s1e, d)
	sds.Mul(&sds, s.s1e)
	var vir mat.Dense
	vir.Sub(s.s1e, &sds)
	var f0 mat.Dense
	f0.Mul(&vir, sinv)
	f0.Mul(&f0, f)
	f0.Mul(&f0, d)
	f0.Mul(&f0, s.s1e)
	symmetrizeScale(&f0, factor/(factor+1))
	out := mat.DenseCopyOf(f)
	out.Sub(out, &f0)
	return out
}

func identity(n int) *mat.Dense {
	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1)
	}
	return eye
}

// symmetrizeScale replaces a with (a + a^T) * scale.
func symmetrizeScale(a *mat.Dense, scale float64) {
	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			v := (a.At(i, j) + a.At(j, i)) * scale
			a.Set(i, j, v)
			a.Set(j, i, v)
		}
	}
}

// errVecOrtho builds the DIIS error vector X (F D S - S D F) X for one
// channel and appends its entries to dst.
func (s *SCF) errVecOrtho(d, f *mat.Dense, dst []float64) []float64 {
	var fds, sdf mat.Dense
	fds.Mul(f, d)
	fds.Mul(&fds, s.s1e)
	sdf.Mul(s.s1e, d)
	sdf.Mul(&sdf, f)
	fds.Sub(&fds, &sdf)
	fds.Mul(s.x, &fds)
	fds.Mul(&fds, s.x)
	r, c := fds.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst = append(dst, fds.At(i, j))
		}
	}
	return dst
}

// partitionOscillating is the restricted default: the electron partition is
// fixed, so never oscillating.
func (s *SCF) partitionOscillating(int) bool { return false }

// finalize is a no-op for the restricted formulation.
func (s *SCF) finalize(*Result) {}

// dumpChk persists the current iteration state when a checkpoint path is
// configured. Write failures are warned, never fatal.
func (s *SCF) dumpChk(energy float64, moEnergy, occ [][]float64, coeff []*mat.Dense) {
	if s.cfg.ChkPath == "" {
		return
	}
	rec := &chkfile.Record{
		Mol:      chkfile.Pack(s.mol),
		Energy:   energy,
		MOEnergy: moEnergy,
		MOOcc:    occ,
	}
	for _, c := range coeff {
		rec.MOCoeff = append(rec.MOCoeff, denseToSlices(c))
	}
	if err := chkfile.Dump(s.cfg.ChkPath, rec); err != nil {
		s.log.Warnf("cannot write checkpoint: %v", err)
	}
}

func denseToSlices(a *mat.Dense) [][]float64 {
	r, c := a.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			out[i][j] = a.At(i, j)
		}
	}
	return out
}

func slicesToDense(s [][]float64) *mat.Dense {
	r := len(s)
	c := len(s[0])
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, s[i][j])
		}
	}
	return out
}
