// config.go --  This file is part of the goscf project.
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
	"errors"
	"fmt"
)

// ErrConfig marks fatal configuration errors: the run is rejected before any
// integral is evaluated.
var ErrConfig = errors.New("scf: invalid configuration")

// GuessMethod selects the initial-guess strategy.
type GuessMethod string

const (
	Guess1e      GuessMethod = "1e"
	GuessAtom    GuessMethod = "atom"
	GuessMinAO   GuessMethod = "minao"
	GuessChkfile GuessMethod = "chkfile"
)

// BreakMode selects how an unrestricted guess breaks alpha/beta symmetry.
type BreakMode string

const (
	BreakNone    BreakMode = "none"
	BreakSpatial BreakMode = "spatial"
	BreakSwap    BreakMode = "swap"
	BreakZero    BreakMode = "zero"
)

// Config is the SCF option surface.
type Config struct {
	// DIISSpace is the accelerator history depth.
	DIISSpace int
	// DIISStartCycle is the first cycle extrapolation applies; earlier
	// cycles use damping and level shifting.
	DIISStartCycle   int
	DampFactor       float64
	LevelShiftFactor float64
	// Threshold is the relative energy convergence criterion; the density
	// criterion is Threshold*100.
	Threshold float64
	MaxCycle  int
	// DirectSCF enables the incremental integral-recomputing strategy when
	// the integral tensor does not fit in memory.
	DirectSCF       bool
	DirectThreshold float64
	InitGuess       GuessMethod
	BreakSymmetry   BreakMode
	// FixedNelecAlpha pins the alpha electron count of an unrestricted run;
	// zero lets the occupation selector rebalance from the merged spectrum.
	FixedNelecAlpha int
	// MaxMemoryMB bounds the in-memory integral tensor.
	MaxMemoryMB int
	// ChkPath, when set, enables per-cycle and final checkpoint dumps and is
	// the source of the chkfile initial guess.
	ChkPath string
}

// DefaultConfig mirrors the historical defaults of the reference code.
func DefaultConfig() Config {
	return Config{
		DIISSpace:        8,
		DIISStartCycle:   3,
		DampFactor:       0,
		LevelShiftFactor: 0,
		Threshold:        1e-10,
		MaxCycle:         50,
		DirectSCF:        true,
		DirectThreshold:  1e-13,
		InitGuess:        GuessMinAO,
		BreakSymmetry:    BreakZero,
		MaxMemoryMB:      2000,
	}
}

// Validate rejects malformed configurations up front.
func (c Config) Validate() error {
	switch c.InitGuess {
	case Guess1e, GuessAtom, GuessMinAO, GuessChkfile:
	default:
		return fmt.Errorf("%w: unknown init guess %q", ErrConfig, c.InitGuess)
	}
	switch c.BreakSymmetry {
	case BreakNone, BreakSpatial, BreakSwap, BreakZero:
	default:
		return fmt.Errorf("%w: unknown symmetry breaking mode %q", ErrConfig, c.BreakSymmetry)
	}
	if c.DIISSpace < 1 {
		return fmt.Errorf("%w: diis space %d < 1", ErrConfig, c.DIISSpace)
	}
	if c.DIISStartCycle < 1 {
		return fmt.Errorf("%w: diis start cycle %d < 1", ErrConfig, c.DIISStartCycle)
	}
	if c.MaxCycle < 1 {
		return fmt.Errorf("%w: max cycle %d < 1", ErrConfig, c.MaxCycle)
	}
	if c.Threshold <= 0 {
		return fmt.Errorf("%w: threshold %g must be positive", ErrConfig, c.Threshold)
	}
	if c.InitGuess == GuessChkfile && c.ChkPath == "" {
		return fmt.Errorf("%w: chkfile guess requires a checkpoint path", ErrConfig)
	}
	if c.FixedNelecAlpha < 0 {
		return fmt.Errorf("%w: negative alpha electron count", ErrConfig)
	}
	return nil
}
