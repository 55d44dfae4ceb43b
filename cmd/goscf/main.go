// main.go --  This file is part of the goscf project.
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
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goscf/goscf/integ"
	"github.com/goscf/goscf/mol"
	"github.com/goscf/goscf/scf"
)

func main() {
	input := pflag.StringP("input", "i", "", "YAML input file (required)")
	chk := pflag.String("chk", "", "checkpoint file path, overrides the input file setting")
	verbose := pflag.BoolP("verbose", "v", false, "debug logging")
	pflag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: goscf -i input.yaml [--chk file] [-v]")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	log, err := buildLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	slog := log.Sugar()

	if err := run(*input, *chk, slog); err != nil {
		slog.Errorf("run failed: %v", err)
		os.Exit(1)
	}
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(path, chkOverride string, log *zap.SugaredLogger) error {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	m, err := buildMolecule(v)
	if err != nil {
		return err
	}
	cfg := buildConfig(v)
	if chkOverride != "" {
		cfg.ChkPath = chkOverride
	}

	prov := &integ.Gaussian{}
	method := strings.ToLower(v.GetString("scf.method"))
	if method == "auto" {
		if n := m.Nelec(); n == 1 || n%2 == 0 {
			method = "rhf"
		} else {
			method = "uhf"
		}
	}

	var res *scf.Result
	switch method {
	case "rhf":
		r, err := scf.NewRHF(m, cfg, prov, log)
		if err != nil {
			return err
		}
		if res, err = r.Run(); err != nil {
			return err
		}
		r.Analyze(res)
		r.MullikenPop(r.MakeDensity(res.MOCoeff, res.MOOcc))
	case "uhf":
		u, err := scf.NewUHF(m, cfg, prov, log)
		if err != nil {
			return err
		}
		if res, err = u.Run(); err != nil {
			return err
		}
		u.Analyze(res)
		u.MullikenPop(u.MakeDensity(res.MOCoeff, res.MOOcc))
	default:
		return fmt.Errorf("unknown scf method %q", method)
	}

	if !res.Converged {
		log.Warnf("result is NOT converged after %d cycles", res.Cycles)
	}
	fmt.Printf("electronic energy  = %18.12f Ha\n", res.Energy)
	fmt.Printf("nuclear repulsion  = %18.12f Ha\n", res.NuclearRepulsion)
	fmt.Printf("total energy       = %18.12f Ha\n", res.TotalEnergy)
	return nil
}

func setDefaults(v *viper.Viper) {
	def := scf.DefaultConfig()
	v.SetDefault("molecule.units", "angstrom")
	v.SetDefault("molecule.charge", 0)
	v.SetDefault("molecule.basis", "sto-3g")
	v.SetDefault("scf.method", "auto")
	v.SetDefault("scf.init_guess", string(def.InitGuess))
	v.SetDefault("scf.diis_space", def.DIISSpace)
	v.SetDefault("scf.diis_start_cycle", def.DIISStartCycle)
	v.SetDefault("scf.damping_factor", def.DampFactor)
	v.SetDefault("scf.level_shift_factor", def.LevelShiftFactor)
	v.SetDefault("scf.threshold", def.Threshold)
	v.SetDefault("scf.max_cycle", def.MaxCycle)
	v.SetDefault("scf.direct", def.DirectSCF)
	v.SetDefault("scf.direct_threshold", def.DirectThreshold)
	v.SetDefault("scf.break_symmetry", string(def.BreakSymmetry))
	v.SetDefault("scf.nelec_alpha", 0)
	v.SetDefault("scf.max_memory_mb", def.MaxMemoryMB)
	v.SetDefault("scf.chkfile", "")
}

func buildMolecule(v *viper.Viper) (*mol.Molecule, error) {
	type atomIn struct {
		Symbol string     `mapstructure:"symbol"`
		XYZ    [3]float64 `mapstructure:"xyz"`
	}
	var atomsIn []atomIn
	if err := v.UnmarshalKey("molecule.atoms", &atomsIn); err != nil {
		return nil, fmt.Errorf("parse atoms: %w", err)
	}
	if len(atomsIn) == 0 {
		return nil, fmt.Errorf("input has no atoms")
	}
	angstrom := strings.ToLower(v.GetString("molecule.units")) != "bohr"
	atoms := make([]mol.Atom, len(atomsIn))
	for i, a := range atomsIn {
		coords := a.XYZ
		if angstrom {
			coords = mol.FromAngstrom(coords)
		}
		atoms[i] = mol.Atom{Symbol: a.Symbol, Coords: coords}
	}
	return mol.New(v.GetString("molecule.basis"), v.GetInt("molecule.charge"), atoms...)
}

func buildConfig(v *viper.Viper) scf.Config {
	return scf.Config{
		DIISSpace:        v.GetInt("scf.diis_space"),
		DIISStartCycle:   v.GetInt("scf.diis_start_cycle"),
		DampFactor:       v.GetFloat64("scf.damping_factor"),
		LevelShiftFactor: v.GetFloat64("scf.level_shift_factor"),
		Threshold:        v.GetFloat64("scf.threshold"),
		MaxCycle:         v.GetInt("scf.max_cycle"),
		DirectSCF:        v.GetBool("scf.direct"),
		DirectThreshold:  v.GetFloat64("scf.direct_threshold"),
		InitGuess:        scf.GuessMethod(v.GetString("scf.init_guess")),
		BreakSymmetry:    scf.BreakMode(v.GetString("scf.break_symmetry")),
		FixedNelecAlpha:  v.GetInt("scf.nelec_alpha"),
		MaxMemoryMB:      v.GetInt("scf.max_memory_mb"),
		ChkPath:          v.GetString("scf.chkfile"),
	}
}
