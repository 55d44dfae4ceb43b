// chkfile.go --  This file is part of the goscf project.
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

// Package chkfile persists SCF results as YAML checkpoint records. A record
// carries enough of the molecule to rebuild it for the restart projection.
// Read failures are recoverable by design: the guess machinery falls back.
package chkfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goscf/goscf/mol"
)

// AtomInfo is one atom of the source molecule.
type AtomInfo struct {
	Symbol string     `yaml:"symbol"`
	Coords [3]float64 `yaml:"coords"`
}

// MolInfo identifies the molecule a record was computed for.
type MolInfo struct {
	Atoms  []AtomInfo `yaml:"atoms"`
	Charge int        `yaml:"charge"`
	Basis  string     `yaml:"basis"`
}

// Record is the checkpoint schema. Orbital quantities carry one slice per
// spin channel: one for restricted results, two for unrestricted.
type Record struct {
	Mol      MolInfo       `yaml:"mol"`
	Energy   float64       `yaml:"energy"`
	MOEnergy [][]float64   `yaml:"mo_energy"`
	MOOcc    [][]float64   `yaml:"mo_occ"`
	MOCoeff  [][][]float64 `yaml:"mo_coeff"`
}

// Pack captures a molecule into the record's identity block.
func Pack(m *mol.Molecule) MolInfo {
	info := MolInfo{Charge: m.Charge, Basis: m.BasisName}
	for _, a := range m.Atoms {
		info.Atoms = append(info.Atoms, AtomInfo{Symbol: a.Symbol, Coords: a.Coords})
	}
	return info
}

// Unpack rebuilds the molecule a record was computed for.
func (info MolInfo) Unpack() (*mol.Molecule, error) {
	atoms := make([]mol.Atom, len(info.Atoms))
	for i, a := range info.Atoms {
		atoms[i] = mol.Atom{Symbol: a.Symbol, Coords: a.Coords}
	}
	return mol.New(info.Basis, info.Charge, atoms...)
}

// Dump writes the record to path.
func Dump(path string, rec *Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("chkfile: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("chkfile: write %s: %w", path, err)
	}
	return nil
}

// Load reads a record from path. Missing or corrupt files surface as plain
// errors for the caller's fallback chain.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chkfile: read %s: %w", path, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("chkfile: decode %s: %w", path, err)
	}
	return &rec, nil
}
