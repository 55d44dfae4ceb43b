// chkfile_test.go --  This file is part of the goscf project.
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
package chkfile

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goscf/goscf/mol"
)

func TestDumpLoadRoundTrip(t *testing.T) {
	m, err := mol.New("sto-3g", 0,
		mol.Atom{Symbol: "H", Coords: [3]float64{0, 0, 0}},
		mol.Atom{Symbol: "H", Coords: [3]float64{0, 0, 1.4}},
	)
	require.NoError(t, err)

	rec := &Record{
		Mol:      Pack(m),
		Energy:   -1.831,
		MOEnergy: [][]float64{{-0.578, 0.670}},
		MOOcc:    [][]float64{{2, 0}},
		MOCoeff:  [][][]float64{{{0.548, 1.212}, {0.548, -1.212}}},
	}
	path := filepath.Join(t.TempDir(), "h2.chk")
	require.NoError(t, Dump(path, rec))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpackRebuildsMolecule(t *testing.T) {
	m, err := mol.New("6-31g", 1,
		mol.Atom{Symbol: "He", Coords: [3]float64{0, 0, 0}},
		mol.Atom{Symbol: "H", Coords: [3]float64{0, 0, 1.5}},
	)
	require.NoError(t, err)

	back, err := Pack(m).Unpack()
	require.NoError(t, err)
	assert.True(t, m.SameStructure(back))
	assert.Equal(t, m.Charge, back.Charge)
	assert.Equal(t, m.BasisName, back.BasisName)
	assert.Equal(t, m.NumBasis(), back.NumBasis())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.chk"))
	assert.Error(t, err)
}
