// diis_test.go --  This file is part of the goscf project.
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
package diis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/mat"
)

func pair(errv []float64, fill float64) (*mat.VecDense, []*mat.Dense) {
	f := mat.NewDense(2, 2, []float64{fill, 0, 0, fill})
	return mat.NewVecDense(len(errv), errv), []*mat.Dense{f}
}

func TestPushEvictsOldest(t *testing.T) {
	d := New(3, zaptest.NewLogger(t).Sugar())
	require.Equal(t, 3, d.Space())

	for i := 0; i < 5; i++ {
		e, f := pair([]float64{float64(i)}, float64(i))
		d.Push(e, f)
	}
	assert.Equal(t, 3, d.Len())
	// entries 0 and 1 were evicted; oldest surviving entry is 2
	assert.Equal(t, 2.0, d.at(0).err.AtVec(0))
	assert.Equal(t, 4.0, d.at(2).err.AtVec(0))
}

func TestUpdatePassThroughOnShortHistory(t *testing.T) {
	d := New(8, nil)
	e, f := pair([]float64{1, 0}, 5)
	got := d.Update(e, f)
	assert.Same(t, f[0], got[0], "a single entry cannot extrapolate")
}

func TestExtrapolateAveragesOrthogonalErrors(t *testing.T) {
	d := New(8, zaptest.NewLogger(t).Sugar())
	e1, f1 := pair([]float64{1, 0}, 2)
	e2, f2 := pair([]float64{0, 1}, 4)
	d.Push(e1, f1)
	d.Push(e2, f2)

	out, err := d.Extrapolate()
	require.NoError(t, err)
	// equal-norm orthogonal errors give c = (1/2, 1/2)
	assert.InDelta(t, 3, out[0].At(0, 0), 1e-12)
	assert.InDelta(t, 3, out[0].At(1, 1), 1e-12)
	assert.InDelta(t, 0, out[0].At(0, 1), 1e-12)
}

func TestUpdateFallsBackOnDegenerateErrors(t *testing.T) {
	d := New(8, zaptest.NewLogger(t).Sugar())
	e1, f1 := pair([]float64{1, 1}, 1)
	d.Push(e1, f1)

	// identical error vector makes B singular
	e2, f2 := pair([]float64{1, 1}, 9)
	got := d.Update(e2, f2)
	assert.Same(t, f2[0], got[0])
	assert.Equal(t, 2, d.Len())
}

func TestExtrapolateTwoChannels(t *testing.T) {
	d := New(4, nil)
	mk := func(errv []float64, a, b float64) (*mat.VecDense, []*mat.Dense) {
		return mat.NewVecDense(len(errv), errv),
			[]*mat.Dense{
				mat.NewDense(1, 1, []float64{a}),
				mat.NewDense(1, 1, []float64{b}),
			}
	}
	e1, f1 := mk([]float64{1, 0}, 2, 10)
	e2, f2 := mk([]float64{0, 1}, 4, 20)
	d.Push(e1, f1)
	d.Push(e2, f2)

	out, err := d.Extrapolate()
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.InDelta(t, 3, out[0].At(0, 0), 1e-12)
	assert.InDelta(t, 15, out[1].At(0, 0), 1e-12)
}

func TestErrRMS(t *testing.T) {
	e := mat.NewVecDense(4, []float64{1, -1, 1, -1})
	assert.InDelta(t, 1, ErrRMS(e), 1e-14)

	e2 := mat.NewVecDense(2, []float64{3, 4})
	assert.InDelta(t, math.Sqrt(12.5), ErrRMS(e2), 1e-14)
}
