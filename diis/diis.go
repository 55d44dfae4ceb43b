// diis.go --  This file is part of the goscf project.
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

// Package diis implements direct inversion of the iterative subspace: a
// bounded FIFO history of (error vector, Fock matrix) pairs and the
// bordered least-squares system that yields the extrapolated Fock matrix.
package diis

import (
	"errors"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrSolve = errors.New("diis: extrapolation system is singular")

// entry is one history slot. fock carries one matrix per spin channel; the
// channels share one set of extrapolation coefficients.
type entry struct {
	err  *mat.VecDense
	fock []*mat.Dense
}

// DIIS holds the accelerator history. Fixed capacity, oldest entry evicted
// first. Run-scoped; not safe for concurrent use.
type DIIS struct {
	ring []entry
	head int
	n    int
	log  *zap.SugaredLogger
}

// New returns a DIIS accelerator with the given subspace dimension.
func New(space int, log *zap.SugaredLogger) *DIIS {
	if space < 1 {
		space = 1
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DIIS{ring: make([]entry, space), log: log}
}

// Space is the configured subspace dimension.
func (d *DIIS) Space() int { return len(d.ring) }

// Len is the number of stored pairs.
func (d *DIIS) Len() int { return d.n }

// at returns the i-th stored entry, oldest first.
func (d *DIIS) at(i int) entry { return d.ring[(d.head+i)%len(d.ring)] }

// Push appends an (error vector, Fock) pair, evicting the oldest pair when
// the history is full.
func (d *DIIS) Push(errVec *mat.VecDense, fock []*mat.Dense) {
	if d.n == len(d.ring) {
		d.ring[d.head] = entry{err: errVec, fock: fock}
		d.head = (d.head + 1) % len(d.ring)
	} else {
		d.ring[(d.head+d.n)%len(d.ring)] = entry{err: errVec, fock: fock}
		d.n++
	}
	d.log.Debugf("diis-rms(errvec) = %g", ErrRMS(errVec))
}

// Update pushes the pair and returns the extrapolated Fock matrix. When the
// history is too short or the linear system is singular (as happens when the
// stored error vectors are degenerate), the input Fock is passed through
// unchanged.
func (d *DIIS) Update(errVec *mat.VecDense, fock []*mat.Dense) []*mat.Dense {
	d.Push(errVec, fock)
	out, err := d.Extrapolate()
	if err != nil {
		d.log.Debugf("diis: %v, using unextrapolated fock", err)
		return fock
	}
	return out
}

// Extrapolate solves the bordered system
//
//	| B  -1 | |c|   | 0|
//	|-1   0 | |λ| = |-1|
//
// with B[i][j] = <e_i, e_j>, and returns sum_i c_i F_i.
func (d *DIIS) Extrapolate() ([]*mat.Dense, error) {
	if d.n < 2 {
		return nil, ErrSolve
	}
	dim := d.n + 1
	b := mat.NewDense(dim, dim, nil)
	for i := 0; i < d.n; i++ {
		b.Set(i, dim-1, -1)
		b.Set(dim-1, i, -1)
		for j := 0; j <= i; j++ {
			v := mat.Dot(d.at(i).err, d.at(j).err)
			b.Set(i, j, v)
			b.Set(j, i, v)
		}
	}
	rhs := mat.NewVecDense(dim, nil)
	rhs.SetVec(dim-1, -1)

	var lu mat.LU
	lu.Factorize(b)
	var coefs mat.VecDense
	if err := lu.SolveVecTo(&coefs, false, rhs); err != nil {
		return nil, ErrSolve
	}

	channels := len(d.at(0).fock)
	out := make([]*mat.Dense, channels)
	for ch := 0; ch < channels; ch++ {
		r, c := d.at(0).fock[ch].Dims()
		f := mat.NewDense(r, c, nil)
		var part mat.Dense
		for i := 0; i < d.n; i++ {
			part.Scale(coefs.AtVec(i), d.at(i).fock[ch])
			f.Add(f, &part)
		}
		out[ch] = f
	}
	return out, nil
}

// ErrRMS is the root-mean-square of an error vector, logged as each pair
// enters the history.
func ErrRMS(e *mat.VecDense) float64 {
	sq := make([]float64, e.Len())
	for i := range sq {
		v := e.AtVec(i)
		sq[i] = v * v
	}
	return math.Sqrt(stat.Mean(sq, nil))
}
