// basis.go --  This file is part of the goscf project.
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
package mol

// Sets holds the embedded basis tables, keyed by set name then element
// symbol. The native integral backend handles s shells, so the tables carry
// the s-block elements.
var Sets = map[string]map[string][]Shell{
	"sto-3g": {
		"H": {
			{L: 0,
				Exps:   []float64{0.3425250914e+01, 0.6239137298e+00, 0.1688554040e+00},
				Coeffs: []float64{0.1543289673e+00, 0.5353281423e+00, 0.4446345422e+00}},
		},
		"He": {
			{L: 0,
				Exps:   []float64{0.6362421394e+01, 0.1158922999e+01, 0.3136497915e+00},
				Coeffs: []float64{0.1543289673e+00, 0.5353281423e+00, 0.4446345422e+00}},
		},
	},
	"6-31g": {
		"H": {
			{L: 0,
				Exps:   []float64{0.1873113696e+02, 0.2825394365e+01, 0.6401216923e+00},
				Coeffs: []float64{0.3349460434e-01, 0.2347269535e+00, 0.8137573261e+00}},
			{L: 0,
				Exps:   []float64{0.1612777588e+00},
				Coeffs: []float64{1.0}},
		},
		"He": {
			{L: 0,
				Exps:   []float64{0.3842163400e+02, 0.5778030000e+01, 0.1241774000e+01},
				Coeffs: []float64{0.2376600e-01, 0.1546790e+00, 0.4696300e+00}},
			{L: 0,
				Exps:   []float64{0.2979640e+00},
				Coeffs: []float64{1.0}},
		},
	},
}
