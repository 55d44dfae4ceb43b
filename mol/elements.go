// elements.go --  This file is part of the goscf project.
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

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// symbols[z-1] is the element symbol for nuclear charge z.
var symbols = []string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
}

// ZOf maps an element symbol to its nuclear charge.
func ZOf(symbol string) (int, error) {
	i := slices.Index(symbols, symbol)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownElement, symbol)
	}
	return i + 1, nil
}

// SymbolOf maps a nuclear charge to the element symbol.
func SymbolOf(z int) (string, error) {
	if z < 1 || z > len(symbols) {
		return "", fmt.Errorf("%w: Z=%d", ErrUnknownElement, z)
	}
	return symbols[z-1], nil
}
