package grid

import (
	"cmp"
	"slices"

	"xsheet/internal/calc"

	"golang.org/x/exp/maps"
)

// Cell represents a single cell: the formula as parsed and the value it
// evaluated to when last read or written.
type Cell struct {
	Formula calc.Expr
	Value   calc.Value
}

func (c Cell) String() string {
	return calc.Serialize(c.Formula) + " => " + calc.Format(c.Value)
}

// Grid is a sparse mapping from coordinates to cells. A missing key is an
// undefined cell.
type Grid struct {
	cells map[[2]int64]Cell
}

func New() *Grid {
	return &Grid{cells: map[[2]int64]Cell{}}
}

func (g *Grid) Has(addr calc.Address) bool {
	_, ok := g.cells[addr.Key()]
	return ok
}

func (g *Grid) Len() int {
	return len(g.cells)
}

// Cells returns a copy of every defined cell keyed by coordinate.
func (g *Grid) Cells() map[[2]int64]Cell {
	return maps.Clone(g.cells)
}

// Within lists the defined cells inside rect, ordered by x then y.
func (g *Grid) Within(rect calc.Rect) []calc.Address {
	keys := maps.Keys(g.cells)
	slices.SortFunc(keys, func(a, b [2]int64) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})

	var out []calc.Address
	for _, k := range keys {
		if rect.Contains(k[0], k[1]) {
			out = append(out, calc.Address{X: k[0], Y: k[1]})
		}
	}
	return out
}

func (g *Grid) get(key [2]int64) (Cell, bool) {
	c, ok := g.cells[key]
	return c, ok
}

func (g *Grid) put(key [2]int64, c Cell) {
	g.cells[key] = c
}

func (g *Grid) delete(key [2]int64) {
	delete(g.cells, key)
}
