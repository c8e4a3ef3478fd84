package grid

import (
	"io"
	"log/slog"

	"xsheet/internal/calc"
)

// Runtime owns the grid and mediates every read, write and removal. Reads
// re-evaluate the stored formula, so a cell always reflects the current
// contents of the cells it refers to.
type Runtime struct {
	grid *Grid

	// reserved for named values; nothing in the language reads them yet
	globals map[string]calc.Value
	locals  map[string]calc.Value

	logger *slog.Logger
}

func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runtime{
		grid:    New(),
		globals: map[string]calc.Value{},
		locals:  map[string]calc.Value{},
		logger:  logger,
	}
}

func (rt *Runtime) Grid() *Grid {
	return rt.grid
}

func (rt *Runtime) Global(key string) (calc.Value, bool) {
	v, ok := rt.globals[key]
	return v, ok
}

func (rt *Runtime) Local(key string) (calc.Value, bool) {
	v, ok := rt.locals[key]
	return v, ok
}

// SetCell evaluates formula right away and stores it at addr together with
// its value. Nothing is stored when evaluation fails.
func (rt *Runtime) SetCell(addr calc.Value, formula calc.Expr) error {
	a, err := toAddress(addr)
	if err != nil {
		return err
	}

	ctx := rt.newContext()
	// a formula that reaches back to its own cell is circular
	ctx.visiting[a.Key()] = true

	v, err := calc.Evaluate(formula, ctx)
	if err != nil {
		rt.logger.Debug("set cell failed",
			slog.String("cell", calc.Format(a)),
			slog.String("error", err.Error()))
		return err
	}

	rt.grid.put(a.Key(), Cell{Formula: formula, Value: v})
	rt.logger.Debug("set cell",
		slog.String("cell", calc.Format(a)),
		slog.String("formula", calc.Serialize(formula)),
		slog.String("value", calc.Format(v)))

	return nil
}

// GetCell re-evaluates the formula stored at addr and returns the fresh value.
func (rt *Runtime) GetCell(addr calc.Value) (calc.Value, error) {
	a, err := toAddress(addr)
	if err != nil {
		return nil, err
	}

	return rt.newContext().Resolve(a)
}

// RemoveCell deletes the cell at addr if there is one.
func (rt *Runtime) RemoveCell(addr calc.Address) {
	if !rt.grid.Has(addr) {
		return
	}

	rt.grid.delete(addr.Key())
	rt.logger.Debug("remove cell", slog.String("cell", calc.Format(addr)))
}

// Reset drops every cell and named value.
func (rt *Runtime) Reset() {
	rt.logger.Debug("reset", slog.Int("cells", rt.grid.Len()))

	rt.grid = New()
	rt.globals = map[string]calc.Value{}
	rt.locals = map[string]calc.Value{}
}

func (rt *Runtime) newContext() *evalContext {
	return &evalContext{rt: rt, visiting: map[[2]int64]bool{}}
}

// evalContext resolves references for one top-level read or write. visiting
// holds the cells whose evaluation is in progress.
type evalContext struct {
	rt       *Runtime
	visiting map[[2]int64]bool
}

func (c *evalContext) Resolve(addr calc.Address) (calc.Value, error) {
	key := addr.Key()
	if c.visiting[key] {
		return nil, &calc.CircularReferenceError{X: addr.X, Y: addr.Y}
	}

	cell, ok := c.rt.grid.get(key)
	if !ok {
		return nil, &calc.UndefinedCellError{X: addr.X, Y: addr.Y}
	}

	c.visiting[key] = true
	defer delete(c.visiting, key)

	v, err := calc.Evaluate(cell.Formula, c)
	if err != nil {
		return nil, err
	}

	c.rt.grid.put(key, Cell{Formula: cell.Formula, Value: v})
	return v, nil
}

func (c *evalContext) Within(rect calc.Rect) []calc.Address {
	return c.rt.grid.Within(rect)
}

func toAddress(v calc.Value) (calc.Address, error) {
	switch v := v.(type) {
	case calc.Address:
		return v, nil
	case nil:
		return calc.Address{}, &calc.InvalidAddressError{Value: "nil", Type: "nil"}
	default:
		return calc.Address{}, &calc.InvalidAddressError{Value: calc.Format(v), Type: v.TypeName()}
	}
}
