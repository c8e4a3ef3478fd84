package app

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"xsheet/internal/calc"
	"xsheet/internal/grid"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// The sheet is a fixed square of cells addressed [column, row].
const (
	GridCols = 10
	GridRows = 10
)

type App struct {
	// layout
	LeftGutter  int
	CellWidth   int
	HeaderLines int
	StatusLines int

	// sheet data
	Runtime *grid.Runtime
	Sources map[[2]int64]string
	failed  map[[2]int64]bool

	// cursor
	CurX int
	CurY int

	// UI state
	Mode        string // view | edit
	InputBuf    string
	Message     string
	Quit        bool
	HelpVisible bool

	logger *slog.Logger
}

func NewApp(logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &App{
		LeftGutter:  5,
		CellWidth:   10,
		HeaderLines: 2,
		StatusLines: 3,
		Runtime:     grid.NewRuntime(logger),
		Sources:     map[[2]int64]string{},
		failed:      map[[2]int64]bool{},
		Mode:        "view",
		logger:      logger,
	}
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	if a.Mode == "edit" {
		a.handleEditKey(ev)
		return
	}

	// the help popup swallows keys until it is closed
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || ev.Rune() == '?' {
			a.HelpVisible = false
		}
		return
	}

	a.Message = ""

	switch ev.Key() {
	case tcell.KeyEsc, tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyUp:
		a.Move(0, -1)
	case tcell.KeyDown:
		a.Move(0, 1)
	case tcell.KeyLeft:
		a.Move(-1, 0)
	case tcell.KeyRight:
		a.Move(1, 0)
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.Clear(a.CurX, a.CurY)
	case tcell.KeyCtrlR:
		a.Reset()
	case tcell.KeyEnter:
		a.startEdit()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			a.Quit = true
		case 'i':
			a.startEdit()
		case ':':
			command, ok := a.PopupInput(s, ":", "")
			if ok {
				a.ExecuteCommand(command)
			}
		case '=':
			formula, ok := a.PopupInput(s, "", "=")
			if ok {
				a.Commit(a.CurX, a.CurY, formula)
			}
		case '?':
			a.HelpVisible = true
		}
	}
}

func (a *App) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEsc:
		a.Mode = "view"
		a.InputBuf = ""
	case tcell.KeyEnter:
		a.Commit(a.CurX, a.CurY, a.InputBuf)
		a.Mode = "view"
		a.InputBuf = ""
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(a.InputBuf); len(r) > 0 {
			a.InputBuf = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		if r := ev.Rune(); r >= ' ' && r <= '~' && len(a.InputBuf) < maxInputLen {
			a.InputBuf += string(r)
		}
	}
}

func (a *App) HandleMouseEvent(ev *tcell.EventMouse) {
	if a.Mode != "view" || ev.Buttons()&tcell.Button1 == 0 {
		return
	}

	mx, my := ev.Position()
	x := (mx - a.LeftGutter) / a.CellWidth
	y := my - a.HeaderLines
	if mx < a.LeftGutter || x >= GridCols || y < 0 || y >= GridRows {
		return
	}

	a.CurX, a.CurY = x, y
}

// Move shifts the cursor, wrapping around the edges of the sheet.
func (a *App) Move(dx, dy int) {
	a.CurX = (a.CurX + dx + GridCols) % GridCols
	a.CurY = (a.CurY + dy + GridRows) % GridRows
}

func (a *App) startEdit() {
	a.Mode = "edit"
	a.InputBuf = a.Sources[address(a.CurX, a.CurY).Key()]
}

// ----------------------------- Commands -----------------------------

func (a *App) ExecuteCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "reset":
		a.Reset()
	case "clear":
		a.Clear(a.CurX, a.CurY)
	case "goto":
		if len(parts) < 3 {
			a.Message = "usage: goto <col> <row>"
			return
		}
		x, errX := strconv.Atoi(parts[1])
		y, errY := strconv.Atoi(parts[2])
		if errX != nil || errY != nil || x < 0 || x >= GridCols || y < 0 || y >= GridRows {
			a.Message = fmt.Sprintf("no such cell: %s %s", parts[1], parts[2])
			return
		}
		a.CurX, a.CurY = x, y
	default:
		a.Message = "unknown command: " + parts[0]
	}
}

// ----------------------------- Display -----------------------------

// DisplayText is what the grid shows for a cell: its freshly computed value,
// ERROR when that fails, cut down to fit the column.
func (a *App) DisplayText(x, y int) string {
	addr := address(x, y)
	if !a.Runtime.Grid().Has(addr) {
		return ""
	}
	if a.failed[addr.Key()] {
		return "ERROR"
	}

	v, err := a.Runtime.GetCell(addr)
	if err != nil {
		return "ERROR"
	}

	return fit(calc.Format(v))
}

// ValueText is the full value of a cell, or the reason it has none.
func (a *App) ValueText(x, y int) string {
	addr := address(x, y)
	if !a.Runtime.Grid().Has(addr) {
		return ""
	}

	v, err := a.Runtime.GetCell(addr)
	if err != nil {
		return Describe(err)
	}

	return calc.Format(v)
}

func fit(s string) string {
	if runewidth.StringWidth(s) > 7 {
		return runewidth.Truncate(s, 7, "..")
	}
	return s
}

func center(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

// ----------------------------- Drawing -----------------------------

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, _ := s.Size()

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	selStyle := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorLightGray)
	sepStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	title := fmt.Sprintf(" XSHEET   MODE: %sING CELL [%d, %d]", strings.ToUpper(a.Mode), a.CurX, a.CurY)
	a.printTextFixedWidth(s, 0, 0, title, titleStyle, w)

	// header row: column numbers
	a.printTextFixedWidth(s, 0, 1, center("*", a.LeftGutter-1), hdrStyle, a.LeftGutter-1)
	for x := 0; x < GridCols; x++ {
		style := hdrStyle
		if x == a.CurX {
			style = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		}
		a.printTextFixedWidth(s, a.cellX(x), 1, center(strconv.Itoa(x), a.CellWidth-1), style, a.CellWidth-1)
	}

	for y := 0; y < GridRows; y++ {
		sy := a.HeaderLines + y

		style := hdrStyle
		if y == a.CurY {
			style = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		}
		a.printTextFixedWidth(s, 0, sy, center(strconv.Itoa(y), a.LeftGutter-1), style, a.LeftGutter-1)
		s.SetContent(a.LeftGutter-1, sy, tcell.RuneVLine, nil, sepStyle)

		for x := 0; x < GridCols; x++ {
			text := a.DisplayText(x, y)
			cellStyle := tcell.StyleDefault
			if x == a.CurX && y == a.CurY {
				cellStyle = selStyle
				if a.Mode == "edit" {
					text = tail(a.InputBuf, a.CellWidth-1)
				}
			}
			a.printTextFixedWidth(s, a.cellX(x), sy, center(text, a.CellWidth-1), cellStyle, a.CellWidth-1)
			s.SetContent(a.cellX(x)+a.CellWidth-1, sy, tcell.RuneVLine, nil, sepStyle)
		}
	}

	// status area
	statusY := a.HeaderLines + GridRows + 1
	statusStyle := tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)

	contents := a.Sources[address(a.CurX, a.CurY).Key()]
	if a.Mode == "edit" {
		contents = a.InputBuf
	}
	a.printTextFixedWidth(s, 0, statusY, contentsLabel+contents, statusStyle, w)
	a.printTextFixedWidth(s, 0, statusY+1, "Value: "+a.ValueText(a.CurX, a.CurY), statusStyle, w)

	hint := a.Message
	if hint == "" {
		hint = "ESC exit   ENTER edit   = formula   : command   ^R reset   DEL clear   ? help"
	}
	a.printTextFixedWidth(s, 0, statusY+2, hint, tcell.StyleDefault, w)

	if a.HelpVisible {
		help := "\n Enter / i - edit cell \n = - formula \n : - command (q, reset, clear, goto x y) \n Del - clear cell \n Ctrl+R - reset sheet \n Esc / q - quit \n\n =#[0, 0] + 1 - refer to a cell \n =sum([0, 0], [2, 2]) - min, max, mean, sum over a range \n no precedence: 1 + 2 * 3 is 9 \n "
		a.drawHelpPopup(s, help)
	}

	if a.Mode == "edit" {
		s.ShowCursor(len(contentsLabel)+runewidth.StringWidth(a.InputBuf), statusY)
	} else {
		s.HideCursor()
	}

	s.Show()
}

const contentsLabel = "Cell Contents: "

func (a *App) cellX(x int) int {
	return a.LeftGutter + x*a.CellWidth
}

func tail(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[len(r)-width:])
	}
	return s
}

// ----------------------------- Helpers -----------------------------

func (a *App) printTextFixedWidth(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	runes := []rune(str)
	for i := 0; i < width; i++ {
		var ch rune = ' '
		if i < len(runes) {
			ch = runes[i]
		}
		if x+i >= 0 && y >= 0 {
			s.SetContent(x+i, y, ch, nil, style)
		}
	}
}

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	innerW := min(60, w-6-padding*2)

	lines := wrapText(help, innerW)
	if maxH := h - 4 - padding*2; len(lines) > maxH {
		lines = lines[:max(0, maxH)]
	}

	pw := innerW + padding*2
	ph := len(lines) + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)

	for yy := 0; yy < ph; yy++ {
		for xx := 0; xx < pw; xx++ {
			s.SetContent(left+xx, top+yy, ' ', nil, style)
		}
	}

	s.SetContent(left, top, tcell.RuneULCorner, nil, style)
	s.SetContent(left+pw-1, top, tcell.RuneURCorner, nil, style)
	s.SetContent(left, top+ph-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(left+pw-1, top+ph-1, tcell.RuneLRCorner, nil, style)
	for xx := 1; xx < pw-1; xx++ {
		s.SetContent(left+xx, top, tcell.RuneHLine, nil, style)
		s.SetContent(left+xx, top+ph-1, tcell.RuneHLine, nil, style)
	}
	for yy := 1; yy < ph-1; yy++ {
		s.SetContent(left, top+yy, tcell.RuneVLine, nil, style)
		s.SetContent(left+pw-1, top+yy, tcell.RuneVLine, nil, style)
	}

	for i, ln := range lines {
		a.printTextFixedWidth(s, left+padding, top+padding+i, ln, style, innerW)
	}
}

// wrapText breaks s into lines no wider than width, keeping blank lines.
func wrapText(s string, width int) []string {
	var result []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}

		cur := ""
		for _, word := range words {
			switch {
			case cur == "":
				cur = word
			case runewidth.StringWidth(cur)+1+runewidth.StringWidth(word) <= width:
				cur += " " + word
			default:
				result = append(result, cur)
				cur = word
			}
		}
		result = append(result, runewidth.Truncate(cur, width, ""))
	}

	return result
}
