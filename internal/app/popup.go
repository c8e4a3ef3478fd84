package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// PopupInput shows a modal one-line editor over the sheet, seeded with
// initial. It returns the text and true on Enter, or "" and false on Esc.
func (a *App) PopupInput(s tcell.Screen, prompt, initial string) (string, bool) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)

	buf := []rune(initial)
	pos := len(buf)
	promptW := runewidth.StringWidth(prompt)

	var left, top, boxW int
	const boxH = 3

	layout := func() {
		w, h := s.Size()
		boxW = min(max(maxInputLen+promptW+4, 24), w-4)
		left = (w - boxW) / 2
		top = (h - boxH) / 2
	}

	drawBox := func() {
		for y := top; y < top+boxH; y++ {
			for x := left; x < left+boxW; x++ {
				s.SetContent(x, y, ' ', nil, style)
			}
		}
		for x := left; x < left+boxW; x++ {
			s.SetContent(x, top, tcell.RuneHLine, nil, style)
			s.SetContent(x, top+boxH-1, tcell.RuneHLine, nil, style)
		}
		s.SetContent(left, top+1, tcell.RuneVLine, nil, style)
		s.SetContent(left+boxW-1, top+1, tcell.RuneVLine, nil, style)
		s.SetContent(left, top, tcell.RuneULCorner, nil, style)
		s.SetContent(left+boxW-1, top, tcell.RuneURCorner, nil, style)
		s.SetContent(left, top+boxH-1, tcell.RuneLLCorner, nil, style)
		s.SetContent(left+boxW-1, top+boxH-1, tcell.RuneLRCorner, nil, style)

		x := left + 2
		y := top + 1
		a.printTextFixedWidth(s, x, y, prompt, style, promptW)
		if promptW > 0 {
			x += promptW + 1
		}

		field := max(boxW-4-(x-left-2), 1)
		start := 0
		if pos > field {
			start = pos - field
		}
		visible := buf[start:min(len(buf), start+field)]
		a.printTextFixedWidth(s, x, y, string(visible), style, field)

		s.ShowCursor(x+pos-start, y)
	}

	redraw := func() {
		a.Draw(s)
		drawBox()
		s.Show()
	}

	layout()
	redraw()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEsc:
				s.HideCursor()
				a.Draw(s)
				return "", false
			case tcell.KeyEnter:
				s.HideCursor()
				a.Draw(s)
				return string(buf), true
			case tcell.KeyBackspace, tcell.KeyBackspace2:
				if pos > 0 {
					buf = append(buf[:pos-1], buf[pos:]...)
					pos--
				}
			case tcell.KeyDelete:
				if pos < len(buf) {
					buf = append(buf[:pos], buf[pos+1:]...)
				}
			case tcell.KeyLeft:
				if pos > 0 {
					pos--
				}
			case tcell.KeyRight:
				if pos < len(buf) {
					pos++
				}
			case tcell.KeyHome:
				pos = 0
			case tcell.KeyEnd:
				pos = len(buf)
			case tcell.KeyRune:
				if len(buf) < maxInputLen {
					buf = append(buf[:pos], append([]rune{ev.Rune()}, buf[pos:]...)...)
					pos++
				}
			}
			redraw()
		case *tcell.EventResize:
			s.Sync()
			layout()
			redraw()
		case nil:
			// screen finalized
			return "", false
		}
	}
}
