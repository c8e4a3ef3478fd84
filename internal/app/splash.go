package app

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// SplashScreen spells out the program name letter by letter, then waits for
// any key.
func SplashScreen(s tcell.Screen, delay time.Duration) {
	text := []struct {
		char  rune
		color tcell.Color
	}{
		{'X', tcell.ColorYellow},
		{'S', tcell.ColorWhite},
		{'H', tcell.ColorWhite},
		{'E', tcell.ColorWhite},
		{'E', tcell.ColorWhite},
		{'T', tcell.ColorWhite},
	}

	width, height := s.Size()
	startX := (width - len(text)) / 2
	y := height / 2

	hint := "Press any key to open the sheet"
	hintStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	for reveal := 1; reveal <= len(text); reveal++ {
		s.Clear()

		for i := 0; i < reveal; i++ {
			style := tcell.StyleDefault.Foreground(text[i].color).Bold(true)
			s.SetContent(startX+i, y, text[i].char, nil, style)
		}

		startHintX := (width - len(hint)) / 2
		for i, ch := range hint {
			s.SetContent(startHintX+i, y+2, ch, nil, hintStyle)
		}

		s.Show()
		time.Sleep(delay)
	}

	for {
		switch s.PollEvent().(type) {
		case *tcell.EventKey, nil:
			return
		case *tcell.EventResize:
			s.Sync()
		}
	}
}
