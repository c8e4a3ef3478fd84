package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"xsheet/internal/app"

	"github.com/gdamore/tcell/v2"
)

func main() {
	logPath := flag.String("log", os.Getenv("XSHEET_LOG"), "write logs to this file (default $XSHEET_LOG)")
	debug := flag.Bool("debug", false, "log every cell read and write")
	noSplash := flag.Bool("no-splash", false, "skip the start-up screen")
	flag.Parse()

	logger, closeLog, err := newLogger(*logPath, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// initialize app state
	a := app.NewApp(logger)

	// start tcell
	s, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot create screen: %v\n", err)
		os.Exit(1)
	}
	if err := s.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "cannot init screen: %v\n", err)
		os.Exit(1)
	}
	defer s.Fini()

	s.EnableMouse()
	s.Clear()

	if !*noSplash {
		app.SplashScreen(s, 120*time.Millisecond)
	}

	logger.Info("session started")

	// main loop
	for !a.Quit {
		a.Draw(s)
		switch ev := s.PollEvent().(type) {
		case *tcell.EventKey:
			a.HandleKeyEvent(s, ev)
		case *tcell.EventMouse:
			a.HandleMouseEvent(ev)
		case *tcell.EventResize:
			s.Sync()
		}
	}

	logger.Info("session ended", slog.Int("cells", a.Runtime.Grid().Len()))
}

// newLogger logs to path, or nowhere when path is empty; the terminal belongs
// to the sheet.
func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
