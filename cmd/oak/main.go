// SPDX-License-Identifier: Unlicense OR MIT

// Command oak opens an X11 window hosting a small window tree and
// logs the events dispatched through it. It exists to exercise the
// dispatch path against a real input source.
package main

import (
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
	"github.com/oakwm/oak/gesture"
	"github.com/oakwm/oak/host/x11"
	"github.com/oakwm/oak/shell"
)

func main() {
	var (
		title      = flag.String("title", "oak", "host window title")
		width      = flag.Int("width", 800, "host window width")
		height     = flag.Int("height", 600, "host window height")
		configPath = flag.String("config", "", "gesture config file (yaml)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	if err := run(*title, image.Pt(*width, *height), *configPath, log); err != nil {
		fmt.Fprintln(os.Stderr, "oak:", err)
		os.Exit(1)
	}
}

func run(title string, size image.Point, configPath string, log *slog.Logger) error {
	cfg := gesture.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = gesture.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}

	host, err := x11.NewHost(title, size, log)
	if err != nil {
		return err
	}
	defer host.Close()

	runner := &shell.QueueRunner{}
	root := shell.NewRoot(host, runner,
		shell.WithLogger(log),
		shell.WithGestureConfig(cfg),
	)

	buildDemoTree(root, log)

	log.Info("event loop starting", "size", size)
	host.Run(root, runner)
	return nil
}

// buildDemoTree adds two overlapping windows, the upper one a child
// of the lower, so hit testing, enter/exit synthesis and capture all
// have something to land on.
func buildDemoTree(root *shell.Root, log *slog.Logger) {
	lower := shell.NewWindow(&demoDelegate{log: log, name: "lower"})
	lower.SetName("lower")
	lower.SetBoundsDirect(f32.Rect(50, 50, 600, 450))
	root.Window().AddChild(lower)
	lower.Show()

	upper := shell.NewWindow(&demoDelegate{log: log, name: "upper"})
	upper.SetName("upper")
	upper.SetBoundsDirect(f32.Rect(100, 100, 350, 300))
	lower.AddChild(upper)
	upper.Show()
}

// demoDelegate logs everything it receives and claims touches so the
// gesture recognizer sees consumed sequences.
type demoDelegate struct {
	shell.BaseDelegate
	log  *slog.Logger
	name string
}

func (d *demoDelegate) OnMouseEvent(ev *event.Mouse) bool {
	if ev.Type == event.MouseMoved || ev.Type == event.MouseDragged {
		return false
	}
	d.log.Info("mouse", "window", d.name, "type", ev.Type,
		"x", ev.Location.X, "y", ev.Location.Y, "buttons", ev.Buttons)
	return true
}

func (d *demoDelegate) OnScrollEvent(ev *event.Scroll) bool {
	d.log.Info("scroll", "window", d.name,
		"dx", ev.Delta.X, "dy", ev.Delta.Y)
	return true
}

func (d *demoDelegate) OnKeyEvent(ev *event.Key) bool {
	d.log.Info("key", "window", d.name, "type", ev.Type,
		"code", ev.Code, "rune", string(ev.Rune))
	return true
}

func (d *demoDelegate) OnTouchEvent(ev *event.Touch) event.TouchStatus {
	switch ev.Type {
	case event.TouchPressed:
		return event.TouchStatusStart
	case event.TouchReleased:
		return event.TouchStatusEnd
	case event.TouchCancelled:
		return event.TouchStatusCancel
	}
	return event.TouchStatusContinue
}

func (d *demoDelegate) OnGestureEvent(ev *event.Gesture) event.GestureStatus {
	d.log.Info("gesture", "window", d.name, "type", ev.Type,
		"x", ev.Location.X, "y", ev.Location.Y)
	return event.GestureStatusConsumed
}

func (d *demoDelegate) OnFocus() { d.log.Info("focus", "window", d.name) }
func (d *demoDelegate) OnBlur()  { d.log.Info("blur", "window", d.name) }

func (d *demoDelegate) GetCursor(p f32.Point) shell.Cursor {
	return shell.CursorPointer
}
