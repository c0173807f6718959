// SPDX-License-Identifier: Unlicense OR MIT

// Package x11 hosts a dispatch root in an X11 window, translating
// core protocol input into tree events.
package x11

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
	"github.com/oakwm/oak/shell"
)

// Dispatcher receives translated native input. *shell.Root satisfies
// it.
type Dispatcher interface {
	DispatchMouseEvent(ev *event.Mouse) bool
	DispatchScrollEvent(ev *event.Scroll) bool
	DispatchKeyEvent(ev *event.Key) bool
	OnHostResized(size image.Point)
}

// Host is an X11 window that feeds a Dispatcher. It implements
// shell.Host.
type Host struct {
	xu  *xgbutil.XUtil
	win *xwindow.Window
	log *slog.Logger

	dispatcher Dispatcher
	runner     *shell.QueueRunner

	size    image.Point
	buttons event.Buttons

	cursors     map[shell.Cursor]xproto.Cursor
	blankCursor xproto.Cursor
	cursorShown bool
	confined    bool
}

// NewHost connects to the X server and creates a mapped toplevel
// window of the given size.
func NewHost(title string, size image.Point, log *slog.Logger) (*Host, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11: connect: %w", err)
	}
	keybind.Initialize(xu)

	win, err := xwindow.Generate(xu)
	if err != nil {
		return nil, fmt.Errorf("x11: allocate window id: %w", err)
	}
	mask := xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskKeyPress |
		xproto.EventMaskKeyRelease |
		xproto.EventMaskLeaveWindow |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskExposure
	err = win.CreateChecked(xu.RootWin(), 0, 0, size.X, size.Y,
		xproto.CwBackPixel|xproto.CwEventMask, 0xffffff, uint32(mask))
	if err != nil {
		return nil, fmt.Errorf("x11: create window: %w", err)
	}
	if err := ewmh.WmNameSet(xu, win.Id, title); err != nil {
		log.Warn("x11: set window title failed", "err", err)
	}
	win.WMGracefulClose(func(w *xwindow.Window) {
		w.Destroy()
		xevent.Quit(xu)
	})

	h := &Host{
		xu:          xu,
		win:         win,
		log:         log,
		size:        size,
		cursors:     make(map[shell.Cursor]xproto.Cursor),
		cursorShown: true,
	}
	return h, nil
}

// Run maps the window, connects input translation to the dispatcher
// and blocks in the X event loop. Tasks the dispatcher posts to the
// runner are drained after every translated event.
func (h *Host) Run(d Dispatcher, runner *shell.QueueRunner) {
	h.dispatcher = d
	h.runner = runner
	h.connectEvents()
	h.win.Map()
	xevent.Main(h.xu)
}

// Quit exits the event loop started by Run.
func (h *Host) Quit() {
	xevent.Quit(h.xu)
}

// Close disconnects from the X server.
func (h *Host) Close() {
	h.xu.Conn().Close()
}

// Size returns the host window's size in pixels.
func (h *Host) Size() image.Point { return h.size }

// SetSize resizes the host window.
func (h *Host) SetSize(size image.Point) {
	h.win.Resize(size.X, size.Y)
	h.size = size
}

// SetCursor changes the window cursor shape.
func (h *Host) SetCursor(c shell.Cursor) {
	if !h.cursorShown {
		return
	}
	cur, err := h.cursorFor(c)
	if err != nil {
		h.log.Warn("x11: create cursor failed", "cursor", int(c), "err", err)
		return
	}
	h.win.Change(xproto.CwCursor, uint32(cur))
}

// ShowCursor shows or hides the cursor over the host window. Hiding
// installs a cursor with an empty source pixmap.
func (h *Host) ShowCursor(show bool) {
	h.cursorShown = show
	if show {
		h.win.Change(xproto.CwCursor, uint32(xproto.CursorNone))
		return
	}
	if h.blankCursor == 0 {
		cur, err := h.createBlankCursor()
		if err != nil {
			h.log.Warn("x11: create blank cursor failed", "err", err)
			return
		}
		h.blankCursor = cur
	}
	h.win.Change(xproto.CwCursor, uint32(h.blankCursor))
}

// QueryMouseLocation returns the pointer position in window
// coordinates.
func (h *Host) QueryMouseLocation() f32.Point {
	reply, err := xproto.QueryPointer(h.xu.Conn(), h.win.Id).Reply()
	if err != nil {
		return f32.Point{}
	}
	return f32.Pt(float32(reply.WinX), float32(reply.WinY))
}

// SetCapture grabs the pointer so drags keep delivering to this
// window outside its bounds.
func (h *Host) SetCapture() {
	h.grabPointer(xproto.WindowNone)
}

// ReleaseCapture releases a pointer grab.
func (h *Host) ReleaseCapture() {
	xproto.UngrabPointer(h.xu.Conn(), xproto.TimeCurrentTime)
	h.confined = false
}

// ConfineCursor restricts the pointer to the host window while a grab
// is active.
func (h *Host) ConfineCursor(confine bool) {
	if confine == h.confined {
		return
	}
	h.confined = confine
	if confine {
		h.grabPointer(h.win.Id)
	} else {
		xproto.UngrabPointer(h.xu.Conn(), xproto.TimeCurrentTime)
	}
}

func (h *Host) grabPointer(confineTo xproto.Window) {
	events := uint16(xproto.EventMaskButtonPress |
		xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion)
	reply, err := xproto.GrabPointer(h.xu.Conn(), true, h.win.Id, events,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
		confineTo, xproto.CursorNone, xproto.TimeCurrentTime).Reply()
	if err != nil {
		h.log.Warn("x11: grab pointer failed", "err", err)
		return
	}
	if reply.Status != xproto.GrabStatusSuccess {
		h.log.Warn("x11: grab pointer refused", "status", reply.Status)
	}
}

func (h *Host) cursorFor(c shell.Cursor) (xproto.Cursor, error) {
	if cur, ok := h.cursors[c]; ok {
		return cur, nil
	}
	cur, err := xcursor.CreateCursor(h.xu, cursorFont(c))
	if err != nil {
		return 0, err
	}
	h.cursors[c] = cur
	return cur, nil
}

func cursorFont(c shell.Cursor) uint16 {
	switch c {
	case shell.CursorHand:
		return xcursor.Hand2
	case shell.CursorIBeam:
		return xcursor.XTerm
	case shell.CursorCross:
		return xcursor.Crosshair
	case shell.CursorWait:
		return xcursor.Watch
	case shell.CursorNorthResize:
		return xcursor.TopSide
	case shell.CursorSouthResize:
		return xcursor.BottomSide
	case shell.CursorEastResize:
		return xcursor.RightSide
	case shell.CursorWestResize:
		return xcursor.LeftSide
	case shell.CursorNorthEastResize:
		return xcursor.TopRightCorner
	case shell.CursorNorthWestResize:
		return xcursor.TopLeftCorner
	case shell.CursorSouthEastResize:
		return xcursor.BottomRightCorner
	case shell.CursorSouthWestResize:
		return xcursor.BottomLeftCorner
	default:
		return xcursor.LeftPtr
	}
}

func (h *Host) createBlankCursor() (xproto.Cursor, error) {
	conn := h.xu.Conn()
	pix, err := xproto.NewPixmapId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreatePixmapChecked(conn, 1, pix,
		xproto.Drawable(h.xu.RootWin()), 1, 1).Check()
	if err != nil {
		return 0, err
	}
	defer xproto.FreePixmap(conn, pix)
	cur, err := xproto.NewCursorId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateCursorChecked(conn, cur, pix, pix,
		0, 0, 0, 0, 0, 0, 0, 0).Check()
	if err != nil {
		return 0, err
	}
	return cur, nil
}
