// SPDX-License-Identifier: Unlicense OR MIT

package x11

import (
	"image"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
)

// wheelDelta is the scroll distance of one wheel click, in pixels.
const wheelDelta = 53

func (h *Host) connectEvents() {
	xevent.ButtonPressFun(h.onButtonPress).Connect(h.xu, h.win.Id)
	xevent.ButtonReleaseFun(h.onButtonRelease).Connect(h.xu, h.win.Id)
	xevent.MotionNotifyFun(h.onMotion).Connect(h.xu, h.win.Id)
	xevent.KeyPressFun(h.onKeyPress).Connect(h.xu, h.win.Id)
	xevent.KeyReleaseFun(h.onKeyRelease).Connect(h.xu, h.win.Id)
	xevent.ConfigureNotifyFun(h.onConfigure).Connect(h.xu, h.win.Id)
}

// drain runs tasks the dispatcher posted while handling the event,
// such as coalesced synthetic mouse moves.
func (h *Host) drain() {
	h.runner.RunPending()
}

func (h *Host) onButtonPress(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
	loc := f32.Pt(float32(ev.EventX), float32(ev.EventY))
	if ev.Detail >= 4 && ev.Detail <= 7 {
		h.dispatcher.DispatchScrollEvent(&event.Scroll{
			Type:      event.ScrollWheel,
			Location:  loc,
			Root:      loc,
			Delta:     wheelScroll(ev.Detail),
			Modifiers: modifiers(ev.State),
			Time:      eventTime(ev.Time),
		})
		h.drain()
		return
	}
	b := buttonFor(ev.Detail)
	if b == 0 {
		return
	}
	h.buttons |= b
	h.dispatcher.DispatchMouseEvent(&event.Mouse{
		Type:      event.MousePressed,
		Location:  loc,
		Root:      loc,
		Buttons:   h.buttons,
		Button:    b,
		Modifiers: modifiers(ev.State),
		Time:      eventTime(ev.Time),
	})
	h.drain()
}

func (h *Host) onButtonRelease(xu *xgbutil.XUtil, ev xevent.ButtonReleaseEvent) {
	b := buttonFor(ev.Detail)
	if b == 0 {
		return
	}
	h.buttons &^= b
	loc := f32.Pt(float32(ev.EventX), float32(ev.EventY))
	h.dispatcher.DispatchMouseEvent(&event.Mouse{
		Type:      event.MouseReleased,
		Location:  loc,
		Root:      loc,
		Buttons:   h.buttons,
		Button:    b,
		Modifiers: modifiers(ev.State),
		Time:      eventTime(ev.Time),
	})
	h.drain()
}

func (h *Host) onMotion(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
	loc := f32.Pt(float32(ev.EventX), float32(ev.EventY))
	h.dispatcher.DispatchMouseEvent(&event.Mouse{
		Type:      event.MouseMoved,
		Location:  loc,
		Root:      loc,
		Buttons:   h.buttons,
		Modifiers: modifiers(ev.State),
		Time:      eventTime(ev.Time),
	})
	h.drain()
}

func (h *Host) onKeyPress(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
	h.dispatcher.DispatchKeyEvent(&event.Key{
		Type:      event.KeyPressed,
		Code:      uint32(ev.Detail),
		Rune:      keyRune(xu, ev.State, ev.Detail),
		Modifiers: modifiers(ev.State),
		Time:      eventTime(ev.Time),
	})
	h.drain()
}

func (h *Host) onKeyRelease(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
	h.dispatcher.DispatchKeyEvent(&event.Key{
		Type:      event.KeyReleased,
		Code:      uint32(ev.Detail),
		Rune:      keyRune(xu, ev.State, ev.Detail),
		Modifiers: modifiers(ev.State),
		Time:      eventTime(ev.Time),
	})
	h.drain()
}

func (h *Host) onConfigure(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
	size := image.Pt(int(ev.Width), int(ev.Height))
	if size == h.size {
		return
	}
	h.size = size
	h.dispatcher.OnHostResized(size)
	h.drain()
}

func keyRune(xu *xgbutil.XUtil, state uint16, detail xproto.Keycode) rune {
	s := keybind.LookupString(xu, state, detail)
	if utf8.RuneCountInString(s) != 1 {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func wheelScroll(detail xproto.Button) f32.Point {
	switch detail {
	case 4:
		return f32.Pt(0, wheelDelta)
	case 5:
		return f32.Pt(0, -wheelDelta)
	case 6:
		return f32.Pt(wheelDelta, 0)
	default:
		return f32.Pt(-wheelDelta, 0)
	}
}

func buttonFor(detail xproto.Button) event.Buttons {
	switch detail {
	case 1:
		return event.ButtonPrimary
	case 2:
		return event.ButtonTertiary
	case 3:
		return event.ButtonSecondary
	}
	return 0
}

func modifiers(state uint16) event.Modifiers {
	var m event.Modifiers
	if state&xproto.ModMaskShift != 0 {
		m |= event.ModShift
	}
	if state&xproto.ModMaskControl != 0 {
		m |= event.ModCtrl
	}
	if state&xproto.ModMask1 != 0 {
		m |= event.ModAlt
	}
	if state&xproto.ModMask2 != 0 {
		m |= event.ModNumLock
	}
	if state&xproto.ModMask4 != 0 {
		m |= event.ModSuper
	}
	if state&xproto.ModMaskLock != 0 {
		m |= event.ModCapsLock
	}
	return m
}

func eventTime(t xproto.Timestamp) time.Duration {
	return time.Duration(t) * time.Millisecond
}
