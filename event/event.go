// SPDX-License-Identifier: Unlicense OR MIT

/*
Package event defines the closed set of input event variants routed
through a window tree: Key, Mouse, Scroll, Touch and Gesture events
sharing located and time-stamped metadata.

Located events carry both a Location in the coordinate space of the
window receiving them and a Root location in the dispatch root's
space. Events are plain values; converting an event from one
coordinate space to another returns an adjusted copy.
*/
package event

import (
	"math"
	"time"

	"github.com/oakwm/oak/f32"
)

// Event is the marker interface for events.
type Event interface {
	ImplementsEvent()
}

// Type identifies the variant and phase of an event.
type Type uint8

const (
	TypeUnknown Type = iota

	MousePressed
	MouseDragged
	MouseReleased
	MouseMoved
	MouseEntered
	MouseExited

	ScrollWheel
	ScrollFlingStart

	TouchPressed
	TouchMoved
	TouchStationary
	TouchReleased
	TouchCancelled

	KeyPressed
	KeyReleased

	GestureBegin
	GestureEnd
	GestureTapDown
	GestureTap
	GestureDoubleTap
	GestureLongPress
	GestureScrollBegin
	GestureScrollUpdate
	GestureScrollEnd
	GesturePinchBegin
	GesturePinchUpdate
	GesturePinchEnd
	GestureTwoFingerTap
	GestureMultifingerSwipe
)

// Modifiers is a set of active modifier keys.
type Modifiers uint32

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
	ModCapsLock
	ModNumLock
)

// Contain reports whether m contains all modifiers in m2.
func (m Modifiers) Contain(m2 Modifiers) bool {
	return m&m2 == m2
}

// Buttons is a set of mouse buttons.
type Buttons uint8

const (
	// ButtonPrimary is the primary button, usually the left button for a
	// right-handed user.
	ButtonPrimary Buttons = 1 << iota
	// ButtonSecondary is the secondary button, usually the right button
	// for a right-handed user.
	ButtonSecondary
	// ButtonTertiary is the tertiary button, usually the middle button.
	ButtonTertiary
)

// Contain reports whether the set b contains all of the buttons.
func (b Buttons) Contain(buttons Buttons) bool {
	return b&buttons == buttons
}

// TouchStatus reports how a window or filter handled a touch event. The
// status gates the dispatcher's touch-handler bookkeeping and tells the
// gesture recognizer whether the touch was consumed.
type TouchStatus uint8

const (
	// TouchStatusUnknown means the touch was not handled.
	TouchStatusUnknown TouchStatus = iota
	// TouchStatusStart marks the beginning of a touch sequence the
	// receiver wants; the dispatcher installs it as the touch handler.
	TouchStatusStart
	// TouchStatusContinue continues a handled sequence.
	TouchStatusContinue
	// TouchStatusEnd terminates a handled sequence; the dispatcher
	// clears the touch handler.
	TouchStatusEnd
	// TouchStatusCancel aborts the sequence; the dispatcher clears the
	// touch handler.
	TouchStatusCancel
	// TouchStatusQueued defers the handling decision; the event is
	// queued and must be resolved with AdvanceQueuedTouch.
	TouchStatusQueued
	// TouchStatusQueuedEnd is like TouchStatusQueued for a touch that
	// ends or cancels its sequence.
	TouchStatusQueuedEnd
)

// GestureStatus reports how a window or filter handled a gesture event.
type GestureStatus uint8

const (
	// GestureStatusUnknown means the gesture was not handled.
	GestureStatusUnknown GestureStatus = iota
	// GestureStatusConsumed means the gesture was handled.
	GestureStatusConsumed
	// GestureStatusSynthMouse means the gesture was turned into an
	// equivalent synthetic mouse sequence.
	GestureStatusSynthMouse
)

// Key is a keyboard event.
type Key struct {
	Type Type
	// Code is the platform-independent key code.
	Code uint32
	// Rune is the character produced, or 0.
	Rune      rune
	Modifiers Modifiers
	// Time is when the event was received. The timestamp is relative
	// to an undefined base.
	Time time.Duration
}

// Mouse is a pointer event generated by a mouse.
type Mouse struct {
	Type Type
	// Location is in the receiving window's coordinate space.
	Location f32.Point
	// Root is in the dispatch root's coordinate space.
	Root f32.Point
	// Buttons is the set of pressed buttons for this event.
	Buttons Buttons
	// Button is the button that changed state, for presses and
	// releases.
	Button    Buttons
	Modifiers Modifiers
	Time      time.Duration
	// Synthetic marks events synthesized by the dispatcher, such as
	// enter/exit pairs and moves replayed after tree mutations.
	Synthetic bool
}

// Scroll is a mouse-wheel or fling scroll event.
type Scroll struct {
	Type     Type
	Location f32.Point
	Root     f32.Point
	// Delta is the scroll distance, or the fling velocity for
	// ScrollFlingStart.
	Delta     f32.Point
	Modifiers Modifiers
	Time      time.Duration
}

// Touch is a single touch-point event.
type Touch struct {
	Type Type
	// PointerID identifies the touch point from press to release or
	// cancel.
	PointerID int
	Location  f32.Point
	Root      f32.Point
	// RadiusX and RadiusY are the touch ellipse radii, zero if the
	// device does not report them.
	RadiusX, RadiusY float32
	// Pressure is in [0, 1], zero if not reported.
	Pressure  float32
	Modifiers Modifiers
	Time      time.Duration
}

// Gesture is a higher-level event synthesized from a touch stream.
type Gesture struct {
	Type     Type
	Location f32.Point
	Root     f32.Point
	// DeltaX and DeltaY carry the per-type payload: scroll distances
	// for scroll updates, the scale factor (in DeltaX) for pinch
	// updates, velocities for flings and direction signs for swipes.
	DeltaX, DeltaY float32
	// TapCount is 1 for single taps and 2 for double taps.
	TapCount int
	// TouchCount is the number of touch points at the time of the
	// gesture.
	TouchCount int
	// BoundingBox encloses the touch ellipses of all active points,
	// in root coordinates.
	BoundingBox f32.Rectangle
	// PointerBits is a bitmask of the pointer ids involved.
	PointerBits uint32
	Modifiers   Modifiers
	Time        time.Duration
}

func (Key) ImplementsEvent()     {}
func (Mouse) ImplementsEvent()   {}
func (Scroll) ImplementsEvent()  {}
func (Touch) ImplementsEvent()   {}
func (Gesture) ImplementsEvent() {}

// IsMouseDown reports whether t is a button press.
func (t Type) IsMouseDown() bool {
	return t == MousePressed
}

// IsTouchEnd reports whether t terminates a touch point.
func (t Type) IsTouchEnd() bool {
	return t == TouchReleased || t == TouchCancelled
}

// UpdateForRootTransform reapplies e in the coordinate space produced
// by tr, typically the inverse of the dispatch root's transform.
func (e Mouse) UpdateForRootTransform(tr f32.Affine2D) Mouse {
	e.Location = tr.Transform(e.Location)
	e.Root = tr.Transform(e.Root)
	return e
}

// UpdateForRootTransform reapplies e in the coordinate space produced
// by tr and rescales the touch ellipse by the transform's scale
// factors.
func (e Touch) UpdateForRootTransform(tr f32.Affine2D) Touch {
	e.Location = tr.Transform(e.Location)
	e.Root = tr.Transform(e.Root)
	// The column norms keep the radii meaningful under rotation, where
	// the diagonal scale factors alone collapse to zero.
	sx, hx, _, hy, sy, _ := tr.Elems()
	e.RadiusX *= float32(math.Hypot(float64(sx), float64(hy)))
	e.RadiusY *= float32(math.Hypot(float64(hx), float64(sy)))
	return e
}

// UpdateForRootTransform reapplies e in the coordinate space produced
// by tr.
func (e Scroll) UpdateForRootTransform(tr f32.Affine2D) Scroll {
	e.Location = tr.Transform(e.Location)
	e.Root = tr.Transform(e.Root)
	return e
}

func (t Type) String() string {
	switch t {
	case MousePressed:
		return "MousePressed"
	case MouseDragged:
		return "MouseDragged"
	case MouseReleased:
		return "MouseReleased"
	case MouseMoved:
		return "MouseMoved"
	case MouseEntered:
		return "MouseEntered"
	case MouseExited:
		return "MouseExited"
	case ScrollWheel:
		return "ScrollWheel"
	case ScrollFlingStart:
		return "ScrollFlingStart"
	case TouchPressed:
		return "TouchPressed"
	case TouchMoved:
		return "TouchMoved"
	case TouchStationary:
		return "TouchStationary"
	case TouchReleased:
		return "TouchReleased"
	case TouchCancelled:
		return "TouchCancelled"
	case KeyPressed:
		return "KeyPressed"
	case KeyReleased:
		return "KeyReleased"
	case GestureBegin:
		return "GestureBegin"
	case GestureEnd:
		return "GestureEnd"
	case GestureTapDown:
		return "GestureTapDown"
	case GestureTap:
		return "GestureTap"
	case GestureDoubleTap:
		return "GestureDoubleTap"
	case GestureLongPress:
		return "GestureLongPress"
	case GestureScrollBegin:
		return "GestureScrollBegin"
	case GestureScrollUpdate:
		return "GestureScrollUpdate"
	case GestureScrollEnd:
		return "GestureScrollEnd"
	case GesturePinchBegin:
		return "GesturePinchBegin"
	case GesturePinchUpdate:
		return "GesturePinchUpdate"
	case GesturePinchEnd:
		return "GesturePinchEnd"
	case GestureTwoFingerTap:
		return "GestureTwoFingerTap"
	case GestureMultifingerSwipe:
		return "GestureMultifingerSwipe"
	default:
		return "Unknown"
	}
}
