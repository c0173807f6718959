// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"image"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
)

// Cursor identifies an abstract cursor shape. The host maps it to a
// platform cursor.
type Cursor int

const (
	CursorNull Cursor = iota
	CursorPointer
	CursorHand
	CursorIBeam
	CursorCross
	CursorWait
	CursorNorthResize
	CursorSouthResize
	CursorEastResize
	CursorWestResize
	CursorNorthEastResize
	CursorNorthWestResize
	CursorSouthEastResize
	CursorSouthWestResize
)

// Component classifies the region of a window a point falls in, for
// resize and move handling.
type Component int

const (
	// ComponentNowhere is outside any meaningful region.
	ComponentNowhere Component = iota
	// ComponentClient is the window's content area.
	ComponentClient
	// ComponentCaption is a region that moves the window when dragged.
	ComponentCaption
	// ComponentBorder is a resize edge.
	ComponentBorder
	// ComponentTransparent marks a point the window does not claim;
	// hit testing passes through to whatever is behind.
	ComponentTransparent
)

// Delegate receives a window's events and lifecycle callbacks. All
// methods are invoked on the dispatch goroutine.
type Delegate interface {
	// GetMinimumSize returns the smallest size layout may apply, or
	// the zero point for no minimum.
	GetMinimumSize() f32.Point

	// OnBoundsChanged reports the window's bounds after they changed.
	OnBoundsChanged(oldBounds, newBounds f32.Rectangle)

	// GetNonClientComponent classifies a point in window coordinates.
	GetNonClientComponent(p f32.Point) Component

	// GetCursor returns the cursor to show while the pointer is over
	// the point, in window coordinates.
	GetCursor(p f32.Point) Cursor

	// CanFocus reports whether the window may take keyboard focus.
	CanFocus() bool

	// OnFocus and OnBlur report keyboard focus moving to and away from
	// the window.
	OnFocus()
	OnBlur()

	// OnMouseEvent handles a mouse event and reports whether it was
	// consumed.
	OnMouseEvent(ev *event.Mouse) bool

	// OnScrollEvent handles a scroll wheel or fling event.
	OnScrollEvent(ev *event.Scroll) bool

	// OnKeyEvent handles a key event and reports whether it was
	// consumed.
	OnKeyEvent(ev *event.Key) bool

	// OnTouchEvent handles a touch event. The returned status gates
	// the dispatcher's touch handler bookkeeping and feeds gesture
	// recognition.
	OnTouchEvent(ev *event.Touch) event.TouchStatus

	// OnGestureEvent handles a synthesized gesture.
	OnGestureEvent(ev *event.Gesture) event.GestureStatus

	// OnCaptureLost reports that the window lost input capture.
	OnCaptureLost()

	// OnVisibilityChanged reports the window's own visibility flag
	// changing.
	OnVisibilityChanged(visible bool)

	// OnWindowDestroying is called first when the window starts to be
	// destroyed, while the tree around it is still intact.
	OnWindowDestroying()

	// OnWindowDestroyed is called last, after the window has been
	// removed from its parent and its children are gone.
	OnWindowDestroyed()
}

// BaseDelegate is a Delegate with no behavior, for embedding by
// delegates that only care about a few callbacks.
type BaseDelegate struct{}

func (BaseDelegate) GetMinimumSize() f32.Point                   { return f32.Point{} }
func (BaseDelegate) OnBoundsChanged(_, _ f32.Rectangle)          {}
func (BaseDelegate) GetNonClientComponent(f32.Point) Component   { return ComponentClient }
func (BaseDelegate) GetCursor(f32.Point) Cursor                  { return CursorNull }
func (BaseDelegate) CanFocus() bool                              { return true }
func (BaseDelegate) OnFocus()                                    {}
func (BaseDelegate) OnBlur()                                     {}
func (BaseDelegate) OnMouseEvent(*event.Mouse) bool              { return false }
func (BaseDelegate) OnScrollEvent(*event.Scroll) bool            { return false }
func (BaseDelegate) OnKeyEvent(*event.Key) bool                  { return false }
func (BaseDelegate) OnTouchEvent(*event.Touch) event.TouchStatus { return event.TouchStatusUnknown }
func (BaseDelegate) OnGestureEvent(*event.Gesture) event.GestureStatus {
	return event.GestureStatusUnknown
}
func (BaseDelegate) OnCaptureLost()           {}
func (BaseDelegate) OnVisibilityChanged(bool) {}
func (BaseDelegate) OnWindowDestroying()      {}
func (BaseDelegate) OnWindowDestroyed()       {}

// EventFilter intercepts events on their way to a target window. A
// filter attached to a window sees every event aimed at any window
// beneath it; the first filter to claim an event stops the chain.
type EventFilter interface {
	// PreHandleKey may consume a key event before the target sees it.
	PreHandleKey(target *Window, ev *event.Key) bool

	// PreHandleMouse may consume a mouse event before the target sees
	// it.
	PreHandleMouse(target *Window, ev *event.Mouse) bool

	// PreHandleTouch may claim a touch event. Any status other than
	// TouchStatusUnknown stops the chain.
	PreHandleTouch(target *Window, ev *event.Touch) event.TouchStatus

	// PreHandleGesture may claim a gesture. Any status other than
	// GestureStatusUnknown stops the chain.
	PreHandleGesture(target *Window, ev *event.Gesture) event.GestureStatus
}

// LayoutManager lets a parent window impose bounds policy on its
// children.
type LayoutManager interface {
	// OnWindowResized reports that the owning window's bounds changed.
	OnWindowResized()

	// OnWindowAdded and OnWindowRemoved track the owning window's
	// child list.
	OnWindowAdded(child *Window)
	OnWindowRemoved(child *Window)

	// SetChildBounds applies a bounds request on behalf of the child.
	// The manager may clamp or override the request; it must call
	// child.SetBoundsDirect with whatever it decides.
	SetChildBounds(child *Window, requested f32.Rectangle)
}

// StackingClient decides where a window with no explicit parent
// attaches.
type StackingClient interface {
	GetDefaultParent(w *Window) *Window
}

// ActivationClient is the policy hook for window activation.
type ActivationClient interface {
	// GetActivatableWindow maps a window to the window that should
	// activate when it is clicked, usually a toplevel ancestor.
	GetActivatableWindow(w *Window) *Window

	// ActivateWindow makes w the active window.
	ActivateWindow(w *Window)

	// ActiveWindow returns the currently active window, or nil.
	ActiveWindow() *Window
}

// VisibilityClient observes window visibility changes, typically to
// run show and hide animations on the window's layer.
type VisibilityClient interface {
	UpdateLayerVisibility(w *Window, visible bool)
}

// Host is the dispatch root's view of the platform window it lives
// in.
type Host interface {
	// Size returns the host window's size in pixels.
	Size() image.Point

	// SetSize resizes the host window.
	SetSize(size image.Point)

	// SetCursor changes the host cursor shape.
	SetCursor(c Cursor)

	// ShowCursor shows or hides the host cursor.
	ShowCursor(show bool)

	// QueryMouseLocation returns the pointer position in host
	// coordinates.
	QueryMouseLocation() f32.Point

	// SetCapture and ReleaseCapture grab and release the platform
	// pointer.
	SetCapture()
	ReleaseCapture()

	// ConfineCursor restricts the pointer to the host window, or
	// releases the restriction.
	ConfineCursor(confine bool)
}

// TaskRunner posts work to run later on the dispatch goroutine. Post
// must be safe to call from any goroutine.
type TaskRunner interface {
	Post(f func())
}
