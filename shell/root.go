// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"image"
	"log/slog"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
	"github.com/oakwm/oak/gesture"
)

// Root is the dispatch root of a window tree: it owns the tree's root
// window, resolves targets for native input, runs the filter chains
// and keeps the capture, focus and handler state. One Root exists per
// host window; collaborators receive it explicitly rather than
// through a global.
type Root struct {
	window *Window
	host   Host
	runner TaskRunner
	log    *slog.Logger

	recognizer   *gesture.Recognizer
	gestureCfg   gesture.Config
	newGestTimer func() gesture.Timer

	captureWindow       *Window
	mousePressedHandler *Window
	mouseMovedHandler   *Window
	touchEventHandler   *Window
	gestureHandler      *Window
	focusedWindow       *Window

	// lastMouseLocation is in root coordinates, cached so a synthetic
	// move can be replayed after any tree mutation.
	lastMouseLocation f32.Point
	lastCursor        Cursor
	cursorShown       bool
	mouseButtonsDown  event.Buttons

	// syntheticMoveScheduled coalesces synthetic move requests: at
	// most one posted task is pending at a time.
	syntheticMoveScheduled bool

	stackingClient   StackingClient
	activationClient ActivationClient
	visibilityClient VisibilityClient
}

// RootOption configures a Root at construction.
type RootOption func(*Root)

// WithLogger sets the logger for dispatch state transitions. The
// default is slog.Default.
func WithLogger(l *slog.Logger) RootOption { return func(r *Root) { r.log = l } }

// WithGestureConfig overrides the gesture recognition thresholds.
func WithGestureConfig(cfg gesture.Config) RootOption {
	return func(r *Root) { r.gestureCfg = cfg }
}

// WithGestureTimer overrides the long press timer source, for tests
// that drive time manually.
func WithGestureTimer(newTimer func() gesture.Timer) RootOption {
	return func(r *Root) { r.newGestTimer = newTimer }
}

// WithStackingClient sets the default-parent policy.
func WithStackingClient(c StackingClient) RootOption {
	return func(r *Root) { r.stackingClient = c }
}

// WithActivationClient sets the activation policy consulted on mouse
// press.
func WithActivationClient(c ActivationClient) RootOption {
	return func(r *Root) { r.activationClient = c }
}

// WithVisibilityClient routes window visibility changes through an
// animation controller.
func WithVisibilityClient(c VisibilityClient) RootOption {
	return func(r *Root) { r.visibilityClient = c }
}

// NewRoot creates a dispatch root bound to a host window. The runner
// is used for deferred dispatch work such as coalesced synthetic
// mouse moves; it must execute tasks on the dispatch goroutine.
func NewRoot(host Host, runner TaskRunner, opts ...RootOption) *Root {
	r := &Root{
		host:         host,
		runner:       runner,
		gestureCfg:   gesture.DefaultConfig(),
		newGestTimer: gesture.NewSystemTimer,
		cursorShown:  true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = slog.Default()
	}
	r.recognizer = gesture.NewRecognizer(r.gestureCfg, gestureHelper{r}, r.newGestTimer)

	r.window = NewWindow(nil)
	r.window.SetName("root")
	r.window.rootOwner = r
	r.window.visible = true
	size := host.Size()
	r.window.SetBoundsDirect(f32.Rect(0, 0, float32(size.X), float32(size.Y)))
	r.lastMouseLocation = host.QueryMouseLocation()
	return r
}

// Window returns the root window of the tree.
func (r *Root) Window() *Window { return r.window }

// LastMouseLocation returns the cached pointer position in root
// coordinates.
func (r *Root) LastMouseLocation() f32.Point { return r.lastMouseLocation }

func (r *Root) CaptureWindow() *Window       { return r.captureWindow }
func (r *Root) MousePressedHandler() *Window { return r.mousePressedHandler }
func (r *Root) MouseMovedHandler() *Window   { return r.mouseMovedHandler }
func (r *Root) TouchEventHandler() *Window   { return r.touchEventHandler }
func (r *Root) GestureHandler() *Window      { return r.gestureHandler }

// GetEventHandlerForPoint resolves the window for a point in root
// coordinates.
func (r *Root) GetEventHandlerForPoint(p f32.Point) *Window {
	return r.window.GetEventHandlerForPoint(p)
}

// SetTransform sets the root window's transform, typically for
// display rotation, and reconciles the host's reported size.
func (r *Root) SetTransform(t f32.Affine2D) {
	r.window.SetTransform(t)
}

// OnHostResized reports a new host window size.
func (r *Root) OnHostResized(size image.Point) {
	r.hostResized(size)
}

func (r *Root) hostResized(size image.Point) {
	// The root window's bounds are in its own (pre-transform) space;
	// strip the root transform from the host rectangle.
	rect := transformRect(r.window.transform.Invert(),
		f32.Rect(0, 0, float32(size.X), float32(size.Y)))
	r.window.SetBoundsDirect(f32.Rect(0, 0, rect.Dx(), rect.Dy()))
}

// ShowCursor shows or hides the host cursor.
func (r *Root) ShowCursor(show bool) {
	r.cursorShown = show
	r.host.ShowCursor(show)
}

func (r *Root) setCursor(c Cursor) {
	if c == r.lastCursor {
		return
	}
	r.lastCursor = c
	r.host.SetCursor(c)
}

// DispatchMouseEvent routes a native mouse event. It reports whether
// any filter or delegate consumed it.
func (r *Root) DispatchMouseEvent(ev *event.Mouse) bool {
	e := ev.UpdateForRootTransform(r.window.transform.Invert())
	e.Root = e.Location
	r.lastMouseLocation = e.Location

	if e.Type == event.MouseMoved && r.mouseButtonsDown != 0 {
		e.Type = event.MouseDragged
	}

	target := r.mousePressedHandler
	if target == nil {
		target = r.captureWindow
	}
	if target == nil {
		target = r.window.GetEventHandlerForPoint(e.Location)
	}

	switch e.Type {
	case event.MouseMoved:
		r.handleMouseMoved(e, target)
	case event.MousePressed:
		if r.mousePressedHandler == nil {
			r.mousePressedHandler = target
		}
		r.mouseButtonsDown |= e.Button
		r.focusOnPress(target)
	case event.MouseReleased:
		// Cleared even when the release goes unhandled.
		r.mousePressedHandler = nil
		r.mouseButtonsDown &^= e.Button
	}

	if target == nil || target.delegate == nil {
		return false
	}
	local := ConvertPoint(r.window, target, e.Location)
	// The cursor follows the target before filters run, so a filter
	// consuming the event cannot leave a stale cursor behind.
	r.setCursor(target.GetCursor(local))
	e.Location = local
	return r.processMouseEvent(target, &e)
}

// handleMouseMoved synthesizes the exit and enter pair when the
// window under the pointer changes. The exit is delivered before the
// enter, each through its own filter chain. The event here still
// carries root coordinates.
func (r *Root) handleMouseMoved(e event.Mouse, target *Window) {
	if target == r.mouseMovedHandler {
		return
	}
	if old := r.mouseMovedHandler; old != nil && old.delegate != nil {
		exited := e
		exited.Type = event.MouseExited
		exited.Synthetic = true
		exited.Location = ConvertPoint(r.window, old, e.Root)
		r.processMouseEvent(old, &exited)
	}
	r.mouseMovedHandler = target
	if target != nil && target.delegate != nil {
		entered := e
		entered.Type = event.MouseEntered
		entered.Synthetic = true
		entered.Location = ConvertPoint(r.window, target, e.Root)
		r.processMouseEvent(target, &entered)
	}
}

func (r *Root) focusOnPress(target *Window) {
	if target == nil {
		return
	}
	if r.activationClient != nil {
		act := r.activationClient.GetActivatableWindow(target)
		if act != nil && act != r.activationClient.ActiveWindow() {
			r.activationClient.ActivateWindow(act)
		}
		return
	}
	for w := target; w != nil && w.rootOwner == nil; w = w.parent {
		if w.CanFocus() {
			r.SetFocusedWindow(w)
			return
		}
	}
}

func (r *Root) processMouseEvent(target *Window, ev *event.Mouse) bool {
	if !target.IsVisible() {
		return false
	}
	for _, f := range r.filtersFor(target) {
		if f.PreHandleMouse(target, ev) {
			return true
		}
	}
	if target.delegate == nil {
		return false
	}
	return target.delegate.OnMouseEvent(ev)
}

// DispatchScrollEvent routes a scroll wheel or fling event like a
// mouse event, honoring capture.
func (r *Root) DispatchScrollEvent(ev *event.Scroll) bool {
	e := ev.UpdateForRootTransform(r.window.transform.Invert())
	e.Root = e.Location
	r.lastMouseLocation = e.Location
	target := r.captureWindow
	if target == nil {
		target = r.window.GetEventHandlerForPoint(e.Location)
	}
	if target == nil || target.delegate == nil || !target.IsVisible() {
		return false
	}
	e.Location = ConvertPoint(r.window, target, e.Root)
	return target.delegate.OnScrollEvent(&e)
}

// DispatchKeyEvent routes a key event to the focused window.
func (r *Root) DispatchKeyEvent(ev *event.Key) bool {
	target := r.focusedWindow
	if target == nil {
		return false
	}
	e := *ev
	for _, f := range r.filtersFor(target) {
		if f.PreHandleKey(target, &e) {
			return true
		}
	}
	if target.delegate == nil {
		return false
	}
	return target.delegate.OnKeyEvent(&e)
}

// DispatchTouchEvent routes a native touch event and feeds the
// gesture recognizer with its outcome. Recognized gestures are
// dispatched before it returns, except for queued touches, which are
// resolved later through AdvanceQueuedTouchEvent.
func (r *Root) DispatchTouchEvent(ev *event.Touch) bool {
	e := ev.UpdateForRootTransform(r.window.transform.Invert())
	e.Root = e.Location

	target := r.touchEventHandler
	if target == nil {
		target = r.captureWindow
	}
	if target == nil {
		// A press close to an active gesture joins that gesture's
		// target even if it lands on another window.
		if c := r.recognizer.TargetForTouch(e); c != nil {
			target = c.(*Window)
		}
	}
	if target == nil {
		target = r.window.GetEventHandlerForPoint(e.Location)
	}

	handled := false
	status := event.TouchStatusUnknown
	if target != nil {
		te := e
		te.Location = ConvertPoint(r.window, target, e.Location)
		status = r.processTouchEvent(target, &te)
		switch status {
		case event.TouchStatusStart:
			r.touchEventHandler = target
		case event.TouchStatusEnd, event.TouchStatusCancel:
			r.touchEventHandler = nil
		case event.TouchStatusQueued, event.TouchStatusQueuedEnd:
			r.recognizer.QueueTouch(e, target)
		}
		handled = status != event.TouchStatusUnknown
	}

	if r.processGestures(r.recognizer.ProcessTouch(e, status, consumer(target))) {
		handled = true
	}
	return handled
}

func (r *Root) processTouchEvent(target *Window, ev *event.Touch) event.TouchStatus {
	if !target.IsVisible() {
		return event.TouchStatusUnknown
	}
	for _, f := range r.filtersFor(target) {
		if status := f.PreHandleTouch(target, ev); status != event.TouchStatusUnknown {
			return status
		}
	}
	if target.delegate == nil {
		return event.TouchStatusUnknown
	}
	return target.delegate.OnTouchEvent(ev)
}

// AdvanceQueuedTouchEvent resolves the oldest queued touch for a
// window once its synchronous handling result is known, and
// dispatches whatever gestures it implies. It must be called exactly
// once per queued touch.
func (r *Root) AdvanceQueuedTouchEvent(w *Window, processed bool) {
	if gestures, ok := r.recognizer.AdvanceTouchQueue(w, processed); ok {
		r.processGestures(gestures)
	}
}

func (r *Root) processGestures(gestures []event.Gesture) bool {
	handled := false
	for i := range gestures {
		if r.dispatchGestureEvent(&gestures[i]) {
			handled = true
		}
	}
	return handled
}

func (r *Root) dispatchGestureEvent(ev *event.Gesture) bool {
	target := r.gestureHandler
	if target == nil {
		target = r.captureWindow
	}
	if target == nil {
		target = r.window.GetEventHandlerForPoint(ev.Location)
	}
	if target == nil {
		return false
	}
	switch ev.Type {
	case event.GestureBegin:
		r.gestureHandler = target
	case event.GestureEnd:
		if ev.TouchCount <= 1 {
			r.gestureHandler = nil
		}
	}
	e := *ev
	e.Root = ev.Location
	e.Location = ConvertPoint(r.window, target, ev.Location)
	return r.processGestureEvent(target, &e) != event.GestureStatusUnknown
}

func (r *Root) processGestureEvent(target *Window, ev *event.Gesture) event.GestureStatus {
	if !target.IsVisible() {
		return event.GestureStatusUnknown
	}
	for _, f := range r.filtersFor(target) {
		if status := f.PreHandleGesture(target, ev); status != event.GestureStatusUnknown {
			return status
		}
	}
	status := event.GestureStatusUnknown
	if target.delegate != nil {
		status = target.delegate.OnGestureEvent(ev)
	}
	if status == event.GestureStatusUnknown && ev.Type == event.GestureTap {
		r.synthesizeClickFromTap(target, ev)
		status = event.GestureStatusSynthMouse
	}
	return status
}

// synthesizeClickFromTap turns an unconsumed tap into a full mouse
// click sequence on the same target, so tap-to-click reuses the mouse
// path. The sequence is abandoned if an earlier synthetic event
// destroys or detaches the target.
func (r *Root) synthesizeClickFromTap(target *Window, ev *event.Gesture) {
	seq := [4]event.Type{
		event.MouseEntered, event.MousePressed,
		event.MouseReleased, event.MouseExited,
	}
	for _, t := range seq {
		if target.destroying || target.Root() != r {
			break
		}
		me := event.Mouse{
			Type:      t,
			Location:  ev.Location,
			Root:      ev.Root,
			Buttons:   event.ButtonPrimary,
			Modifiers: ev.Modifiers,
			Time:      ev.Time,
			Synthetic: true,
		}
		if t == event.MousePressed || t == event.MouseReleased {
			me.Button = event.ButtonPrimary
		}
		r.processMouseEvent(target, &me)
	}
}

// filtersFor collects the event filters on the target's ancestors.
// Outermost filters are returned first: a filter near the root gets
// the first chance to intercept everything beneath it.
func (r *Root) filtersFor(target *Window) []EventFilter {
	var filters []EventFilter
	for w := target.parent; w != nil; w = w.parent {
		if w.filter != nil {
			filters = append(filters, w.filter)
		}
	}
	for i, j := 0, len(filters)-1; i < j; i, j = i+1, j-1 {
		filters[i], filters[j] = filters[j], filters[i]
	}
	return filters
}

// SetCapture directs all pointer and touch routing to w, bypassing
// hit testing. Setting the same window again is a no-op. Handler
// pointers follow the capture only if they were already engaged;
// clearing capture resets them all.
func (r *Root) SetCapture(w *Window) {
	if r.captureWindow == w {
		return
	}
	old := r.captureWindow
	r.captureWindow = w
	if old != nil && old.delegate != nil {
		old.delegate.OnCaptureLost()
	}
	if w != nil {
		r.host.SetCapture()
		if r.mouseMovedHandler != nil || r.mouseButtonsDown != 0 {
			r.mouseMovedHandler = w
		}
		if r.touchEventHandler != nil {
			r.touchEventHandler = w
		}
		if r.gestureHandler != nil {
			r.gestureHandler = w
		}
	} else {
		r.host.ReleaseCapture()
		r.host.ConfineCursor(false)
		r.mouseMovedHandler = nil
		r.touchEventHandler = nil
		r.gestureHandler = nil
	}
	r.mousePressedHandler = nil
	r.log.Debug("capture changed", "from", old, "to", w)
}

// ReleaseCapture clears capture if w holds it.
func (r *Root) ReleaseCapture(w *Window) {
	if r.captureWindow == w && w != nil {
		r.SetCapture(nil)
	}
}

// SetFocusedWindow moves keyboard focus. Requests for unfocusable
// windows are silently rejected.
func (r *Root) SetFocusedWindow(w *Window) {
	if w == r.focusedWindow {
		return
	}
	if w != nil && !w.CanFocus() {
		return
	}
	old := r.focusedWindow
	r.focusedWindow = w
	if old != nil && old.delegate != nil {
		old.delegate.OnBlur()
	}
	if w != nil && w.delegate != nil {
		w.delegate.OnFocus()
	}
	r.log.Debug("focus changed", "from", old, "to", w)
}

func (r *Root) FocusedWindow() *Window { return r.focusedWindow }

func (r *Root) IsFocusedWindow(w *Window) bool { return r.focusedWindow == w }

// scheduleSyntheticMouseMove posts a coalesced task that replays the
// cached pointer position, so enter/exit and cursor state settle
// after a tree mutation changed what is under the pointer.
func (r *Root) scheduleSyntheticMouseMove() {
	if r.syntheticMoveScheduled {
		return
	}
	r.syntheticMoveScheduled = true
	r.runner.Post(r.synthesizeMouseMove)
}

func (r *Root) synthesizeMouseMove() {
	r.syntheticMoveScheduled = false
	b := r.window.bounds
	if !r.lastMouseLocation.In(f32.Rect(0, 0, b.Dx(), b.Dy())) {
		return
	}
	// Reapply the root transform; ingestion strips it again.
	loc := r.window.transform.Transform(r.lastMouseLocation)
	ev := event.Mouse{
		Type:      event.MouseMoved,
		Location:  loc,
		Root:      loc,
		Buttons:   r.mouseButtonsDown,
		Synthetic: true,
	}
	r.DispatchMouseEvent(&ev)
}

// windowAttached is called when a window joins this root's tree.
func (r *Root) windowAttached(w *Window) {
	if w.IsVisible() && w.ContainsPointInRoot(r.lastMouseLocation) {
		r.scheduleSyntheticMouseMove()
	}
}

// windowDetached is called when a window leaves this root's tree. Any
// routing state referencing the subtree is cleared.
func (r *Root) windowDetached(w *Window) {
	contained := w.IsVisible() && w.ContainsPointInRoot(r.lastMouseLocation)
	r.invalidateRoutingState(w)
	r.recognizer.FlushTouchQueue(w)
	if contained {
		r.scheduleSyntheticMouseMove()
	}
}

// windowHidden clears routing state that can no longer be valid for
// an invisible subtree.
func (r *Root) windowHidden(w *Window) {
	r.invalidateRoutingState(w)
}

// windowDestroying is called when destruction of w begins, before its
// subtree is torn down.
func (r *Root) windowDestroying(w *Window) {
	if r.focusedWindow == w {
		// Focus prefers the transient parent; the transient link is
		// severed first so focus cannot land back on the dying window.
		next := w.transientParent
		if next != nil {
			w.transientParent.RemoveTransientChild(w)
		} else {
			next = w.parent
		}
		r.focusedWindow = nil
		if w.delegate != nil {
			w.delegate.OnBlur()
		}
		if next != nil {
			r.SetFocusedWindow(next)
		}
	}
	contained := w.IsVisible() && w.ContainsPointInRoot(r.lastMouseLocation)
	r.invalidateRoutingState(w)
	r.recognizer.FlushTouchQueue(w)
	if contained {
		r.scheduleSyntheticMouseMove()
	}
	r.log.Debug("window destroying", "window", w)
}

// invalidateRoutingState nulls every dispatch pointer referencing w
// or a window inside w.
func (r *Root) invalidateRoutingState(w *Window) {
	if r.captureWindow != nil && w.Contains(r.captureWindow) {
		r.SetCapture(nil)
	}
	if r.mousePressedHandler != nil && w.Contains(r.mousePressedHandler) {
		r.mousePressedHandler = nil
	}
	if r.mouseMovedHandler != nil && w.Contains(r.mouseMovedHandler) {
		r.mouseMovedHandler = nil
	}
	if r.touchEventHandler != nil && w.Contains(r.touchEventHandler) {
		r.touchEventHandler = nil
	}
	if r.gestureHandler != nil && w.Contains(r.gestureHandler) {
		r.gestureHandler = nil
	}
	if r.focusedWindow != nil && w.Contains(r.focusedWindow) {
		r.SetFocusedWindow(nil)
	}
}

// consumer adapts a possibly-nil window to the recognizer's consumer
// type without producing a non-nil interface holding a nil pointer.
func consumer(w *Window) gesture.Consumer {
	if w == nil {
		return nil
	}
	return w
}

// gestureHelper delivers timer-driven gestures back into dispatch.
// The timer fires on its own goroutine, so the gesture is posted to
// the task runner instead of dispatched inline.
type gestureHelper struct{ r *Root }

func (h gestureHelper) DispatchLongPress(ev event.Gesture) {
	h.r.runner.Post(func() {
		h.r.dispatchGestureEvent(&ev)
	})
}

func transformRect(t f32.Affine2D, r f32.Rectangle) f32.Rectangle {
	corners := [4]f32.Point{
		r.Min, {X: r.Max.X, Y: r.Min.Y},
		{X: r.Min.X, Y: r.Max.Y}, r.Max,
	}
	out := f32.Rectangle{Min: t.Transform(corners[0]), Max: t.Transform(corners[0])}
	for _, c := range corners[1:] {
		p := t.Transform(c)
		out = out.Union(f32.Rectangle{Min: p, Max: p})
	}
	return out
}
