// SPDX-License-Identifier: Unlicense OR MIT

// Package shell implements the window tree and its event dispatch
// core: z-order sensitive hit testing, per-ancestor event filter
// chains, mouse capture, keyboard focus and the routing state machine
// that drives them, plus gesture dispatch fed by the gesture package.
package shell

import (
	"fmt"

	"github.com/oakwm/oak/f32"
	"github.com/oakwm/oak/layer"
)

// WindowType is a coarse classification used by stacking and
// activation policy.
type WindowType int

const (
	WindowTypeUnknown WindowType = iota
	WindowTypeNormal
	WindowTypeControl
	WindowTypePopup
	WindowTypeMenu
	WindowTypeTooltip
)

// Window is a node in the window tree. A window owns its children:
// destroying a window destroys its subtree. Bounds and transform are
// relative to the parent. Windows are not safe for concurrent use;
// all access happens on the dispatch goroutine.
type Window struct {
	windowType WindowType
	id         int
	name       string

	delegate Delegate
	filter   EventFilter
	layout   LayoutManager

	parent   *Window
	children []*Window

	// Transient grouping is a weak relationship used only for z-order
	// coupling and cascade destroy; transient children are not tree
	// children.
	transientParent   *Window
	transientChildren []*Window

	layer     *layer.Layer
	ownsLayer bool
	bounds    f32.Rectangle
	transform f32.Affine2D
	visible   bool

	transparent      bool
	stopsPropagation bool
	ignoreEvents     bool

	properties map[string]any

	observers      []observerEntry
	nextObserverID int

	// rootOwner is non-nil only on a dispatch root's own window.
	rootOwner *Root

	destroying bool
}

// NewWindow returns a hidden window with no parent. The delegate may
// be nil for windows that only contain others.
func NewWindow(delegate Delegate) *Window {
	w := &Window{
		delegate:  delegate,
		layer:     layer.New(),
		ownsLayer: true,
	}
	w.layer.SetDelegate(windowLayerDelegate{w})
	return w
}

// windowLayerDelegate ties a layer's content back to its window.
// Animation controllers may detach it mid-animation.
type windowLayerDelegate struct{ w *Window }

func (windowLayerDelegate) LayerDamaged(f32.Rectangle) {}

func (w *Window) ID() int              { return w.id }
func (w *Window) SetID(id int)         { w.id = id }
func (w *Window) Name() string         { return w.name }
func (w *Window) SetName(name string)  { w.name = name }
func (w *Window) Type() WindowType     { return w.windowType }
func (w *Window) SetType(t WindowType) { w.windowType = t }

func (w *Window) Delegate() Delegate { return w.delegate }

func (w *Window) Parent() *Window     { return w.parent }
func (w *Window) Children() []*Window { return w.children }

// Layer returns the window's paint layer.
func (w *Window) Layer() *layer.Layer { return w.layer }

// AcquireLayer releases ownership of the window's layer so it can
// outlive the window, typically for a closing animation. The window
// keeps using the layer while it lives, but no longer reparents it on
// tree changes, and Destroy leaves it in place with its delegate
// cleared.
func (w *Window) AcquireLayer() *layer.Layer {
	w.ownsLayer = false
	return w.layer
}

func (w *Window) SetEventFilter(f EventFilter) { w.filter = f }
func (w *Window) EventFilter() EventFilter     { return w.filter }

// SetLayoutManager installs the bounds policy for w's children.
func (w *Window) SetLayoutManager(m LayoutManager) { w.layout = m }

// SetTransparent marks the window as not occluding what is behind it.
// It has no effect on event routing.
func (w *Window) SetTransparent(transparent bool) { w.transparent = transparent }
func (w *Window) Transparent() bool               { return w.transparent }

// SetStopsEventPropagation flags the window as blocking events to
// windows stacked behind it. The flag only takes effect while the
// window has at least one visible child; see StopsEventPropagation.
func (w *Window) SetStopsEventPropagation(stops bool) { w.stopsPropagation = stops }

// SetIgnoreEvents excludes the window and its subtree from event hit
// testing; geometric queries still see it.
func (w *Window) SetIgnoreEvents(ignore bool) { w.ignoreEvents = ignore }

// StopsEventPropagation reports whether the window currently blocks
// hit testing of windows behind it: it must be flagged and have at
// least one visible child. A flagged window with no visible children
// does not block anything.
func (w *Window) StopsEventPropagation() bool {
	if !w.stopsPropagation {
		return false
	}
	for _, c := range w.children {
		if c.visible {
			return true
		}
	}
	return false
}

// Root returns the dispatch root the window is attached to, or nil.
func (w *Window) Root() *Root {
	for win := w; win != nil; win = win.parent {
		if win.rootOwner != nil {
			return win.rootOwner
		}
	}
	return nil
}

// GetToplevel returns the ancestor that is a direct child of the
// dispatch root's window, or nil if the window is not attached.
func (w *Window) GetToplevel() *Window {
	root := w.Root()
	if root == nil {
		return nil
	}
	for win := w; win.parent != nil; win = win.parent {
		if win.parent.rootOwner != nil {
			return win
		}
	}
	return nil
}

// Show makes the window visible. Whether it is actually drawn also
// depends on its ancestors.
func (w *Window) Show() { w.SetVisible(true) }

// Hide makes the window invisible and releases any capture it holds.
func (w *Window) Hide() {
	w.SetVisible(false)
	w.ReleaseCapture()
}

func (w *Window) SetVisible(visible bool) {
	if visible == w.visible {
		return
	}
	root := w.Root()
	if root != nil && root.visibilityClient != nil {
		root.visibilityClient.UpdateLayerVisibility(w, visible)
	} else if w.layer != nil {
		w.layer.SetVisible(visible)
	}
	containedMouse := root != nil && w.IsVisible() && w.ContainsPointInRoot(root.lastMouseLocation)
	w.visible = visible
	drawn := w.IsVisible()
	if w.delegate != nil {
		w.delegate.OnVisibilityChanged(visible)
	}
	w.eachObserver(func(o WindowObserver) {
		if o.VisibilityChanged != nil {
			o.VisibilityChanged(w, visible, drawn)
		}
	})
	if root != nil {
		if !visible {
			root.windowHidden(w)
		}
		if containedMouse || (w.IsVisible() && w.ContainsPointInRoot(root.lastMouseLocation)) {
			root.scheduleSyntheticMouseMove()
		}
	}
}

// Visible reports the window's own visibility flag; IsVisible also
// requires every ancestor to be visible.
func (w *Window) Visible() bool { return w.visible }

func (w *Window) IsVisible() bool {
	for win := w; win != nil; win = win.parent {
		if !win.visible {
			return false
		}
	}
	return true
}

func (w *Window) Bounds() f32.Rectangle { return w.bounds }

func (w *Window) Transform() f32.Affine2D { return w.transform }

// SetBounds requests new bounds relative to the parent. If the parent
// has a layout manager, the request goes through it and may be
// clamped or overridden.
func (w *Window) SetBounds(bounds f32.Rectangle) {
	if w.parent != nil && w.parent.layout != nil {
		w.parent.layout.SetChildBounds(w, bounds)
		return
	}
	w.SetBoundsDirect(bounds)
}

// SetBoundsDirect applies bounds without consulting the parent's
// layout manager. Layout managers use it to apply their decision.
func (w *Window) SetBoundsDirect(bounds f32.Rectangle) {
	old := w.bounds
	if bounds == old {
		return
	}
	root := w.Root()
	containedMouse := root != nil && w.IsVisible() && w.ContainsPointInRoot(root.lastMouseLocation)

	w.bounds = bounds
	if w.layer != nil {
		w.layer.SetBounds(bounds)
	}
	if w.layout != nil {
		w.layout.OnWindowResized()
	}
	if w.delegate != nil {
		w.delegate.OnBoundsChanged(old, bounds)
	}
	w.eachObserver(func(o WindowObserver) {
		if o.BoundsChanged != nil {
			o.BoundsChanged(w, old, bounds)
		}
	})
	if root != nil {
		containsMouse := w.IsVisible() && w.ContainsPointInRoot(root.lastMouseLocation)
		if containedMouse || containsMouse {
			root.scheduleSyntheticMouseMove()
		}
	}
}

// SetTransform sets the transform applied to the window's subtree,
// relative to the window's origin. On a dispatch root's window the
// host size is reconciled as well; use Root.SetTransform for that.
func (w *Window) SetTransform(transform f32.Affine2D) {
	root := w.Root()
	containedMouse := root != nil && w.IsVisible() && w.ContainsPointInRoot(root.lastMouseLocation)
	w.transform = transform
	if w.layer != nil {
		w.layer.SetTransform(transform)
	}
	if root != nil {
		if w.rootOwner != nil {
			w.rootOwner.hostResized(w.rootOwner.host.Size())
		}
		if containedMouse || (w.IsVisible() && w.ContainsPointInRoot(root.lastMouseLocation)) {
			root.scheduleSyntheticMouseMove()
		}
	}
}

// AddChild attaches child at the top of w's stacking order. The child
// is detached from its previous parent first.
func (w *Window) AddChild(child *Window) {
	if child == w || child.Contains(w) {
		return
	}
	oldRoot := child.Root()
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = w
	w.children = append(w.children, child)
	if w.layer != nil && child.layer != nil && child.ownsLayer {
		w.layer.Add(child.layer)
	}
	if w.layout != nil {
		w.layout.OnWindowAdded(child)
	}
	child.eachObserver(func(o WindowObserver) {
		if o.ParentChanged != nil {
			o.ParentChanged(child)
		}
	})
	w.eachObserver(func(o WindowObserver) {
		if o.ChildAdded != nil {
			o.ChildAdded(w, child)
		}
	})
	if newRoot := child.Root(); newRoot != oldRoot {
		if oldRoot != nil {
			oldRoot.windowDetached(child)
		}
		if newRoot != nil {
			newRoot.windowAttached(child)
		}
	}
}

// SetParent attaches the window to parent, or to the stacking
// client's default parent when parent is nil.
func (w *Window) SetParent(parent *Window) {
	if parent != nil {
		parent.AddChild(w)
		return
	}
	root := w.Root()
	if root != nil && root.stackingClient != nil {
		if dp := root.stackingClient.GetDefaultParent(w); dp != nil {
			dp.AddChild(w)
		}
	}
}

// RemoveChild detaches child from w. The child keeps its bounds and
// visibility but loses its association with w's dispatch root.
func (w *Window) RemoveChild(child *Window) {
	idx := -1
	for i, c := range w.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	root := child.Root()
	if w.layout != nil {
		w.layout.OnWindowRemoved(child)
	}
	if root != nil {
		root.windowDetached(child)
	}
	w.children = append(w.children[:idx], w.children[idx+1:]...)
	child.parent = nil
	if w.layer != nil && child.layer != nil && child.ownsLayer {
		w.layer.Remove(child.layer)
	}
	child.eachObserver(func(o WindowObserver) {
		if o.ParentChanged != nil {
			o.ParentChanged(child)
		}
	})
	w.eachObserver(func(o WindowObserver) {
		if o.ChildRemoved != nil {
			o.ChildRemoved(w, child)
		}
	})
}

// Contains reports whether other is w or a descendant of w.
func (w *Window) Contains(other *Window) bool {
	for win := other; win != nil; win = win.parent {
		if win == w {
			return true
		}
	}
	return false
}

// GetChildByID searches w's subtree, depth first, for a window with
// the id.
func (w *Window) GetChildByID(id int) *Window {
	for _, c := range w.children {
		if c.id == id {
			return c
		}
		if found := c.GetChildByID(id); found != nil {
			return found
		}
	}
	return nil
}

// StackChildAtTop moves child to the front of w's stacking order.
func (w *Window) StackChildAtTop(child *Window) {
	if n := len(w.children); n == 0 || w.children[n-1] == child {
		return
	}
	w.StackChildAbove(child, w.children[len(w.children)-1])
}

// StackChildAbove moves child directly above target in w's stacking
// order, then regroups child's transient children on top of it.
//
// The logical reorder always happens. The paint layer only follows
// when the target is a valid restacking anchor: a sibling whose layer
// has been released to an animation controller (its layer delegate is
// nil) must keep its paint position while it animates out, so logical
// order and paint order can legitimately diverge here.
func (w *Window) StackChildAbove(child, target *Window) {
	if child == target || child.parent != w || target.parent != w {
		return
	}

	childIdx := w.indexOf(child)
	targetIdx := w.indexOf(target)
	if childIdx == targetIdx+1 {
		return
	}

	dest := targetIdx + 1
	if childIdx < targetIdx {
		dest = targetIdx
	}
	w.children = append(w.children[:childIdx], w.children[childIdx+1:]...)
	rest := append([]*Window{child}, w.children[dest:]...)
	w.children = append(w.children[:dest], rest...)

	if w.layer != nil && child.layer != nil && target.validStackingTarget() {
		w.layer.StackAbove(child.layer, target.layer)
	}

	// Keep the transient group contiguous: transient children sharing
	// this parent stack immediately above their transient parent.
	last := child
	for _, tc := range child.transientChildren {
		if tc.parent == w {
			w.StackChildAbove(tc, last)
			last = tc
		}
	}

	child.eachObserver(func(o WindowObserver) {
		if o.StackingChanged != nil {
			o.StackingChanged(child)
		}
	})
	if root := w.Root(); root != nil {
		root.scheduleSyntheticMouseMove()
	}
}

// validStackingTarget reports whether a sibling may be used as a
// layer restacking anchor. Windows whose paint layer is owned by an
// animation controller are not valid anchors.
func (w *Window) validStackingTarget() bool {
	return w.layer != nil && w.layer.Delegate() != nil
}

func (w *Window) indexOf(child *Window) int {
	for i, c := range w.children {
		if c == child {
			return i
		}
	}
	return -1
}

// AddTransientChild groups transient with w for z-order and lifetime:
// destroying w destroys transient, and restacking w pulls transient
// along, but transient is not a tree child of w.
func (w *Window) AddTransientChild(transient *Window) {
	if transient.transientParent != nil {
		transient.transientParent.RemoveTransientChild(transient)
	}
	transient.transientParent = w
	w.transientChildren = append(w.transientChildren, transient)
}

func (w *Window) RemoveTransientChild(transient *Window) {
	for i, tc := range w.transientChildren {
		if tc == transient {
			w.transientChildren = append(w.transientChildren[:i], w.transientChildren[i+1:]...)
			transient.transientParent = nil
			return
		}
	}
}

func (w *Window) TransientParent() *Window     { return w.transientParent }
func (w *Window) TransientChildren() []*Window { return w.transientChildren }

// String identifies the window in logs.
func (w *Window) String() string {
	if w == nil {
		return "<nil>"
	}
	if w.name != "" {
		return fmt.Sprintf("%s/%d", w.name, w.id)
	}
	return fmt.Sprintf("window/%d", w.id)
}

// SetProperty stores an arbitrary value on the window. A nil value
// removes the key.
func (w *Window) SetProperty(key string, value any) {
	if value == nil {
		if w.properties != nil {
			delete(w.properties, key)
		}
	} else {
		if w.properties == nil {
			w.properties = make(map[string]any)
		}
		w.properties[key] = value
	}
	w.eachObserver(func(o WindowObserver) {
		if o.PropertyChanged != nil {
			o.PropertyChanged(w, key)
		}
	})
}

// Property returns the value stored under key, or nil.
func (w *Window) Property(key string) any {
	return w.properties[key]
}

// Destroy tears the window down: children first, then transient
// children, then detachment from the parent. Routing state in the
// dispatch root that references the window is cleared before any of
// the subtree goes away.
func (w *Window) Destroy() {
	if w.destroying {
		return
	}
	w.destroying = true
	if w.delegate != nil {
		w.delegate.OnWindowDestroying()
	}
	w.eachObserver(func(o WindowObserver) {
		if o.Destroying != nil {
			o.Destroying(w)
		}
	})
	if root := w.Root(); root != nil {
		root.windowDestroying(w)
	}
	for len(w.children) > 0 {
		w.children[len(w.children)-1].Destroy()
	}
	// Transient children go after the tree children so that focus can
	// still land on the transient parent chain during teardown.
	for len(w.transientChildren) > 0 {
		w.transientChildren[len(w.transientChildren)-1].Destroy()
	}
	if w.transientParent != nil {
		w.transientParent.RemoveTransientChild(w)
	}
	if w.parent != nil {
		w.parent.RemoveChild(w)
	}
	if w.layer != nil {
		w.layer.SetDelegate(nil)
	}
	if w.delegate != nil {
		w.delegate.OnWindowDestroyed()
	}
	w.eachObserver(func(o WindowObserver) {
		if o.Destroyed != nil {
			o.Destroyed(w)
		}
	})
	w.observers = nil
}

// CanFocus reports whether the window may take keyboard focus: it
// must be visible, attached, not vetoed by its delegate, not behind a
// propagation stopping sibling, and every ancestor must pass the same
// check.
func (w *Window) CanFocus() bool {
	if w.rootOwner != nil {
		return w.IsVisible()
	}
	if !w.IsVisible() || w.parent == nil {
		return false
	}
	if w.delegate != nil && !w.delegate.CanFocus() {
		return false
	}
	if w.behindStoppingSibling() {
		return false
	}
	return w.parent.CanFocus()
}

// CanReceiveEvents reports whether events may be routed to the
// window.
func (w *Window) CanReceiveEvents() bool {
	if w.rootOwner != nil {
		return w.IsVisible()
	}
	if !w.IsVisible() || w.parent == nil || w.ignoreEvents {
		return false
	}
	if w.behindStoppingSibling() {
		return false
	}
	return w.parent.CanReceiveEvents()
}

func (w *Window) behindStoppingSibling() bool {
	if w.parent == nil {
		return false
	}
	sibs := w.parent.children
	for i := w.parent.indexOf(w) + 1; i < len(sibs); i++ {
		if sibs[i].StopsEventPropagation() {
			return true
		}
	}
	return false
}

// Focus requests keyboard focus for the window.
func (w *Window) Focus() {
	if root := w.Root(); root != nil {
		root.SetFocusedWindow(w)
	}
}

// HasFocus reports whether the window holds keyboard focus.
func (w *Window) HasFocus() bool {
	root := w.Root()
	return root != nil && root.IsFocusedWindow(w)
}

// SetCapture directs all pointer and touch input to the window.
func (w *Window) SetCapture() {
	if root := w.Root(); root != nil {
		root.SetCapture(w)
	}
}

// ReleaseCapture gives up capture if the window holds it.
func (w *Window) ReleaseCapture() {
	if root := w.Root(); root != nil {
		root.ReleaseCapture(w)
	}
}

// HasCapture reports whether the window holds input capture.
func (w *Window) HasCapture() bool {
	root := w.Root()
	return root != nil && root.captureWindow == w
}

// GetCursor returns the cursor the window wants at a point in window
// coordinates.
func (w *Window) GetCursor(p f32.Point) Cursor {
	if w.delegate != nil {
		return w.delegate.GetCursor(p)
	}
	return CursorNull
}

// ContainsPoint reports whether a point in window coordinates is
// inside the window's bounds.
func (w *Window) ContainsPoint(local f32.Point) bool {
	return local.In(f32.Rect(0, 0, w.bounds.Dx(), w.bounds.Dy()))
}

// HitTest is ContainsPoint refined by the delegate's hit region: a
// point the delegate classifies as transparent misses the window.
func (w *Window) HitTest(local f32.Point) bool {
	if !w.ContainsPoint(local) {
		return false
	}
	if w.delegate != nil && w.delegate.GetNonClientComponent(local) == ComponentTransparent {
		return false
	}
	return true
}

// ContainsPointInRoot reports whether a point in root coordinates
// falls inside the window.
func (w *Window) ContainsPointInRoot(root f32.Point) bool {
	return w.ContainsPoint(w.pointFromRoot(root))
}

// GetEventHandlerForPoint returns the window that should receive an
// event at a point in w's coordinate space, honoring visibility,
// ignore flags, delegate hit regions and propagation stopping
// windows.
func (w *Window) GetEventHandlerForPoint(local f32.Point) *Window {
	return w.windowForPoint(local, true, true)
}

// GetTopWindowContainingPoint returns the topmost delegate-backed
// window geometrically containing the point; it ignores event
// routing flags.
func (w *Window) GetTopWindowContainingPoint(local f32.Point) *Window {
	return w.windowForPoint(local, false, false)
}

func (w *Window) windowForPoint(local f32.Point, returnTightest, forEventHandling bool) *Window {
	if !w.visible {
		return nil
	}
	if forEventHandling {
		if !w.HitTest(local) {
			return nil
		}
		if w.ignoreEvents {
			return nil
		}
	} else if !w.ContainsPoint(local) {
		return nil
	}
	if !returnTightest && w.delegate != nil {
		return w
	}
	for i := len(w.children) - 1; i >= 0; i-- {
		child := w.children[i]
		pointInChild := child.pointFromParent(local)
		if match := child.windowForPoint(pointInChild, returnTightest, forEventHandling); match != nil {
			return match
		}
		// A propagation stopping child masks everything behind it for
		// points inside its bounds, even when nothing in it matched.
		if forEventHandling && child.StopsEventPropagation() && child.ContainsPoint(pointInChild) {
			break
		}
	}
	if w.delegate != nil {
		return w
	}
	return nil
}

// pointFromParent converts a point in the parent's space to w's
// space.
func (w *Window) pointFromParent(p f32.Point) f32.Point {
	return w.transform.Invert().Transform(p.Sub(w.bounds.Min))
}

// pointToRoot converts a point in w's space to root coordinates,
// composing every ancestor's transform up to but excluding the root
// window's own transform.
func (w *Window) pointToRoot(p f32.Point) f32.Point {
	for win := w; win != nil && win.rootOwner == nil; win = win.parent {
		p = win.transform.Transform(p).Add(win.bounds.Min)
	}
	return p
}

func (w *Window) pointFromRoot(p f32.Point) f32.Point {
	var chain []*Window
	for win := w; win != nil && win.rootOwner == nil; win = win.parent {
		chain = append(chain, win)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		p = chain[i].pointFromParent(p)
	}
	return p
}

// ConvertPoint converts a point from source's coordinate space to
// target's. Both windows must be in the same tree.
func ConvertPoint(source, target *Window, p f32.Point) f32.Point {
	if source == target {
		return p
	}
	return target.pointFromRoot(source.pointToRoot(p))
}

// GetBoundsInRoot returns the window's bounds in root coordinates,
// as the axis-aligned box around its transformed corners.
func (w *Window) GetBoundsInRoot() f32.Rectangle {
	size := w.bounds.Size()
	corners := [4]f32.Point{
		{}, {X: size.X}, {Y: size.Y}, {X: size.X, Y: size.Y},
	}
	var out f32.Rectangle
	for i, c := range corners {
		p := w.pointToRoot(c)
		if i == 0 {
			out = f32.Rectangle{Min: p, Max: p}
			continue
		}
		out = out.Union(f32.Rectangle{Min: p, Max: p})
	}
	return out
}
