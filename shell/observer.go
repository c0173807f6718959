// SPDX-License-Identifier: Unlicense OR MIT

package shell

import (
	"github.com/oakwm/oak/f32"
)

// WindowObserver receives notifications about one window. Leave the
// callbacks you do not need nil.
type WindowObserver struct {
	// Destroying fires when destruction starts, while the tree around
	// the window is still intact. Destroyed fires when it is complete.
	Destroying func(w *Window)
	Destroyed  func(w *Window)

	BoundsChanged func(w *Window, oldBounds, newBounds f32.Rectangle)

	// VisibilityChanged carries both the window's own visibility flag
	// and whether the window is actually drawn, which also requires
	// every ancestor to be visible.
	VisibilityChanged func(w *Window, visible, drawn bool)
	ParentChanged     func(w *Window)
	StackingChanged   func(w *Window)
	PropertyChanged   func(w *Window, key string)

	// ChildAdded and ChildRemoved fire on the observed window when its
	// child list changes.
	ChildAdded   func(parent, child *Window)
	ChildRemoved func(parent, child *Window)
}

// Subscription is a handle to a registered observer. Closing it
// unregisters the observer; Close is safe to call more than once and
// after the window is destroyed.
type Subscription struct {
	w  *Window
	id int
}

// Close unregisters the observer.
func (s *Subscription) Close() {
	if s.w == nil {
		return
	}
	for i, e := range s.w.observers {
		if e.id == s.id {
			s.w.observers = append(s.w.observers[:i], s.w.observers[i+1:]...)
			break
		}
	}
	s.w = nil
}

type observerEntry struct {
	id int
	o  WindowObserver
}

// Observe registers an observer on w and returns its subscription.
func (w *Window) Observe(o WindowObserver) *Subscription {
	w.nextObserverID++
	id := w.nextObserverID
	w.observers = append(w.observers, observerEntry{id: id, o: o})
	return &Subscription{w: w, id: id}
}

// eachObserver iterates over a snapshot of the observer list, so
// observers may unsubscribe or subscribe during notification.
func (w *Window) eachObserver(f func(o WindowObserver)) {
	entries := make([]observerEntry, len(w.observers))
	copy(entries, w.observers)
	for _, e := range entries {
		f(e.o)
	}
}
