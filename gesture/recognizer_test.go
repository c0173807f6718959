// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"testing"
	"time"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
)

func newTestRecognizer() (*Recognizer, *fakeTimer) {
	cfg := DefaultConfig()
	timer := &fakeTimer{}
	return NewRecognizer(cfg, &recordHelper{}, func() Timer { return timer }), timer
}

func TestRecognizerRoutesByPointer(t *testing.T) {
	r, _ := newTestRecognizer()
	a, b := "a", "b"

	r.ProcessTouch(touch(event.TouchPressed, 0, 100, 100, 0), event.TouchStatusUnknown, a)
	r.ProcessTouch(touch(event.TouchPressed, 1, 500, 500, 0), event.TouchStatusUnknown, b)

	if got := r.TargetForTouch(touch(event.TouchMoved, 0, 110, 100, time.Millisecond)); got != a {
		t.Errorf("pointer 0 routed to %v, want a", got)
	}
	if got := r.TargetForTouch(touch(event.TouchMoved, 1, 510, 500, time.Millisecond)); got != b {
		t.Errorf("pointer 1 routed to %v, want b", got)
	}

	r.ProcessTouch(touch(event.TouchReleased, 0, 110, 100, 50*time.Millisecond), event.TouchStatusUnknown, a)
	if got := r.TargetForTouch(touch(event.TouchMoved, 0, 110, 100, 60*time.Millisecond)); got != nil {
		t.Errorf("released pointer still routed to %v", got)
	}
}

func TestTargetForLocation(t *testing.T) {
	r, _ := newTestRecognizer()
	a := "a"

	r.ProcessTouch(touch(event.TouchPressed, 0, 100, 100, 0), event.TouchStatusUnknown, a)

	if got := r.TargetForLocation(f32.Pt(120, 100)); got != a {
		t.Errorf("nearby press targets %v, want a", got)
	}
	if got := r.TargetForLocation(f32.Pt(500, 500)); got != nil {
		t.Errorf("distant press targets %v, want nil", got)
	}
}

func TestQueueAdvance(t *testing.T) {
	r, _ := newTestRecognizer()
	c := "c"

	r.QueueTouch(touch(event.TouchPressed, 0, 100, 100, 0), c)
	r.ProcessTouch(touch(event.TouchPressed, 0, 100, 100, 0), event.TouchStatusQueued, c)

	// Not handled: the press drives recognition as an unconsumed touch.
	gestures, ok := r.AdvanceTouchQueue(c, false)
	if !ok {
		t.Fatal("queue was empty")
	}
	wantTypes(t, gestures, event.GestureBegin, event.GestureTapDown)

	r.QueueTouch(touch(event.TouchReleased, 0, 100, 100, 50*time.Millisecond), c)
	gestures, ok = r.AdvanceTouchQueue(c, false)
	if !ok {
		t.Fatal("queue was empty")
	}
	wantTypes(t, gestures, event.GestureTap, event.GestureEnd)
}

func TestQueueAdvanceProcessed(t *testing.T) {
	r, _ := newTestRecognizer()
	c := "c"

	r.QueueTouch(touch(event.TouchPressed, 0, 100, 100, 0), c)
	r.ProcessTouch(touch(event.TouchPressed, 0, 100, 100, 0), event.TouchStatusQueued, c)

	// Handled by the target: consumed touches produce no tap down.
	gestures, ok := r.AdvanceTouchQueue(c, true)
	if !ok {
		t.Fatal("queue was empty")
	}
	wantTypes(t, gestures, event.GestureBegin)
}

func TestAdvanceEmptyQueue(t *testing.T) {
	r, _ := newTestRecognizer()
	if _, ok := r.AdvanceTouchQueue("c", false); ok {
		t.Error("advance on an empty queue reported ok")
	}
}

func TestFlushTouchQueue(t *testing.T) {
	r, _ := newTestRecognizer()
	c := "c"

	r.ProcessTouch(touch(event.TouchPressed, 0, 100, 100, 0), event.TouchStatusUnknown, c)
	r.QueueTouch(touch(event.TouchMoved, 0, 110, 100, time.Millisecond), c)
	r.FlushTouchQueue(c)

	if got := r.TargetForTouch(touch(event.TouchMoved, 0, 110, 100, 2*time.Millisecond)); got != nil {
		t.Errorf("flushed consumer still routed to %v", got)
	}
	if _, ok := r.AdvanceTouchQueue(c, false); ok {
		t.Error("flushed queue still had entries")
	}
}
