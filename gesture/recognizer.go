// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
)

// Consumer identifies the recipient of a touch sequence. The
// recognizer only stores and compares consumers, so any comparable
// value works; the dispatcher uses its windows.
type Consumer any

// Recognizer routes touches to per-consumer sequences and manages
// deferred touches for consumers that queue them.
type Recognizer struct {
	cfg      Config
	helper   Helper
	newTimer func() Timer

	sequences    map[Consumer]*Sequence
	touchTargets map[int]Consumer
	queues       map[Consumer][]event.Touch
}

// NewRecognizer returns a recognizer using cfg's thresholds. newTimer
// supplies the long press timer for each new sequence; pass
// NewSystemTimer outside of tests.
func NewRecognizer(cfg Config, helper Helper, newTimer func() Timer) *Recognizer {
	return &Recognizer{
		cfg:          cfg,
		helper:       helper,
		newTimer:     newTimer,
		sequences:    make(map[Consumer]*Sequence),
		touchTargets: make(map[int]Consumer),
		queues:       make(map[Consumer][]event.Touch),
	}
}

// TargetForTouch returns the consumer a touch belongs to. A press may
// join a gesture already in progress nearby; moves and releases follow
// the consumer their press was assigned to. It returns nil when the
// touch belongs to no known gesture.
func (r *Recognizer) TargetForTouch(ev event.Touch) Consumer {
	if ev.Type == event.TouchPressed {
		return r.TargetForLocation(ev.Location)
	}
	if c, ok := r.touchTargets[ev.PointerID]; ok {
		return c
	}
	return nil
}

// TargetForLocation returns the consumer of the active touch point
// nearest to loc, if one is close enough for a new touch to join its
// gesture.
func (r *Recognizer) TargetForLocation(loc f32.Point) Consumer {
	max := r.cfg.MaxSeparationForGestureTouches
	best := max * max
	var found Consumer
	for c, seq := range r.sequences {
		for i := range seq.points {
			p := &seq.points[i]
			if !p.inUse {
				continue
			}
			dx := p.lastTouchPos.X - loc.X
			dy := p.lastTouchPos.Y - loc.Y
			if d := dx*dx + dy*dy; d < best {
				best = d
				found = c
			}
		}
	}
	return found
}

// ProcessTouch feeds a dispatched touch into the consumer's sequence
// and returns the recognized gestures. The status is the outcome of
// the touch's dispatch.
func (r *Recognizer) ProcessTouch(ev event.Touch, status event.TouchStatus, c Consumer) []event.Gesture {
	if c == nil {
		return nil
	}
	if ev.Type == event.TouchPressed {
		r.touchTargets[ev.PointerID] = c
	}
	gestures := r.sequenceFor(c).ProcessTouch(ev, status)
	queued := status == event.TouchStatusQueued || status == event.TouchStatusQueuedEnd
	if !queued && (ev.Type == event.TouchReleased || ev.Type == event.TouchCancelled) {
		delete(r.touchTargets, ev.PointerID)
	}
	return gestures
}

// QueueTouch defers a touch whose handling decision is pending. The
// queued touch is resolved later by AdvanceTouchQueue, in order.
func (r *Recognizer) QueueTouch(ev event.Touch, c Consumer) {
	if c == nil {
		return
	}
	if ev.Type == event.TouchPressed {
		r.touchTargets[ev.PointerID] = c
	}
	r.queues[c] = append(r.queues[c], ev)
}

// AdvanceTouchQueue resolves the oldest queued touch for c. The
// processed flag reports whether the consumer ended up handling it.
// It returns the gestures the resolved touch produced, and false if
// the queue was empty.
func (r *Recognizer) AdvanceTouchQueue(c Consumer, processed bool) ([]event.Gesture, bool) {
	q := r.queues[c]
	if len(q) == 0 {
		return nil, false
	}
	ev := q[0]
	if len(q) == 1 {
		delete(r.queues, c)
	} else {
		r.queues[c] = q[1:]
	}
	status := event.TouchStatusUnknown
	if processed {
		status = event.TouchStatusContinue
	}
	gestures := r.sequenceFor(c).ProcessTouch(ev, status)
	if ev.Type == event.TouchReleased || ev.Type == event.TouchCancelled {
		delete(r.touchTargets, ev.PointerID)
	}
	return gestures, true
}

// FlushTouchQueue drops all state for a consumer that is going away:
// its queued touches, its sequence and its touch routing entries.
func (r *Recognizer) FlushTouchQueue(c Consumer) {
	if seq, ok := r.sequences[c]; ok {
		seq.Reset()
		delete(r.sequences, c)
	}
	delete(r.queues, c)
	for id, target := range r.touchTargets {
		if target == c {
			delete(r.touchTargets, id)
		}
	}
}

func (r *Recognizer) sequenceFor(c Consumer) *Sequence {
	seq, ok := r.sequences[c]
	if !ok {
		seq = NewSequence(&r.cfg, r.helper, r.newTimer())
		r.sequences[c] = seq
	}
	return seq
}
