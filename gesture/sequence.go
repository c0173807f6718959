// SPDX-License-Identifier: Unlicense OR MIT

// Package gesture turns streams of raw touch events into higher level
// gesture events: taps, double taps, long presses, scrolls with rails
// and flings, pinches, two finger taps and multi finger swipes.
//
// A Sequence tracks the touches aimed at a single consumer and runs
// the recognition state machine. A Recognizer routes touches to
// sequences by target and manages deferred (queued) touches.
package gesture

import (
	"math"
	"time"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
)

// MaxPoints is the largest number of simultaneous touches a sequence
// tracks. Touches with higher platform ids are ignored.
const MaxPoints = 12

// Pinch edges are only defined for the first five touches; additional
// fingers keep the pinch alive but produce no edges of their own.
const maxPinchEdgePoints = 5

// Timer runs a single deferred function. Start replaces any pending
// run.
type Timer interface {
	Start(d time.Duration, f func())
	Stop()
	Running() bool
}

// Helper receives the gesture events that fire from a timer rather
// than from a touch, and supplies the timer itself.
type Helper interface {
	// DispatchLongPress delivers a long press. It fires while the
	// first touch rests in place, not in response to a touch event, so
	// it cannot be returned from ProcessTouch.
	DispatchLongPress(ev event.Gesture)
}

type gestureState uint8

const (
	stateNoGesture gestureState = iota
	statePendingClick
	stateScroll
	statePendingTwoFingerTap
	statePinch
)

func (s gestureState) String() string {
	switch s {
	case stateNoGesture:
		return "NoGesture"
	case statePendingClick:
		return "PendingClick"
	case stateScroll:
		return "Scroll"
	case statePendingTwoFingerTap:
		return "PendingTwoFingerTap"
	case statePinch:
		return "Pinch"
	}
	panic("invalid gesture state")
}

type railType uint8

const (
	railFree railType = iota
	railHorizontal
	railVertical
)

// Sequence recognizes the gestures performed by the set of touches
// aimed at one consumer.
type Sequence struct {
	cfg    *Config
	helper Helper
	timer  Timer

	state gestureState
	rail  railType
	flags event.Modifiers

	// points is indexed by platform touch id. pointCount is the number
	// in use; their pointIDs form the dense range [0, pointCount).
	points     [MaxPoints]point
	pointCount int

	boundingBox   f32.Rectangle
	boxLastCenter f32.Point

	pinchDistStart   float32
	pinchDistCurrent float32

	secondTouchTime   time.Duration
	lastTouchLocation f32.Point
}

// NewSequence returns a sequence using cfg's thresholds. The timer
// drives long press detection; helper receives the long press when it
// fires.
func NewSequence(cfg *Config, helper Helper, timer Timer) *Sequence {
	s := &Sequence{cfg: cfg, helper: helper, timer: timer}
	for i := range s.points {
		s.points[i].reset()
	}
	return s
}

// LastTouchLocation returns the location of the most recent touch seen
// by the sequence, in the consumer's coordinate space.
func (s *Sequence) LastTouchLocation() f32.Point { return s.lastTouchLocation }

// Reset abandons the sequence: all points are released and the state
// machine returns to idle without emitting any gesture.
func (s *Sequence) Reset() {
	s.timer.Stop()
	s.state = stateNoGesture
	for i := range s.points {
		s.points[i].reset()
	}
	s.pointCount = 0
}

// ProcessTouch advances the state machine with one touch event and
// returns the gestures it produced, in order. The status reports how
// the event's dispatch went: a consumed touch suppresses most edges,
// and a queued touch is ignored entirely until it is advanced out of
// its queue.
func (s *Sequence) ProcessTouch(ev event.Touch, status event.TouchStatus) []event.Gesture {
	s.stopLongPressTimerIfMoved(ev)
	s.lastTouchLocation = ev.Location
	if status == event.TouchStatusQueued || status == event.TouchStatusQueuedEnd {
		return nil
	}
	if ev.PointerID < 0 || ev.PointerID >= MaxPoints {
		return nil
	}

	if ev.Type == event.TouchPressed {
		if s.pointCount == MaxPoints {
			return nil
		}
		np := &s.points[ev.PointerID]
		if np.inUse {
			// Two presses from the same finger without a release in
			// between; drop the stray press.
			return nil
		}
		np.inUse = true
		np.pointID = s.pointCount
		np.touchID = ev.PointerID
		s.pointCount++
	}

	p := &s.points[ev.PointerID]
	p.update(ev)
	s.recreateBoundingBox()
	s.flags = ev.Modifiers
	pointID := p.pointID
	if pointID < 0 {
		return nil
	}

	var gestures []event.Gesture
	if ev.Type == event.TouchPressed {
		gestures = append(gestures, s.newGesture(event.GestureBegin, p.firstTouchPos, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
	}

	// A consumed touch only drives the edges that fire regardless of
	// handling: moves once a scroll, two finger tap or pinch is under
	// way.
	consumed := status != event.TouchStatusUnknown

	lastState := s.state
	switch s.state {
	case stateNoGesture:
		if pointID == 0 && ev.Type == event.TouchPressed && !consumed {
			s.touchDown(p, &gestures)
			s.state = statePendingClick
		}

	case statePendingClick:
		switch {
		case pointID == 0 && ev.Type == event.TouchReleased && !consumed:
			if s.click(ev, p, &gestures) {
				p.updateForTap()
			}
			s.state = stateNoGesture
		case pointID == 0 && (ev.Type == event.TouchMoved || ev.Type == event.TouchStationary) && !consumed:
			if s.scrollStart(ev, p, &gestures) {
				s.state = stateScroll
				if s.scrollUpdate(p, &gestures) {
					p.updateForScroll()
				}
			}
		case pointID == 0 && ev.Type == event.TouchCancelled && !consumed:
			s.Reset()
		case pointID == 1 && ev.Type == event.TouchPressed && !consumed:
			s.secondTouchDown(ev, p, &gestures)
		}

	case stateScroll:
		switch {
		case pointID == 0 && ev.Type == event.TouchMoved:
			if s.rail != railFree {
				s.breakRailScroll(p)
			}
			if s.scrollUpdate(p, &gestures) {
				p.updateForScroll()
			}
		case pointID == 0 && (ev.Type == event.TouchReleased || ev.Type == event.TouchCancelled) && !consumed:
			s.scrollEnd(ev, p, &gestures)
			s.state = stateNoGesture
		case pointID == 1 && ev.Type == event.TouchPressed && !consumed:
			s.secondTouchDown(ev, p, &gestures)
		}

	case statePendingTwoFingerTap:
		switch {
		case pointID <= 1 && ev.Type == event.TouchReleased && !consumed:
			s.twoFingerTouchReleased(ev, p, &gestures)
			s.state = stateScroll
		case pointID <= 1 && ev.Type == event.TouchMoved:
			if s.twoFingerTouchMove(ev, p, &gestures) {
				s.state = statePinch
			}
		case pointID <= 1 && ev.Type == event.TouchCancelled && !consumed:
			s.rail = railFree
			s.state = stateScroll
		case pointID == 2 && ev.Type == event.TouchPressed && !consumed:
			s.pinchStart(p, &gestures)
			s.state = statePinch
		}

	case statePinch:
		switch {
		case pointID < maxPinchEdgePoints && ev.Type == event.TouchMoved:
			if s.pinchUpdate(p, &gestures) {
				for i := 0; i < s.pointCount; i++ {
					s.pointByPointID(i).updateForScroll()
				}
			}
		case pointID < maxPinchEdgePoints && (ev.Type == event.TouchReleased || ev.Type == event.TouchCancelled) && !consumed:
			if s.pointCount == 2 {
				s.pinchEnd(p, &gestures)
				// A single finger remains; it can still scroll.
				s.state = stateScroll
			} else {
				s.maybeSwipe(p, &gestures)
			}
			s.resetVelocities()
		case pointID >= 2 && pointID < maxPinchEdgePoints && ev.Type == event.TouchPressed && !consumed:
			s.pinchDistCurrent = diagonal(s.boundingBox)
			s.pinchDistStart = s.pinchDistCurrent
		}
	}

	if ev.Type == event.TouchReleased || ev.Type == event.TouchCancelled {
		gestures = append(gestures, s.newGesture(event.GestureEnd, p.firstTouchPos, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
	}

	if lastState == statePendingClick && s.state != lastState {
		s.timer.Stop()
	}

	// Point ids must stay dense and include 0. When a touch lifts,
	// every point with a higher id shifts down to close the gap.
	if ev.Type == event.TouchReleased || ev.Type == event.TouchCancelled {
		old := &s.points[ev.PointerID]
		for i := range s.points {
			if s.points[i].pointID > old.pointID {
				s.points[i].pointID--
			}
		}
		if old.inUse {
			old.reset()
			s.pointCount--
			s.recreateBoundingBox()
			if s.state == statePinch {
				s.pinchDistCurrent = diagonal(s.boundingBox)
				s.pinchDistStart = s.pinchDistCurrent
			}
		}
	}

	return gestures
}

func (s *Sequence) pointByPointID(pointID int) *point {
	for i := range s.points {
		p := &s.points[i]
		if p.inUse && p.pointID == pointID {
			return p
		}
	}
	return nil
}

func (s *Sequence) recreateBoundingBox() {
	s.boxLastCenter = center(s.boundingBox)
	var box f32.Rectangle
	first := true
	for i := range s.points {
		if !s.points[i].inUse {
			continue
		}
		r := s.points[i].enclosingRect()
		if first {
			box = r
			first = false
		} else {
			box = box.Union(r)
		}
	}
	s.boundingBox = box
}

func (s *Sequence) resetVelocities() {
	for i := range s.points {
		if s.points[i].inUse {
			s.points[i].resetVelocity()
		}
	}
}

func (s *Sequence) stopLongPressTimerIfMoved(ev event.Touch) {
	if !s.timer.Running() || ev.Type != event.TouchMoved {
		return
	}
	p := s.pointByPointID(0)
	if p == nil {
		return
	}
	if !insideManhattanSquare(ev.Location, p.firstTouchPos, s.cfg.MaxTouchMoveForClick) {
		s.timer.Stop()
	}
}

func (s *Sequence) newGesture(t event.Type, loc f32.Point, dx, dy float32, when time.Duration, bits uint32) event.Gesture {
	return event.Gesture{
		Type:        t,
		Location:    loc,
		DeltaX:      dx,
		DeltaY:      dy,
		TouchCount:  s.pointCount,
		BoundingBox: s.boundingBox,
		PointerBits: bits,
		Modifiers:   s.flags,
		Time:        when,
	}
}

func (s *Sequence) touchBitmask() uint32 {
	var bits uint32
	for i := range s.points {
		if s.points[i].inUse {
			bits |= 1 << uint(s.points[i].touchID)
		}
	}
	return bits
}

func (s *Sequence) touchDown(p *point, gestures *[]event.Gesture) {
	*gestures = append(*gestures, s.newGesture(event.GestureTapDown, p.firstTouchPos, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
	s.timer.Start(s.cfg.LongPressTime, s.longPress)
}

// longPress fires from the timer while the first touch rests in place.
func (s *Sequence) longPress() {
	p := s.pointByPointID(0)
	if p == nil {
		return
	}
	s.helper.DispatchLongPress(s.newGesture(event.GestureLongPress, p.firstTouchPos, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
}

func (s *Sequence) click(ev event.Touch, p *point, gestures *[]event.Gesture) bool {
	if !p.isInClickWindow(s.cfg, ev) {
		return false
	}
	doubleTap := p.isInDoubleClickWindow(s.cfg, ev)
	tapCount := 1
	if doubleTap {
		tapCount = 2
	}
	tap := s.newGesture(event.GestureTap, center(p.enclosingRect()), 0, 0, p.lastTouchTime, 1<<uint(p.touchID))
	tap.TapCount = tapCount
	*gestures = append(*gestures, tap)
	if doubleTap {
		*gestures = append(*gestures, s.newGesture(event.GestureDoubleTap, p.firstTouchPos, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
	}
	return true
}

func (s *Sequence) scrollStart(ev event.Touch, p *point, gestures *[]event.Gesture) bool {
	if p.isInClickWindow(s.cfg, ev) ||
		!p.isInScrollWindow(s.cfg, ev) ||
		!p.hasEnoughDataToEstablishRail(s.cfg) {
		return false
	}
	*gestures = append(*gestures, s.newGesture(event.GestureScrollBegin, p.firstTouchPos, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
	switch {
	case p.isInHorizontalRailWindow(s.cfg):
		s.rail = railHorizontal
	case p.isInVerticalRailWindow(s.cfg):
		s.rail = railVertical
	default:
		s.rail = railFree
	}
	return true
}

func (s *Sequence) breakRailScroll(p *point) {
	if s.rail == railHorizontal && p.breaksHorizontalRail(s.cfg) {
		s.rail = railFree
	} else if s.rail == railVertical && p.breaksVerticalRail(s.cfg) {
		s.rail = railFree
	}
}

func (s *Sequence) scrollUpdate(p *point, gestures *[]event.Gesture) bool {
	if !p.didScroll(s.cfg.MinScrollDelta) {
		return false
	}
	s.appendScrollUpdate(p, p.lastTouchPos, gestures)
	return true
}

func (s *Sequence) appendScrollUpdate(p *point, loc f32.Point, gestures *[]event.Gesture) {
	cur := center(s.boundingBox)
	dx := cur.X - s.boxLastCenter.X
	dy := cur.Y - s.boxLastCenter.Y
	if dx == 0 && dy == 0 {
		return
	}
	switch s.rail {
	case railHorizontal:
		dy = 0
	case railVertical:
		dx = 0
	}
	*gestures = append(*gestures, s.newGesture(event.GestureScrollUpdate, loc, dx, dy, p.lastTouchTime, s.touchBitmask()))
}

func (s *Sequence) scrollEnd(ev event.Touch, p *point, gestures *[]event.Gesture) {
	if p.isInFlickWindow(s.cfg, ev) {
		s.appendScrollEnd(p, p.lastTouchPos, p.xVelocity(), p.yVelocity(), gestures)
	} else {
		s.appendScrollEnd(p, p.lastTouchPos, 0, 0, gestures)
	}
}

func (s *Sequence) appendScrollEnd(p *point, loc f32.Point, vx, vy float32, gestures *[]event.Gesture) {
	switch s.rail {
	case railHorizontal:
		vy = 0
	case railVertical:
		vx = 0
	}
	*gestures = append(*gestures, s.newGesture(event.GestureScrollEnd, loc, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
	if vx != 0 || vy != 0 {
		// The fling curve is tuned for small deltas; scale release
		// velocities quadratically to fit it.
		const velocityScaling = 1.0 / 900.0
		*gestures = append(*gestures, s.newGesture(event.ScrollFlingStart, loc,
			velocityScaling*vx*abs(vx),
			velocityScaling*vy*abs(vy),
			p.lastTouchTime, 1<<uint(p.touchID)))
	}
}

// secondTouchDown decides what a second finger means: close to the
// first it arms a two finger tap, otherwise it starts a pinch.
func (s *Sequence) secondTouchDown(ev event.Touch, p *point, gestures *[]event.Gesture) {
	if s.secondTouchCloseEnoughForTwoFingerTap() {
		if s.state == stateScroll {
			s.appendScrollEnd(p, p.lastTouchPos, 0, 0, gestures)
		}
		s.secondTouchTime = ev.Time
		s.state = statePendingTwoFingerTap
	} else {
		s.pinchStart(p, gestures)
		s.state = statePinch
	}
}

func (s *Sequence) secondTouchCloseEnoughForTwoFingerTap() bool {
	p1 := s.pointByPointID(0)
	p2 := s.pointByPointID(1)
	if p1 == nil || p2 == nil {
		return false
	}
	dx := p1.lastTouchPos.X - p2.lastTouchPos.X
	dy := p1.lastTouchPos.Y - p2.lastTouchPos.Y
	max := s.cfg.MaxDistanceForTwoFingerTap
	return dx*dx+dy*dy < max*max
}

func (s *Sequence) twoFingerTouchMove(ev event.Touch, p *point, gestures *[]event.Gesture) bool {
	if ev.Time-s.secondTouchTime > s.cfg.MaxTouchDownDuration ||
		!p.isInsideManhattanSquare(s.cfg, ev) {
		s.pinchStart(p, gestures)
		return true
	}
	return false
}

func (s *Sequence) twoFingerTouchReleased(ev event.Touch, p *point, gestures *[]event.Gesture) {
	if ev.Time-s.secondTouchTime < s.cfg.MaxTouchDownDuration &&
		p.isInsideManhattanSquare(s.cfg, ev) {
		first := s.pointByPointID(0)
		*gestures = append(*gestures, s.newGesture(event.GestureTwoFingerTap, center(first.enclosingRect()), 0, 0, first.lastTouchTime, 1<<uint(first.touchID)))
	}
}

func (s *Sequence) pinchStart(p *point, gestures *[]event.Gesture) {
	// A pinch breaks any rail immediately.
	s.rail = railFree

	p1 := s.pointByPointID(0)
	p2 := s.pointByPointID(1)

	s.pinchDistCurrent = diagonal(s.boundingBox)
	s.pinchDistStart = s.pinchDistCurrent

	c := center(s.boundingBox)
	*gestures = append(*gestures, s.newGesture(event.GesturePinchBegin, c, 0, 0, p1.lastTouchTime, 1<<uint(p1.touchID)|1<<uint(p2.touchID)))

	if s.state == statePendingClick || s.state == statePendingTwoFingerTap {
		*gestures = append(*gestures, s.newGesture(event.GestureScrollBegin, c, 0, 0, p.lastTouchTime, 1<<uint(p.touchID)))
	}
}

func (s *Sequence) pinchUpdate(p *point, gestures *[]event.Gesture) bool {
	dist := diagonal(s.boundingBox)
	if abs(dist-s.pinchDistCurrent) >= s.cfg.MinPinchUpdateDistance {
		*gestures = append(*gestures, s.newGesture(event.GesturePinchUpdate, center(s.boundingBox), dist/s.pinchDistCurrent, 0, p.lastTouchTime, s.touchBitmask()))
		s.pinchDistCurrent = dist
	} else {
		// Fingers moved together without changing spread; report it as
		// a scroll instead.
		s.appendScrollUpdate(p, center(s.boundingBox), gestures)
	}
	return true
}

func (s *Sequence) pinchEnd(p *point, gestures *[]event.Gesture) {
	p1 := s.pointByPointID(0)
	p2 := s.pointByPointID(1)
	dist := diagonal(s.boundingBox)
	g := s.newGesture(event.GesturePinchEnd, center(s.boundingBox), dist/s.pinchDistStart, 0, p1.lastTouchTime, 1<<uint(p1.touchID)|1<<uint(p2.touchID))
	*gestures = append(*gestures, g)
	s.pinchDistStart = 0
	s.pinchDistCurrent = 0
}

// maybeSwipe emits a multi finger swipe if every active touch was
// moving in the same direction fast enough when one of them lifted.
func (s *Sequence) maybeSwipe(p *point, gestures *[]event.Gesture) bool {
	var vx, vy float32
	swipeX, swipeY := true, true

	i := 0
	for ; i < MaxPoints; i++ {
		if s.points[i].inUse {
			break
		}
	}
	if i == MaxPoints {
		return false
	}

	vx = s.points[i].xVelocity()
	vy = s.points[i].yVelocity()
	signX, signY := sign(vx), sign(vy)

	for i++; i < MaxPoints; i++ {
		pt := &s.points[i]
		if !pt.inUse {
			continue
		}
		if signX*pt.xVelocity() < 0 {
			swipeX = false
		}
		if signY*pt.yVelocity() < 0 {
			swipeY = false
		}
		vx += pt.xVelocity()
		vy += pt.yVelocity()
	}

	minVelocity := s.cfg.MinSwipeSpeed * s.cfg.MinSwipeSpeed
	vx = abs(vx / float32(s.pointCount))
	vy = abs(vy / float32(s.pointCount))
	if vx < minVelocity {
		swipeX = false
	}
	if vy < minVelocity {
		swipeY = false
	}
	if !swipeX && !swipeY {
		return false
	}
	if !swipeX {
		vx = 0.001
	}
	if !swipeY {
		vy = 0.001
	}

	ratio := vx / vy
	if vy > vx {
		ratio = vy / vx
	}
	if ratio < s.cfg.MaxSwipeDeviationRatio {
		return false
	}
	if vx > vy {
		signY = 0
	} else {
		signX = 0
	}

	*gestures = append(*gestures, s.newGesture(event.GestureMultifingerSwipe, center(s.boundingBox), signX, signY, p.lastTouchTime, s.touchBitmask()))
	return true
}

func center(r f32.Rectangle) f32.Point {
	return f32.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func diagonal(r f32.Rectangle) float32 {
	w, h := r.Dx(), r.Dy()
	return float32(math.Sqrt(float64(w*w + h*h)))
}

func sign(v float32) float32 {
	if v < 0 {
		return -1
	}
	return 1
}
