// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"time"

	"github.com/oakwm/oak/event"
	"github.com/oakwm/oak/f32"
	"github.com/oakwm/oak/internal/fling"
)

// point tracks one touch through a sequence: where it started, where
// it is, its velocity estimate and the last tap it produced. A point
// is addressed two ways: by touchID, the stable id reported by the
// platform, and by pointID, a dense index over the points currently
// down that is compacted when a touch lifts.
type point struct {
	inUse   bool
	pointID int
	touchID int

	firstTouchTime time.Duration
	firstTouchPos  f32.Point
	lastTouchTime  time.Duration
	lastTouchPos   f32.Point

	// secondLastPos is the position at the last accepted scroll
	// update; scroll deltas accumulate against it.
	secondLastPos f32.Point

	// lastTapTime and lastTapPos remember the previous tap for double
	// tap detection.
	lastTapTime time.Duration
	lastTapPos  f32.Point

	radiusX, radiusY float32

	velocityX, velocityY fling.Extrapolation
}

// reset frees the point for reuse. The last tap survives so the next
// press on the same touch id can still be judged for a double tap.
func (p *point) reset() {
	p.inUse = false
	p.pointID = -1
	p.firstTouchTime, p.lastTouchTime = 0, 0
	p.firstTouchPos, p.lastTouchPos, p.secondLastPos = f32.Point{}, f32.Point{}, f32.Point{}
	p.radiusX, p.radiusY = 0, 0
	p.resetVelocity()
}

func (p *point) update(ev event.Touch) {
	p.lastTouchTime = ev.Time
	p.lastTouchPos = ev.Location
	p.radiusX = ev.RadiusX
	p.radiusY = ev.RadiusY
	switch ev.Type {
	case event.TouchPressed:
		p.firstTouchTime = ev.Time
		p.firstTouchPos = ev.Location
		p.secondLastPos = ev.Location
		p.velocityX.Reset()
		p.velocityY.Reset()
	}
	p.velocityX.Sample(ev.Time, ev.Location.X)
	p.velocityY.Sample(ev.Time, ev.Location.Y)
}

// updateForTap records the tap that was just emitted, so the next
// press can be judged for a double tap.
func (p *point) updateForTap() {
	p.lastTapTime = p.lastTouchTime
	p.lastTapPos = p.lastTouchPos
}

// updateForScroll resets the scroll delta baseline after an accepted
// scroll or pinch update.
func (p *point) updateForScroll() {
	p.secondLastPos = p.lastTouchPos
}

func (p *point) resetVelocity() {
	p.velocityX.Reset()
	p.velocityY.Reset()
}

func (p *point) xVelocity() float32 { return p.velocityX.Estimate().Velocity }
func (p *point) yVelocity() float32 { return p.velocityY.Estimate().Velocity }

// enclosingRect is the axis-aligned box around the touch contact, at
// least a pixel on each side.
func (p *point) enclosingRect() f32.Rectangle {
	rx, ry := p.radiusX, p.radiusY
	if rx < 1 {
		rx = 1
	}
	if ry < 1 {
		ry = 1
	}
	c := p.lastTouchPos
	return f32.Rect(c.X-rx, c.Y-ry, c.X+rx, c.Y+ry)
}

// isInClickWindow reports whether releasing now produces a tap: the
// touch was down long enough but not too long, and never left the slop
// square around where it landed.
func (p *point) isInClickWindow(cfg *Config, ev event.Touch) bool {
	dur := ev.Time - p.firstTouchTime
	if dur < cfg.MinTouchDownDuration || dur > cfg.MaxTouchDownDuration {
		return false
	}
	return insideManhattanSquare(ev.Location, p.firstTouchPos, cfg.MaxTouchMoveForClick)
}

// isInDoubleClickWindow reports whether the tap being emitted follows
// the previous tap closely enough in time and space.
func (p *point) isInDoubleClickWindow(cfg *Config, ev event.Touch) bool {
	if p.lastTapTime == 0 {
		return false
	}
	if ev.Time-p.lastTapTime > cfg.MaxDoubleClickInterval {
		return false
	}
	return insideManhattanSquare(ev.Location, p.lastTapPos, cfg.MaxTouchMoveForClick)
}

// isInScrollWindow reports whether the touch has moved out of the slop
// square, committing the sequence to a scroll.
func (p *point) isInScrollWindow(cfg *Config, ev event.Touch) bool {
	if ev.Type != event.TouchMoved && ev.Type != event.TouchStationary {
		return false
	}
	return !insideManhattanSquare(ev.Location, p.firstTouchPos, cfg.MaxTouchMoveForClick)
}

// isInsideManhattanSquare reports whether the touch is still within
// the slop square around its first position.
func (p *point) isInsideManhattanSquare(cfg *Config, ev event.Touch) bool {
	return insideManhattanSquare(ev.Location, p.firstTouchPos, cfg.MaxTouchMoveForClick)
}

// isInFlickWindow reports whether releasing now should fling: the
// touch is moving fast enough and was not cancelled.
func (p *point) isInFlickWindow(cfg *Config, ev event.Touch) bool {
	if ev.Type == event.TouchCancelled {
		return false
	}
	vx, vy := p.xVelocity(), p.yVelocity()
	return vx*vx+vy*vy > cfg.MinFlickSpeed*cfg.MinFlickSpeed
}

// hasEnoughDataToEstablishRail reports whether the touch has travelled
// far enough to judge a rail direction.
func (p *point) hasEnoughDataToEstablishRail(cfg *Config) bool {
	dx := p.lastTouchPos.X - p.firstTouchPos.X
	dy := p.lastTouchPos.Y - p.firstTouchPos.Y
	min := cfg.MinRailEstablishDistance
	return dx*dx+dy*dy >= min*min
}

func (p *point) isInHorizontalRailWindow(cfg *Config) bool {
	dx := abs(p.lastTouchPos.X - p.firstTouchPos.X)
	dy := abs(p.lastTouchPos.Y - p.firstTouchPos.Y)
	return dx > cfg.RailStartProportion*dy
}

func (p *point) isInVerticalRailWindow(cfg *Config) bool {
	dx := abs(p.lastTouchPos.X - p.firstTouchPos.X)
	dy := abs(p.lastTouchPos.Y - p.firstTouchPos.Y)
	return dy > cfg.RailStartProportion*dx
}

func (p *point) breaksHorizontalRail(cfg *Config) bool {
	vx, vy := abs(p.xVelocity()), abs(p.yVelocity())
	return vy > cfg.RailBreakProportion*vx+cfg.MinRailBreakVelocity
}

func (p *point) breaksVerticalRail(cfg *Config) bool {
	vx, vy := abs(p.xVelocity()), abs(p.yVelocity())
	return vx > cfg.RailBreakProportion*vy+cfg.MinRailBreakVelocity
}

// didScroll reports whether the touch has moved at least dist pixels
// on either axis since the last accepted scroll update.
func (p *point) didScroll(dist float32) bool {
	return abs(p.lastTouchPos.X-p.secondLastPos.X) > dist ||
		abs(p.lastTouchPos.Y-p.secondLastPos.Y) > dist
}

func insideManhattanSquare(p, center f32.Point, slop float32) bool {
	return abs(p.X-center.X) < slop && abs(p.Y-center.Y) < slop
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
