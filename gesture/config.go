// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tuning thresholds for gesture recognition. The zero
// value is not useful; start from DefaultConfig or LoadConfig.
type Config struct {
	// LongPressTime is how long the first touch must stay within the
	// slop square before a long press fires.
	LongPressTime time.Duration

	// MaxDoubleClickInterval is the longest pause between two taps
	// that still counts as a double tap.
	MaxDoubleClickInterval time.Duration

	// MinTouchDownDuration and MaxTouchDownDuration bound how long a
	// touch may rest on the surface and still produce a tap.
	MinTouchDownDuration time.Duration
	MaxTouchDownDuration time.Duration

	// MaxTouchMoveForClick is the half-width in pixels of the slop
	// square around the initial touch position. Movement beyond it
	// abandons the pending tap.
	MaxTouchMoveForClick float32

	// MaxDistanceForTwoFingerTap is how close a second touch must land
	// to the first for the pair to be a two finger tap candidate
	// rather than a pinch.
	MaxDistanceForTwoFingerTap float32

	// MaxSeparationForGestureTouches is the largest distance from an
	// active gesture at which a new touch still joins that gesture's
	// target.
	MaxSeparationForGestureTouches float32

	// MinScrollDelta is the per-event movement in pixels a touch move
	// must exceed on either axis to produce a scroll update.
	MinScrollDelta float32

	// MinFlickSpeed is the release speed in pixels per second above
	// which a scroll ends in a fling.
	MinFlickSpeed float32

	// RailStartProportion starts a scroll on a horizontal or vertical
	// rail when one axis dominates the other by this factor.
	RailStartProportion float32

	// RailBreakProportion and MinRailBreakVelocity control when
	// cross-axis movement breaks an established rail.
	RailBreakProportion  float32
	MinRailBreakVelocity float32

	// MinRailEstablishDistance is how far the touch must travel before
	// a rail direction can be judged.
	MinRailEstablishDistance float32

	// MinPinchUpdateDistance is the change in bounding box diagonal in
	// pixels needed to produce a pinch update rather than a scroll
	// update.
	MinPinchUpdateDistance float32

	// MinSwipeSpeed and MaxSwipeDeviationRatio gate the multi finger
	// swipe fired when several touches lift while moving the same way.
	MinSwipeSpeed          float32
	MaxSwipeDeviationRatio float32
}

// DefaultConfig returns the thresholds used when no configuration file
// overrides them.
func DefaultConfig() Config {
	return Config{
		LongPressTime:                  time.Second,
		MaxDoubleClickInterval:         700 * time.Millisecond,
		MinTouchDownDuration:           10 * time.Millisecond,
		MaxTouchDownDuration:           800 * time.Millisecond,
		MaxTouchMoveForClick:           20,
		MaxDistanceForTwoFingerTap:     300,
		MaxSeparationForGestureTouches: 150,
		MinScrollDelta:                 5,
		MinFlickSpeed:                  550,
		RailStartProportion:            2,
		RailBreakProportion:            15,
		MinRailBreakVelocity:           200,
		MinRailEstablishDistance:       10,
		MinPinchUpdateDistance:         5,
		MinSwipeSpeed:                  20,
		MaxSwipeDeviationRatio:         3,
	}
}

// LoadConfig reads thresholds from a YAML file, with defaults for any
// field the file omits. A missing file is not an error; the defaults
// are returned.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("gesture: read config: %w", err)
	}
	if err := cfg.unmarshal(data); err != nil {
		return cfg, fmt.Errorf("gesture: parse config %q: %w", path, err)
	}
	return cfg, nil
}

// unmarshal merges YAML settings into c. Durations are written as Go
// duration strings ("700ms", "1s").
func (c *Config) unmarshal(data []byte) error {
	var raw struct {
		LongPressTime                  *string  `yaml:"long_press_time"`
		MaxDoubleClickInterval         *string  `yaml:"max_double_click_interval"`
		MinTouchDownDuration           *string  `yaml:"min_touch_down_duration"`
		MaxTouchDownDuration           *string  `yaml:"max_touch_down_duration"`
		MaxTouchMoveForClick           *float32 `yaml:"max_touch_move_for_click"`
		MaxDistanceForTwoFingerTap     *float32 `yaml:"max_distance_for_two_finger_tap"`
		MaxSeparationForGestureTouches *float32 `yaml:"max_separation_for_gesture_touches"`
		MinScrollDelta                 *float32 `yaml:"min_scroll_delta"`
		MinFlickSpeed                  *float32 `yaml:"min_flick_speed"`
		RailStartProportion            *float32 `yaml:"rail_start_proportion"`
		RailBreakProportion            *float32 `yaml:"rail_break_proportion"`
		MinRailBreakVelocity           *float32 `yaml:"min_rail_break_velocity"`
		MinRailEstablishDistance       *float32 `yaml:"min_rail_establish_distance"`
		MinPinchUpdateDistance         *float32 `yaml:"min_pinch_update_distance"`
		MinSwipeSpeed                  *float32 `yaml:"min_swipe_speed"`
		MaxSwipeDeviationRatio         *float32 `yaml:"max_swipe_deviation_ratio"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	durations := []struct {
		dst *time.Duration
		src *string
	}{
		{&c.LongPressTime, raw.LongPressTime},
		{&c.MaxDoubleClickInterval, raw.MaxDoubleClickInterval},
		{&c.MinTouchDownDuration, raw.MinTouchDownDuration},
		{&c.MaxTouchDownDuration, raw.MaxTouchDownDuration},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		v, err := time.ParseDuration(*d.src)
		if err != nil {
			return err
		}
		*d.dst = v
	}

	floats := []struct {
		dst *float32
		src *float32
	}{
		{&c.MaxTouchMoveForClick, raw.MaxTouchMoveForClick},
		{&c.MaxDistanceForTwoFingerTap, raw.MaxDistanceForTwoFingerTap},
		{&c.MaxSeparationForGestureTouches, raw.MaxSeparationForGestureTouches},
		{&c.MinScrollDelta, raw.MinScrollDelta},
		{&c.MinFlickSpeed, raw.MinFlickSpeed},
		{&c.RailStartProportion, raw.RailStartProportion},
		{&c.RailBreakProportion, raw.RailBreakProportion},
		{&c.MinRailBreakVelocity, raw.MinRailBreakVelocity},
		{&c.MinRailEstablishDistance, raw.MinRailEstablishDistance},
		{&c.MinPinchUpdateDistance, raw.MinPinchUpdateDistance},
		{&c.MinSwipeSpeed, raw.MinSwipeSpeed},
		{&c.MaxSwipeDeviationRatio, raw.MaxSwipeDeviationRatio},
	}
	for _, f := range floats {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	return nil
}
