// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Error("missing file did not yield defaults")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gestures.yaml")
	data := "long_press_time: 2s\nmax_touch_move_for_click: 40\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LongPressTime != 2*time.Second {
		t.Errorf("LongPressTime = %v, want 2s", cfg.LongPressTime)
	}
	if cfg.MaxTouchMoveForClick != 40 {
		t.Errorf("MaxTouchMoveForClick = %g, want 40", cfg.MaxTouchMoveForClick)
	}
	// Unset keys keep their defaults.
	if cfg.MinFlickSpeed != DefaultConfig().MinFlickSpeed {
		t.Errorf("MinFlickSpeed = %g, want default", cfg.MinFlickSpeed)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gestures.yaml")
	if err := os.WriteFile(path, []byte(":\n bad"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed config did not error")
	}
}
