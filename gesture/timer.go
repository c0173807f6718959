// SPDX-License-Identifier: Unlicense OR MIT

package gesture

import (
	"sync"
	"time"
)

// systemTimer is a Timer backed by the runtime clock. The callback
// runs on its own goroutine.
type systemTimer struct {
	mu      sync.Mutex
	t       *time.Timer
	running bool
}

// NewSystemTimer returns a Timer driven by time.AfterFunc.
func NewSystemTimer() Timer {
	return &systemTimer{}
}

func (s *systemTimer) Start(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
	}
	s.running = true
	s.t = time.AfterFunc(d, func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		f()
	})
}

func (s *systemTimer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Stop()
	}
	s.running = false
}

func (s *systemTimer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
