package playback

import (
	"errors"
	"fmt"
	"sync"
)

// Switchboard routes playback between the two mutually exclusive backends.
// Exactly one backend is current at any time.
type Switchboard struct {
	mu      sync.Mutex
	local   Driver
	cast    Driver
	active  string
	started bool
}

// NewSwitchboard creates a switchboard with the local backend current.
func NewSwitchboard(local Driver, cast Driver) (*Switchboard, error) {
	if local == nil || cast == nil {
		return nil, errors.New("both backends required")
	}
	return &Switchboard{local: local, cast: cast, active: BackendLocal}, nil
}

// Active returns the current backend.
func (s *Switchboard) Active() Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driver(s.active)
}

// ActiveName returns the current backend's name.
func (s *Switchboard) ActiveName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Drivers returns both backends in local, cast order.
func (s *Switchboard) Drivers() (Driver, Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.local, s.cast
}

// Started reports whether playback has been started on the current backend.
func (s *Switchboard) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// MarkStarted records whether playback has been started on the current
// backend. Replaced wholesale on every queue preparation.
func (s *Switchboard) MarkStarted(started bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = started
}

// Switch makes name the current backend. Switching a backend to itself is
// a no-op. Otherwise the previous backend is hard-stopped; when it was
// mid-playback with a non-empty capture, the same queue is reloaded on the
// new backend at the previous index, restarting from position zero.
// Position-preserving handoff is deliberately not implemented: the restart
// is explicit and reported to the caller, never silent.
func (s *Switchboard) Switch(name string, queue *Queue) (restarted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.driver(name)
	if next == nil {
		return false, fmt.Errorf("unknown backend %q", name)
	}
	if name == s.active {
		return false, nil
	}

	previous := s.driver(s.active)
	wasPlaying := s.started
	if _, _, ok := previous.Position(); !ok {
		wasPlaying = false
	}
	_ = previous.Stop()
	s.active = name
	s.started = false

	urls := queue.URLs()
	if !wasPlaying || len(urls) == 0 {
		return false, nil
	}

	if err := next.Load(urls, queue.Index()); err != nil {
		return false, fmt.Errorf("reload on %s: %w", name, err)
	}
	if err := next.Play(); err != nil {
		return false, fmt.Errorf("restart on %s: %w", name, err)
	}
	s.started = true
	return true, nil
}

func (s *Switchboard) driver(name string) Driver {
	switch name {
	case BackendLocal:
		return s.local
	case BackendCast:
		return s.cast
	default:
		return nil
	}
}
