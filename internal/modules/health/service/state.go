package service

import (
	"sync/atomic"
	"time"
)

// State - то, что отдаём в /readyz и /healthz. Методы безопасны на nil.
type State struct {
	ready     atomic.Bool
	startedAt time.Time

	monitors       atomic.Int64
	feedsConnected atomic.Int64
	lastCandleUnix atomic.Int64 // unix seconds
}

func NewState() *State {
	s := &State{startedAt: time.Now()}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) {
	if s == nil {
		return
	}
	s.ready.Store(v)
}

func (s *State) Ready() bool {
	if s == nil {
		return false
	}
	return s.ready.Load()
}

func (s *State) SetMonitors(n int) {
	if s == nil {
		return
	}
	s.monitors.Store(int64(n))
}

func (s *State) Monitors() int {
	if s == nil {
		return 0
	}
	return int(s.monitors.Load())
}

// FeedConnected: +1 на CONNECTED, -1 при выходе из него.
func (s *State) FeedConnected(delta int64) {
	if s == nil {
		return
	}
	s.feedsConnected.Add(delta)
}

func (s *State) FeedsConnected() int {
	if s == nil {
		return 0
	}
	return int(s.feedsConnected.Load())
}

func (s *State) TouchCandle(t time.Time) {
	if s == nil {
		return
	}
	s.lastCandleUnix.Store(t.Unix())
}

func (s *State) LastCandle() time.Time {
	if s == nil {
		return time.Time{}
	}
	u := s.lastCandleUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration {
	if s == nil {
		return 0
	}
	return time.Since(s.startedAt)
}
