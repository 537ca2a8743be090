package flow

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickFunc schedules fn after d. tea.Tick is the production implementation.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

type expiredMsg struct {
	seq int
}

// Schedule is a single cancelable deadline. Arming it again, or canceling
// it, invalidates whatever tick is still on its way.
type Schedule struct {
	tick  TickFunc
	seq   int
	armed bool
}

func newSchedule(tick TickFunc) Schedule {
	if tick == nil {
		tick = tea.Tick
	}
	return Schedule{tick: tick}
}

// Arm (re)starts the deadline and returns the command that will deliver it.
func (s *Schedule) Arm(d time.Duration) tea.Cmd {
	s.seq++
	s.armed = true
	seq := s.seq
	return s.tick(d, func(time.Time) tea.Msg { return expiredMsg{seq: seq} })
}

// Cancel drops the pending deadline, if any.
func (s *Schedule) Cancel() {
	s.seq++
	s.armed = false
}

// Armed reports whether a deadline is pending.
func (s *Schedule) Armed() bool { return s.armed }

// fire reports whether msg is the current deadline, disarming it if so.
func (s *Schedule) fire(msg expiredMsg) bool {
	if !s.armed || msg.seq != s.seq {
		return false
	}
	s.armed = false
	return true
}
