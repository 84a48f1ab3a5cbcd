// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package queue

import (
	"time"
)

// Line is the waiting-line state of one service point.
// It holds no I/O; Store loads it from a stand row and writes it back.
type Line struct {
	Capacity       int
	Waiting        int
	Arrivals       int
	Served         int
	ServiceSeconds float64
	Servers        int
	LastServedAt   time.Time
}

// Interval is the time between two people leaving the line.
func (l *Line) Interval() time.Duration {
	servers := l.Servers
	if servers < 1 {
		servers = 1
	}
	return time.Duration(l.ServiceSeconds / float64(servers) * float64(time.Second))
}

// Decay serves everyone whose turn has elapsed by now and returns how many
// left the line. Partial progress towards the next person is kept by moving
// the clock forward in whole intervals only.
func (l *Line) Decay(now time.Time) int {
	if !now.After(l.LastServedAt) {
		return 0
	}
	if l.Waiting == 0 {
		// An idle counter accrues no credit
		l.LastServedAt = now
		return 0
	}

	iv := l.Interval()
	if iv <= 0 {
		k := l.Waiting
		l.Waiting = 0
		l.Served += k
		l.LastServedAt = now
		return k
	}

	steps := int(now.Sub(l.LastServedAt) / iv)
	if steps == 0 {
		return 0
	}
	if steps >= l.Waiting {
		k := l.Waiting
		l.Waiting = 0
		l.Served += k
		l.LastServedAt = now
		return k
	}

	l.Waiting -= steps
	l.Served += steps
	l.LastServedAt = l.LastServedAt.Add(time.Duration(steps) * iv)
	return steps
}

// Admit adds n arrivals to the line and returns the first ticket issued.
func (l *Line) Admit(n int, now time.Time) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidCount
	}
	if l.Waiting+n > l.Capacity {
		return 0, ErrQueueFull
	}
	if l.Waiting == 0 {
		// Service of the first arrival starts now
		l.LastServedAt = now
	}
	first := l.Arrivals + 1
	l.Arrivals += n
	l.Waiting += n
	return first, nil
}

// Serve removes up to n people from the head of the line by hand and
// restarts the clock for whoever is next.
func (l *Line) Serve(n int, now time.Time) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidCount
	}
	k := n
	if k > l.Waiting {
		k = l.Waiting
	}
	l.Waiting -= k
	l.Served += k
	l.LastServedAt = now
	return k, nil
}

// Remove takes one waiting person out of the line without serving them.
// ahead is how many people stood in front of them; when it is zero the
// next person starts being served at now.
func (l *Line) Remove(ahead int, now time.Time) {
	if l.Waiting == 0 {
		return
	}
	l.Waiting--
	if ahead == 0 {
		l.LastServedAt = now
	}
}

// Wait is how long a newcomer arriving now waits before reaching the counter.
func (l *Line) Wait(now time.Time) time.Duration {
	return l.WaitAt(now, now)
}

// WaitAt projects the line forward to at and returns the wait of someone
// joining at that moment. Times before now are treated as now.
func (l *Line) WaitAt(now, at time.Time) time.Duration {
	if at.Before(now) {
		at = now
	}
	p := *l
	p.Decay(at)
	return p.waitBehind(p.Waiting, at)
}

// TicketWait is the remaining wait of a person with ahead people in front.
func (l *Line) TicketWait(ahead int, now time.Time) time.Duration {
	p := *l
	p.Decay(now)
	return p.waitBehind(ahead, now)
}

func (l *Line) waitBehind(ahead int, at time.Time) time.Duration {
	if ahead <= 0 || l.Waiting == 0 {
		return 0
	}
	progress := at.Sub(l.LastServedAt)
	if progress < 0 {
		progress = 0
	}
	wait := time.Duration(ahead)*l.Interval() - progress
	if wait < 0 {
		return 0
	}
	return wait
}
