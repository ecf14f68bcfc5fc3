package logic

import "time"

// Timer holds at most one pending (deadline, event).
type Timer struct {
	deadline time.Time
	event    Event
	armed    bool
}

// Register arms the timer to fire ev once interval has passed since now.
// Any pending registration is replaced.
func (t *Timer) Register(now time.Time, interval time.Duration, ev Event) {
	t.deadline = now.Add(interval)
	t.event = ev
	t.armed = true
}

// Expired returns the event and disarms the timer if its deadline has been
// reached.
func (t *Timer) Expired(now time.Time) (Event, bool) {
	if !t.armed || now.Before(t.deadline) {
		return "", false
	}
	t.armed = false
	return t.event, true
}

// Pending returns the armed event and its deadline.
func (t *Timer) Pending() (Event, time.Time, bool) {
	return t.event, t.deadline, t.armed
}

// Cancel disarms the timer.
func (t *Timer) Cancel() {
	t.armed = false
}
