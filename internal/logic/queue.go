package logic

import "fmt"

// eventStack is the pending queue. It is last-in-first-out: sensors raised on
// the same scan come back last-scanned-returned-first.
type eventStack struct {
	items []Event
	limit int
}

func newEventStack(limit int) *eventStack {
	return &eventStack{items: make([]Event, 0, limit), limit: limit}
}

func (s *eventStack) push(ev Event) error {
	if len(s.items) >= s.limit {
		return fmt.Errorf("logic: pending queue full (%d events)", s.limit)
	}
	s.items = append(s.items, ev)
	return nil
}

func (s *eventStack) pop() (Event, bool) {
	n := len(s.items)
	if n == 0 {
		return "", false
	}
	ev := s.items[n-1]
	s.items = s.items[:n-1]
	return ev, true
}

func (s *eventStack) len() int {
	return len(s.items)
}
