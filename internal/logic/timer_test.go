package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerNotBeforeDeadline(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var tm Timer

	tm.Register(now, 30*time.Second, "Entry")
	_, ok := tm.Expired(now.Add(29 * time.Second))
	assert.False(t, ok)

	ev, ok := tm.Expired(now.Add(30 * time.Second))
	assert.True(t, ok)
	assert.Equal(t, Event("Entry"), ev)

	_, ok = tm.Expired(now.Add(time.Hour))
	assert.False(t, ok, "single shot")
}

func TestTimerPendingAndCancel(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var tm Timer

	_, _, ok := tm.Pending()
	assert.False(t, ok)

	tm.Register(now, time.Minute, "Exit")
	ev, deadline, ok := tm.Pending()
	assert.True(t, ok)
	assert.Equal(t, Event("Exit"), ev)
	assert.Equal(t, now.Add(time.Minute), deadline)

	tm.Cancel()
	_, ok = tm.Expired(now.Add(2 * time.Minute))
	assert.False(t, ok)
}

func TestEventStackIsLIFO(t *testing.T) {
	s := newEventStack(3)
	assert.NoError(t, s.push("a"))
	assert.NoError(t, s.push("b"))
	assert.NoError(t, s.push("c"))
	assert.Error(t, s.push("d"), "bounded")

	var got []Event
	for {
		ev, ok := s.pop()
		if !ok {
			break
		}
		got = append(got, ev)
	}
	assert.Equal(t, []Event{"c", "b", "a"}, got)
	assert.Equal(t, 0, s.len())
}

func TestCommandEvent(t *testing.T) {
	cmds := DefaultCommands()
	assert.Len(t, cmds, 4)
	assert.Equal(t, Event("CmdDayArm"), cmds[0].Event())
	assert.Equal(t, 'i', cmds[3].Key)
}

func TestVerdict(t *testing.T) {
	assert.False(t, VerdictClear.Suppressed())
	assert.False(t, VerdictRaised.Suppressed())
	assert.True(t, VerdictAutoDisabled.Suppressed())
	assert.True(t, VerdictUserDisabled.Suppressed())
	assert.Equal(t, "user-disabled", VerdictUserDisabled.String())
}
