package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/alarmd/internal/logic"
)

var _ logic.Recorder = (*Metrics)(nil)

func TestCounters(t *testing.T) {
	m := New()

	m.Event(logic.EventActiveSensor)
	m.Event(logic.EventActiveSensor)
	m.Event("CmdDisarm")
	m.Suppressed("Kitchen", logic.VerdictAutoDisabled)
	m.FaultCount("Kitchen", 4)
	m.FaultCount("Kitchen", 0)
	m.Tick()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("ActiveSensor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("CmdDisarm")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.suppressed.WithLabelValues("Kitchen", "auto-disabled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.faults.WithLabelValues("Kitchen")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Event(logic.EventDelayedSensor)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `alarmd_events_total{event="DelayedSensor"} 1`)
}
