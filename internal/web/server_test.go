package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/alarmd/internal/logic"
	"github.com/sweeney/alarmd/internal/marker"
	"github.com/sweeney/alarmd/internal/registry"
	"github.com/sweeney/alarmd/internal/status"
)

func newTestServer(t *testing.T, metrics http.Handler) (*httptest.Server, *status.Tracker) {
	t.Helper()
	srv, tr := newServer(t, metrics, marker.NewMemory())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func newServer(t *testing.T, metrics http.Handler, cmds marker.Store) (*Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		TickMs:      1000,
		HeartbeatMs: 900000,
		Broker:      "tcp://192.168.1.200:1883",
		HTTPAddr:    ":80",
		Backend:     "port",
		MarkerStore: "dir",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, metrics, Commands{Store: cmds, List: logic.DefaultCommands()})
	return srv, tr
}

func loadRegistry(t *testing.T, tr *status.Tracker) {
	t.Helper()
	reg, err := registry.New([]registry.Spec{
		{Name: "Entrance", Function: registry.Sensor, Active: true, Mode: registry.Active, Address: registry.Address{Pin: 1}},
		{Name: "Kitchen", Function: registry.Sensor, Active: true, Mode: registry.Delayed, Address: registry.Address{Pin: 2}},
		{Name: "Siren", Function: registry.Relay, Address: registry.Address{Pin: 3}},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	reg.Sensors()[0].Value = true
	reg.Relays()[0].Value = true
	tr.UpdateRegistry(reg, 1)
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	loadRegistry(t, tr)
	tr.RecordEvent("ActiveSensor", time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC))
	tr.SetMQTTConnected(true)

	resp, body := get(t, ts.URL+"/index.json")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.Unmarshal([]byte(body), &sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if !sj.Status.Ready {
		t.Error("expected Ready=true")
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if len(sj.Status.Sensors) != 2 {
		t.Fatalf("sensors: got %d, want 2", len(sj.Status.Sensors))
	}
	if sj.Status.Sensors[0].Name != "Entrance" || sj.Status.Sensors[0].Value != 1 {
		t.Errorf("sensor[0]: got %+v, want Entrance=1", sj.Status.Sensors[0])
	}
	if sj.Status.Counts["ActiveSensor"] != 1 {
		t.Errorf("Counts[ActiveSensor]: got %d, want 1", sj.Status.Counts["ActiveSensor"])
	}
	if sj.Status.LastEvent == nil || sj.Status.LastEvent.Event != "ActiveSensor" {
		t.Errorf("LastEvent: got %+v", sj.Status.LastEvent)
	}
	if sj.Status.Pending != 1 {
		t.Errorf("Pending: got %d, want 1", sj.Status.Pending)
	}
	if sj.Status.Config.Backend != "port" {
		t.Errorf("Config.Backend: got %q, want port", sj.Status.Config.Backend)
	}
}

func TestSensorEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	loadRegistry(t, tr)

	tests := []struct {
		name string
		want int
	}{
		{"Entrance", 1},
		{"Kitchen", 0},
	}
	for _, tt := range tests {
		resp, body := get(t, ts.URL+"/sensor/"+tt.name)
		if resp.StatusCode != 200 {
			t.Errorf("%s status: got %d, want 200", tt.name, resp.StatusCode)
			continue
		}
		var sj SensorJSON
		if err := json.Unmarshal([]byte(body), &sj); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if sj.Value != tt.want {
			t.Errorf("%s value: got %d, want %d", tt.name, sj.Value, tt.want)
		}
	}
}

func TestSensorEndpointUnknown(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	loadRegistry(t, tr)

	resp, body := get(t, ts.URL+"/sensor/Garage")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "unknown sensor Garage") {
		t.Errorf("body: got %q", body)
	}
}

func TestSensorEndpointRelayNotExposed(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	loadRegistry(t, tr)

	resp, _ := get(t, ts.URL+"/sensor/Siren")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestHTMLEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	loadRegistry(t, tr)
	tr.RecordEvent("CmdDisarm", time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC))

	for _, path := range []string{"/", "/index.html"} {
		resp, body := get(t, ts.URL+path)
		if resp.StatusCode != 200 {
			t.Errorf("%s status: got %d, want 200", path, resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s Content-Type: got %q", path, ct)
		}
		for _, want := range []string{"Entrance", "Kitchen", "Siren", "CmdDisarm", "delayed", "1000ms"} {
			if !strings.Contains(body, want) {
				t.Errorf("%s: body missing %q", path, want)
			}
		}
	}
}

func TestHTMLBeforeFirstScan(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	_, body := get(t, ts.URL+"/")
	if !strings.Contains(body, "waiting for first scan") {
		t.Error("expected waiting message before the first scan")
	}
}

func TestMetricsMounted(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "alarmd_loop_passes_total 7\n")
	})
	ts, _ := newTestServer(t, h)

	resp, body := get(t, ts.URL+"/metrics")
	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "alarmd_loop_passes_total 7") {
		t.Errorf("body: got %q", body)
	}
}

func TestMetricsAbsent(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, _ := get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, _ := get(t, ts.URL+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestPostNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}

func TestCommandEndpoint(t *testing.T) {
	store := marker.NewMemory()
	srv, _ := newServer(t, nil, store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	resp, body := get(t, ts.URL+"/cmd/Disarm")
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d, want 200", resp.StatusCode)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got["CmdDisarm"] != "OK" {
		t.Errorf("body: got %v, want CmdDisarm=OK", got)
	}
	if keys := store.Keys(); len(keys) != 1 || keys[0] != "Disarm" {
		t.Errorf("markers: got %v, want [Disarm]", keys)
	}
}

func TestCommandEndpointUnknown(t *testing.T) {
	store := marker.NewMemory()
	srv, _ := newServer(t, nil, store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	for _, symbol := range []string{"Panic", "disarm", "CmdDisarm"} {
		resp, body := get(t, ts.URL+"/cmd/"+symbol)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s status: got %d, want 404", symbol, resp.StatusCode)
		}
		if !strings.Contains(body, "unknown command "+symbol) {
			t.Errorf("%s body: got %q", symbol, body)
		}
	}
	if keys := store.Keys(); len(keys) != 0 {
		t.Errorf("markers: got %v, want none", keys)
	}
}

func TestCommandEndpointWithoutStore(t *testing.T) {
	srv, _ := newServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/cmd/Disarm", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestLocalOnlyRoutes(t *testing.T) {
	store := marker.NewMemory()
	srv, tr := newServer(t, nil, store)
	loadRegistry(t, tr)

	tests := []struct {
		path   string
		remote string
		want   int
	}{
		{"/cmd/Disarm", "192.0.2.1:1234", http.StatusForbidden},
		{"/sensor/Entrance", "192.0.2.1:1234", http.StatusForbidden},
		{"/sensor/Entrance", "[2001:db8::1]:1234", http.StatusForbidden},
		{"/sensor/Entrance", "127.0.0.1:1234", http.StatusOK},
		{"/sensor/Entrance", "[::1]:1234", http.StatusOK},
		{"/index.json", "192.0.2.1:1234", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.RemoteAddr = tt.remote
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s from %s: got %d, want %d", tt.path, tt.remote, rec.Code, tt.want)
		}
	}
	if keys := store.Keys(); len(keys) != 0 {
		t.Errorf("forbidden request created markers: %v", keys)
	}
}
