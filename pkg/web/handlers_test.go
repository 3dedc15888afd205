package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/platewatch/go-platewatch/pkg/capture"
	"github.com/platewatch/go-platewatch/pkg/plates"
)

func newTestServer(t *testing.T, backend capture.Backend) *Server {
	t.Helper()

	session := capture.NewSession(capture.DefaultConfig(), backend,
		capture.ConsumerFuncs{}, nil)
	t.Cleanup(session.Stop)

	return NewServer(":0", session, backend, plates.NewRegistry(), plates.NewZone(), nil)
}

func getJSON(t *testing.T, s *Server, method, target, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	out := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
	}
	return resp.StatusCode, out
}

func TestHandleDevices(t *testing.T) {
	backend := capture.NewMockBackend(nil, capture.WithDevices(0, 2))
	s := newTestServer(t, backend)

	code, body := getJSON(t, s, "GET", "/api/devices", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}

	devices, ok := body["devices"].([]any)
	if !ok || len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %v", body["devices"])
	}
	if devices[0].(float64) != 0 || devices[1].(float64) != 2 {
		t.Errorf("expected [0 2], got %v", devices)
	}
}

func TestSessionStartStopHandlers(t *testing.T) {
	backend := capture.NewMockBackend(nil,
		capture.WithDevices(0),
		capture.WithReadDelay(time.Millisecond),
	)
	s := newTestServer(t, backend)

	code, body := getJSON(t, s, "POST", "/api/session/start",
		`{"source":"0","width":640,"height":480,"fps":15}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d (%v)", code, body)
	}
	if body["state"] != "running" {
		t.Errorf("expected running, got %v", body["state"])
	}

	code, body = getJSON(t, s, "GET", "/api/status", "")
	if code != 200 {
		t.Fatalf("status failed: %d", code)
	}
	if body["source"] != "device:0" {
		t.Errorf("expected source device:0, got %v", body["source"])
	}

	code, body = getJSON(t, s, "POST", "/api/session/stop", "")
	if code != 200 || body["state"] != "idle" {
		t.Errorf("expected idle after stop, got %d %v", code, body)
	}

	// Stop again: idempotent.
	code, _ = getJSON(t, s, "POST", "/api/session/stop", "")
	if code != 200 {
		t.Errorf("second stop should succeed, got %d", code)
	}
}

func TestSessionStartOpenFailure(t *testing.T) {
	backend := capture.NewMockBackend(nil, capture.WithDevices())
	s := newTestServer(t, backend)

	code, body := getJSON(t, s, "POST", "/api/session/start", `{"source":"0"}`)
	if code != 502 {
		t.Fatalf("expected 502, got %d (%v)", code, body)
	}
	if body["error"] == nil {
		t.Error("expected error message in body")
	}

	code, body = getJSON(t, s, "GET", "/api/status", "")
	if code != 200 {
		t.Fatalf("status failed: %d", code)
	}
	stats := body["stats"].(map[string]any)
	if stats["state"] != "idle" {
		t.Errorf("expected idle after failed start, got %v", stats["state"])
	}
}

func TestPlatesFilterHandler(t *testing.T) {
	backend := capture.NewMockBackend(nil)
	s := newTestServer(t, backend)

	now := time.Now()
	s.registry.Observe("ABC-123", 0.9, "cam0", now)
	s.registry.Observe("XYZ-789", 0.8, "cam0", now.Add(time.Second))

	code, body := getJSON(t, s, "GET", "/api/plates?filter=abc", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	records := body["plates"].([]any)
	if len(records) != 1 {
		t.Fatalf("expected 1 match, got %d", len(records))
	}
	rec := records[0].(map[string]any)
	if rec["plate"] != "ABC-123" {
		t.Errorf("expected ABC-123, got %v", rec["plate"])
	}

	code, body = getJSON(t, s, "GET", "/api/plates", "")
	if code != 200 || len(body["plates"].([]any)) != 2 {
		t.Errorf("unfiltered query should return 2 records")
	}
}

func TestWatchlistHandlers(t *testing.T) {
	backend := capture.NewMockBackend(nil)
	s := newTestServer(t, backend)

	code, body := getJSON(t, s, "POST", "/api/watchlist/abc-123", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	list := body["watchlist"].([]any)
	if len(list) != 1 || list[0] != "ABC-123" {
		t.Fatalf("expected [ABC-123], got %v", list)
	}

	code, body = getJSON(t, s, "DELETE", "/api/watchlist/abc-123", "")
	if code != 200 || len(body["watchlist"].([]any)) != 0 {
		t.Errorf("expected empty watchlist, got %v", body["watchlist"])
	}
}

func TestZoneHandlers(t *testing.T) {
	backend := capture.NewMockBackend(nil)
	s := newTestServer(t, backend)

	code, _ := getJSON(t, s, "POST", "/api/zone",
		`{"points":[{"x":0,"y":0},{"x":1,"y":0},{"x":1,"y":1}]}`)
	if code != 400 {
		t.Fatalf("three points should be rejected, got %d", code)
	}

	code, _ = getJSON(t, s, "POST", "/api/zone",
		`{"points":[{"x":0,"y":0},{"x":100,"y":0},{"x":100,"y":100},{"x":0,"y":100}]}`)
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}

	code, body := getJSON(t, s, "GET", "/api/zone", "")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["configured"] != true {
		t.Error("zone should be configured")
	}
	if pts := body["points"].([]any); len(pts) != 4 {
		t.Errorf("expected 4 points, got %d", len(pts))
	}
}
