package restserver

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/chrissnell/greenhouse/internal/simulation"
	"github.com/chrissnell/greenhouse/pkg/config"
	"github.com/chrissnell/greenhouse/pkg/growth"
	"github.com/chrissnell/greenhouse/pkg/responseformat"
)

func newTestController(t *testing.T, cors bool) (*Controller, http.Handler) {
	t.Helper()

	session := simulation.NewSession(simulation.Config{
		Months:       2,
		Duration:     time.Minute,
		TickInterval: 10 * time.Millisecond,
	}, simulation.WithRand(rand.New(rand.NewSource(3))))
	runner := simulation.NewRunner(session, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		runner.Reset()
	})

	ctrl, err := NewController(ctx, &sync.WaitGroup{}, config.ServerData{
		ListenAddr: "127.0.0.1",
		HTTPPort:   0,
		EnableCORS: cors,
	}, runner, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl, ctrl.Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestNewControllerDefaults(t *testing.T) {
	session := simulation.NewSession(simulation.Config{})
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, config.ServerData{}, simulation.NewRunner(session, nil), zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	if ctrl.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("Addr = %q, expected 0.0.0.0:8080", ctrl.Server.Addr)
	}

	if _, err := NewController(context.Background(), &sync.WaitGroup{}, config.ServerData{}, nil, zap.NewNop().Sugar()); err == nil {
		t.Error("nil runner did not return an error")
	}
}

func TestGetFrameIdle(t *testing.T) {
	_, h := newTestController(t, false)

	rec := do(t, h, http.MethodGet, "/api/frame", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != responseformat.ContentTypeJSON {
		t.Errorf("Content-Type = %q", ct)
	}

	var frame simulation.Frame
	decode(t, rec, &frame)
	if frame.State != "idle" || frame.Phase != simulation.PhaseIdle || frame.Progress != 0 {
		t.Errorf("idle frame = %+v", frame)
	}
	if len(frame.Greenhouses) != 2 || frame.Greenhouses[0].Name != "A" || frame.Greenhouses[1].Name != "B" {
		t.Errorf("greenhouses = %+v", frame.Greenhouses)
	}
	if frame.TotalWeeks != 8 {
		t.Errorf("total weeks %d, expected 8", frame.TotalWeeks)
	}
}

func TestGetFrameMsgPack(t *testing.T) {
	_, h := newTestController(t, false)

	rec := do(t, h, http.MethodGet, "/api/frame?format=msgpack", "")
	if ct := rec.Header().Get("Content-Type"); ct != responseformat.ContentTypeMsgPack {
		t.Fatalf("Content-Type = %q", ct)
	}

	var frame map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &frame); err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	if frame["state"] != "idle" {
		t.Errorf("state = %v", frame["state"])
	}
}

func TestStartAndReset(t *testing.T) {
	_, h := newTestController(t, false)

	var first StartResponse
	decode(t, do(t, h, http.MethodPost, "/api/start", ""), &first)
	if !first.Started || first.Frame.State != "running" || first.Frame.RunID == "" {
		t.Errorf("first start = %+v", first)
	}

	var second StartResponse
	decode(t, do(t, h, http.MethodPost, "/api/start", ""), &second)
	if second.Started {
		t.Error("second start while running reported started")
	}
	if second.Frame.RunID != first.Frame.RunID {
		t.Errorf("run ID changed from %q to %q", first.Frame.RunID, second.Frame.RunID)
	}

	var reset simulation.Frame
	decode(t, do(t, h, http.MethodPost, "/api/reset", ""), &reset)
	if reset.State != "idle" || reset.RunID != "" || reset.Progress != 0 {
		t.Errorf("reset frame = %+v", reset)
	}

	if rec := do(t, h, http.MethodGet, "/api/start", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/start status %d, expected 405", rec.Code)
	}
}

func TestUpdateControls(t *testing.T) {
	ctrl, h := newTestController(t, false)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		want       growth.Inputs
	}{
		{
			name:       "partial update",
			target:     "/api/greenhouses/B/controls",
			body:       `{"lights": 2}`,
			wantStatus: http.StatusOK,
			want:       growth.Inputs{Temperature: 18, Lights: 2, CO2: 0},
		},
		{
			name:       "clamped",
			target:     "/api/greenhouses/A/controls",
			body:       `{"temperature": 50, "co2": -4}`,
			wantStatus: http.StatusOK,
			want:       growth.Inputs{Temperature: 35, Lights: 1, CO2: 0},
		},
		{
			name:       "unknown greenhouse",
			target:     "/api/greenhouses/Z/controls",
			body:       `{"lights": 1}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad body",
			target:     "/api/greenhouses/A/controls",
			body:       `{"lights": "lots"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status %d, expected %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				var body responseformat.ErrorBody
				decode(t, rec, &body)
				if body.Error == "" {
					t.Error("error body has no message")
				}
				return
			}

			var got growth.Inputs
			decode(t, rec, &got)
			if got != tt.want {
				t.Errorf("response = %+v, expected %+v", got, tt.want)
			}
		})
	}

	controls, _ := ctrl.runner.Session().Controls("A")
	if in := controls.Inputs(); in.Temperature != 35 {
		t.Errorf("live controls not updated: %+v", in)
	}
}

func TestGetGreenhouses(t *testing.T) {
	_, h := newTestController(t, false)

	var infos []GreenhouseInfo
	decode(t, do(t, h, http.MethodGet, "/api/greenhouses", ""), &infos)

	if len(infos) != 2 {
		t.Fatalf("%d greenhouses, expected 2", len(infos))
	}
	a := infos[0]
	if a.Name != "A" || a.Controls != (growth.Inputs{Temperature: 22, Lights: 1, CO2: 1}) {
		t.Errorf("greenhouse A = %+v", a)
	}
	if a.Soil < growth.MinSoil || a.Soil >= growth.MaxSoil {
		t.Errorf("soil %v out of range", a.Soil)
	}
}

func TestServeIndex(t *testing.T) {
	_, h := newTestController(t, false)

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "/api/frame") || !strings.Contains(body, "2 month season") {
		t.Error("index page missing poll target or season length")
	}
}

func TestGetVersion(t *testing.T) {
	_, h := newTestController(t, false)

	var v VersionResponse
	decode(t, do(t, h, http.MethodGet, "/api/version", ""), &v)
	if v.Version == "" {
		t.Error("empty version")
	}
}

func TestCORS(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		_, h := newTestController(t, enabled)

		req := httptest.NewRequest(http.MethodGet, "/api/frame", nil)
		req.Header.Set("Origin", "http://example.com")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get("Access-Control-Allow-Origin")
		if enabled && got == "" {
			t.Error("CORS enabled but no Access-Control-Allow-Origin header")
		}
		if !enabled && got != "" {
			t.Errorf("CORS disabled but Access-Control-Allow-Origin = %q", got)
		}
	}
}

func TestMetrics(t *testing.T) {
	_, h := newTestController(t, false)

	do(t, h, http.MethodPost, "/api/start", "")
	do(t, h, http.MethodGet, "/api/frame", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()

	for _, want := range []string{
		"greenhouse_runs_started_total 1",
		`greenhouse_run_progress{state="running"}`,
		`greenhouse_accumulated_growth{greenhouse="A"}`,
		`greenhouse_http_requests_total{route="/api/start",status="200"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
	if strings.Contains(body, "greenhouse_harvest_mass_grams") {
		t.Error("harvest mass reported before the reveal")
	}
}
