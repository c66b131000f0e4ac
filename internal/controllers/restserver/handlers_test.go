package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chrissnell/evapo/internal/etservice"
	"github.com/chrissnell/evapo/internal/metrics"
	"github.com/chrissnell/evapo/internal/storage/results"
	"github.com/chrissnell/evapo/internal/types"
	"github.com/chrissnell/evapo/pkg/config"
	"github.com/chrissnell/evapo/pkg/responseformat"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

type stationReadings []types.Reading

func (s stationReadings) Readings(_ context.Context, _ string, from, to time.Time) ([]types.Reading, error) {
	var out []types.Reading
	for _, r := range s {
		if !r.Timestamp.Before(from) && r.Timestamp.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func week() stationReadings {
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	var rs stationReadings
	for h := 0; h < 24*7; h++ {
		hour := h % 24
		rs = append(rs, types.Reading{
			Timestamp:   start.Add(time.Duration(h) * time.Hour),
			StationName: "davis1",
			OutTemp:     float32(58 + hour),
			OutHumidity: float32(85 - 2*hour),
			WindSpeed:   6,
			SolarWatts:  280,
		})
	}
	return rs
}

func newTestController(t *testing.T) (*Controller, *metrics.Metrics) {
	t.Helper()

	store, err := results.New(context.Background(), filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("results.New: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := &config.ConfigData{Sites: []config.SiteData{{
		Name:        "orchard",
		StationName: "davis1",
		Latitude:    45,
		Elevation:   100,
		WindHeight:  2,
		Method:      "fao56",
	}}}

	logger := zap.NewNop().Sugar()
	m := metrics.New()
	svc := etservice.New(cfg, week(), store, m, logger)

	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, config.RESTServerData{}, svc, m, logger)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl, m
}

func serve(ctrl *Controller, method, target string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctrl.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestNewControllerDefaults(t *testing.T) {
	ctrl, _ := newTestController(t)
	if ctrl.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("addr = %s", ctrl.Server.Addr)
	}
	if _, err := NewController(context.Background(), &sync.WaitGroup{}, config.RESTServerData{}, nil, nil, zap.NewNop().Sugar()); err == nil {
		t.Error("expected an error without a service")
	}
}

func TestEvaluateMethod(t *testing.T) {
	ctrl, _ := newTestController(t)

	body := []byte(`{
		"latitude": 50.8, "elevation": 100, "dates": ["2019-07-06"],
		"tmax": [21.5], "tmin": [12.3], "wind": [2.078],
		"rh_max": [84], "rh_min": [63], "sunshine": [9.25]
	}`)

	rec := serve(ctrl, http.MethodPost, "/api/v1/et/fao56", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res etservice.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Method != "fao56" || len(res.ET) != 1 || res.ET[0] == nil || *res.ET[0] < 3.8 || *res.ET[0] > 4.0 {
		t.Errorf("result = %+v", res)
	}

	rec = serve(ctrl, http.MethodPost, "/api/v1/et/fao56?format=msgpack", body)
	if ct := rec.Header().Get("Content-Type"); ct != responseformat.ContentTypeMsgPack {
		t.Fatalf("content type = %s", ct)
	}
	dec := msgpack.NewDecoder(rec.Body)
	dec.SetCustomStructTag("json")
	res = etservice.Result{}
	if err := dec.Decode(&res); err != nil || len(res.ET) != 1 {
		t.Errorf("msgpack result = %+v, %v", res, err)
	}
}

func TestEvaluateMethodErrors(t *testing.T) {
	ctrl, _ := newTestController(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
		kind   string
	}{
		{
			name:   "unknown method",
			target: "/api/v1/et/hargreaves",
			body:   `{}`,
			status: http.StatusNotFound,
		},
		{
			name:   "malformed body",
			target: "/api/v1/et/penman",
			body:   `{"tmax": "hot"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing solar",
			target: "/api/v1/et/makkink",
			body:   `{"latitude": 45, "dates": ["2024-07-01"], "tmax": [30], "tmin": [15]}`,
			status: http.StatusUnprocessableEntity,
			kind:   "missing_input",
		},
		{
			name:   "shape mismatch",
			target: "/api/v1/et/makkink",
			body:   `{"latitude": 45, "dates": ["2024-07-01"], "tmax": [30, 31], "tmin": [15], "solar": [20]}`,
			status: http.StatusBadRequest,
			kind:   "shape_mismatch",
		},
		{
			name:   "zero wind",
			target: "/api/v1/et/pm1965",
			body: `{"latitude": 45, "dates": ["2024-07-01"], "tmax": [30], "tmin": [15], "wind": [0],
				"rh_mean": [50], "solar": [20]}`,
			status: http.StatusUnprocessableEntity,
			kind:   "domain",
		},
		{
			name:   "bad date",
			target: "/api/v1/et/makkink",
			body:   `{"latitude": 45, "dates": ["July 1"], "tmax": [30], "tmin": [15], "solar": [20]}`,
			status: http.StatusBadRequest,
			kind:   "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(ctrl, http.MethodPost, tt.target, []byte(tt.body))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.status, rec.Body.String())
			}
			var body responseformat.ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error == "" || body.Kind != tt.kind {
				t.Errorf("error body = %+v, want kind %q", body, tt.kind)
			}
		})
	}
}

func TestComputeAndQuerySite(t *testing.T) {
	ctrl, m := newTestController(t)

	rec := serve(ctrl, http.MethodPost, "/api/v1/sites/orchard/et?from=2024-07-01&to=2024-07-04", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("compute status = %d, body %s", rec.Code, rec.Body.String())
	}
	var run RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.Method != "fao56" || len(run.ET) != 3 || run.Dates[0] != "2024-07-01" {
		t.Fatalf("run = %+v", run)
	}

	rec = serve(ctrl, http.MethodPost, "/api/v1/sites/orchard/et?from=2024-07-01&to=2024-07-03&method=makkink", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("makkink status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = serve(ctrl, http.MethodGet, "/api/v1/runs/"+run.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("run status = %d", rec.Code)
	}
	var stored RunResponse
	json.Unmarshal(rec.Body.Bytes(), &stored)
	if stored.ID != run.ID || len(stored.ET) != 3 {
		t.Errorf("stored run = %+v", stored)
	}

	rec = serve(ctrl, http.MethodGet, "/api/v1/sites/orchard/et?from=2024-07-01&to=2024-07-08", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("results status = %d", rec.Code)
	}
	var res SiteResults
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Methods["fao56"]) != 3 || len(res.Methods["makkink"]) != 2 {
		t.Errorf("results = %+v", res.Methods)
	}

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("/api/v1/sites/{site}/et", "201")); got != 2 {
		t.Errorf("request metric = %v, want 2", got)
	}
}

func TestSiteErrors(t *testing.T) {
	ctrl, _ := newTestController(t)

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"unknown site", http.MethodPost, "/api/v1/sites/vineyard/et?from=2024-07-01&to=2024-07-02", http.StatusNotFound},
		{"reversed range", http.MethodPost, "/api/v1/sites/orchard/et?from=2024-07-05&to=2024-07-02", http.StatusBadRequest},
		{"bad date", http.MethodGet, "/api/v1/sites/orchard/et?from=yesterday", http.StatusBadRequest},
		{"no readings", http.MethodPost, "/api/v1/sites/orchard/et?from=2023-01-01&to=2023-01-05", http.StatusUnprocessableEntity},
		{"bad run id", http.MethodGet, "/api/v1/runs/not-a-uuid", http.StatusBadRequest},
		{"unknown run", http.MethodGet, "/api/v1/runs/6f1c2a4e-1111-4a7b-9c55-1c2d3e4f5a6b", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(ctrl, tt.method, tt.target, nil)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestUnconfiguredBackends(t *testing.T) {
	cfg := &config.ConfigData{Sites: []config.SiteData{{Name: "orchard", StationName: "davis1", Latitude: 45, Method: "fao56"}}}
	logger := zap.NewNop().Sugar()
	m := metrics.New()

	tests := []struct {
		name   string
		svc    *etservice.Service
		method string
		target string
		status int
	}{
		{"stored results without a store", etservice.New(cfg, week(), nil, m, logger), http.MethodGet, "/api/v1/sites/orchard/et?from=2024-07-01&to=2024-07-03", http.StatusServiceUnavailable},
		{"run without a store", etservice.New(cfg, week(), nil, m, logger), http.MethodGet, "/api/v1/runs/6f1c2a4e-1111-4a7b-9c55-1c2d3e4f5a6b", http.StatusServiceUnavailable},
		{"compute without a database", etservice.New(cfg, nil, nil, m, logger), http.MethodPost, "/api/v1/sites/orchard/et?from=2024-07-01&to=2024-07-03", http.StatusServiceUnavailable},
		{"compute without a store", etservice.New(cfg, week(), nil, m, logger), http.MethodPost, "/api/v1/sites/orchard/et?from=2024-07-01&to=2024-07-03", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, config.RESTServerData{}, tt.svc, m, logger)
			if err != nil {
				t.Fatalf("NewController: %v", err)
			}

			rec := serve(ctrl, tt.method, tt.target, nil)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusServiceUnavailable {
				return
			}
			var body responseformat.ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Kind != "unavailable" {
				t.Errorf("kind = %q, want unavailable", body.Kind)
			}
		})
	}
}

func TestListingsAndMetrics(t *testing.T) {
	ctrl, _ := newTestController(t)

	rec := serve(ctrl, http.MethodGet, "/api/v1/methods", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "priestley_taylor") {
		t.Errorf("methods = %d %s", rec.Code, rec.Body.String())
	}

	rec = serve(ctrl, http.MethodGet, "/api/v1/sites", nil)
	var sites []SiteInfo
	json.Unmarshal(rec.Body.Bytes(), &sites)
	if len(sites) != 1 || sites[0].Name != "orchard" || sites[0].Station != "davis1" {
		t.Errorf("sites = %+v", sites)
	}

	rec = serve(ctrl, http.MethodOptions, "/api/v1/et/fao56", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight = %d %v", rec.Code, rec.Header())
	}

	rec = serve(ctrl, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "evapo_http_requests_total") {
		t.Errorf("metrics = %d", rec.Code)
	}
}
