package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/repairpos/internal/rates"
	"github.com/angelmondragon/repairpos/pkg/config"
	"github.com/angelmondragon/repairpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubRateSource struct {
	current rates.Rate
	syncErr error
	manual  []decimal.Decimal
}

func (s *stubRateSource) Current() rates.Rate { return s.current }

func (s *stubRateSource) SetManual(_ context.Context, value decimal.Decimal) (rates.Rate, error) {
	s.manual = append(s.manual, value)
	s.current = rates.Rate{Value: value, Provenance: enums.RateProvenanceManual, UpdatedAt: time.Now()}
	return s.current, nil
}

func (s *stubRateSource) Sync(context.Context) (rates.Rate, error) {
	return s.current, s.syncErr
}

type warningEnvelope struct {
	Data    rateResponse `json:"data"`
	Warning string       `json:"warning"`
}

func TestHealthReadyReportsRedisFailure(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") })

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, ok, down).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"redis":"unreachable"`) {
		t.Fatalf("expected redis check detail, got %s", resp.Body.String())
	}
	if resp.Header().Get(envHeader) != "test" {
		t.Fatalf("missing env header")
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, ok, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without redis, got %d", resp.Code)
	}
}

func TestRatesSyncWarnings(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		warning string
	}{
		{name: "ok"},
		{name: "unconfigured", err: pkgerrors.New(pkgerrors.CodeDependency, "no rate authority configured"), warning: "no rate authority configured"},
		{name: "upstream", err: pkgerrors.New(pkgerrors.CodeUpstream, "status 500"), warning: "rate authority returned an invalid response"},
		{name: "untyped", err: errors.New("boom"), warning: "rate authority unreachable"},
		{name: "detached", err: fmt.Errorf("%w: %w", rates.ErrSyncDetached, context.Canceled), warning: "rate sync still in progress"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubRateSource{
				current: rates.Rate{Value: decimal.RequireFromString("36.5"), Provenance: enums.RateProvenanceManual},
				syncErr: tt.err,
			}
			resp := httptest.NewRecorder()
			RatesSync(src, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/rates/sync", nil))
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", resp.Code)
			}
			var env warningEnvelope
			if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Warning != tt.warning {
				t.Fatalf("expected warning %q got %q", tt.warning, env.Warning)
			}
			if env.Data.Rate != "36.5" {
				t.Fatalf("expected retained rate, got %s", env.Data.Rate)
			}
		})
	}
}

func TestRatesSetManualRejectsNonPositive(t *testing.T) {
	src := &stubRateSource{current: rates.Rate{Value: decimal.NewFromInt(40)}}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/rates", strings.NewReader(`{"rate":"0"}`))
	RatesSetManual(src, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if len(src.manual) != 0 {
		t.Fatalf("source should not be touched")
	}

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/v1/rates", strings.NewReader(`{"rate":"41.25"}`))
	RatesSetManual(src, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(src.manual) != 1 || !src.manual[0].Equal(decimal.RequireFromString("41.25")) {
		t.Fatalf("unexpected manual calls %v", src.manual)
	}
}
