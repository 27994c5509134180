package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/repairpos/api/responses"
	"github.com/angelmondragon/repairpos/pkg/config"
	pkgerrors "github.com/angelmondragon/repairpos/pkg/errors"
	"github.com/angelmondragon/repairpos/pkg/logger"
)

const (
	envHeader    = "X-RepairPOS-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. A nil redis
// pinger is reported as disabled rather than failing the probe.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "disabled"}
		failed := false

		if dbP == nil {
			checks["database"] = "missing"
			failed = true
		} else if err := dbP.Ping(ctx); err != nil {
			checks["database"] = "unreachable"
			failed = true
		}
		if redisP != nil {
			checks["redis"] = "ok"
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = "unreachable"
				failed = true
			}
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
