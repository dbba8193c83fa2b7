package controllers

import (
	"context"
	"net/http"

	"github.com/scrapmandi/scrapmandi-backend/api/responses"
	"github.com/scrapmandi/scrapmandi-backend/pkg/config"
	pkgerrors "github.com/scrapmandi/scrapmandi-backend/pkg/errors"
	"github.com/scrapmandi/scrapmandi-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ScrapMandi-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both backing stores answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ScrapMandi-Env", cfg.App.Env)

		checks := map[string]string{}
		healthy := true

		checks["db"] = "ok"
		if db == nil {
			checks["db"] = "not configured"
			healthy = false
		} else if err := db.Ping(r.Context()); err != nil {
			checks["db"] = err.Error()
			healthy = false
		}

		checks["redis"] = "ok"
		if cache == nil {
			checks["redis"] = "not configured"
			healthy = false
		} else if err := cache.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "backing store unavailable").WithDetails(checks)
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
