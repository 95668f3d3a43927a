package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/keepsake-app/keepsake-backend/api/responses"
	pkgerrors "github.com/keepsake-app/keepsake-backend/pkg/errors"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(context.Context) error
}

// ReadinessCheck names one dependency checked by /health/ready.
type ReadinessCheck struct {
	Name   string
	Pinger Pinger
}

func HealthLive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency in order and reports the first failure.
// Checks with a nil Pinger are skipped.
func HealthReady(logg *logger.Logger, checks ...ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for _, check := range checks {
			if check.Pinger == nil {
				continue
			}
			if err := check.Pinger.Ping(ctx); err != nil {
				readyErr := pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.Name+" unavailable").
					WithDetails(map[string]string{"dependency": check.Name})
				responses.WriteError(r.Context(), logg, w, readyErr)
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
