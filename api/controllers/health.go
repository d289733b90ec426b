package controllers

import (
	"net/http"

	"github.com/pantrykit/pantry-backend/api/responses"
	"github.com/pantrykit/pantry-backend/pkg/config"
	"github.com/pantrykit/pantry-backend/pkg/db"
	pkgerrors "github.com/pantrykit/pantry-backend/pkg/errors"
	"github.com/pantrykit/pantry-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pantry-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pantry-Env", cfg.App.Env)

		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not wired"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not ready"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
