package handlers

import (
	"context"
	"net/http"
	"time"

	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
	"github.com/ramanchaudhary2058/sajilobackend/internal/worker"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/rs/zerolog/log"
)

type HealthStatus struct {
	Database    string           `json:"database"`
	Redis       string           `json:"redis"`
	DeadLetters map[string]int64 `json:"dead_letters,omitempty"`
}

type HealthHandler struct {
	State       *state.AppState
	DeadLetters worker.DeadLetterStore
}

func NewHealthHandler(state *state.AppState, deadLetters worker.DeadLetterStore) *HealthHandler {
	return &HealthHandler{
		State:       state,
		DeadLetters: deadLetters,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{Database: "up", Redis: "disabled"}

	sqlDB, err := h.State.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("database ping failed")
		return app_error.NewAppError(http.StatusServiceUnavailable, "database unavailable", "database")
	}

	if h.State.Redis != nil {
		status.Redis = "up"
		if err := h.State.Redis.Ping(ctx).Err(); err != nil {
			status.Redis = "down"
		}
	}

	if h.DeadLetters != nil {
		stats, err := h.DeadLetters.Stats(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read dead letter stats")
		} else {
			status.DeadLetters = stats
		}
	}

	WriteJSON(w, http.StatusOK, CreateResponse("ok", status, RequestID(r)))
	return nil
}
