package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ramanchaudhary2058/sajilobackend/internal/handlers"
	"github.com/ramanchaudhary2058/sajilobackend/internal/middleware"
	"github.com/ramanchaudhary2058/sajilobackend/internal/worker"
	"github.com/ramanchaudhary2058/sajilobackend/state"
)

func NewRouter(state *state.AppState, deadLetters worker.DeadLetterStore) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	r.Use(chi_middleware.Recoverer)
	r.Use(middleware.Metrics)

	healthHandler := handlers.NewHealthHandler(state, deadLetters)
	r.Get("/health", handlers.WrapHandler(healthHandler.Health))
	r.Handle("/metrics", promhttp.Handler())

	RoomRouter(r, state)
	return r
}
