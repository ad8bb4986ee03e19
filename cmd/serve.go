package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/config"
	"github.com/ramanchaudhary2058/sajilobackend/internal/routers"
	"github.com/ramanchaudhary2058/sajilobackend/internal/worker"
	worker_handler "github.com/ramanchaudhary2058/sajilobackend/internal/worker/worker-handler"
	worker_service "github.com/ramanchaudhary2058/sajilobackend/internal/worker/worker-service"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := state.InitAppState(ctx, stop)
	if err != nil {
		return fmt.Errorf("failed to initialize application state: %w", err)
	}
	defer state.Close()

	var deadLetters worker.DeadLetterStore
	if state.Mongo != nil {
		deadLetters = worker.NewMongoDeadLetterStore(state.Mongo, config.Conf.DATABASE.Mongo.Database, config.Conf.DATABASE.Mongo.Collection)
	}

	var workerPool *worker.WorkerPool
	if state.Redis != nil {
		mailer := worker_service.NewSMTPMailer()
		if mailer == nil {
			log.Warn().Msg("smtp host is empty, owner notifications will be skipped")
		}
		handler := worker_handler.NewWorkerHandler(mailer, config.Conf.MAIL.From)

		workerPool = worker.NewWorkerPool(state.Redis, config.Conf.WORKER.Count, handler, deadLetters)
		workerPool.Start(ctx)
		workerPool.StartDLQWorker(ctx)
	}

	server := &http.Server{
		Addr:              config.Conf.App.Port,
		Handler:           routers.NewRouter(state, deadLetters),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// serve the application
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("Starting server on http://localhost%s", config.Conf.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			stop()
			return fmt.Errorf("ListenAndServe failed: %w", err)
		}
	}

	log.Info().Msg("Shutdown initiated...")
	// gracefully shutdown the application
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	} else {
		log.Info().Msg("Server exited gracefully.")
	}

	if workerPool != nil {
		workerPool.Wait()
	}
	return nil
}
