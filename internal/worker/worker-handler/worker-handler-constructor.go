package worker_handler

import (
	worker_service "github.com/ramanchaudhary2058/sajilobackend/internal/worker/worker-service"
)

type WorkerHandler struct {
	Mailer worker_service.Mailer
	From   string
}

func NewWorkerHandler(mailer worker_service.Mailer, from string) *WorkerHandler {
	return &WorkerHandler{
		Mailer: mailer,
		From:   from,
	}
}
