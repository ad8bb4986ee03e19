package worker

import (
	"context"
	"fmt"

	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	worker_handler "github.com/ramanchaudhary2058/sajilobackend/internal/worker/worker-handler"
)

func HandleJob(ctx context.Context, job queue.Job, workerHandler *worker_handler.WorkerHandler) error {
	switch job.Type {
	case queue.JobNotifyRoomCreated:
		return workerHandler.HandleNotifyRoomCreated(ctx, job.Payload)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}
