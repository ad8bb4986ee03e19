package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const deadJobTTL = 7 * 24 * time.Hour

func (wp *WorkerPool) StartDLQWorker(ctx context.Context) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()

		log.Info().Msg("DLQ worker started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("DLQ worker stopping")
				return
			default:
				if err := wp.archiveNext(ctx, 10*time.Second); err != nil && ctx.Err() == nil {
					log.Error().Err(err).Msg("DLQWorker failed")
					wp.sleep(ctx)
				}
			}
		}
	}()
}

// archiveNext waits up to timeout for one dead job and stores it. Jobs that cannot be stored go back to the list.
func (wp *WorkerPool) archiveNext(ctx context.Context, timeout time.Duration) error {
	result, err := wp.Redis.BLPop(ctx, timeout, queue.DeadLetterKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	} else if err != nil {
		return err
	}

	payload := result[1]
	var job queue.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		log.Warn().Err(err).Msg("DLQWorker invalid job payload")
		return nil
	}

	log.Error().
		Str("job_id", job.ID).
		Str("type", job.Type).
		Str("error", job.ErrorMsg).
		Msg("DLQ Job detected")

	if wp.DeadLetters == nil {
		return nil
	}

	now := time.Now().UTC()
	deadJob := entity.DeadJob{
		JobID:      job.ID,
		Type:       job.Type,
		Payload:    job.Payload,
		ErrorMsg:   job.ErrorMsg,
		Status:     "pending",
		RetryCount: job.Retry,
		CreatedAt:  now,
		ExpireAt:   now.Add(deadJobTTL),
	}
	if err := wp.DeadLetters.Archive(ctx, deadJob); err != nil {
		// fallback: put back to Redis DLQ
		pushCtx, cancel := context.WithTimeout(context.Background(), shutdownWriteTimeout)
		defer cancel()
		if pushErr := wp.Redis.RPush(pushCtx, queue.DeadLetterKey, payload).Err(); pushErr != nil {
			log.Error().
				Err(pushErr).
				Str("job_id", job.ID).
				Str("type", job.Type).
				Str("payload", payload).
				Msg("dead job lost: archive and DLQ push-back both failed")
		}
		return err
	}

	log.Info().Str("job_id", job.ID).Msg("DLQ job archived")
	return nil
}
