package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	worker_handler "github.com/ramanchaudhary2058/sajilobackend/internal/worker/worker-handler"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const shutdownWriteTimeout = 5 * time.Second

type WorkerPool struct {
	Redis        *redis.Client
	WorkerNum    int
	JobChannel   chan string
	Handler      *worker_handler.WorkerHandler
	DeadLetters  DeadLetterStore
	PollInterval time.Duration
	RetryBase    time.Duration
	wg           sync.WaitGroup
}

func NewWorkerPool(redis *redis.Client, workerNum int, handler *worker_handler.WorkerHandler, deadLetters DeadLetterStore) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 1
	}
	return &WorkerPool{
		Redis:        redis,
		WorkerNum:    workerNum,
		JobChannel:   make(chan string, 100), // Buffered channel to hold jobs
		Handler:      handler,
		DeadLetters:  deadLetters,
		PollInterval: time.Second,
		RetryBase:    5 * time.Second,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	log.Info().Msgf("Starting worker pool with %d workers", wp.WorkerNum)

	for i := 0; i < wp.WorkerNum; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}

	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer wp.drain()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping worker pool")
				return
			default:
			}

			payload, err := wp.claimDueJob(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Error().Err(err).Msg("Worker: failed to pop job")
				}
				wp.sleep(ctx)
				continue
			}
			if payload == "" {
				wp.sleep(ctx)
				continue
			}

			select {
			case wp.JobChannel <- payload:
			case <-ctx.Done():
				wp.handBack(payload)
				return
			}
		}
	}()
}

// drain closes the job channel and returns every job still buffered in it to the queue.
func (wp *WorkerPool) drain() {
	close(wp.JobChannel)
	for payload := range wp.JobChannel {
		wp.handBack(payload)
	}
}

// handBack requeues a claimed job that was never run, keeping its retry count.
func (wp *WorkerPool) handBack(payload string) {
	var job queue.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		log.Warn().Err(err).Msg("Worker: dropping undecodable job on shutdown")
		return
	}
	wp.requeueDetached(job)
}

// requeueDetached writes with its own deadline, for use after the pool context is cancelled.
func (wp *WorkerPool) requeueDetached(job queue.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWriteTimeout)
	defer cancel()
	wp.requeue(ctx, job)
}

// claimDueJob removes the earliest due job from the queue. An empty payload means nothing is due.
func (wp *WorkerPool) claimDueJob(ctx context.Context) (string, error) {
	now := float64(time.Now().Unix())
	result, err := wp.Redis.ZRangeByScore(ctx, queue.PriorityQueueKey, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    fmt.Sprintf("%f", now),
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		return "", err
	}
	if len(result) == 0 {
		return "", nil
	}

	// another instance may have claimed it first
	removed, err := wp.Redis.ZRem(ctx, queue.PriorityQueueKey, result[0]).Result()
	if err != nil || removed == 0 {
		return "", err
	}
	return result[0], nil
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log.Info().Msgf("Worker %d started", id)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("Worker %d stopping", id)
			return
		case payload, ok := <-wp.JobChannel:
			if !ok {
				return
			}
			wp.processJob(ctx, payload)
		}
	}
}

func (wp *WorkerPool) processJob(ctx context.Context, payload string) {
	var job queue.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		log.Warn().Err(err).Msg("Worker: failed to unmarshal job payload")
		return
	}

	if ctx.Err() != nil {
		wp.requeueDetached(job)
		return
	}

	err := HandleJob(ctx, job, wp.Handler)
	if err == nil {
		log.Info().Str("job_id", job.ID).Str("type", job.Type).Msg("job done")
		return
	}

	// interrupted by shutdown, not a failure of the job itself
	if ctx.Err() != nil {
		log.Warn().Str("job_id", job.ID).Msg("job interrupted by shutdown, requeued")
		wp.requeueDetached(job)
		return
	}

	job.Retry++
	job.ErrorMsg = err.Error()

	now := time.Now()
	if job.Retry >= job.MaxRetry || now.Unix() > job.ExpireAt {
		log.Error().Str("job_id", job.ID).Msg("Job moved to DLQ")
		dlqBytes, _ := json.Marshal(job)
		if err := wp.Redis.RPush(ctx, queue.DeadLetterKey, dlqBytes).Err(); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to push job to DLQ")
		}

		// Dead Letter Alert
		sendDLA(job)
		return
	}

	// retry with exponential backoff
	delay := wp.RetryBase * time.Duration(1<<job.Retry)
	job.RunAt = now.Add(delay).Unix()
	wp.requeue(ctx, job)
	log.Warn().Str("job_id", job.ID).Msgf("Retrying in %v seconds (%d/%d)", delay.Seconds(), job.Retry, job.MaxRetry)
}

func (wp *WorkerPool) requeue(ctx context.Context, job queue.Job) {
	jobBytes, _ := json.Marshal(job)
	if err := wp.Redis.ZAdd(ctx, queue.PriorityQueueKey, redis.Z{
		Score:  queue.Score(job),
		Member: jobBytes,
	}).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("failed to requeue job")
	}
}

func (wp *WorkerPool) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(wp.PollInterval):
	}
}

var dlaCache = make(map[string]time.Time)
var dlaMu sync.Mutex

func sendDLA(job queue.Job) {
	dlaMu.Lock()
	defer dlaMu.Unlock()

	now := time.Now()
	lastAlert, ok := dlaCache[job.Type]
	if ok && now.Sub(lastAlert) < 10*time.Minute {
		return
	}

	log.Error().Str("job_id", job.ID).Str("type", job.Type).Str("error", job.ErrorMsg).Msg("Dead Letter Alert: Job failed permanently")

	dlaCache[job.Type] = now
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	log.Info().Msg("All workers have stopped")
}
