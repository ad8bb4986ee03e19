package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	worker_handler "github.com/ramanchaudhary2058/sajilobackend/internal/worker/worker-handler"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []*gomail.Message
	err    error
	onSend func()
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeStore struct {
	mu        sync.Mutex
	jobs      []entity.DeadJob
	err       error
	onArchive func()
}

func (f *fakeStore) Archive(ctx context.Context, job entity.DeadJob) error {
	if f.onArchive != nil {
		f.onArchive()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeStore) Stats(ctx context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return map[string]int64{"pending": int64(len(f.jobs))}, nil
}

func newTestPool(t *testing.T, mailer *fakeMailer, store DeadLetterStore) (*WorkerPool, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	pool := NewWorkerPool(rdb, 2, worker_handler.NewWorkerHandler(mailer, "no-reply@sajilo.local"), store)
	pool.PollInterval = 10 * time.Millisecond
	return pool, rdb
}

func roomCreatedJob(retry, maxRetry int) queue.Job {
	job := queue.NewJob(queue.JobNotifyRoomCreated, queue.RoomCreatedPayload{
		RoomID:     11,
		Title:      "Cozy Room",
		HostelName: "Sunrise",
		Location:   "Campus",
		OwnerEmail: "owner@x.com",
		CreatedAt:  time.Now(),
	}, maxRetry, time.Hour)
	job.Retry = retry
	return job
}

func encode(t *testing.T, job queue.Job) string {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return string(b)
}

func TestProcessJob_SendsMail(t *testing.T) {
	mailer := &fakeMailer{}
	pool, rdb := newTestPool(t, mailer, nil)

	pool.processJob(context.Background(), encode(t, roomCreatedJob(0, 3)))

	require.Equal(t, 1, mailer.count())
	assert.Equal(t, []string{"owner@x.com"}, mailer.sent[0].GetHeader("To"))

	queued, err := rdb.ZCard(context.Background(), queue.PriorityQueueKey).Result()
	require.NoError(t, err)
	assert.Zero(t, queued)
}

func TestProcessJob_RetriesWithBackoff(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	pool, rdb := newTestPool(t, mailer, nil)
	ctx := context.Background()

	before := time.Now().Unix()
	pool.processJob(ctx, encode(t, roomCreatedJob(0, 3)))

	members, err := rdb.ZRangeWithScores(ctx, queue.PriorityQueueKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)

	var retried queue.Job
	require.NoError(t, json.Unmarshal([]byte(members[0].Member.(string)), &retried))
	assert.Equal(t, 1, retried.Retry)
	assert.Contains(t, retried.ErrorMsg, "smtp down")
	// first retry waits RetryBase * 2
	assert.GreaterOrEqual(t, members[0].Score, float64(before+10))

	dead, err := rdb.LLen(ctx, queue.DeadLetterKey).Result()
	require.NoError(t, err)
	assert.Zero(t, dead)
}

func TestProcessJob_ExhaustedJobGoesToDLQ(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp down")}
	pool, rdb := newTestPool(t, mailer, nil)
	ctx := context.Background()

	pool.processJob(ctx, encode(t, roomCreatedJob(2, 3)))

	dead, err := rdb.LRange(ctx, queue.DeadLetterKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, dead, 1)

	var job queue.Job
	require.NoError(t, json.Unmarshal([]byte(dead[0]), &job))
	assert.Equal(t, 3, job.Retry)

	queued, err := rdb.ZCard(ctx, queue.PriorityQueueKey).Result()
	require.NoError(t, err)
	assert.Zero(t, queued)
}

func TestProcessJob_UnknownTypeIsRetried(t *testing.T) {
	pool, rdb := newTestPool(t, &fakeMailer{}, nil)
	job := roomCreatedJob(0, 3)
	job.Type = "mystery"

	pool.processJob(context.Background(), encode(t, job))

	queued, err := rdb.ZCard(context.Background(), queue.PriorityQueueKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), queued)
}

func TestWorkerPool_ConsumesDueJobs(t *testing.T) {
	mailer := &fakeMailer{}
	pool, rdb := newTestPool(t, mailer, nil)
	ctx, cancel := context.WithCancel(context.Background())

	producer := queue.NewProducer(rdb)
	require.NoError(t, producer.Enqueue(ctx, roomCreatedJob(0, 3)))

	future := roomCreatedJob(0, 3)
	future.RunAt = time.Now().Add(time.Hour).Unix()
	require.NoError(t, producer.Enqueue(ctx, future))

	pool.Start(ctx)

	assert.Eventually(t, func() bool { return mailer.count() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	pool.Wait()

	queued, err := rdb.ZCard(context.Background(), queue.PriorityQueueKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), queued, "future job stays queued")
}

func TestArchiveNext_StoresDeadJob(t *testing.T) {
	store := &fakeStore{}
	pool, rdb := newTestPool(t, &fakeMailer{}, store)
	ctx := context.Background()

	job := roomCreatedJob(3, 3)
	job.ErrorMsg = "smtp down"
	require.NoError(t, rdb.RPush(ctx, queue.DeadLetterKey, encode(t, job)).Err())

	require.NoError(t, pool.archiveNext(ctx, time.Second))

	require.Len(t, store.jobs, 1)
	archived := store.jobs[0]
	assert.Equal(t, job.ID, archived.JobID)
	assert.Equal(t, "pending", archived.Status)
	assert.Equal(t, 3, archived.RetryCount)
	assert.Equal(t, "smtp down", archived.ErrorMsg)
	assert.WithinDuration(t, archived.CreatedAt.Add(deadJobTTL), archived.ExpireAt, time.Second)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["pending"])
}

func TestArchiveNext_StoreFailurePutsJobBack(t *testing.T) {
	store := &fakeStore{err: errors.New("mongo down")}
	pool, rdb := newTestPool(t, &fakeMailer{}, store)
	ctx := context.Background()

	require.NoError(t, rdb.RPush(ctx, queue.DeadLetterKey, encode(t, roomCreatedJob(3, 3))).Err())

	err := pool.archiveNext(ctx, time.Second)

	assert.Error(t, err)
	remaining, lerr := rdb.LLen(ctx, queue.DeadLetterKey).Result()
	require.NoError(t, lerr)
	assert.Equal(t, int64(1), remaining)
}

func queuedJobs(t *testing.T, rdb *redis.Client) []queue.Job {
	t.Helper()
	members, err := rdb.ZRange(context.Background(), queue.PriorityQueueKey, 0, -1).Result()
	require.NoError(t, err)

	jobs := make([]queue.Job, 0, len(members))
	for _, member := range members {
		var job queue.Job
		require.NoError(t, json.Unmarshal([]byte(member), &job))
		jobs = append(jobs, job)
	}
	return jobs
}

func TestWorkerPool_ShutdownRequeuesBufferedJobs(t *testing.T) {
	mailer := &fakeMailer{}
	pool, rdb := newTestPool(t, mailer, nil)

	// claimed from redis but not yet picked up by a worker
	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		job := roomCreatedJob(1, 3)
		ids[job.ID] = true
		pool.JobChannel <- encode(t, job)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pool.Start(ctx)
	pool.Wait()

	jobs := queuedJobs(t, rdb)
	require.Len(t, jobs, 3)
	for _, job := range jobs {
		assert.True(t, ids[job.ID])
		assert.Equal(t, 1, job.Retry, "a job that never ran keeps its retry count")
	}
	assert.Zero(t, mailer.count())
}

func TestProcessJob_CancelledBeforeRunIsRequeued(t *testing.T) {
	mailer := &fakeMailer{}
	pool, rdb := newTestPool(t, mailer, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := roomCreatedJob(0, 3)
	pool.processJob(ctx, encode(t, job))

	jobs := queuedJobs(t, rdb)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
	assert.Zero(t, jobs[0].Retry)
	assert.Zero(t, mailer.count())
}

func TestProcessJob_InterruptedByShutdownIsRequeued(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mailer := &fakeMailer{err: context.Canceled, onSend: cancel}
	pool, rdb := newTestPool(t, mailer, nil)

	job := roomCreatedJob(2, 3)
	pool.processJob(ctx, encode(t, job))

	jobs := queuedJobs(t, rdb)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0].ID)
	assert.Equal(t, 2, jobs[0].Retry, "shutdown does not use up a retry")

	dead, err := rdb.LLen(context.Background(), queue.DeadLetterKey).Result()
	require.NoError(t, err)
	assert.Zero(t, dead)
}

func TestArchiveNext_LogsWhenPushBackFails(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	// the archive fails and redis goes away before the job can be pushed back
	store := &fakeStore{err: errors.New("mongo down"), onArchive: mr.Close}
	pool := NewWorkerPool(rdb, 1, worker_handler.NewWorkerHandler(&fakeMailer{}, "no-reply@sajilo.local"), store)

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	job := roomCreatedJob(3, 3)
	require.NoError(t, rdb.RPush(context.Background(), queue.DeadLetterKey, encode(t, job)).Err())

	err := pool.archiveNext(context.Background(), time.Second)

	require.Error(t, err)
	assert.Contains(t, buf.String(), "dead job lost")
	assert.Contains(t, buf.String(), job.ID)
}
