package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	PriorityQueueKey = "priority_queue"
	DeadLetterKey    = "priority_queue_dlq"

	JobNotifyRoomCreated = "notify_room_created"
)

type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Priority  int             `json:"priority"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	RunAt     int64           `json:"run_at"`
	CreatedAt int64           `json:"created_at"`
	ExpireAt  int64           `json:"expired_at"`
}

// NewJob builds a job that is due immediately and expires after ttl.
func NewJob(jobType string, payload any, maxRetry int, ttl time.Duration) Job {
	now := time.Now()
	return Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Payload:   MustMarshal(payload),
		MaxRetry:  maxRetry,
		RunAt:     now.Unix(),
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(ttl).Unix(),
	}
}

func MustMarshal(payload any) json.RawMessage {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	return b
}

type RoomCreatedPayload struct {
	RoomID     uint64    `json:"room_id"`
	Title      string    `json:"title"`
	HostelName string    `json:"hostel_name"`
	Location   string    `json:"location"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
}
