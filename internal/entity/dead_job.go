package entity

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type DeadJob struct {
	ID         bson.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	JobID      string          `bson:"job_id" json:"job_id"`
	Type       string          `bson:"type" json:"type"`
	Payload    json.RawMessage `bson:"payload" json:"payload"`
	ErrorMsg   string          `bson:"error_msg" json:"error_msg"`
	Status     string          `bson:"status" json:"status"`
	RetryCount int             `bson:"retry_count" json:"retry_count"`
	CreatedAt  time.Time       `bson:"created_at" json:"created_at"`
	ExpireAt   time.Time       `bson:"expired_at" json:"expired_at"`
}
