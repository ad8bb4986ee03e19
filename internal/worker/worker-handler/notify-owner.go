package worker_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	worker_service "github.com/ramanchaudhary2058/sajilobackend/internal/worker/worker-service"
	"github.com/rs/zerolog/log"
)

func (wh *WorkerHandler) HandleNotifyRoomCreated(ctx context.Context, raw json.RawMessage) error {
	var payload queue.RoomCreatedPayload

	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid room created payload: %w", err)
	}
	if payload.OwnerEmail == "" {
		return fmt.Errorf("room %d has no owner email", payload.RoomID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if wh.Mailer == nil {
		log.Warn().Uint64("room_id", payload.RoomID).Msg("mailer not configured, skipping owner notification")
		return nil
	}

	return worker_service.SendRoomCreatedMail(wh.Mailer, wh.From, payload)
}
