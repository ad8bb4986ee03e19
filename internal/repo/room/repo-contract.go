package room_repo

import (
	"context"

	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
)

type RoomRepoContract interface {
	SaveRoom(ctx context.Context, room *entity.Room) *app_error.AppError
	CountRooms(ctx context.Context, filter entity.RoomFilter) (int64, *app_error.AppError)
	FindRooms(ctx context.Context, filter entity.RoomFilter) ([]entity.Room, *app_error.AppError)
	FindRoomByID(ctx context.Context, id uint64) (*entity.Room, *app_error.AppError)
	RoomExists(ctx context.Context, id uint64) (bool, *app_error.AppError)
	UpdateRoomStatus(ctx context.Context, id uint64, available bool) (int64, *app_error.AppError)
	UpdateRoom(ctx context.Context, id uint64, room entity.Room, available *bool) (int64, *app_error.AppError)
	DeleteRoom(ctx context.Context, id uint64) (int64, *app_error.AppError)
}
