package room_service

import (
	"context"

	"github.com/ramanchaudhary2058/sajilobackend/internal/dtos/room_dto"
	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
)

type RoomServiceContract interface {
	CreateRoom(ctx context.Context, req room_dto.CreateRoomRequest) (*room_dto.CreateRoomResponse, *app_error.AppError)
	ListRooms(ctx context.Context, query room_dto.ListRoomsQuery) (*room_dto.ListRoomsResponse, *app_error.AppError)
	GetRoomByID(ctx context.Context, id uint64) (*room_dto.RoomResponse, *app_error.AppError)
	UpdateRoom(ctx context.Context, id uint64, req room_dto.UpdateRoomRequest) (*room_dto.RoomResponse, *app_error.AppError)
	DeleteRoom(ctx context.Context, id uint64) *app_error.AppError
}
