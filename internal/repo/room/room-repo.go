package room_repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type RoomRepo struct {
	AppState *state.AppState
}

func NewRoomRepo(appState *state.AppState) RoomRepoContract {
	return &RoomRepo{
		AppState: appState,
	}
}

// applyFilter adds the list predicates. Every predicate is parameterized and they are ANDed together.
func applyFilter(query *gorm.DB, filter entity.RoomFilter) *gorm.DB {
	if filter.PriceMax != nil && filter.PriceMax.IsPositive() {
		query = query.Where("price <= ?", *filter.PriceMax)
	}

	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("LOWER(location) LIKE ?", likePattern(location))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where("(LOWER(hostel_name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(owner_email) LIKE ?)", pattern, pattern, pattern)
	}

	return query
}

func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

func (r *RoomRepo) SaveRoom(ctx context.Context, room *entity.Room) *app_error.AppError {
	if err := r.AppState.DB.WithContext(ctx).Create(room).Error; err != nil {
		log.Error().Err(err).Msg("failed to insert room")
		return app_error.Internal("unexpected error occur when trying to create room", "db-create")
	}

	return nil
}

func (r *RoomRepo) CountRooms(ctx context.Context, filter entity.RoomFilter) (int64, *app_error.AppError) {
	var count int64

	query := applyFilter(r.AppState.DB.WithContext(ctx).Model(&entity.Room{}), filter)
	if err := query.Count(&count).Error; err != nil {
		log.Error().Err(err).Msg("failed to count rooms")
		return 0, app_error.Internal("unexpected server error", "db-count")
	}

	return count, nil
}

func (r *RoomRepo) FindRooms(ctx context.Context, filter entity.RoomFilter) ([]entity.Room, *app_error.AppError) {
	rooms := make([]entity.Room, 0, filter.Limit)

	query := applyFilter(r.AppState.DB.WithContext(ctx).Model(&entity.Room{}), filter).
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset)

	if err := query.Find(&rooms).Error; err != nil {
		log.Error().Err(err).Msg("failed to list rooms")
		return nil, app_error.Internal("unexpected error occur when fetch rooms", "db-error")
	}

	return rooms, nil
}

func (r *RoomRepo) FindRoomByID(ctx context.Context, id uint64) (*entity.Room, *app_error.AppError) {
	var room entity.Room

	if err := r.AppState.DB.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NotFound("Room not found", "room-id")
		}
		log.Error().Err(err).Uint64("room_id", id).Msg("failed to fetch room")
		return nil, app_error.Internal("unexpected error occur when fetch room", "db-error")
	}

	return &room, nil
}

func (r *RoomRepo) RoomExists(ctx context.Context, id uint64) (bool, *app_error.AppError) {
	var count int64

	if err := r.AppState.DB.WithContext(ctx).Model(&entity.Room{}).Where("id = ?", id).Count(&count).Error; err != nil {
		log.Error().Err(err).Uint64("room_id", id).Msg("failed to check room")
		return false, app_error.Internal("unexpected error occur when fetch room", "db-error")
	}

	return count > 0, nil
}

// UpdateRoomStatus only flips availability; updated_at is left as is.
func (r *RoomRepo) UpdateRoomStatus(ctx context.Context, id uint64, available bool) (int64, *app_error.AppError) {
	result := r.AppState.DB.WithContext(ctx).
		Model(&entity.Room{}).
		Where("id = ?", id).
		UpdateColumn("is_available", available)

	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("room_id", id).Msg("failed to update room status")
		return 0, app_error.Internal("unexpected error occured when updating room", "db-update")
	}

	return result.RowsAffected, nil
}

// UpdateRoom replaces every editable column. A nil available keeps the stored flag.
func (r *RoomRepo) UpdateRoom(ctx context.Context, id uint64, room entity.Room, available *bool) (int64, *app_error.AppError) {
	imgURLs := room.ImgURLs
	if imgURLs == nil {
		imgURLs = entity.ImageURLs{}
	}

	updates := map[string]any{
		"title":         room.Title,
		"hostel_name":   room.HostelName,
		"img_urls":      imgURLs,
		"location":      room.Location,
		"price":         room.Price,
		"frequency":     room.Frequency,
		"people_number": room.PeopleNumber,
		"total_bed":     room.TotalBed,
		"email":         room.Email,
		"contact":       room.Contact,
		"owner_email":   room.OwnerEmail,
		"updated_at":    time.Now(),
	}
	if available != nil {
		updates["is_available"] = *available
	}

	result := r.AppState.DB.WithContext(ctx).
		Model(&entity.Room{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("room_id", id).Msg("failed to update room")
		return 0, app_error.Internal("unexpected error occured when updating room", "db-update")
	}

	return result.RowsAffected, nil
}

func (r *RoomRepo) DeleteRoom(ctx context.Context, id uint64) (int64, *app_error.AppError) {
	result := r.AppState.DB.WithContext(ctx).Where("id = ?", id).Delete(&entity.Room{})
	if result.Error != nil {
		log.Error().Err(result.Error).Uint64("room_id", id).Msg("failed to delete room")
		return 0, app_error.Internal("unexpected error occured when deleting room", "db-delete")
	}

	return result.RowsAffected, nil
}
