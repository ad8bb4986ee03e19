package room_service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ramanchaudhary2058/sajilobackend/config"
	"github.com/ramanchaudhary2058/sajilobackend/internal/dtos/room_dto"
	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	room_repo "github.com/ramanchaudhary2058/sajilobackend/internal/repo/room"
	"github.com/ramanchaudhary2058/sajilobackend/internal/utils"
	"github.com/ramanchaudhary2058/sajilobackend/internal/verifier"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5

	notifyMaxRetry = 5
	notifyTTL      = 24 * time.Hour
)

var roomsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rooms_created_total",
	Help: "Rooms persisted after passing verification.",
})

type RoomService struct {
	AppState *state.AppState
	RoomRepo room_repo.RoomRepoContract
	Verifier verifier.Verifier
	// nil disables owner notifications
	Producer queue.Producer
	MinScore float64
	// zero disables the read-through cache
	CacheTTL time.Duration
}

func NewRoomService(appState *state.AppState) RoomServiceContract {
	service := &RoomService{
		AppState: appState,
		RoomRepo: room_repo.NewRoomRepo(appState),
		Verifier: verifier.NewRecaptchaVerifier(
			config.Conf.RECAPTCHA.URL,
			config.Conf.RECAPTCHA.Secret,
			config.Conf.RECAPTCHA.Timeout,
		),
		MinScore: config.Conf.RECAPTCHA.MinScore,
	}

	if appState.Redis != nil {
		service.Producer = queue.NewProducer(appState.Redis)
		service.CacheTTL = config.Conf.CACHE.RoomTTL
	}

	return service
}

func roomCacheKey(id uint64) string {
	return fmt.Sprintf("room:%d", id)
}

func (s *RoomService) cacheEnabled() bool {
	return s.AppState.Redis != nil && s.CacheTTL > 0
}

func (s *RoomService) CreateRoom(ctx context.Context, req room_dto.CreateRoomRequest) (*room_dto.CreateRoomResponse, *app_error.AppError) {
	result, err := s.Verifier.Verify(ctx, req.RecaptchaToken)
	if err != nil {
		log.Error().Err(err).Msg("recaptcha verification unavailable")
		return nil, app_error.NewAppError(http.StatusBadGateway, "Unable to verify reCAPTCHA", "recaptcha")
	}
	if !result.Passed(s.MinScore) {
		log.Warn().Strs("error_codes", result.ErrorCodes).Msg("recaptcha rejected room creation")
		return nil, app_error.BadRequest("Failed reCAPTCHA verification", "recaptcha")
	}

	urls := entity.ImageURLs(req.ImgURLs)
	if urls == nil {
		urls = entity.ImageURLs{}
	}

	room := &entity.Room{
		Title:        req.Title,
		HostelName:   req.HostelName,
		ImgURLs:      urls,
		Location:     req.Location,
		Price:        req.Price,
		Frequency:    req.Frequency,
		PeopleNumber: req.PeopleNumber,
		TotalBed:     req.TotalBed,
		Email:        req.Email,
		Contact:      req.Contact,
		OwnerEmail:   req.OwnerEmail,
		OwnerID:      req.OwnerID,
		IsAvailable:  true,
	}

	if err := s.RoomRepo.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	roomsCreated.Inc()

	if s.Producer != nil {
		go s.notifyOwner(*room)
	}

	return &room_dto.CreateRoomResponse{RoomID: room.ID}, nil
}

func (s *RoomService) notifyOwner(room entity.Room) {
	job := queue.NewJob(queue.JobNotifyRoomCreated, queue.RoomCreatedPayload{
		RoomID:     room.ID,
		Title:      room.Title,
		HostelName: room.HostelName,
		Location:   room.Location,
		OwnerEmail: room.OwnerEmail,
		CreatedAt:  room.CreatedAt,
	}, notifyMaxRetry, notifyTTL)
	job.Priority = 1

	if err := s.Producer.Enqueue(s.AppState.Ctx, job); err != nil {
		log.Error().Err(err).Uint64("room_id", room.ID).Msg("Failed to enqueue job")
	}
}

func (s *RoomService) ListRooms(ctx context.Context, query room_dto.ListRoomsQuery) (*room_dto.ListRoomsResponse, *app_error.AppError) {
	page := query.Page
	if page == 0 {
		page = DefaultPage
	}
	limit := query.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	filter := entity.RoomFilter{
		Search:   query.Search,
		Location: query.Location,
		PriceMax: query.PriceMax,
		Limit:    limit,
	}

	total, err := s.RoomRepo.CountRooms(ctx, filter)
	if err != nil {
		return nil, err
	}

	rooms := make([]entity.Room, 0)
	// an offset past math.MaxInt is past every row
	if page-1 <= math.MaxInt/limit {
		filter.Offset = (page - 1) * limit
		rooms, err = s.RoomRepo.FindRooms(ctx, filter)
		if err != nil {
			return nil, err
		}
	}

	return &room_dto.ListRoomsResponse{
		Rooms: room_dto.FromEntities(rooms),
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

func (s *RoomService) GetRoomByID(ctx context.Context, id uint64) (*room_dto.RoomResponse, *app_error.AppError) {
	if s.cacheEnabled() {
		cached, err := utils.GetCacheData[room_dto.RoomResponse](ctx, s.AppState.Redis, roomCacheKey(id))
		if err != nil {
			log.Warn().Str("field", err.Field).Uint64("room_id", id).Msg(err.Message)
		} else if cached != nil {
			return cached, nil
		}
	}

	room, err := s.RoomRepo.FindRoomByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := room_dto.FromEntity(room)
	if s.cacheEnabled() {
		if err := utils.SetCacheData(ctx, s.AppState.Redis, roomCacheKey(id), &resp, s.CacheTTL); err != nil {
			log.Warn().Err(err).Uint64("room_id", id).Msg("failed to cache room")
		}
	}

	return &resp, nil
}

func (s *RoomService) UpdateRoom(ctx context.Context, id uint64, req room_dto.UpdateRoomRequest) (*room_dto.RoomResponse, *app_error.AppError) {
	exists, err := s.RoomRepo.RoomExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, app_error.NotFound("Room not found", "room-id")
	}

	var affected int64
	if req.StatusOnly {
		affected, err = s.RoomRepo.UpdateRoomStatus(ctx, id, *req.IsAvailable)
	} else {
		affected, err = s.RoomRepo.UpdateRoom(ctx, id, entity.Room{
			Title:        req.Title,
			HostelName:   req.HostelName,
			ImgURLs:      entity.ImageURLs(req.ImgURLs),
			Location:     req.Location,
			Price:        req.Price,
			Frequency:    req.Frequency,
			PeopleNumber: req.PeopleNumber,
			TotalBed:     req.TotalBed,
			Email:        req.Email,
			Contact:      req.Contact,
			OwnerEmail:   req.OwnerEmail,
		}, req.IsAvailable)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)

	// the row can vanish between the existence check and the write
	if affected == 0 {
		return nil, app_error.NotFound("Room not found or no changes made", "room-id")
	}

	room, err := s.RoomRepo.FindRoomByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := room_dto.FromEntity(room)
	return &resp, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, id uint64) *app_error.AppError {
	affected, err := s.RoomRepo.DeleteRoom(ctx, id)
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)

	if affected == 0 {
		return app_error.NotFound("Room not found", "room-id")
	}

	return nil
}

func (s *RoomService) invalidate(ctx context.Context, id uint64) {
	if s.AppState.Redis == nil {
		return
	}
	if err := utils.DeleteCacheData(ctx, s.AppState.Redis, roomCacheKey(id)); err != nil {
		log.Warn().Err(err).Uint64("room_id", id).Msg("failed to drop cached room")
	}
}
