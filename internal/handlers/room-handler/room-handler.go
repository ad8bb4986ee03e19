package room_handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/ramanchaudhary2058/sajilobackend/internal/dtos"
	"github.com/ramanchaudhary2058/sajilobackend/internal/dtos/room_dto"
	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
	"github.com/ramanchaudhary2058/sajilobackend/internal/handlers"
	room_service "github.com/ramanchaudhary2058/sajilobackend/internal/use-case/room-case"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type RoomHandler struct {
	State    *state.AppState
	Validate *validator.Validate
	Service  room_service.RoomServiceContract
}

func NewRoomHandler(state *state.AppState) *RoomHandler {
	return &RoomHandler{
		State:    state,
		Validate: room_dto.NewValidator(),
		Service:  room_service.NewRoomService(state),
	}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req room_dto.CreateRoomRequest
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	if err := h.Validate.Struct(req); err != nil {
		return validationError(err)
	}

	resp, err := h.Service.CreateRoom(r.Context(), req)
	if err != nil {
		return err
	}

	handlers.WriteJSON(w, http.StatusCreated, handlers.CreateResponse("Room created successfully", *resp, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	query, appErr := parseListQuery(r)
	if appErr != nil {
		return appErr
	}

	if err := h.Validate.Struct(query); err != nil {
		return validationError(err)
	}

	resp, appErr := h.Service.ListRooms(r.Context(), query)
	if appErr != nil {
		return appErr
	}

	pagination := dtos.Pagination{
		Total: resp.Total,
		Page:  resp.Page,
		Limit: resp.Limit,
		Pages: resp.Pages,
	}
	handlers.WriteJSON(w, http.StatusOK, handlers.CreatePaginatedResponse("Rooms fetched successfully", resp.Rooms, pagination, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) GetRoomByID(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	id, appErr := parseRoomID(r)
	if appErr != nil {
		return appErr
	}

	room, appErr := h.Service.GetRoomByID(r.Context(), id)
	if appErr != nil {
		return appErr
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("Room fetched successfully", *room, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	defer r.Body.Close()

	id, appErr := parseRoomID(r)
	if appErr != nil {
		return appErr
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}

	req, appErr := room_dto.ParseUpdateRoomRequest(raw)
	if appErr != nil {
		return appErr
	}

	room, appErr := h.Service.UpdateRoom(r.Context(), id, *req)
	if appErr != nil {
		return appErr
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse("Room updated successfully", *room, handlers.RequestID(r)))
	return nil
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	id, appErr := parseRoomID(r)
	if appErr != nil {
		return appErr
	}

	if appErr := h.Service.DeleteRoom(r.Context(), id); appErr != nil {
		return appErr
	}

	handlers.WriteJSON(w, http.StatusOK, handlers.CreateResponse[any]("Room deleted successfully", nil, handlers.RequestID(r)))
	return nil
}

// parseRoomID rejects ids that are not numbers. A negative number is a valid id that no room can have.
func parseRoomID(r *http.Request) (uint64, *app_error.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, app_error.BadRequest("Invalid room ID", "id")
	}
	if id < 0 {
		return 0, app_error.NotFound("Room not found", "room-id")
	}
	return uint64(id), nil
}

func parseListQuery(r *http.Request) (room_dto.ListRoomsQuery, *app_error.AppError) {
	values := r.URL.Query()
	query := room_dto.ListRoomsQuery{
		Page:     room_service.DefaultPage,
		Limit:    room_service.DefaultLimit,
		Search:   strings.TrimSpace(values.Get("search")),
		Location: strings.TrimSpace(values.Get("location")),
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return query, app_error.BadRequest("page must be a positive integer", "page")
		}
		query.Page = page
	}

	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, app_error.BadRequest("limit must be a positive integer", "limit")
		}
		query.Limit = limit
	}

	if raw := strings.TrimSpace(values.Get("price")); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return query, app_error.BadRequest("price must be a number", "price")
		}
		query.PriceMax = &price
	}

	return query, nil
}

// validationError turns validator failures into a 400. Missing required fields are reported together.
func validationError(err error) *app_error.AppError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return app_error.BadRequest(fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	missing := make([]string, 0)
	for _, fe := range fieldErrs {
		// list elements such as imgUrls[0] are invalid values, not missing fields
		if fe.Tag() == "required" && !strings.Contains(fe.Field(), "[") && !slices.Contains(missing, fe.Field()) {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return app_error.NewMissingFieldsError(missing)
	}

	fe := fieldErrs[0]
	return app_error.BadRequest(fmt.Sprintf("Invalid field %s: failed on %s", fe.Field(), fe.Tag()), fe.Field())
}
