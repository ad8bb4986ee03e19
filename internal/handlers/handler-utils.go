package handlers

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/ramanchaudhary2058/sajilobackend/internal/dtos"
	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
	"github.com/ramanchaudhary2058/sajilobackend/internal/middleware"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request) *app_error.AppError

func WrapHandler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			reqID := RequestID(r)
			event := log.Warn()
			if err.Code >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.Err(err).Str("field", err.Field).Msg(fmt.Sprintf("error occur, request id: %s", reqID))

			WriteJSON(w, err.Code, dtos.Response[any]{
				Message: "Error occur",
				Errors: &dtos.ErrorResponse{
					Code:          err.Code,
					Field:         err.Field,
					Message:       err.Message,
					MissingFields: err.Fields,
				},
				Data:      nil,
				RequestID: reqID,
			})
		}
	}
}

func RequestID(r *http.Request) string {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		return "unknown"
	}
	return reqID
}

func CreateResponse[T any](message string, data T, requestId string) dtos.Response[T] {
	return dtos.Response[T]{
		Message:   message,
		Data:      data,
		RequestID: requestId,
	}
}

func CreatePaginatedResponse[T any](message string, data T, pagination dtos.Pagination, requestId string) dtos.Response[T] {
	resp := CreateResponse(message, data, requestId)
	resp.Pagination = &pagination
	return resp
}
