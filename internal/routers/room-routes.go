package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/ramanchaudhary2058/sajilobackend/internal/handlers"
	room_handler "github.com/ramanchaudhary2058/sajilobackend/internal/handlers/room-handler"
	"github.com/ramanchaudhary2058/sajilobackend/state"
)

func RoomRouter(r chi.Router, state *state.AppState) {
	roomHandler := room_handler.NewRoomHandler(state)

	r.Route("/api/v1/rooms", func(r chi.Router) {
		r.Post("/", handlers.WrapHandler(roomHandler.CreateRoom))
		r.Get("/", handlers.WrapHandler(roomHandler.ListRooms))
		r.Get("/{id}", handlers.WrapHandler(roomHandler.GetRoomByID))
		r.Put("/{id}", handlers.WrapHandler(roomHandler.UpdateRoom))
		r.Patch("/{id}", handlers.WrapHandler(roomHandler.UpdateRoom))
		r.Delete("/{id}", handlers.WrapHandler(roomHandler.DeleteRoom))
	})
}
