package room_dto

import (
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	"github.com/shopspring/decimal"
)

func init() {
	// prices are rendered as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type CreateRoomResponse struct {
	RoomID uint64 `json:"roomId"`
}

type RoomResponse struct {
	ID           uint64          `json:"id"`
	Title        string          `json:"title"`
	HostelName   string          `json:"hostelName"`
	ImgURLs      []string        `json:"imgUrls"`
	Location     string          `json:"location"`
	Price        decimal.Decimal `json:"price"`
	Frequency    string          `json:"frequency"`
	PeopleNumber int             `json:"peopleNumber"`
	TotalBed     int             `json:"totalBed"`
	Email        string          `json:"email"`
	Contact      string          `json:"contact"`
	OwnerEmail   string          `json:"ownerEmail"`
	OwnerID      *int64          `json:"ownerId"`
	IsAvailable  bool            `json:"isAvailable"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func FromEntity(room *entity.Room) RoomResponse {
	urls := []string(room.ImgURLs)
	if urls == nil {
		urls = []string{}
	}

	return RoomResponse{
		ID:           room.ID,
		Title:        room.Title,
		HostelName:   room.HostelName,
		ImgURLs:      urls,
		Location:     room.Location,
		Price:        room.Price,
		Frequency:    room.Frequency,
		PeopleNumber: room.PeopleNumber,
		TotalBed:     room.TotalBed,
		Email:        room.Email,
		Contact:      room.Contact,
		OwnerEmail:   room.OwnerEmail,
		OwnerID:      room.OwnerID,
		IsAvailable:  room.IsAvailable,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}

func FromEntities(rooms []entity.Room) []RoomResponse {
	resp := make([]RoomResponse, 0, len(rooms))
	for i := range rooms {
		resp = append(resp, FromEntity(&rooms[i]))
	}
	return resp
}

type ListRoomsResponse struct {
	Rooms []RoomResponse
	Total int64
	Page  int
	Limit int
	Pages int
}
