package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestState returns an AppState backed by a private in-memory sqlite database with the rooms table migrated.
func NewTestState(t testing.TB) *state.AppState {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection would see a fresh empty database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entity.Room{}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		sqlDB.Close()
	})

	return &state.AppState{Ctx: ctx, Cancel: cancel, DB: db}
}

// NewRoom builds a valid room; CreatedAt is offset by age so list ordering is deterministic.
func NewRoom(hostel, location string, price int64, age time.Duration) *entity.Room {
	ownerID := int64(7)
	created := time.Now().Add(-age).UTC().Truncate(time.Second)
	return &entity.Room{
		Title:        "Room at " + hostel,
		HostelName:   hostel,
		ImgURLs:      entity.ImageURLs{"a.jpg", "b.jpg"},
		Location:     location,
		Price:        decimal.NewFromInt(price),
		Frequency:    "monthly",
		PeopleNumber: 2,
		TotalBed:     2,
		Email:        "a@x.com",
		Contact:      "123",
		OwnerEmail:   "owner@" + location + ".com",
		OwnerID:      &ownerID,
		IsAvailable:  true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func InsertRooms(t testing.TB, appState *state.AppState, rooms ...*entity.Room) {
	t.Helper()
	for _, room := range rooms {
		require.NoError(t, appState.DB.Create(room).Error)
	}
}
