package room_service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ramanchaudhary2058/sajilobackend/internal/dtos/room_dto"
	"github.com/ramanchaudhary2058/sajilobackend/internal/entity"
	app_error "github.com/ramanchaudhary2058/sajilobackend/internal/errors"
	"github.com/ramanchaudhary2058/sajilobackend/internal/queue"
	room_repo "github.com/ramanchaudhary2058/sajilobackend/internal/repo/room"
	"github.com/ramanchaudhary2058/sajilobackend/internal/testutil"
	"github.com/ramanchaudhary2058/sajilobackend/internal/verifier"
	"github.com/ramanchaudhary2058/sajilobackend/state"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	result *verifier.Result
	err    error
	tokens []string
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*verifier.Result, error) {
	f.tokens = append(f.tokens, token)
	return f.result, f.err
}

type fakeProducer struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (f *fakeProducer) Enqueue(ctx context.Context, job queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeProducer) snapshot() []queue.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.Job(nil), f.jobs...)
}

func score(f float64) *float64 { return &f }

func passing() *fakeVerifier {
	return &fakeVerifier{result: &verifier.Result{Success: true, Score: score(0.9)}}
}

func newService(t *testing.T, v verifier.Verifier) (*RoomService, *state.AppState) {
	t.Helper()
	appState := testutil.NewTestState(t)
	return &RoomService{
		AppState: appState,
		RoomRepo: room_repo.NewRoomRepo(appState),
		Verifier: v,
		MinScore: 0.5,
	}, appState
}

func withRedis(t *testing.T, service *RoomService) *miniredis.Miniredis {
	t.Helper()
	mockRedis := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mockRedis.Addr()})
	t.Cleanup(func() { rdb.Close() })
	service.AppState.Redis = rdb
	service.CacheTTL = time.Minute
	return mockRedis
}

func createRequest() room_dto.CreateRoomRequest {
	return room_dto.CreateRoomRequest{
		Title:          "Cozy Room",
		HostelName:     "Sunrise",
		ImgURLs:        []string{"a.jpg"},
		Location:       "Campus",
		Price:          decimal.NewFromInt(500),
		Frequency:      "monthly",
		PeopleNumber:   2,
		TotalBed:       2,
		Email:          "a@x.com",
		Contact:        "123",
		OwnerEmail:     "owner@x.com",
		RecaptchaToken: "token",
	}
}

func countRooms(t *testing.T, appState *state.AppState) int64 {
	var total int64
	require.NoError(t, appState.DB.Model(&entity.Room{}).Count(&total).Error)
	return total
}

func TestCreateRoom_PersistsAndNotifies(t *testing.T) {
	v := passing()
	service, appState := newService(t, v)
	producer := &fakeProducer{}
	service.Producer = producer

	resp, err := service.CreateRoom(context.Background(), createRequest())
	require.Nil(t, err)
	require.NotZero(t, resp.RoomID)
	assert.Equal(t, []string{"token"}, v.tokens)

	room, err := service.GetRoomByID(context.Background(), resp.RoomID)
	require.Nil(t, err)
	assert.Equal(t, "Sunrise", room.HostelName)
	assert.Equal(t, []string{"a.jpg"}, room.ImgURLs)
	assert.True(t, room.IsAvailable)
	assert.Equal(t, int64(1), countRooms(t, appState))

	assert.Eventually(t, func() bool { return len(producer.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	job := producer.snapshot()[0]
	assert.Equal(t, queue.JobNotifyRoomCreated, job.Type)
	assert.Equal(t, 5, job.MaxRetry)
}

func TestCreateRoom_VerificationGate(t *testing.T) {
	cases := map[string]struct {
		result   *verifier.Result
		err      error
		wantCode int
	}{
		"not successful":     {result: &verifier.Result{Success: false, Score: score(0.9)}, wantCode: http.StatusBadRequest},
		"score below":        {result: &verifier.Result{Success: true, Score: score(0.3)}, wantCode: http.StatusBadRequest},
		"score zero":         {result: &verifier.Result{Success: true, Score: score(0)}, wantCode: http.StatusBadRequest},
		"verifier down":      {err: errors.New("timeout"), wantCode: http.StatusBadGateway},
		"score absent":       {result: &verifier.Result{Success: true}, wantCode: http.StatusCreated},
		"score at threshold": {result: &verifier.Result{Success: true, Score: score(0.5)}, wantCode: http.StatusCreated},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			service, appState := newService(t, &fakeVerifier{result: tc.result, err: tc.err})

			resp, err := service.CreateRoom(context.Background(), createRequest())

			if tc.wantCode == http.StatusCreated {
				require.Nil(t, err)
				assert.NotZero(t, resp.RoomID)
				assert.Equal(t, int64(1), countRooms(t, appState))
				return
			}
			assert.Nil(t, resp)
			require.NotNil(t, err)
			assert.Equal(t, tc.wantCode, err.Code)
			assert.Equal(t, "recaptcha", err.Field)
			assert.Zero(t, countRooms(t, appState), "nothing is stored when verification fails")
		})
	}
}

func TestListRooms_DefaultsAndPagination(t *testing.T) {
	service, appState := newService(t, passing())
	for i := 0; i < 7; i++ {
		testutil.InsertRooms(t, appState, testutil.NewRoom("Hostel", "Campus", 100, time.Duration(i)*time.Hour))
	}

	resp, err := service.ListRooms(context.Background(), room_dto.ListRoomsQuery{})
	require.Nil(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, int64(7), resp.Total)
	assert.Equal(t, 2, resp.Pages)
	assert.Len(t, resp.Rooms, 5)

	resp, err = service.ListRooms(context.Background(), room_dto.ListRoomsQuery{Page: 2, Limit: 5})
	require.Nil(t, err)
	assert.Len(t, resp.Rooms, 2)
	for _, room := range resp.Rooms {
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, room.ImgURLs)
	}

	resp, err = service.ListRooms(context.Background(), room_dto.ListRoomsQuery{Page: 9, Limit: 5})
	require.Nil(t, err)
	assert.Empty(t, resp.Rooms)
	assert.Equal(t, int64(7), resp.Total)
}

func TestListRooms_PageBeyondAddressableOffset(t *testing.T) {
	service, appState := newService(t, passing())
	for i := 0; i < 7; i++ {
		testutil.InsertRooms(t, appState, testutil.NewRoom("Hostel", "Campus", 100, time.Duration(i)*time.Hour))
	}

	// (page-1)*limit does not fit in an int
	page := math.MaxInt/5 + 2
	resp, err := service.ListRooms(context.Background(), room_dto.ListRoomsQuery{Page: page, Limit: 5})

	require.Nil(t, err)
	assert.Empty(t, resp.Rooms)
	assert.NotNil(t, resp.Rooms)
	assert.Equal(t, int64(7), resp.Total)
	assert.Equal(t, page, resp.Page)
	assert.Equal(t, 2, resp.Pages)
}

func TestListRooms_EmptyTable(t *testing.T) {
	service, _ := newService(t, passing())

	resp, err := service.ListRooms(context.Background(), room_dto.ListRoomsQuery{Page: 1, Limit: 5})

	require.Nil(t, err)
	assert.Zero(t, resp.Total)
	assert.Zero(t, resp.Pages)
	assert.NotNil(t, resp.Rooms)
}

func TestGetRoomByID_UsesCache(t *testing.T) {
	service, appState := newService(t, passing())
	mockRedis := withRedis(t, service)

	room := testutil.NewRoom("Sunrise", "Campus", 500, 0)
	testutil.InsertRooms(t, appState, room)

	first, err := service.GetRoomByID(context.Background(), room.ID)
	require.Nil(t, err)
	assert.True(t, mockRedis.Exists(roomCacheKey(room.ID)))

	// served from the cache once the row is gone
	require.NoError(t, appState.DB.Exec("DELETE FROM rooms WHERE id = ?", room.ID).Error)
	second, err := service.GetRoomByID(context.Background(), room.ID)
	require.Nil(t, err)
	assert.Equal(t, first.HostelName, second.HostelName)
	assert.True(t, first.Price.Equal(second.Price))
}

func TestGetRoomByID_NotFound(t *testing.T) {
	service, _ := newService(t, passing())

	room, err := service.GetRoomByID(context.Background(), 404)

	assert.Nil(t, room)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)
}

func fullUpdate() room_dto.UpdateRoomRequest {
	return room_dto.UpdateRoomRequest{
		Title:        "Renovated",
		HostelName:   "Sunset",
		ImgURLs:      []string{"c.jpg"},
		Location:     "Hillside",
		Price:        decimal.NewFromInt(650),
		Frequency:    "weekly",
		PeopleNumber: 3,
		TotalBed:     3,
		Email:        "b@x.com",
		Contact:      "456",
		OwnerEmail:   "new@x.com",
	}
}

func TestUpdateRoom_FullUpdateInvalidatesCache(t *testing.T) {
	service, appState := newService(t, passing())
	mockRedis := withRedis(t, service)

	room := testutil.NewRoom("Sunrise", "Campus", 500, time.Hour)
	testutil.InsertRooms(t, appState, room)
	_, err := service.GetRoomByID(context.Background(), room.ID)
	require.Nil(t, err)
	require.True(t, mockRedis.Exists(roomCacheKey(room.ID)))

	updated, err := service.UpdateRoom(context.Background(), room.ID, fullUpdate())
	require.Nil(t, err)
	assert.Equal(t, "Sunset", updated.HostelName)
	assert.Equal(t, []string{"c.jpg"}, updated.ImgURLs)
	assert.True(t, updated.IsAvailable)
	assert.False(t, mockRedis.Exists(roomCacheKey(room.ID)))

	again, err := service.GetRoomByID(context.Background(), room.ID)
	require.Nil(t, err)
	assert.Equal(t, "Sunset", again.HostelName)
}

func TestUpdateRoom_StatusOnly(t *testing.T) {
	service, appState := newService(t, passing())
	room := testutil.NewRoom("Sunrise", "Campus", 500, time.Hour)
	testutil.InsertRooms(t, appState, room)

	available := false
	updated, err := service.UpdateRoom(context.Background(), room.ID, room_dto.UpdateRoomRequest{StatusOnly: true, IsAvailable: &available})

	require.Nil(t, err)
	assert.False(t, updated.IsAvailable)
	assert.Equal(t, "Sunrise", updated.HostelName)
	assert.True(t, room.UpdatedAt.Equal(updated.UpdatedAt))
}

func TestUpdateRoom_MissingRoom(t *testing.T) {
	service, _ := newService(t, passing())

	updated, err := service.UpdateRoom(context.Background(), 77, fullUpdate())

	assert.Nil(t, updated)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)
	assert.Equal(t, "Room not found", err.Message)
}

type vanishingRepo struct {
	room_repo.RoomRepoContract
}

func (vanishingRepo) RoomExists(ctx context.Context, id uint64) (bool, *app_error.AppError) {
	return true, nil
}

func TestUpdateRoom_RowVanishedAfterCheck(t *testing.T) {
	service, _ := newService(t, passing())
	service.RoomRepo = vanishingRepo{RoomRepoContract: service.RoomRepo}

	updated, err := service.UpdateRoom(context.Background(), 77, fullUpdate())

	assert.Nil(t, updated)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)
	assert.Equal(t, "Room not found or no changes made", err.Message)
}

func TestDeleteRoom(t *testing.T) {
	service, appState := newService(t, passing())
	mockRedis := withRedis(t, service)

	room := testutil.NewRoom("Sunrise", "Campus", 500, 0)
	testutil.InsertRooms(t, appState, room)
	_, err := service.GetRoomByID(context.Background(), room.ID)
	require.Nil(t, err)

	require.Nil(t, service.DeleteRoom(context.Background(), room.ID))
	assert.False(t, mockRedis.Exists(roomCacheKey(room.ID)))

	_, err = service.GetRoomByID(context.Background(), room.ID)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)

	err = service.DeleteRoom(context.Background(), room.ID)
	require.NotNil(t, err)
	assert.Equal(t, http.StatusNotFound, err.Code)
}
