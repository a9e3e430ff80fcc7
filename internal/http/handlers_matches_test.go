package http

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sportsync/sportsync-api/internal/domain"
	"github.com/sportsync/sportsync-api/internal/repo"
)

func sampleMatch(organizer primitive.ObjectID) *domain.Match {
	return &domain.Match{
		ID:    primitive.NewObjectID(),
		Title: "Evening five-a-side",
		Sport: "soccer",
		Location: domain.Location{
			Address: "Riverside pitch 3",
			Point:   domain.NewGeoPoint(-0.1276, 51.5072),
		},
		Date:           time.Now().Add(48 * time.Hour),
		SkillLevel:     "intermediate",
		SpotsAvailable: 4,
		Organizer:      organizer,
	}
}

func TestListMatchesPassesFilter(t *testing.T) {
	h := newTestHandler(t)
	var got repo.MatchFilter
	h.matches().ListMatchesFn = func(ctx context.Context, f repo.MatchFilter) ([]domain.Match, error) {
		got = f
		return []domain.Match{*sampleMatch(primitive.NewObjectID())}, nil
	}

	req, _ := http.NewRequest(http.MethodGet,
		"/api/matches?sport=soccer&skillLevel=advanced&date=weekend&lat=51.5&lng=-0.12&distance=25", nil)
	w := perform(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "soccer", got.Sport)
	assert.Equal(t, "advanced", got.SkillLevel)
	assert.Equal(t, "weekend", got.DateBucket)
	require.NotNil(t, got.Lat)
	require.NotNil(t, got.Lng)
	assert.InDelta(t, 51.5, *got.Lat, 1e-9)
	assert.InDelta(t, -0.12, *got.Lng, 1e-9)
	assert.InDelta(t, 25, got.DistanceMiles, 1e-9)
}

func TestListMatchesIgnoresHalfCoordinates(t *testing.T) {
	h := newTestHandler(t)
	var got repo.MatchFilter
	h.matches().ListMatchesFn = func(ctx context.Context, f repo.MatchFilter) ([]domain.Match, error) {
		got = f
		return nil, nil
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/matches?lat=51.5", nil)
	w := perform(h, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, got.Lat, "lat without lng must not trigger a geo query")
	assert.Nil(t, got.Lng)
}

func TestGetMatch(t *testing.T) {
	h := newTestHandler(t)
	m := sampleMatch(primitive.NewObjectID())
	h.matches().FindMatchByIDFn = func(ctx context.Context, id primitive.ObjectID) (*domain.Match, error) {
		require.Equal(t, m.ID, id)
		return m, nil
	}

	req, _ := http.NewRequest(http.MethodGet, "/api/matches/"+m.ID.Hex(), nil)
	w := perform(h, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetMatchBadID(t *testing.T) {
	h := newTestHandler(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/matches/not-hex", nil)
	w := perform(h, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var out envelope
	require.NoError(t, jsonDecode(w, &out))
	assert.Equal(t, TypeNotFound, out.Error.Type)
	assert.Equal(t, "Match not found - invalid ID format", out.Error.Message)
}

func TestCreateMatch(t *testing.T) {
	h := newTestHandler(t)
	uid := primitive.NewObjectID()
	var created *domain.Match
	h.matches().CreateMatchFn = func(ctx context.Context, m *domain.Match) error {
		m.ID = primitive.NewObjectID()
		created = m
		return nil
	}

	body := `{
		"title":"  Evening five-a-side ",
		"sport":"soccer",
		"location":{"address":"Riverside pitch 3","lat":51.5072,"lng":-0.1276},
		"date":"2026-09-12T18:00:00Z",
		"skillLevel":"intermediate",
		"spotsAvailable":4,
		"description":"Bring both kits"
	}`
	w := perform(h, authedReqAs(t, h, uid, http.MethodPost, "/api/matches", body))

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, created)
	assert.Equal(t, "Evening five-a-side", created.Title)
	assert.Equal(t, uid, created.Organizer, "organizer comes from the token, not the body")
	assert.Equal(t, "Point", created.Location.Point.Type)
	assert.Equal(t, [2]float64{-0.1276, 51.5072}, created.Location.Point.Coordinates,
		"GeoJSON order is lng,lat")
}

func TestCreateMatchValidation(t *testing.T) {
	long := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = 'x'
		}
		return string(b)
	}

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"missing title",
			`{"sport":"soccer","location":{"address":"a","lat":1,"lng":1},"date":"2026-09-12T18:00:00Z","spotsAvailable":2}`,
			"Title is required"},
		{"long title",
			fmt.Sprintf(`{"title":%q,"sport":"soccer","location":{"address":"a","lat":1,"lng":1},"date":"2026-09-12T18:00:00Z","spotsAvailable":2}`, long(101)),
			"Title cannot be more than 100 characters"},
		{"bad sport",
			`{"title":"t","sport":"chess","location":{"address":"a","lat":1,"lng":1},"date":"2026-09-12T18:00:00Z","spotsAvailable":2}`,
			"Please specify a valid sport"},
		{"missing address",
			`{"title":"t","sport":"soccer","location":{"lat":1,"lng":1},"date":"2026-09-12T18:00:00Z","spotsAvailable":2}`,
			"Location address is required"},
		{"latitude out of range",
			`{"title":"t","sport":"soccer","location":{"address":"a","lat":91,"lng":1},"date":"2026-09-12T18:00:00Z","spotsAvailable":2}`,
			"Valid latitude is required"},
		{"longitude out of range",
			`{"title":"t","sport":"soccer","location":{"address":"a","lat":1,"lng":181},"date":"2026-09-12T18:00:00Z","spotsAvailable":2}`,
			"Valid longitude is required"},
		{"missing date",
			`{"title":"t","sport":"soccer","location":{"address":"a","lat":1,"lng":1},"spotsAvailable":2}`,
			"Valid date is required"},
		{"bad skill level",
			`{"title":"t","sport":"soccer","location":{"address":"a","lat":1,"lng":1},"date":"2026-09-12T18:00:00Z","skillLevel":"pro","spotsAvailable":2}`,
			"Invalid skill level"},
		{"zero spots",
			`{"title":"t","sport":"soccer","location":{"address":"a","lat":1,"lng":1},"date":"2026-09-12T18:00:00Z","spotsAvailable":0}`,
			"Spots available must be a positive number"},
		{"long description",
			fmt.Sprintf(`{"title":"t","sport":"soccer","location":{"address":"a","lat":1,"lng":1},"date":"2026-09-12T18:00:00Z","spotsAvailable":2,"description":%q}`, long(501)),
			"Description cannot be more than 500 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t)
			w := perform(h, authedReq(t, h, http.MethodPost, "/api/matches", tc.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var out envelope
			require.NoError(t, jsonDecode(w, &out))
			assert.Equal(t, TypeValidation, out.Error.Type)
			assert.Equal(t, tc.message, out.Error.Message)
		})
	}
}

func TestUpdateMatchOrganizerOnly(t *testing.T) {
	h := newTestHandler(t)
	organizer := primitive.NewObjectID()
	m := sampleMatch(organizer)
	h.matches().FindMatchByIDFn = func(ctx context.Context, id primitive.ObjectID) (*domain.Match, error) {
		return m, nil
	}

	stranger := primitive.NewObjectID()
	w := perform(h, authedReqAs(t, h, stranger, http.MethodPut, "/api/matches/"+m.ID.Hex(),
		`{"title":"hijacked"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var out envelope
	require.NoError(t, jsonDecode(w, &out))
	assert.Equal(t, TypeAuth, out.Error.Type)
	assert.Equal(t, "Not authorized to update this match", out.Error.Message)
}

func TestUpdateMatch(t *testing.T) {
	h := newTestHandler(t)
	organizer := primitive.NewObjectID()
	m := sampleMatch(organizer)
	var gotSet bson.M
	h.matches().FindMatchByIDFn = func(ctx context.Context, id primitive.ObjectID) (*domain.Match, error) {
		return m, nil
	}
	h.matches().UpdateMatchFn = func(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Match, error) {
		gotSet = set
		return m, nil
	}

	w := perform(h, authedReqAs(t, h, organizer, http.MethodPut, "/api/matches/"+m.ID.Hex(),
		`{"title":"Morning game","spotsAvailable":6,"skillLevel":"all"}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Morning game", gotSet["title"])
	assert.Equal(t, 6, gotSet["spots_available"])
	assert.Equal(t, "all", gotSet["skill_level"])
}

func TestDeleteMatchOrganizerOnly(t *testing.T) {
	h := newTestHandler(t)
	organizer := primitive.NewObjectID()
	m := sampleMatch(organizer)
	h.matches().FindMatchByIDFn = func(ctx context.Context, id primitive.ObjectID) (*domain.Match, error) {
		return m, nil
	}

	w := perform(h, authedReq(t, h, http.MethodDelete, "/api/matches/"+m.ID.Hex(), ""))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var out envelope
	require.NoError(t, jsonDecode(w, &out))
	assert.Equal(t, "Not authorized to delete this match", out.Error.Message)
}

func TestDeleteMatch(t *testing.T) {
	h := newTestHandler(t)
	organizer := primitive.NewObjectID()
	m := sampleMatch(organizer)
	deleted := false
	h.matches().FindMatchByIDFn = func(ctx context.Context, id primitive.ObjectID) (*domain.Match, error) {
		return m, nil
	}
	h.matches().DeleteMatchFn = func(ctx context.Context, id primitive.ObjectID) error {
		require.Equal(t, m.ID, id)
		deleted = true
		return nil
	}

	w := perform(h, authedReqAs(t, h, organizer, http.MethodDelete, "/api/matches/"+m.ID.Hex(), ""))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, deleted)
	var out envelope
	require.NoError(t, jsonDecode(w, &out))
	assert.Equal(t, "Match removed", out.Message)
}

func TestJoinMatchErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		errType string
		message string
	}{
		{"not found", repo.ErrNotFound, http.StatusNotFound, TypeNotFound, "Match not found"},
		{"full", repo.ErrMatchFull, http.StatusBadRequest, TypeValidation, "Match is full"},
		{"already joined", repo.ErrAlreadyJoined, http.StatusBadRequest, TypeValidation, "Already joined this match"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t)
			h.matches().JoinMatchFn = func(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
				return nil, tc.err
			}

			w := perform(h, authedReq(t, h, http.MethodPost,
				"/api/matches/"+primitive.NewObjectID().Hex()+"/join", ""))

			assert.Equal(t, tc.status, w.Code)
			var out envelope
			require.NoError(t, jsonDecode(w, &out))
			assert.Equal(t, tc.errType, out.Error.Type)
			assert.Equal(t, tc.message, out.Error.Message)
		})
	}
}

func TestJoinMatch(t *testing.T) {
	h := newTestHandler(t)
	uid := primitive.NewObjectID()
	m := sampleMatch(primitive.NewObjectID())
	m.SpotsAvailable = 3
	h.matches().JoinMatchFn = func(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
		require.Equal(t, m.ID, matchID)
		require.Equal(t, uid, userID)
		return m, nil
	}

	w := perform(h, authedReqAs(t, h, uid, http.MethodPost, "/api/matches/"+m.ID.Hex()+"/join", ""))

	require.Equal(t, http.StatusOK, w.Code)
	var out envelope
	require.NoError(t, jsonDecode(w, &out))
	assert.Equal(t, "Successfully joined match", out.Message)
}

func TestLeaveMatch(t *testing.T) {
	h := newTestHandler(t)
	uid := primitive.NewObjectID()
	m := sampleMatch(primitive.NewObjectID())
	h.matches().LeaveMatchFn = func(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
		require.Equal(t, uid, userID)
		return m, nil
	}

	w := perform(h, authedReqAs(t, h, uid, http.MethodPost, "/api/matches/"+m.ID.Hex()+"/leave", ""))

	require.Equal(t, http.StatusOK, w.Code)
	var out envelope
	require.NoError(t, jsonDecode(w, &out))
	assert.Equal(t, "Successfully left match", out.Message)
}

func TestLeaveMatchNotJoined(t *testing.T) {
	h := newTestHandler(t)
	h.matches().LeaveMatchFn = func(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
		return nil, repo.ErrNotJoined
	}

	w := perform(h, authedReq(t, h, http.MethodPost,
		"/api/matches/"+primitive.NewObjectID().Hex()+"/leave", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var out envelope
	require.NoError(t, jsonDecode(w, &out))
	assert.Equal(t, "Not a participant in this match", out.Error.Message)
}
