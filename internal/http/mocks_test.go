package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sportsync/sportsync-api/internal/config"
	"github.com/sportsync/sportsync-api/internal/domain"
	"github.com/sportsync/sportsync-api/internal/metrics"
	"github.com/sportsync/sportsync-api/internal/oauth"
	"github.com/sportsync/sportsync-api/internal/queue"
	"github.com/sportsync/sportsync-api/internal/repo"
	"github.com/sportsync/sportsync-api/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
	metrics.MustRegister()
}

type mockUsers struct {
	CreateUserFn           func(ctx context.Context, u *domain.User) error
	FindUserByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	FindUserByIDFn         func(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByProviderIDFn func(ctx context.Context, field, externalID string) (*domain.User, error)
	UpdateUserProfileFn    func(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.User, error)
	UpdateUserPasswordFn   func(ctx context.Context, id primitive.ObjectID, hash string) error
	TouchTokenRefreshFn    func(ctx context.Context, id primitive.ObjectID) error
}

func (m *mockUsers) CreateUser(ctx context.Context, u *domain.User) error {
	return m.CreateUserFn(ctx, u)
}

func (m *mockUsers) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.FindUserByEmailFn(ctx, email)
}

func (m *mockUsers) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return m.FindUserByIDFn(ctx, id)
}

func (m *mockUsers) FindUserByProviderID(ctx context.Context, field, externalID string) (*domain.User, error) {
	return m.FindUserByProviderIDFn(ctx, field, externalID)
}

func (m *mockUsers) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.User, error) {
	return m.UpdateUserProfileFn(ctx, id, set)
}

func (m *mockUsers) UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return m.UpdateUserPasswordFn(ctx, id, hash)
}

func (m *mockUsers) TouchTokenRefresh(ctx context.Context, id primitive.ObjectID) error {
	if m.TouchTokenRefreshFn == nil {
		return nil
	}
	return m.TouchTokenRefreshFn(ctx, id)
}

type mockMatches struct {
	CreateMatchFn   func(ctx context.Context, m *domain.Match) error
	FindMatchByIDFn func(ctx context.Context, id primitive.ObjectID) (*domain.Match, error)
	ListMatchesFn   func(ctx context.Context, f repo.MatchFilter) ([]domain.Match, error)
	UpdateMatchFn   func(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Match, error)
	DeleteMatchFn   func(ctx context.Context, id primitive.ObjectID) error
	JoinMatchFn     func(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error)
	LeaveMatchFn    func(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error)
}

func (m *mockMatches) CreateMatch(ctx context.Context, match *domain.Match) error {
	return m.CreateMatchFn(ctx, match)
}

func (m *mockMatches) FindMatchByID(ctx context.Context, id primitive.ObjectID) (*domain.Match, error) {
	return m.FindMatchByIDFn(ctx, id)
}

func (m *mockMatches) ListMatches(ctx context.Context, f repo.MatchFilter) ([]domain.Match, error) {
	return m.ListMatchesFn(ctx, f)
}

func (m *mockMatches) UpdateMatch(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Match, error) {
	return m.UpdateMatchFn(ctx, id, set)
}

func (m *mockMatches) DeleteMatch(ctx context.Context, id primitive.ObjectID) error {
	return m.DeleteMatchFn(ctx, id)
}

func (m *mockMatches) JoinMatch(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
	return m.JoinMatchFn(ctx, matchID, userID)
}

func (m *mockMatches) LeaveMatch(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
	return m.LeaveMatchFn(ctx, matchID, userID)
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	iss, err := security.NewIssuer("test-secret", "sportsync-api", 30*24*time.Hour)
	require.NoError(t, err)
	return &Handler{
		Users:     &mockUsers{},
		Matches:   &mockMatches{},
		DB:        mockPinger{},
		Issuer:    iss,
		Cfg:       config.Config{Env: "test", JWTIssuer: "sportsync-api"},
		Events:    queue.NewNoop(),
		State:     oauth.NewStateSigner("state-secret"),
		Providers: map[string]oauth.Provider{},
	}
}

func (h *Handler) users() *mockUsers { return h.Users.(*mockUsers) }
func (h *Handler) matches() *mockMatches { return h.Matches.(*mockMatches) }

// perform runs a request against the full router so middleware ordering is
// part of what the tests exercise.
func perform(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(w, req)
	return w
}

func jsonDecode(w *httptest.ResponseRecorder, out any) error {
	return json.Unmarshal(w.Body.Bytes(), out)
}

type envelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
	Error   struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
