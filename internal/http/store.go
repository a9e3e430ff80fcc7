package http

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sportsync/sportsync-api/internal/domain"
	"github.com/sportsync/sportsync-api/internal/repo"
)

// UserStore captures the user persistence operations required by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindUserByProviderID(ctx context.Context, field, externalID string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.User, error)
	UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	TouchTokenRefresh(ctx context.Context, id primitive.ObjectID) error
}

// MatchStore captures the match persistence operations required by handlers.
type MatchStore interface {
	CreateMatch(ctx context.Context, m *domain.Match) error
	FindMatchByID(ctx context.Context, id primitive.ObjectID) (*domain.Match, error)
	ListMatches(ctx context.Context, f repo.MatchFilter) ([]domain.Match, error)
	UpdateMatch(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Match, error)
	DeleteMatch(ctx context.Context, id primitive.ObjectID) error
	JoinMatch(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error)
	LeaveMatch(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error)
}

// Pinger is whatever the health endpoint needs from the backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}
