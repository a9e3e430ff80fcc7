package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sportsync/sportsync-api/internal/domain"
)

func (s *Store) users() *mongo.Collection { return s.DB.Collection("users") }

func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	u.CreatedAt = time.Now().UTC()
	if u.Status == "" {
		u.Status = domain.StatusActive
	}
	res, err := s.users().InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

// FindUserByProviderID looks a user up by an OAuth provider ID field
// ("google_id", "facebook_id" or "apple_id").
func (s *Store) FindUserByProviderID(ctx context.Context, field, externalID string) (*domain.User, error) {
	return s.findUser(ctx, bson.M{field: externalID})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := s.users().FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserProfile applies a partial $set and returns the updated record.
func (s *Store) UpdateUserProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.User, error) {
	var u domain.User
	err := s.users().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &u, nil
}

// UpdateUserPassword replaces the hash and refreshes password_changed_at so
// tokens issued before the change can be rejected by the refresh sweep.
// The timestamp is backdated by one second so a token issued immediately after
// the change is not caught by the same-second comparison.
func (s *Store) UpdateUserPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	changedAt := time.Now().UTC().Add(-time.Second)
	_, err := s.users().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "password_changed_at": changedAt}},
	)
	return err
}

// TouchTokenRefresh records the last refresh-sweep reissue time, best-effort.
func (s *Store) TouchTokenRefresh(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.users().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"last_token_refresh": time.Now().UTC()}},
	)
	return err
}
