package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/sportsync/sportsync-api/internal/domain"
)

func (s *Store) matches() *mongo.Collection { return s.DB.Collection("matches") }

func (s *Store) CreateMatch(ctx context.Context, m *domain.Match) error {
	m.CreatedAt = time.Now().UTC()
	if m.SkillLevel == "" {
		m.SkillLevel = "all"
	}
	if m.Participants == nil {
		m.Participants = []domain.Participant{}
	}
	res, err := s.matches().InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = id
	}
	return nil
}

func (s *Store) FindMatchByID(ctx context.Context, id primitive.ObjectID) (*domain.Match, error) {
	var m domain.Match
	err := s.matches().FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatches runs the combined filter predicate, sorted by date ascending.
func (s *Store) ListMatches(ctx context.Context, f MatchFilter) ([]domain.Match, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.matches.list",
		tracer.Tag("sport", f.Sport),
		tracer.Tag("date_bucket", f.DateBucket),
	)
	defer sp.Finish()

	cur, err := s.matches().Find(ctx, f.Predicate(),
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Match{}
	if err := cur.All(ctx, &out); err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return out, nil
}

func (s *Store) UpdateMatch(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Match, error) {
	var m domain.Match
	err := s.matches().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) DeleteMatch(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.matches().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// JoinMatch adds the user to the participant list and decrements the spot
// count in one conditional update, so two concurrent joins cannot oversubscribe
// the last spot. The filter only matches when a spot is free and the user is
// not already a participant.
func (s *Store) JoinMatch(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.matches.join",
		tracer.Tag("match_id", matchID.Hex()),
	)
	defer sp.Finish()

	entry := domain.Participant{User: userID, JoinedAt: time.Now().UTC()}
	var m domain.Match
	err := s.matches().FindOneAndUpdate(ctx,
		bson.M{
			"_id":               matchID,
			"spots_available":   bson.M{"$gt": 0},
			"participants.user": bson.M{"$ne": userID},
		},
		bson.M{
			"$inc":  bson.M{"spots_available": -1},
			"$push": bson.M{"participants": bson.M{"$each": []domain.Participant{entry}, "$position": 0}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, s.classifyJoinFailure(ctx, matchID, userID)
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &m, nil
}

// classifyJoinFailure re-reads the match to turn the unmatched conditional
// update into a precise error.
func (s *Store) classifyJoinFailure(ctx context.Context, matchID, userID primitive.ObjectID) error {
	m, err := s.FindMatchByID(ctx, matchID)
	if err != nil {
		return err
	}
	for _, p := range m.Participants {
		if p.User == userID {
			return ErrAlreadyJoined
		}
	}
	return ErrMatchFull
}

// LeaveMatch is the inverse of JoinMatch, again a single conditional update.
func (s *Store) LeaveMatch(ctx context.Context, matchID, userID primitive.ObjectID) (*domain.Match, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.matches.leave",
		tracer.Tag("match_id", matchID.Hex()),
	)
	defer sp.Finish()

	var m domain.Match
	err := s.matches().FindOneAndUpdate(ctx,
		bson.M{
			"_id":               matchID,
			"participants.user": userID,
		},
		bson.M{
			"$pull": bson.M{"participants": bson.M{"user": userID}},
			"$inc":  bson.M{"spots_available": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		if _, ferr := s.FindMatchByID(ctx, matchID); ferr != nil {
			return nil, ferr
		}
		return nil, ErrNotJoined
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &m, nil
}
