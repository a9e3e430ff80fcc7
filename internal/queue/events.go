package queue

import "go.mongodb.org/mongo-driver/bson/primitive"

// Routing keys on the topic exchange.
const (
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyMatchCreated   = "match.created"
	KeyMatchJoined    = "match.joined"
	KeyMatchLeft      = "match.left"
)

type UserRegistered struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
	Name   string             `json:"name"`
	Role   string             `json:"role"`
}

type UserLoggedIn struct {
	UserID primitive.ObjectID `json:"user_id"`
	Email  string             `json:"email"`
}

type MatchCreated struct {
	MatchID   primitive.ObjectID `json:"match_id"`
	Organizer primitive.ObjectID `json:"organizer"`
	Sport     string             `json:"sport"`
}

type MatchJoined struct {
	MatchID        primitive.ObjectID `json:"match_id"`
	UserID         primitive.ObjectID `json:"user_id"`
	SpotsAvailable int                `json:"spots_available"`
}

type MatchLeft struct {
	MatchID        primitive.ObjectID `json:"match_id"`
	UserID         primitive.ObjectID `json:"user_id"`
	SpotsAvailable int                `json:"spots_available"`
}
