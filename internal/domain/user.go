package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCoach     = "coach"
	RolePlayer    = "player"
	RoleOrganizer = "organizer"

	StatusActive    = "active"
	StatusSuspended = "suspended"

	FlagSuspiciousActivity = "suspicious_activity"
)

func ValidRole(r string) bool {
	return r == RoleCoach || r == RolePlayer || r == RoleOrganizer
}

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email"                    json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty"  json:"-"` // empty for OAuth-only accounts
	Name         string             `bson:"name"                     json:"name"`
	Role         string             `bson:"role"                     json:"userType"`

	SportsPreferences []string `bson:"sports_preferences,omitempty" json:"sportsPreferences,omitempty"`

	GoogleID   string `bson:"google_id,omitempty"   json:"-"`
	FacebookID string `bson:"facebook_id,omitempty" json:"-"`
	AppleID    string `bson:"apple_id,omitempty"    json:"-"`

	Status        string   `bson:"status"                   json:"status"`
	SecurityFlags []string `bson:"security_flags,omitempty" json:"-"`

	PasswordChangedAt *time.Time `bson:"password_changed_at,omitempty" json:"-"`
	LastTokenRefresh  *time.Time `bson:"last_token_refresh,omitempty"  json:"-"`
	CreatedAt         time.Time  `bson:"created_at"                    json:"createdAt"`
}

func (u *User) Active() bool {
	return u.Status == "" || u.Status == StatusActive
}

func (u *User) Flagged(flag string) bool {
	for _, f := range u.SecurityFlags {
		if f == flag {
			return true
		}
	}
	return false
}
