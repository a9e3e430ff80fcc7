package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var Sports = []string{
	"soccer", "basketball", "baseball", "volleyball", "tennis",
	"cricket", "football", "kabaddi", "kho-kho", "other",
}

var SkillLevels = []string{"beginner", "intermediate", "advanced", "professional", "all"}

func ValidSport(s string) bool { return contains(Sports, s) }
func ValidSkillLevel(s string) bool { return contains(SkillLevels, s) }

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// GeoPoint is a GeoJSON point, coordinates ordered [lng, lat].
type GeoPoint struct {
	Type        string     `bson:"type"        json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

type Location struct {
	Address string   `bson:"address" json:"address"`
	Point   GeoPoint `bson:"point"   json:"point"`
}

type Participant struct {
	User     primitive.ObjectID `bson:"user"      json:"user"`
	JoinedAt time.Time          `bson:"joined_at" json:"joinedAt"`
}

type Match struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"   json:"id"`
	Title          string             `bson:"title"           json:"title"`
	Sport          string             `bson:"sport"           json:"sport"`
	Location       Location           `bson:"location"        json:"location"`
	Date           time.Time          `bson:"date"            json:"date"`
	SkillLevel     string             `bson:"skill_level"     json:"skillLevel"`
	SpotsAvailable int                `bson:"spots_available" json:"spotsAvailable"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Organizer      primitive.ObjectID `bson:"organizer"       json:"organizer"`
	Participants   []Participant      `bson:"participants"    json:"participants"`
	CreatedAt      time.Time          `bson:"created_at"      json:"createdAt"`
}
