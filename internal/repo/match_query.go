package repo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	MetersPerMile        = 1609.34
	DefaultDistanceMiles = 10
)

// MatchFilter holds the optional match listing filters. Zero values (or the
// literal "all") switch the corresponding predicate off.
type MatchFilter struct {
	Sport         string
	SkillLevel    string
	DateBucket    string // today | tomorrow | week | weekend | month
	Lat, Lng      *float64
	DistanceMiles float64
}

// Predicate builds the combined Mongo query document. All active filters are
// ANDed together.
func (f MatchFilter) Predicate() bson.M {
	return f.PredicateAt(time.Now())
}

// PredicateAt is Predicate with an explicit reference time for the date
// bucket computation.
func (f MatchFilter) PredicateAt(now time.Time) bson.M {
	q := bson.M{}

	if f.Sport != "" && f.Sport != "all" {
		q["sport"] = f.Sport
	}
	if f.SkillLevel != "" && f.SkillLevel != "all" {
		q["skill_level"] = f.SkillLevel
	}
	if start, end, ok := DateBucketRange(now, f.DateBucket); ok {
		q["date"] = bson.M{"$gte": start, "$lt": end}
	}
	if f.Lat != nil && f.Lng != nil {
		miles := f.DistanceMiles
		if miles <= 0 {
			miles = DefaultDistanceMiles
		}
		q["location.point"] = bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{*f.Lng, *f.Lat},
				},
				"$maxDistance": miles * MetersPerMile,
			},
		}
	}
	return q
}

// DateBucketRange translates a named bucket into a [start, end) range anchored
// at the local midnight of now. Unknown buckets report ok=false.
func DateBucketRange(now time.Time, bucket string) (start, end time.Time, ok bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch bucket {
	case "today":
		return today, today.AddDate(0, 0, 1), true
	case "tomorrow":
		return today.AddDate(0, 0, 1), today.AddDate(0, 0, 2), true
	case "week":
		return today, today.AddDate(0, 0, 7), true
	case "weekend":
		// Friday 00:00 through Monday 00:00. On a Friday this is the weekend
		// in progress; on Saturday/Sunday it rolls to the next weekend.
		daysToFriday := (int(time.Friday) - int(today.Weekday()) + 7) % 7
		friday := today.AddDate(0, 0, daysToFriday)
		return friday, friday.AddDate(0, 0, 3), true
	case "month":
		return today, today.AddDate(0, 1, 0), true
	default:
		return time.Time{}, time.Time{}, false
	}
}
