package progress

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Track is a challenge category.
type Track string

const (
	Python     Track = "python"
	JavaScript Track = "javascript"
)

// ErrUnknownTrack is returned for track names other than python and javascript.
var ErrUnknownTrack = errors.New("unknown track")

// trackTotals is the fixed number of challenges per track.
var trackTotals = map[Track]int{
	Python:     10,
	JavaScript: 12,
}

// AllTracks returns the tracks in display order.
func AllTracks() []Track {
	return []Track{Python, JavaScript}
}

// ParseTrack resolves a track name. "py" and "js" are accepted as aliases.
func ParseTrack(s string) (Track, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "python", "py":
		return Python, nil
	case "javascript", "js":
		return JavaScript, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTrack, s)
}

// Valid reports whether t is a known track.
func (t Track) Valid() bool {
	_, ok := trackTotals[t]
	return ok
}

// Total returns the number of challenges in the track, 0 if unknown.
func (t Track) Total() int {
	return trackTotals[t]
}

// Label is the display name of the track.
func (t Track) Label() string {
	switch t {
	case Python:
		return "Python"
	case JavaScript:
		return "JavaScript"
	}
	return string(t)
}

// ActivityKind classifies an activity entry.
type ActivityKind string

const (
	ChallengeCompletion ActivityKind = "challenge_completion"
	LessonCompletion    ActivityKind = "lesson_completion"
	GenericActivity     ActivityKind = "generic"
)

// Activity is one entry of the recent-activity feed. Entries are never
// modified after creation.
type Activity struct {
	Kind        ActivityKind `json:"type"`
	Track       Track        `json:"challengeType,omitempty"`
	ChallengeID string       `json:"challengeId,omitempty"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
}

// MaxActivities caps the recent-activity list.
const MaxActivities = 10

// UserProgress is the completion state of one user.
type UserProgress struct {
	Name       string
	Email      string
	PictureURL string

	Streak int

	// Completed holds the completed challenge ids per track, in completion
	// order, without duplicates.
	Completed map[Track][]string

	// Percent is derived from Completed; see Percent.
	Percent map[Track]int

	// RecentActivities is most-recent-first, at most MaxActivities long.
	RecentActivities []Activity

	// LastActiveDay is the UTC date (2006-01-02) of the last completion.
	LastActiveDay string

	CreatedAt   time.Time
	LastUpdated time.Time
}
