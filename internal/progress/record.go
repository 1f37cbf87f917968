package progress

import (
	"encoding/json"
	"time"
)

// record is the persisted JSON shape shared by both backends.
type record struct {
	Name                string             `json:"name"`
	Email               string             `json:"email,omitempty"`
	ProfilePicture      string             `json:"profilePicture,omitempty"`
	Streak              int                `json:"streak"`
	PythonProgress      int                `json:"pythonProgress"`
	JavaScriptProgress  int                `json:"javascriptProgress"`
	CompletedChallenges map[Track][]string `json:"completedChallenges"`
	RecentActivities    []Activity         `json:"recentActivities"`
	LastActiveDay       string             `json:"lastActiveDay,omitempty"`
	CreatedAt           string             `json:"createdAt,omitempty"`
	LastUpdated         string             `json:"lastUpdated,omitempty"`
}

func toRecord(p *UserProgress) record {
	r := record{
		Name:                p.Name,
		Email:               p.Email,
		ProfilePicture:      p.PictureURL,
		Streak:              p.Streak,
		PythonProgress:      p.Percent[Python],
		JavaScriptProgress:  p.Percent[JavaScript],
		CompletedChallenges: p.Completed,
		RecentActivities:    p.RecentActivities,
		LastActiveDay:       p.LastActiveDay,
		CreatedAt:           formatTime(p.CreatedAt),
		LastUpdated:         formatTime(p.LastUpdated),
	}
	if r.CompletedChallenges == nil {
		r.CompletedChallenges = map[Track][]string{Python: {}, JavaScript: {}}
	}
	if r.RecentActivities == nil {
		r.RecentActivities = []Activity{}
	}
	return r
}

func fromRecord(r record) *UserProgress {
	p := &UserProgress{
		Name:             r.Name,
		Email:            r.Email,
		PictureURL:       r.ProfilePicture,
		Streak:           r.Streak,
		Completed:        r.CompletedChallenges,
		Percent:          map[Track]int{},
		RecentActivities: r.RecentActivities,
		LastActiveDay:    r.LastActiveDay,
		CreatedAt:        parseTime(r.CreatedAt),
		LastUpdated:      parseTime(r.LastUpdated),
	}
	p.Normalize()
	return p
}

// MarshalJSON encodes the record in its persisted form.
func (p *UserProgress) MarshalJSON() ([]byte, error) {
	return json.Marshal(toRecord(p))
}

// UnmarshalJSON decodes a persisted record. Missing fields decode to zero
// values and the derived fields are recomputed.
func (p *UserProgress) UnmarshalJSON(b []byte) error {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*p = *fromRecord(r)
	return nil
}

// progressFields returns the top-level fields a save writes. Profile fields
// are left to the account owner unless set on the record.
func progressFields(p *UserProgress) map[string]any {
	r := toRecord(p)
	fields := map[string]any{
		"streak":              r.Streak,
		"pythonProgress":      r.PythonProgress,
		"javascriptProgress":  r.JavaScriptProgress,
		"completedChallenges": r.CompletedChallenges,
		"recentActivities":    r.RecentActivities,
		"lastActiveDay":       r.LastActiveDay,
		"lastUpdated":         r.LastUpdated,
	}
	if r.Name != "" {
		fields["name"] = r.Name
	}
	return fields
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
