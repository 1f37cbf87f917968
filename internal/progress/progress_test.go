package progress

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func TestParseTrack(t *testing.T) {
	for in, want := range map[string]Track{"python": Python, " JS ": JavaScript, "JavaScript": JavaScript, "py": Python} {
		got, err := ParseTrack(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseTrack("rust")
	assert.ErrorIs(t, err, ErrUnknownTrack)
}

func TestPercentFormula(t *testing.T) {
	for _, track := range AllTracks() {
		for n := 0; n <= track.Total()+2; n++ {
			got := Percent(track, n)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
			if n <= track.Total() {
				want := int(float64(100*n)/float64(track.Total()) + 0.5)
				assert.Equal(t, want, got, "%s %d", track, n)
			}
		}
	}
	assert.Equal(t, 10, Percent(Python, 1))
	assert.Equal(t, 8, Percent(JavaScript, 1))
	assert.Equal(t, 17, Percent(JavaScript, 2))
	assert.Equal(t, 0, Percent(Track("go"), 3))
}

func TestRecordCompletionIdempotent(t *testing.T) {
	p := New(GuestName, day0)

	require.True(t, p.RecordCompletion(Python, "loops", day0))
	once := p.Clone()

	assert.False(t, p.RecordCompletion(Python, "loops", day0.Add(time.Hour)))
	assert.Equal(t, once.Completed, p.Completed)
	assert.Equal(t, once.Percent, p.Percent)
	assert.Equal(t, once.RecentActivities, p.RecentActivities)
	assert.Equal(t, 10, p.Percent[Python])
}

func TestRecordCompletionActivity(t *testing.T) {
	p := New("Ada", day0)
	p.RecordCompletion(JavaScript, "promises", day0)

	require.Len(t, p.RecentActivities, 1)
	a := p.RecentActivities[0]
	assert.Equal(t, ChallengeCompletion, a.Kind)
	assert.Equal(t, JavaScript, a.Track)
	assert.Equal(t, "promises", a.ChallengeID)
	assert.Equal(t, "Completed javascript challenge promises", a.Description)
	assert.Equal(t, day0, a.Timestamp)
}

func TestActivitiesCappedNewestFirst(t *testing.T) {
	p := New("Ada", day0)
	ids := []string{"variables", "arrow_functions", "array_methods", "destructuring", "promises",
		"async_await", "classes", "modules", "template_literals", "spread_operator", "array_reduce", "error_handling"}
	for i, id := range ids {
		p.RecordCompletion(JavaScript, id, day0.Add(time.Duration(i)*time.Minute))
	}

	require.Len(t, p.RecentActivities, MaxActivities)
	assert.Equal(t, "error_handling", p.RecentActivities[0].ChallengeID)
	assert.Equal(t, "array_methods", p.RecentActivities[MaxActivities-1].ChallengeID)
	assert.Equal(t, 100, p.Percent[JavaScript])
}

func TestStreak(t *testing.T) {
	p := New("Ada", day0)

	p.RecordCompletion(Python, "conditionals", day0)
	assert.Equal(t, 1, p.Streak)

	p.RecordCompletion(Python, "loops", day0.Add(2*time.Hour))
	assert.Equal(t, 1, p.Streak, "same day")

	p.RecordCompletion(Python, "functions", day0.AddDate(0, 0, 1))
	assert.Equal(t, 2, p.Streak, "next day")

	p.RecordCompletion(Python, "lists", day0.AddDate(0, 0, 4))
	assert.Equal(t, 1, p.Streak, "gap resets")
	assert.Equal(t, "2026-03-14", p.LastActiveDay)
}

func TestWireFormat(t *testing.T) {
	p := New(GuestName, day0)
	p.RecordCompletion(Python, "loops", day0)

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "Anonymous", raw["name"])
	assert.EqualValues(t, 10, raw["pythonProgress"])
	assert.EqualValues(t, 0, raw["javascriptProgress"])
	assert.Equal(t, map[string]any{"python": []any{"loops"}, "javascript": []any{}}, raw["completedChallenges"])

	acts := raw["recentActivities"].([]any)
	require.Len(t, acts, 1)
	act := acts[0].(map[string]any)
	assert.Equal(t, "challenge_completion", act["type"])
	assert.Equal(t, "python", act["challengeType"])
}

func TestDecodeNormalizes(t *testing.T) {
	blob := `{
		"name": "Lin",
		"pythonProgress": 90,
		"completedChallenges": {"python": ["loops", "loops", "lists"], "rust": ["x"]},
		"streak": -3
	}`

	var p UserProgress
	require.NoError(t, json.Unmarshal([]byte(blob), &p))

	assert.Equal(t, []string{"loops", "lists"}, p.Completed[Python])
	assert.Empty(t, p.Completed[JavaScript])
	assert.NotContains(t, p.Completed, Track("rust"))
	assert.Equal(t, 20, p.Percent[Python], "derived from ids, not the stored value")
	assert.Equal(t, 0, p.Streak)
	assert.NotNil(t, p.RecentActivities)
}

func TestMergeGuest(t *testing.T) {
	remote := New("Ada", day0)
	remote.Email = "ada@example.com"
	remote.RecordCompletion(Python, "loops", day0)
	remote.RecordCompletion(JavaScript, "classes", day0.Add(time.Minute))

	guest := New(GuestName, day0)
	guest.RecordCompletion(Python, "loops", day0.Add(-time.Hour))
	guest.RecordCompletion(Python, "strings", day0.Add(2*time.Minute))
	guest.Streak = 5

	merged := MergeGuest(remote, guest)

	assert.ElementsMatch(t, []string{"loops", "strings"}, merged.Completed[Python])
	assert.Equal(t, []string{"classes"}, merged.Completed[JavaScript])
	assert.Equal(t, 20, merged.Percent[Python])
	assert.Equal(t, 8, merged.Percent[JavaScript])
	assert.Equal(t, 5, merged.Streak)
	assert.Equal(t, "Ada", merged.Name)
	assert.Equal(t, "ada@example.com", merged.Email)

	require.Len(t, merged.RecentActivities, 4)
	assert.Equal(t, "strings", merged.RecentActivities[0].ChallengeID)
	for i := 1; i < len(merged.RecentActivities); i++ {
		assert.False(t, merged.RecentActivities[i].Timestamp.After(merged.RecentActivities[i-1].Timestamp))
	}

	assert.Equal(t, []string{"loops"}, remote.Completed[Python], "inputs untouched")
}

func TestMergeGuestCapsActivities(t *testing.T) {
	remote := New("Ada", day0)
	guest := New(GuestName, day0)
	for i := range 8 {
		remote.AddActivity(Activity{Kind: GenericActivity, Description: "r", Timestamp: day0.Add(time.Duration(i) * time.Minute)})
		guest.AddActivity(Activity{Kind: GenericActivity, Description: "g", Timestamp: day0.Add(time.Duration(i)*time.Minute + 30*time.Second)})
	}

	merged := MergeGuest(remote, guest)
	assert.Len(t, merged.RecentActivities, MaxActivities)
	assert.Equal(t, "g", merged.RecentActivities[0].Description)
}
