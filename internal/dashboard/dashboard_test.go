package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devcompass/devcompass/internal/progress"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func sampleProgress() *progress.UserProgress {
	p := progress.New("Ada", now.Add(-72*time.Hour))
	p.RecordCompletion(progress.Python, "loops", now.Add(-2*time.Hour))
	p.RecordCompletion(progress.Python, "lists", now.Add(-time.Hour))
	p.RecordCompletion(progress.JavaScript, "classes", now.Add(-time.Hour))
	return p
}

func TestBuild(t *testing.T) {
	v := Build(sampleProgress(), true)

	assert.Equal(t, "Ada", v.Name)
	assert.True(t, v.SignedIn)
	assert.Equal(t, 1, v.Streak)
	require.Len(t, v.Tracks, 2)
	assert.Equal(t, TrackSummary{Track: progress.Python, Completed: 2, Total: 10, Percent: 20}, v.Tracks[0])
	assert.Equal(t, TrackSummary{Track: progress.JavaScript, Completed: 1, Total: 12, Percent: 8}, v.Tracks[1])
	assert.Len(t, v.Recent, 3)
}

func TestBuildGuestWithoutName(t *testing.T) {
	v := Build(progress.New("", now), false)
	assert.Equal(t, progress.GuestName, v.Name)
	assert.False(t, v.SignedIn)
	assert.Empty(t, v.Recent)
}

func TestRender(t *testing.T) {
	out := ansi.Strip(Build(sampleProgress(), true).Render(70, now))

	assert.Contains(t, out, "Welcome back, Ada!")
	assert.Contains(t, out, "Streak: 1 day")
	assert.Contains(t, out, "Python      2/10")
	assert.Contains(t, out, "20%")
	assert.Contains(t, out, "JavaScript  1/12")
	assert.Contains(t, out, "8%")
	assert.Contains(t, out, "Completed python challenge lists")
	assert.Contains(t, out, "1 hour ago")
	assert.NotContains(t, out, "Guest mode")
}

func TestRenderGuestEmpty(t *testing.T) {
	out := ansi.Strip(Build(progress.New(progress.GuestName, now), false).Render(0, now))

	assert.Contains(t, out, "Welcome back, Anonymous!")
	assert.Contains(t, out, "Guest mode")
	assert.Contains(t, out, "Streak: 0 days")
	assert.Contains(t, out, "No activity yet")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), DefaultWidth+2, line)
	}
}
