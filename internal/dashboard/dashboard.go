// Package dashboard builds and renders the progress overview shown after
// sign-in or for guests.
package dashboard

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/devcompass/devcompass/internal/progress"
	"github.com/devcompass/devcompass/internal/ui/components"
	"github.com/devcompass/devcompass/internal/ui/theme"
)

// DefaultWidth is used when the caller passes a non-positive width.
const DefaultWidth = 60

// TrackSummary is the progress of one track.
type TrackSummary struct {
	Track     progress.Track
	Completed int
	Total     int
	Percent   int
}

// View is everything the dashboard shows.
type View struct {
	Name     string
	SignedIn bool
	Streak   int
	Tracks   []TrackSummary
	Recent   []progress.Activity
}

// Build derives the dashboard view from a progress record.
func Build(p *progress.UserProgress, signedIn bool) View {
	v := View{
		Name:     p.Name,
		SignedIn: signedIn,
		Streak:   p.Streak,
		Recent:   p.RecentActivities,
	}
	if v.Name == "" {
		v.Name = progress.GuestName
	}
	for _, t := range progress.AllTracks() {
		v.Tracks = append(v.Tracks, TrackSummary{
			Track:     t,
			Completed: p.CompletedCount(t),
			Total:     t.Total(),
			Percent:   p.Percent[t],
		})
	}
	return v
}

// Render draws the view at the given width. now anchors relative activity
// times.
func (v View) Render(width int, now time.Time) string {
	if width <= 0 {
		width = DefaultWidth
	}
	inner := width - 6 // card border and padding

	var b strings.Builder
	b.WriteString(theme.Title.Render(fmt.Sprintf("Welcome back, %s!", v.Name)))
	b.WriteString("\n")
	if v.SignedIn {
		b.WriteString(theme.Subtitle.Render("Progress synced to your account"))
	} else {
		b.WriteString(theme.Hint.Render("Guest mode: progress is saved on this device. Sign up to keep it."))
	}
	b.WriteString("\n\n")

	b.WriteString(theme.Streak.Render(fmt.Sprintf("Streak: %d %s", v.Streak, plural(v.Streak, "day", "days"))))
	b.WriteString("\n\n")

	for _, ts := range v.Tracks {
		label := fmt.Sprintf("%-10s %2d/%-2d", ts.Track.Label(), ts.Completed, ts.Total)
		bar := components.NewProgressBar(label, ts.Percent, inner, trackColor(ts.Track))
		b.WriteString(bar.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Title.Render("Recent activity"))
	b.WriteString("\n")
	if len(v.Recent) == 0 {
		b.WriteString(theme.Hint.Render("No activity yet. Run `devcompass challenge list` to get started."))
	}
	for i, a := range v.Recent {
		if i > 0 {
			b.WriteString("\n")
		}
		when := humanize.RelTime(a.Timestamp, now, "ago", "from now")
		b.WriteString(theme.Body.Render("• " + a.Description))
		b.WriteString("  ")
		b.WriteString(theme.Subtitle.Render(when))
	}

	return theme.Card.Width(width).Render(b.String())
}

func trackColor(t progress.Track) color.Color {
	switch t {
	case progress.Python:
		return theme.Python
	case progress.JavaScript:
		return theme.JavaScript
	default:
		return theme.Primary
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
