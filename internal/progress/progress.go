// Package progress records challenge completions and derives per-track
// progress for signed-in users (remote document store) and guests (local
// device storage).
package progress

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"time"
)

const (
	dayLayout = "2006-01-02"

	// GuestName is the display name of a guest record.
	GuestName = "Anonymous"
)

// Percent returns round(100 × completed / total) for the track, clamped to
// 0..100.
func Percent(t Track, completed int) int {
	total := t.Total()
	if total == 0 || completed <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(completed) / float64(total)))
	return min(p, 100)
}

// New returns an empty record.
func New(name string, now time.Time) *UserProgress {
	p := &UserProgress{
		Name:             name,
		Completed:        map[Track][]string{},
		Percent:          map[Track]int{},
		RecentActivities: []Activity{},
		CreatedAt:        now.UTC(),
		LastUpdated:      now.UTC(),
	}
	for _, t := range AllTracks() {
		p.Completed[t] = []string{}
		p.Percent[t] = 0
	}
	return p
}

// HasCompleted reports whether the challenge is already recorded.
func (p *UserProgress) HasCompleted(t Track, id string) bool {
	return slices.Contains(p.Completed[t], id)
}

// CompletedCount returns the number of completed challenges in the track.
func (p *UserProgress) CompletedCount(t Track) int {
	return len(p.Completed[t])
}

// RecordCompletion marks a challenge complete. It returns false and leaves
// the record untouched if the challenge was already complete.
func (p *UserProgress) RecordCompletion(t Track, id string, now time.Time) bool {
	if p.HasCompleted(t, id) {
		return false
	}
	p.ensureMaps()

	p.Completed[t] = append(p.Completed[t], id)
	p.Percent[t] = Percent(t, len(p.Completed[t]))
	p.AddActivity(Activity{
		Kind:        ChallengeCompletion,
		Track:       t,
		ChallengeID: id,
		Description: fmt.Sprintf("Completed %s challenge %s", t, id),
		Timestamp:   now.UTC(),
	})
	p.touchStreak(now)
	p.LastUpdated = now.UTC()
	return true
}

// AddActivity prepends an activity and trims the list to MaxActivities.
func (p *UserProgress) AddActivity(a Activity) {
	list := make([]Activity, 0, min(len(p.RecentActivities)+1, MaxActivities))
	list = append(list, a)
	list = append(list, p.RecentActivities...)
	p.RecentActivities = list[:min(len(list), MaxActivities)]
}

// touchStreak advances the daily streak on the first completion of a UTC
// day: +1 when the previous active day was yesterday, otherwise back to 1.
func (p *UserProgress) touchStreak(now time.Time) {
	today := now.UTC().Format(dayLayout)
	if p.LastActiveDay == today {
		return
	}
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dayLayout)
	if p.LastActiveDay == yesterday {
		p.Streak++
	} else {
		p.Streak = 1
	}
	p.LastActiveDay = today
}

// Normalize restores the record invariants after decoding: unique ids per
// known track, percentages derived from the ids, a capped activity list
// and a non-negative streak.
func (p *UserProgress) Normalize() {
	p.ensureMaps()
	for t, ids := range p.Completed {
		if !t.Valid() {
			delete(p.Completed, t)
			continue
		}
		p.Completed[t] = dedupe(ids)
	}
	for _, t := range AllTracks() {
		if p.Completed[t] == nil {
			p.Completed[t] = []string{}
		}
		p.Percent[t] = Percent(t, len(p.Completed[t]))
	}
	for t := range p.Percent {
		if !t.Valid() {
			delete(p.Percent, t)
		}
	}
	if p.RecentActivities == nil {
		p.RecentActivities = []Activity{}
	}
	if len(p.RecentActivities) > MaxActivities {
		p.RecentActivities = p.RecentActivities[:MaxActivities]
	}
	if p.Streak < 0 {
		p.Streak = 0
	}
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	c := *p
	c.Completed = make(map[Track][]string, len(p.Completed))
	for t, ids := range p.Completed {
		c.Completed[t] = slices.Clone(ids)
	}
	c.Percent = make(map[Track]int, len(p.Percent))
	for t, v := range p.Percent {
		c.Percent[t] = v
	}
	c.RecentActivities = slices.Clone(p.RecentActivities)
	return &c
}

func (p *UserProgress) ensureMaps() {
	if p.Completed == nil {
		p.Completed = map[Track][]string{}
	}
	if p.Percent == nil {
		p.Percent = map[Track]int{}
	}
}

// MergeGuest folds a guest record into a signed-in user's record. Completed
// ids are unioned per track, activities are interleaved newest first and
// capped, and the longer streak wins. Profile fields come from remote.
func MergeGuest(remote, guest *UserProgress) *UserProgress {
	out := remote.Clone()
	if guest == nil {
		out.Normalize()
		return out
	}
	out.ensureMaps()

	for _, t := range AllTracks() {
		out.Completed[t] = dedupe(append(slices.Clone(out.Completed[t]), guest.Completed[t]...))
	}

	acts := append(slices.Clone(out.RecentActivities), guest.RecentActivities...)
	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].Timestamp.After(acts[j].Timestamp)
	})
	out.RecentActivities = acts

	if guest.Streak > out.Streak {
		out.Streak = guest.Streak
		out.LastActiveDay = guest.LastActiveDay
	}
	if guest.LastActiveDay > out.LastActiveDay {
		out.LastActiveDay = guest.LastActiveDay
	}
	if guest.LastUpdated.After(out.LastUpdated) {
		out.LastUpdated = guest.LastUpdated
	}

	out.Normalize()
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
