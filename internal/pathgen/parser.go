package pathgen

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

type parseState int

const (
	scanningHeader parseState = iota
	inOverview
	inDuration
	inMilestones
	inTips
)

var (
	milestoneStart = regexp.MustCompile(`^\d+[.)]`)
	milestoneLabel = regexp.MustCompile(`^\d+[.)]\s*`)
	videoURL       = regexp.MustCompile(`https?://(?:(?:www\.)?youtube\.com/watch\?v=|youtu\.be/)[a-zA-Z0-9_-]+`)
)

const searchBase = "https://www.youtube.com/results?search_query="

// fieldPrefixes are matched case-insensitively against milestone lines.
var fieldPrefixes = []string{"description:", "key concepts:", "resources:", "practice project:"}

// Parse converts free-text generator output into a learning path. Malformed
// lines are dropped. Empty overview and duration get defaults derived from
// in, milestones without a recognizable video link get search links, and
// fewer than MinMilestones milestones yield ErrInsufficientMilestones.
func Parse(text string, in Input) (*LearningPath, error) {
	p := &parser{}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		p.feed(line)
	}
	p.flush()

	return finalize(&LearningPath{
		Overview:   strings.Join(p.overview, " "),
		Duration:   strings.Join(p.duration, " "),
		Milestones: p.milestones,
		Tips:       p.tips,
	}, in)
}

type parser struct {
	state      parseState
	overview   []string
	duration   []string
	milestones []Milestone
	tips       []string
	current    *Milestone
}

func (p *parser) feed(line string) {
	bare := stripEmphasis(line)

	switch {
	case strings.HasPrefix(bare, "OVERVIEW:"):
		p.state = inOverview
		p.appendText(&p.overview, strings.TrimPrefix(bare, "OVERVIEW:"))
		return
	case strings.HasPrefix(bare, "DURATION:"):
		p.state = inDuration
		p.appendText(&p.duration, strings.TrimPrefix(bare, "DURATION:"))
		return
	case strings.HasPrefix(bare, "MILESTONES:"):
		p.state = inMilestones
		return
	case strings.HasPrefix(bare, "TIPS:"):
		p.flush()
		p.state = inTips
		return
	}

	switch p.state {
	case inOverview:
		p.appendText(&p.overview, line)
	case inDuration:
		p.appendText(&p.duration, line)
	case inMilestones:
		p.milestoneLine(bare)
	case inTips:
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "* ") {
			if tip := strings.TrimSpace(line[1:]); tip != "" {
				p.tips = append(p.tips, tip)
			}
		}
	}
}

func (p *parser) appendText(dst *[]string, s string) {
	if s = strings.TrimSpace(s); s != "" {
		*dst = append(*dst, s)
	}
}

func (p *parser) milestoneLine(line string) {
	if milestoneStart.MatchString(line) {
		p.flush()
		title := stripEmphasis(milestoneLabel.ReplaceAllString(line, ""))
		p.current = &Milestone{Title: strings.TrimRight(title, "*")}
		return
	}
	if p.current == nil {
		return
	}

	for _, prefix := range fieldPrefixes {
		if len(line) < len(prefix) || !strings.EqualFold(line[:len(prefix)], prefix) {
			continue
		}
		value := strings.TrimSpace(line[len(prefix):])
		switch prefix {
		case "description:":
			p.current.Description = value
		case "key concepts:":
			p.current.KeyConcepts = splitConcepts(value)
		case "resources:":
			p.current.Resources = videoURL.FindAllString(value, -1)
		case "practice project:":
			p.current.PracticeProject = value
		}
		return
	}
}

func (p *parser) flush() {
	if p.current != nil {
		p.milestones = append(p.milestones, *p.current)
		p.current = nil
	}
}

// stripEmphasis removes leading markdown heading and bold markers.
func stripEmphasis(s string) string {
	s = strings.TrimLeft(s, "*#")
	s = strings.TrimSpace(s)
	// "**OVERVIEW:**" leaves a trailing "**" after the marker.
	return strings.Replace(s, ":**", ":", 1)
}

func splitConcepts(s string) []string {
	return cleanList(strings.Split(s, ","))
}

// cleanList trims each entry and drops empty ones.
func cleanList(items []string) []string {
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}

// finalize applies defaults and the milestone gate shared by the structured
// and the free-text generation paths. Untitled milestones do not count.
func finalize(lp *LearningPath, in Input) (*LearningPath, error) {
	lp.Milestones = slices.DeleteFunc(lp.Milestones, func(m Milestone) bool {
		return strings.TrimSpace(m.Title) == ""
	})
	if len(lp.Milestones) < MinMilestones {
		return nil, ErrInsufficientMilestones
	}

	lp.Overview = strings.TrimSpace(lp.Overview)
	if lp.Overview == "" {
		lp.Overview = defaultOverview(in)
	}
	lp.Duration = strings.TrimSpace(lp.Duration)
	if lp.Duration == "" {
		lp.Duration = defaultDuration(in.TimeCommitment)
	}

	for i := range lp.Milestones {
		m := &lp.Milestones[i]
		m.Resources = videoLinks(m.Resources)
		if len(m.Resources) == 0 {
			m.Resources = SearchLinks(in.Goal, m.Title)
		}
	}
	return lp, nil
}

func videoLinks(resources []string) []string {
	var out []string
	for _, r := range resources {
		out = append(out, videoURL.FindAllString(r, -1)...)
	}
	return out
}

// SearchLinks returns the three video search links used when a milestone
// has no video resources of its own.
func SearchLinks(goal, title string) []string {
	base := strings.TrimSpace(goal + " " + title)
	links := make([]string, 0, 3)
	for _, suffix := range []string{"tutorial", "beginner guide", "examples"} {
		term := url.QueryEscape(base + " " + suffix)
		links = append(links, searchBase+strings.ReplaceAll(term, "+", "%20"))
	}
	return links
}

func defaultOverview(in Input) string {
	return fmt.Sprintf(
		"Welcome to your personalized %s learning journey! This path is designed for %s developers with %s time commitment.",
		in.Goal, in.SkillLevel, in.TimeCommitment,
	)
}

func defaultDuration(commitment string) string {
	switch commitment {
	case "intensive":
		return "Estimated 4-6 weeks"
	case "dedicated":
		return "Estimated 8-10 weeks"
	default:
		return "Estimated 12-16 weeks"
	}
}
