package pathgen

import "errors"

// MinMilestones is the smallest number of milestones a usable path has.
const MinMilestones = 2

var (
	// ErrInsufficientMilestones means the generator ignored the requested
	// format. The message is shown to the user as is.
	ErrInsufficientMilestones = errors.New("Not enough milestones were generated. Please try again.")

	// ErrMissingInput is returned when skill level, goal or time commitment
	// is empty.
	ErrMissingInput = errors.New("please fill in all fields")
)

// Milestone is one step of a learning path.
type Milestone struct {
	Title           string
	Description     string
	KeyConcepts     []string
	Resources       []string
	PracticeProject string
}

// LearningPath is a generated path. It is never persisted.
type LearningPath struct {
	Overview   string
	Duration   string
	Milestones []Milestone
	Tips       []string
}

// Input describes the learner the path is generated for.
type Input struct {
	SkillLevel     string // beginner, intermediate, advanced
	Goal           string // web, python, javascript, fullstack or any topic
	TimeCommitment string // casual, dedicated, intensive
}

func (in Input) validate() error {
	if in.SkillLevel == "" || in.Goal == "" || in.TimeCommitment == "" {
		return ErrMissingInput
	}
	return nil
}
