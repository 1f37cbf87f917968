package pathgen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an experienced programming mentor. You design practical, project-driven learning paths for developers and recommend real, well-known video tutorials.`

func buildStructuredMessage(in Input) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Skill level: %s\n", in.SkillLevel))
	b.WriteString(fmt.Sprintf("Learning goal: %s\n", in.Goal))
	b.WriteString(fmt.Sprintf("Time commitment: %s\n", in.TimeCommitment))

	b.WriteString(`
Instructions:
Create a learning path with AT LEAST 4 milestones, ordered from first to last.
1. The overview introduces the path in 2-4 sentences.
2. The duration is an estimate that fits the time commitment.
3. Each milestone has a short title, a one or two sentence description, 3-5 key concepts, YouTube links and a practice project.
4. Only use YouTube watch links. Leave resources empty rather than inventing links.
5. Finish with 3-5 short study tips.`)

	return b.String()
}

// buildTextMessage asks for the line-oriented format Parse understands.
func buildTextMessage(in Input) string {
	return fmt.Sprintf(`Create a learning path for a %s developer learning %s with %s time commitment.

Format the response EXACTLY as follows with AT LEAST 4 MILESTONES:

OVERVIEW:
Brief introduction to the learning path.

DURATION:
Estimated time to complete.

MILESTONES:
1. Getting Started
Description: Introduction to basic concepts
Key Concepts: concept1, concept2, concept3
Resources: https://youtube.com/watch?v=example1
Practice Project: Simple starter project

2. Core Fundamentals
Description: Building foundational knowledge
Key Concepts: concept4, concept5, concept6
Resources: https://youtube.com/watch?v=example2
Practice Project: Intermediate project

3. Advanced Concepts
Description: Diving deeper into advanced topics
Key Concepts: concept7, concept8, concept9
Resources: https://youtube.com/watch?v=example3
Practice Project: Advanced implementation

4. Final Project
Description: Putting it all together
Key Concepts: concept10, concept11, concept12
Resources: https://youtube.com/watch?v=example4
Practice Project: Comprehensive final project

TIPS:
- Tip 1
- Tip 2
- Tip 3`, in.SkillLevel, in.Goal, in.TimeCommitment)
}
