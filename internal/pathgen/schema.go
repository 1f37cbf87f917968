package pathgen

import "github.com/devcompass/devcompass/internal/llm"

// LearningPathSchema defines the JSON schema for structured path generation.
var LearningPathSchema = &llm.Schema{
	Name:        "learning-path",
	Description: "A personalized programming learning path with ordered milestones",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overview": map[string]any{
				"type":        "string",
				"description": "Brief introduction to the learning path (2-4 sentences)",
			},
			"duration": map[string]any{
				"type":        "string",
				"description": "Estimated time to complete, e.g. \"Estimated 8-10 weeks\"",
			},
			"milestones": map[string]any{
				"type":     "array",
				"minItems": 4,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "Short milestone title (2-6 words)",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "What the learner covers in this milestone (1-2 sentences)",
						},
						"key_concepts": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "3-5 concepts introduced in this milestone",
						},
						"resources": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "YouTube video URLs (https://www.youtube.com/watch?v=...)",
						},
						"practice_project": map[string]any{
							"type":        "string",
							"description": "A small project that applies the milestone's concepts",
						},
					},
					"required":             []any{"title", "description", "key_concepts", "resources", "practice_project"},
					"additionalProperties": false,
				},
			},
			"tips": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "3-5 short study tips",
			},
		},
		"required":             []any{"overview", "duration", "milestones", "tips"},
		"additionalProperties": false,
	},
}
