package pathgen

// Config holds learning path generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// TextFallback enables the free-text prompt when the structured request
	// fails.
	TextFallback bool
}

// DefaultConfig returns sensible defaults for path generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    2048,
		Temperature:  0.7,
		TextFallback: true,
	}
}
