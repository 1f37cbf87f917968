package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/devcompass/devcompass/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label   string
	Percent int // 0-100
	Width   int
	Color   color.Color
}

// NewProgressBar creates a progress bar filled in c.
func NewProgressBar(label string, percent, width int, c color.Color) ProgressBar {
	return ProgressBar{
		Label:   label,
		Percent: percent,
		Width:   width,
		Color:   c,
	}
}

// View renders the bar followed by the percentage.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += theme.Body.Render(p.Label) + "  "
	}

	const percentWidth = 6 // "  100%"
	barWidth := p.Width - lipgloss.Width(result) - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := barWidth * min(max(p.Percent, 0), 100) / 100
	empty := barWidth - filled

	fill := p.Color
	if fill == nil {
		fill = theme.Primary
	}
	result += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))
	result += theme.Subtitle.Render(fmt.Sprintf("  %d%%", p.Percent))

	return result
}
