package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/render"
)

var (
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	summaryStyle = lipgloss.NewStyle().Bold(true)
	appStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// levelColor maps a banner level to its box border color.
func levelColor(l banner.Level) lipgloss.Color {
	switch l {
	case banner.LevelLow:
		return lipgloss.Color("8")
	case banner.LevelCritical:
		return lipgloss.Color("9")
	default:
		return lipgloss.Color("12")
	}
}

// Compose draws banner boxes over backdrop rows. The rectangle is
// quantized to whole rows; rows that land outside the screen are
// dropped, which is what slides banners in and out a cell row at a time.
func Compose(backdrop []string, overlays []Overlay, cols, rows int) []string {
	out := make([]string, rows)
	copy(out, backdrop)

	for i := range overlays {
		lines := renderOverlay(overlays[i], cols)
		startRow := int(math.Round(overlays[i].Rect.Y / UnitsPerRow))
		for j, line := range lines {
			row := startRow + j
			if row < 0 || row >= rows {
				continue
			}
			out[row] = line
		}
	}
	return out
}

// renderOverlay draws one banner as a bordered box spanning the full
// terminal width, sized by the unit-to-cell scale.
func renderOverlay(o Overlay, cols int) []string {
	heightRows := int(math.Round(o.Rect.Height / UnitsPerRow))
	if heightRows < 3 {
		heightRows = 3
	}

	title := summaryStyle.Render(render.Format(render.DefaultTitlePattern, o.Content))
	if o.Content.App != "" {
		title += " " + appStyle.Render("("+o.Content.App+")")
	}
	content := title
	if body := render.Format(render.DefaultBodyPattern, o.Content); body != "" {
		content += "\n" + body
	}

	box := boxStyle.
		BorderForeground(levelColor(o.Content.Level)).
		Width(cols - 2).
		Height(heightRows - 2).
		MaxHeight(heightRows).
		Render(content)

	return strings.Split(box, "\n")
}
