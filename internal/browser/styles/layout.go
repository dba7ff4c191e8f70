package styles

import "github.com/charmbracelet/lipgloss"

const (
	// LayoutGap is the default space between columns.
	LayoutGap = 2

	// LayoutInnerPadding is the default panel content padding.
	LayoutInnerPadding = 1
)

const (
	minPlasmidWidth     = 10
	maxPlasmidWidth     = 18
	minInfoWidth        = 10
	minAbxWidth         = 5
	maxAbxWidth         = 10
	minDescriptionWidth = 12
	minBoxWidth         = 5
	maxBoxWidth         = 10
	minLinkWidth        = 10
	maxLinkWidth        = 28
	minOwnerWidth       = 10
	maxOwnerWidth       = 20
)

// ColumnWidths defines responsive widths for the result table.
type ColumnWidths struct {
	Plasmid     int
	Info        int
	Abx         int
	Description int
	Box         int
	Link        int
	Owner       int
}

// Slice returns the widths in display order.
func (w ColumnWidths) Slice() []int {
	return []int{w.Plasmid, w.Info, w.Abx, w.Description, w.Box, w.Link, w.Owner}
}

// Total returns the rendered width including gaps.
func (w ColumnWidths) Total() int {
	total := 0
	visible := 0
	for _, width := range w.Slice() {
		if width > 0 {
			total += width
			visible++
		}
	}
	if visible > 1 {
		total += LayoutGap * (visible - 1)
	}
	return total
}

// ComputeColumnWidths returns responsive widths for the table columns.
// Narrow terminals drop the info and owner columns first.
func ComputeColumnWidths(totalWidth int) ColumnWidths {
	if totalWidth <= 0 {
		return ColumnWidths{}
	}

	w := ColumnWidths{
		Plasmid:     clampInt(totalWidth/8, minPlasmidWidth, maxPlasmidWidth),
		Info:        minInfoWidth,
		Abx:         clampInt(totalWidth/16, minAbxWidth, maxAbxWidth),
		Description: minDescriptionWidth,
		Box:         clampInt(totalWidth/16, minBoxWidth, maxBoxWidth),
		Link:        clampInt(totalWidth/6, minLinkWidth, maxLinkWidth),
		Owner:       clampInt(totalWidth/8, minOwnerWidth, maxOwnerWidth),
	}

	if w.Total() > totalWidth {
		w.Info = 0
	}
	if w.Total() > totalWidth {
		w.Owner = 0
	}
	if w.Total() > totalWidth {
		return narrowColumns(totalWidth)
	}

	// Free-text columns absorb the remaining space.
	spare := totalWidth - w.Total()
	if w.Info > 0 {
		w.Info += spare / 2
		spare -= spare / 2
	}
	w.Description += spare
	return w
}

func narrowColumns(totalWidth int) ColumnWidths {
	plasmid := minInt(maxPlasmidWidth, maxInt(totalWidth/2, 1))
	rest := totalWidth - plasmid - LayoutGap
	if rest < minDescriptionWidth {
		return ColumnWidths{Plasmid: totalWidth}
	}
	return ColumnWidths{Plasmid: plasmid, Description: rest}
}

// PanelStyle returns the bordered panel style used for prompts.
func PanelStyle(theme Theme) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(panelBorderStyle(theme)).
		BorderForeground(lipgloss.Color(theme.Base.Border)).
		Padding(LayoutInnerPadding, LayoutInnerPadding*2)
}

func panelBorderStyle(theme Theme) lipgloss.Border {
	switch theme.BorderStyle {
	case "double":
		return lipgloss.DoubleBorder()
	case "sharp":
		return lipgloss.NormalBorder()
	case "hidden":
		return lipgloss.HiddenBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
