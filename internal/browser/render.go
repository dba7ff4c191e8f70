package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tOgg1/plasmid-browser/internal/browser/styles"
	"github.com/tOgg1/plasmid-browser/internal/loader"
	"github.com/tOgg1/plasmid-browser/internal/models"
	"github.com/tOgg1/plasmid-browser/internal/query"
	"github.com/tOgg1/plasmid-browser/internal/viewstate"
)

const (
	defaultWidth   = 120
	updatedLayout  = "2006-01-02 15:04:05"
	ownerHeading   = "Member / Sheet"
	emptyResultMsg = "No matches. Try a different keyword or filter."
)

func (m *Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	header := m.renderHeader(width)
	if m.mode == modeSignIn {
		return lipgloss.JoinVertical(lipgloss.Left, header, "", m.renderSignIn(width))
	}

	ds, status := m.loader.Snapshot()
	snap := m.state.View(ds, m.pageSize)

	sections := []string{
		header,
		m.renderFilters(),
		m.renderStatus(snap, status),
		m.renderTable(snap, status, width),
		m.renderPager(snap),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader(width int) string {
	left := m.theme.Title().Render("Plasmid Browser")
	ds, _ := m.loader.Snapshot()
	if ds.UpdatedAt != nil {
		left += "  " + m.theme.Muted().Render("Updated: "+ds.UpdatedAt.Local().Format(updatedLayout))
	}

	right := m.theme.Muted().Render("Not signed in")
	if creds, ok := m.gate.Credentials(); ok {
		label := creds.Identity
		if label == "" {
			label = "(unknown identity)"
		}
		right = m.theme.Header().Render("Signed in: " + label)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left + "\n" + right
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderSignIn(width int) string {
	lines := []string{
		m.theme.Title().Render("Sign in"),
		"",
		"Sign in with your Google account (Workspace or allowlisted Gmail) to view plasmids.",
	}
	if m.clientID != "" {
		lines = append(lines, m.theme.Muted().Render("OAuth client: "+m.clientID))
	}
	lines = append(lines, "", m.tokenInput.View())
	if m.signInErr != "" {
		lines = append(lines, m.theme.Error().Render(m.signInErr))
	}
	hint := "enter: sign in · ctrl+c: quit"
	if _, ok := m.gate.Credentials(); ok {
		hint = "enter: sign in · esc: keep current session · ctrl+c: quit"
	}
	lines = append(lines, "", m.theme.Muted().Render(hint))

	panelWidth := width - 4
	if panelWidth > 96 {
		panelWidth = 96
	}
	if panelWidth < 20 {
		panelWidth = 20
	}
	return styles.PanelStyle(m.theme).Width(panelWidth).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFilters() string {
	search := m.search.View()
	if m.mode != modeSearch {
		value := m.state.Search
		if value == "" {
			value = m.theme.Muted().Render("(press / to search)")
		}
		search = "Search: " + value
	}
	parts := []string{
		search,
		"Member: " + m.theme.Accent().Render(m.state.Member),
		"Worksheet: " + m.theme.Accent().Render(m.state.Worksheet),
		"Sort: " + m.theme.Accent().Render(sortLabel(m.state.SortField, m.state.SortDir)),
	}
	return strings.Join(parts, "   ")
}

func (m *Model) renderStatus(snap viewstate.Snapshot, status loader.Status) string {
	var line string
	if status.Loading() {
		line = m.theme.Loading().Render(m.spinner.View() + " Loading…")
	} else {
		line = m.theme.Ready().Render(resultCount(snap.Total))
	}
	if status.Err != "" {
		line += "  " + m.theme.Error().Render(status.Err)
	}
	return line
}

func (m *Model) renderTable(snap viewstate.Snapshot, status loader.Status, width int) string {
	widths := styles.ComputeColumnWidths(width).Slice()

	headings := make([]string, 0, len(widths))
	for _, col := range models.Columns {
		label := col.Label
		if col.Key == m.state.SortField {
			label += " " + sortArrow(m.state.SortDir)
		}
		headings = append(headings, label)
	}
	headings = append(headings, ownerHeading)

	lines := []string{m.theme.Heading().Render(joinCells(headings, widths))}
	if len(snap.PageRows) == 0 {
		if !status.Loading() {
			lines = append(lines, m.theme.Muted().Render(emptyResultMsg))
		}
		return strings.Join(lines, "\n")
	}

	for _, row := range snap.PageRows {
		cells := rowCells(row)
		rendered := make([]string, 0, len(cells))
		for i, cell := range cells {
			if widths[i] <= 0 {
				continue
			}
			text := fitCell(cell, widths[i])
			switch i {
			case len(models.DisplayFields):
				text = m.linkStyle(row.Link).Render(text)
			case len(cells) - 1:
				text = m.theme.Owner().Render(text)
			default:
				text = m.theme.Cell().Render(text)
			}
			rendered = append(rendered, text)
		}
		lines = append(lines, strings.Join(rendered, strings.Repeat(" ", styles.LayoutGap)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderPager(snap viewstate.Snapshot) string {
	line := fmt.Sprintf("Page %d / %d", snap.CurrentPage, snap.PageCount)
	if snap.Total > 0 {
		line += fmt.Sprintf(" · Showing %d–%d", snap.Start, snap.End)
	}
	return m.theme.Footer().Render(line)
}

// rowCells returns the display text for each column followed by the owner
// column.
func rowCells(row models.Record) []string {
	cells := make([]string, 0, len(models.Columns)+1)
	for _, field := range models.DisplayFields {
		cells = append(cells, row.Value(field))
	}
	cells = append(cells, row.Link.Label())
	return append(cells, row.Owner()+" · "+row.Worksheet())
}

func joinCells(cells []string, widths []int) string {
	out := make([]string, 0, len(cells))
	for i, cell := range cells {
		if i >= len(widths) || widths[i] <= 0 {
			continue
		}
		out = append(out, fitCell(cell, widths[i]))
	}
	return strings.Join(out, strings.Repeat(" ", styles.LayoutGap))
}

// fitCell flattens whitespace and pads or truncates to exactly width cells.
func fitCell(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

// linkStyle underlines links that have a target. Text-only links render
// muted so they do not read as clickable.
func (m *Model) linkStyle(link models.Link) lipgloss.Style {
	if link.Href() == "" {
		return m.theme.Muted()
	}
	return m.theme.Link()
}

func resultCount(total int) string {
	if total == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", total)
}

func sortArrow(dir query.Direction) string {
	if dir == query.Desc {
		return "▼"
	}
	return "▲"
}

func sortLabel(field string, dir query.Direction) string {
	return fmt.Sprintf("%s (%s)", models.ColumnLabel(field), dir)
}
