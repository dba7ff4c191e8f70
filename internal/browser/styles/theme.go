package styles

import "github.com/charmbracelet/lipgloss"

// BaseColors defines global UI colors.
type BaseColors struct {
	Background string
	Foreground string
	Muted      string
	Accent     string
	Border     string
}

// StatusColors defines colors for load state.
type StatusColors struct {
	Loading string
	Error   string
	Ready   string
}

// ChromeColors defines non-content UI colors.
type ChromeColors struct {
	Header     string
	Footer     string
	Title      string
	SortMarker string
}

// TableColors defines colors for the result table.
type TableColors struct {
	Heading string
	Link    string
	Owner   string
}

// Theme defines the browser style/theme tokens.
type Theme struct {
	Name        string
	BorderStyle string // "rounded", "sharp", "double", "hidden"

	Base   BaseColors
	Status StatusColors
	Chrome ChromeColors
	Table  TableColors
}

// Themes lists available palettes by name.
var Themes = map[string]Theme{
	"default":       DefaultTheme,
	"high-contrast": HighContrastTheme,
}

// Lookup returns the named theme, falling back to DefaultTheme.
func Lookup(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return DefaultTheme
}

// Muted renders secondary text.
func (t Theme) Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Muted))
}

// Accent renders highlighted text.
func (t Theme) Accent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Accent))
}

// Title renders the application title.
func (t Theme) Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Chrome.Title))
}

// Header renders header metadata.
func (t Theme) Header() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Header))
}

// Footer renders the pager line.
func (t Theme) Footer() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Chrome.Footer))
}

// Error renders the load error.
func (t Theme) Error() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Status.Error))
}

// Loading renders the loading indicator.
func (t Theme) Loading() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Status.Loading))
}

// Heading renders table column headings.
func (t Theme) Heading() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Table.Heading))
}

// Cell renders a plain table cell.
func (t Theme) Cell() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Base.Foreground))
}

// SortMarker renders the active sort arrow.
func (t Theme) SortMarker() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Chrome.SortMarker))
}

// Link renders a link label.
func (t Theme) Link() lipgloss.Style {
	return lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(t.Table.Link))
}

// Owner renders the member and worksheet column.
func (t Theme) Owner() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Table.Owner))
}

// Ready renders the result count once a load has settled.
func (t Theme) Ready() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Status.Ready))
}
