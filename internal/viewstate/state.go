// Package viewstate holds the user-adjustable query parameters and the
// reset rules between them.
package viewstate

import (
	"fmt"
	"strings"

	"github.com/tOgg1/plasmid-browser/internal/models"
	"github.com/tOgg1/plasmid-browser/internal/query"
)

// State is the browser's current query selection.
type State struct {
	Search    string
	Member    string
	Worksheet string
	SortField string
	SortDir   query.Direction
	Page      int
}

// New returns the initial state: everything selected, sorted by plasmid
// name ascending, first page.
func New() State {
	return State{
		Member:    query.All,
		Worksheet: query.All,
		SortField: models.FieldPlasmidName,
		SortDir:   query.Asc,
		Page:      1,
	}
}

// Params returns the query inputs for the current state.
func (s State) Params() query.Params {
	return query.Params{
		Search:    s.Search,
		Member:    s.Member,
		Worksheet: s.Worksheet,
		SortField: s.SortField,
		SortDir:   s.SortDir,
	}
}

// SetSearch replaces the search text and returns to the first page.
func (s *State) SetSearch(text string) {
	s.Search = text
	s.Page = 1
}

// SetMember selects a member. The worksheet selection only makes sense
// relative to a member, so it resets to "all" along with the page.
func (s *State) SetMember(member string) {
	if strings.TrimSpace(member) == "" {
		member = query.All
	}
	s.Member = member
	s.Worksheet = query.All
	s.Page = 1
}

// SetWorksheet selects a worksheet and returns to the first page.
func (s *State) SetWorksheet(worksheet string) {
	if strings.TrimSpace(worksheet) == "" {
		worksheet = query.All
	}
	s.Worksheet = worksheet
	s.Page = 1
}

// SetSort sorts by field. Selecting the current field flips the direction;
// a new field starts ascending.
func (s *State) SetSort(field string) {
	if field == s.SortField {
		s.SortDir = s.SortDir.Toggle()
		return
	}
	s.SortField = field
	s.SortDir = query.Asc
}

// SetSortOrder sets field and direction explicitly.
func (s *State) SetSortOrder(field string, dir query.Direction) {
	s.SortField = field
	if dir != query.Desc {
		dir = query.Asc
	}
	s.SortDir = dir
}

// SortOption renders the sort selection as "field:dir".
func (s State) SortOption() string {
	return s.SortField + ":" + string(s.SortDir)
}

// ParseSortOption parses "field" or "field:asc|desc".
func ParseSortOption(option string) (string, query.Direction, error) {
	field, dir, _ := strings.Cut(strings.TrimSpace(option), ":")
	field = strings.TrimSpace(field)
	if field == "" {
		return "", "", fmt.Errorf("sort field required")
	}
	switch query.Direction(strings.ToLower(strings.TrimSpace(dir))) {
	case "", query.Asc:
		return field, query.Asc, nil
	case query.Desc:
		return field, query.Desc, nil
	default:
		return "", "", fmt.Errorf("invalid sort direction %q", dir)
	}
}

// SetPage moves to page n, clamped into [1, pageCount].
func (s *State) SetPage(n, pageCount int) {
	s.Page = n
	s.Clamp(pageCount)
}

// FirstPage moves to page 1.
func (s *State) FirstPage() { s.Page = 1 }

// PrevPage moves back one page, stopping at 1.
func (s *State) PrevPage() { s.SetPage(s.Page-1, s.Page) }

// NextPage moves forward one page, stopping at pageCount.
func (s *State) NextPage(pageCount int) { s.SetPage(s.Page+1, pageCount) }

// LastPage moves to pageCount.
func (s *State) LastPage(pageCount int) { s.SetPage(pageCount, pageCount) }

// Clamp keeps Page inside [1, pageCount].
func (s *State) Clamp(pageCount int) {
	if pageCount < 1 {
		pageCount = 1
	}
	if s.Page > pageCount {
		s.Page = pageCount
	}
	if s.Page < 1 {
		s.Page = 1
	}
}

// Snapshot is one derivation of the state against a dataset.
type Snapshot struct {
	query.Result

	// CurrentPage is the clamped current page.
	CurrentPage int
	// PageRows are the rows on CurrentPage.
	PageRows []models.Record
	// Start and End are the 1-based positions of the first and last row on
	// the page; both are zero when there are no rows.
	Start int
	End   int

	WorksheetOptions []string
	MemberOptions    []string
}

// View derives the visible rows. The page is clamped into the derived page
// count for the snapshot only; s is not modified.
func (s State) View(ds models.Dataset, pageSize int) Snapshot {
	res := query.Derive(ds, s.Params(), pageSize)
	s.Clamp(res.PageCount)

	start, end := query.Bounds(res.Total, s.Page, res.PageSize)
	snap := Snapshot{
		Result:           res,
		CurrentPage:      s.Page,
		PageRows:         res.Rows[start:end],
		WorksheetOptions: query.WorksheetOptions(ds, s.Member),
		MemberOptions:    query.MemberOptions(ds),
	}
	if end > start {
		snap.Start = start + 1
		snap.End = end
	}
	return snap
}

// Cycle steps through options starting from current, wrapping at both ends.
// An unknown current value starts from the first option.
func Cycle(options []string, current string, step int) string {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, opt := range options {
		if opt == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return options[0]
	}
	n := len(options)
	return options[((idx+step)%n+n)%n]
}
