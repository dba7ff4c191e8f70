// Package query derives the visible rows of a dataset from the current
// filter, search, sort and page selection. Everything here is pure.
package query

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tOgg1/plasmid-browser/internal/models"
)

// All selects every member or worksheet.
const All = "all"

// PageSize is the fixed number of rows per page.
const PageSize = 50

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Params are the user-adjustable query inputs.
type Params struct {
	Search    string
	Member    string
	Worksheet string
	SortField string
	SortDir   Direction
}

// Result is the filtered, searched and sorted row set.
type Result struct {
	Rows      []models.Record
	Total     int
	PageCount int
	PageSize  int
}

// Derive computes the visible rows for params. The dataset is not modified.
func Derive(ds models.Dataset, params Params, pageSize int) Result {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	rows := Filter(ds.Rows, params)
	Sort(rows, params.SortField, params.SortDir)
	return Result{
		Rows:      rows,
		Total:     len(rows),
		PageCount: PageCount(len(rows), pageSize),
		PageSize:  pageSize,
	}
}

// Page returns the rows on a 1-based page; out-of-range pages are empty.
func (r Result) Page(page int) []models.Record {
	start, end := Bounds(r.Total, page, r.PageSize)
	return r.Rows[start:end]
}

// Filter returns the rows passing the member, worksheet and search filters,
// in their original order. The returned slice is always a fresh copy.
func Filter(rows []models.Record, params Params) []models.Record {
	needles := Needles(params.Search)
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		if Matches(row, params, needles) {
			out = append(out, row)
		}
	}
	return out
}

// Matches reports whether row passes every filter.
func Matches(row models.Record, params Params, needles []string) bool {
	return memberMatches(row, params.Member) &&
		worksheetMatches(row, params.Worksheet) &&
		searchMatches(row, needles)
}

func memberMatches(row models.Record, member string) bool {
	return isAll(member) || row.BelongsTo(member)
}

func worksheetMatches(row models.Record, worksheet string) bool {
	return isAll(worksheet) || row.Worksheet() == worksheet
}

func searchMatches(row models.Record, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	haystack := Haystack(row)
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

// Needles splits search text into lowercase whitespace-delimited tokens.
func Needles(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Haystack is the lowercase text a row is searched in: the non-empty display
// fields and the link's url-or-text, space-joined.
func Haystack(row models.Record) string {
	parts := make([]string, 0, len(models.DisplayFields)+1)
	for _, field := range models.DisplayFields {
		if v := row.Value(field); v != "" {
			parts = append(parts, v)
		}
	}
	if v := row.Link.SearchText(); v != "" {
		parts = append(parts, v)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Sort orders rows in place by the lowercase string value of field.
func Sort(rows []models.Record, field string, dir Direction) {
	if field == "" {
		return
	}
	keys := make([]string, len(rows))
	for i := range rows {
		keys[i] = strings.ToLower(rows[i].Value(field))
	}
	sort.Stable(byKey{rows: rows, keys: keys, desc: dir == Desc})
}

type byKey struct {
	rows []models.Record
	keys []string
	desc bool
}

func (b byKey) Len() int { return len(b.rows) }

func (b byKey) Less(i, j int) bool {
	if b.desc {
		return b.keys[i] > b.keys[j]
	}
	return b.keys[i] < b.keys[j]
}

func (b byKey) Swap(i, j int) {
	b.rows[i], b.rows[j] = b.rows[j], b.rows[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// PageCount is max(1, ceil(total/size)).
func PageCount(total, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Bounds returns the [start, end) slice bounds of a 1-based page.
func Bounds(total, page, size int) (int, int) {
	if size <= 0 {
		size = PageSize
	}
	if page < 1 || total <= 0 {
		return 0, 0
	}
	start := (page - 1) * size
	if start >= total {
		return total, total
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}

// WorksheetOptions lists the worksheet filter choices for a member
// selection, "all" first. For a specific member the declared worksheets are
// used, so worksheets without rows are still offered.
func WorksheetOptions(ds models.Dataset, member string) []string {
	var names []string
	if isAll(member) {
		seen := make(map[string]struct{})
		for _, row := range ds.Rows {
			ws := row.Worksheet()
			if ws == "" {
				continue
			}
			if _, ok := seen[ws]; ok {
				continue
			}
			seen[ws] = struct{}{}
			names = append(names, ws)
		}
	} else if m, ok := ds.FindMember(member); ok {
		names = append(names, m.Worksheets...)
	}
	sort.Strings(names)
	return append([]string{All}, names...)
}

// MemberOptions lists the member filter choices, "all" first, in natural
// case-insensitive order ("m2" before "m10").
func MemberOptions(ds models.Dataset) []string {
	names := make([]string, 0, len(ds.Members))
	for _, m := range ds.Members {
		if id := m.Identity(); id != "" {
			names = append(names, id)
		}
	}
	col := collate.New(language.Und, collate.Numeric, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(names, func(i, j int) bool {
		return col.CompareString(names[i], names[j]) < 0
	})
	return append([]string{All}, names...)
}

func isAll(v string) bool {
	return v == "" || v == All
}
