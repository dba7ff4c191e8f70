package viewstate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/plasmid-browser/internal/models"
	"github.com/tOgg1/plasmid-browser/internal/query"
)

func datasetWithRows(n int, member, worksheet string) models.Dataset {
	rows := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.Record{Fields: map[string]any{
			models.FieldPlasmidName: fmt.Sprintf("p%03d", i),
			models.FieldMemberID:    member,
			models.FieldWorksheet:   worksheet,
		}})
	}
	return models.Dataset{
		Members: []models.Member{{MemberID: member, Worksheets: []string{worksheet}}},
		Rows:    rows,
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	s := New()
	require.Equal(t, query.All, s.Member)
	require.Equal(t, query.All, s.Worksheet)
	require.Equal(t, models.FieldPlasmidName, s.SortField)
	require.Equal(t, query.Asc, s.SortDir)
	require.Equal(t, 1, s.Page)
}

func TestSetSortTogglesOnSameField(t *testing.T) {
	t.Parallel()
	s := New()
	s.SortField = models.FieldAntibiotics

	s.SetSort(models.FieldBoxLocation)
	require.Equal(t, query.Asc, s.SortDir)
	s.SetSort(models.FieldBoxLocation)
	require.Equal(t, query.Desc, s.SortDir)
	s.SetSort(models.FieldBoxLocation)
	require.Equal(t, query.Asc, s.SortDir)

	s.SetSort(models.FieldBoxLocation)
	require.Equal(t, query.Desc, s.SortDir)
	s.SetSort(models.FieldPlasmidName)
	require.Equal(t, models.FieldPlasmidName, s.SortField)
	require.Equal(t, query.Asc, s.SortDir)
}

func TestSetMemberResetsWorksheetAndPage(t *testing.T) {
	t.Parallel()
	for _, prior := range []State{
		{Member: "alice", Worksheet: "S1", Page: 7},
		{Member: query.All, Worksheet: "S9", Page: 1},
		{Member: "bob", Worksheet: query.All, Page: 3},
	} {
		s := prior
		s.SetMember("bob")
		require.Equal(t, "bob", s.Member)
		require.Equal(t, query.All, s.Worksheet)
		require.Equal(t, 1, s.Page)
	}

	s := New()
	s.SetMember("")
	require.Equal(t, query.All, s.Member)
}

func TestSearchAndWorksheetChangesResetPage(t *testing.T) {
	t.Parallel()
	ds := datasetWithRows(120, "alice", "S1")
	s := New()
	s.LastPage(s.View(ds, query.PageSize).PageCount)
	require.Equal(t, 3, s.Page)

	s.SetSearch("p119")
	require.Equal(t, 1, s.Page)
	snap := s.View(ds, query.PageSize)
	require.Len(t, snap.PageRows, 1)

	s.SetSearch("")
	s.SetPage(3, s.View(ds, query.PageSize).PageCount)
	s.SetWorksheet("S1")
	require.Equal(t, 1, s.Page)
}

func TestViewClampsPageWhenResultsShrink(t *testing.T) {
	t.Parallel()
	ds := datasetWithRows(120, "alice", "S1")
	s := New()
	s.Page = 3

	// Set the search directly so the page is not reset, then derive.
	s.Search = "p00"
	snap := s.View(ds, query.PageSize)
	require.Equal(t, 1, snap.PageCount)
	require.Equal(t, 3, s.Page, "View must not modify the state")
	require.Equal(t, 1, snap.CurrentPage)
	require.Len(t, snap.PageRows, 10)
	require.Equal(t, 1, snap.Start)
	require.Equal(t, 10, snap.End)

	s.Search = "nothing matches"
	snap = s.View(ds, query.PageSize)
	require.Equal(t, 0, snap.Total)
	require.Equal(t, 1, snap.PageCount)
	require.Empty(t, snap.PageRows)
	require.Zero(t, snap.Start)
	require.Zero(t, snap.End)

	s.Clamp(snap.PageCount)
	require.Equal(t, 1, s.Page)
}

func TestPageNavigationStaysInRange(t *testing.T) {
	t.Parallel()
	ds := datasetWithRows(101, "alice", "S1")
	s := New()
	snap := s.View(ds, query.PageSize)
	require.Equal(t, 3, snap.PageCount)

	s.PrevPage()
	require.Equal(t, 1, s.Page)
	s.NextPage(snap.PageCount)
	s.NextPage(snap.PageCount)
	s.NextPage(snap.PageCount)
	require.Equal(t, 3, s.Page)

	snap = s.View(ds, query.PageSize)
	require.Len(t, snap.PageRows, 1)
	require.Equal(t, 101, snap.Start)
	require.Equal(t, 101, snap.End)

	s.SetPage(-4, snap.PageCount)
	require.Equal(t, 1, s.Page)
	s.SetPage(99, snap.PageCount)
	require.Equal(t, 3, s.Page)
	s.FirstPage()
	require.Equal(t, 1, s.Page)
}

func TestParseSortOption(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in    string
		field string
		dir   query.Direction
		ok    bool
	}{
		{"Plasmid_Name", "Plasmid_Name", query.Asc, true},
		{"Antibiotics:desc", "Antibiotics", query.Desc, true},
		{"Box_(Location):ASC", "Box_(Location)", query.Asc, true},
		{"", "", "", false},
		{"Antibiotics:sideways", "", "", false},
	}
	for _, tc := range cases {
		field, dir, err := ParseSortOption(tc.in)
		if !tc.ok {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.field, field)
		require.Equal(t, tc.dir, dir)
	}

	s := New()
	s.SetSortOrder(models.FieldAntibiotics, query.Desc)
	require.Equal(t, "Antibiotics:desc", s.SortOption())
}

func TestCycle(t *testing.T) {
	t.Parallel()
	opts := []string{"all", "a", "b"}
	require.Equal(t, "a", Cycle(opts, "all", 1))
	require.Equal(t, "all", Cycle(opts, "b", 1))
	require.Equal(t, "b", Cycle(opts, "all", -1))
	require.Equal(t, "all", Cycle(opts, "gone", 1))
	require.Equal(t, "x", Cycle(nil, "x", 1))
}
