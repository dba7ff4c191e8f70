package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tOgg1/plasmid-browser/internal/models"
	"github.com/tOgg1/plasmid-browser/internal/query"
	"github.com/tOgg1/plasmid-browser/internal/viewstate"
)

type queryOutput struct {
	Total     int             `json:"total"`
	Page      int             `json:"page"`
	PageCount int             `json:"pageCount"`
	PageSize  int             `json:"pageSize"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
	Rows      []models.Record `json:"rows"`
}

func newQueryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query [search words...]",
		Aliases: []string{"search", "q"},
		Short:   "Search plasmids and print one page of results",
		Long: "Search plasmids and print one page of results.\n\n" +
			"Every search word must appear somewhere in a row (case-insensitive).\n" +
			"Sort with --sort field[:asc|desc], where field is a column key or label.",
		Example: "  plasmid query kan a1\n" +
			"  plasmid query --member alice --worksheet S1 --sort Box:desc\n" +
			"  plasmid query --search mCherry --page 2 --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd, args)
		},
	}
	flags := cmd.Flags()
	flags.String("search", "", "search text (alternative to positional words)")
	flags.String("member", query.All, "member id or name")
	flags.String("worksheet", query.All, "worksheet name")
	flags.String("sort", viewstate.New().SortOption(), "sort field[:asc|desc]")
	flags.Int("page", 1, "page number")
	flags.Int("page-size", 0, "rows per page (default from config)")
	flags.Bool("json", false, "output JSON")
	return cmd
}

func (a *app) runQuery(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	member, _ := cmd.Flags().GetString("member")
	worksheet, _ := cmd.Flags().GetString("worksheet")
	sortOpt, _ := cmd.Flags().GetString("sort")
	page, _ := cmd.Flags().GetInt("page")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if search == "" {
		search = strings.Join(args, " ")
	} else if len(args) > 0 {
		return Exitf(ExitCodeUsage, "provide either search words or --search, not both")
	}
	field, dir, err := viewstate.ParseSortOption(sortOpt)
	if err != nil {
		return Exitf(ExitCodeUsage, "invalid --sort: %v", err)
	}

	ldr, err := a.loadDataset(cmd)
	if err != nil {
		return err
	}
	ds, _ := ldr.Snapshot()

	state := viewstate.New()
	state.SetSearch(search)
	state.SetMember(member)
	state.SetWorksheet(worksheet)
	state.SetSortOrder(resolveField(field), dir)
	state.Page = page
	snap := state.View(ds, a.cfg.Browse.PageSize)

	if jsonOutput {
		payload, err := json.MarshalIndent(queryOutput{
			Total:     snap.Total,
			Page:      snap.CurrentPage,
			PageCount: snap.PageCount,
			PageSize:  snap.PageSize,
			UpdatedAt: ds.UpdatedAt,
			Rows:      snap.PageRows,
		}, "", "  ")
		if err != nil {
			return Exitf(ExitCodeFailure, "encode results: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}
	return writeResults(cmd.OutOrStdout(), snap)
}

func writeResults(out io.Writer, snap viewstate.Snapshot) error {
	if snap.Total == 0 {
		_, err := fmt.Fprintln(out, "No matches. Try a different keyword or filter.")
		return err
	}

	tbl := newTable(resultColumns()...)
	for _, r := range snap.PageRows {
		cells := make([]string, 0, len(models.DisplayFields)+2)
		for _, field := range models.DisplayFields {
			cells = append(cells, r.Value(field))
		}
		tbl.Append(append(cells, r.Link.Label(), r.Owner()+" · "+r.Worksheet())...)
	}
	if err := tbl.Render(out); err != nil {
		return err
	}

	noun := "results"
	if snap.Total == 1 {
		noun = "result"
	}
	_, err := fmt.Fprintf(out, "\nPage %d / %d · Showing %d–%d of %d %s\n",
		snap.CurrentPage, snap.PageCount, snap.Start, snap.End, snap.Total, noun)
	return err
}

// resolveField accepts a column key or its label, case-insensitively.
func resolveField(field string) string {
	for _, col := range models.Columns {
		if strings.EqualFold(field, col.Key) || strings.EqualFold(field, col.Label) {
			return col.Key
		}
	}
	return field
}
