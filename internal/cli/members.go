package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tOgg1/plasmid-browser/internal/models"
	"github.com/tOgg1/plasmid-browser/internal/query"
)

type memberOutput struct {
	MemberID   string   `json:"memberId,omitempty"`
	Name       string   `json:"name,omitempty"`
	Worksheets []string `json:"worksheets"`
	Rows       int      `json:"rows"`
}

func newMembersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "members",
		Aliases: []string{"member", "who"},
		Short:   "List members and their worksheets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMembers(cmd)
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

func (a *app) runMembers(cmd *cobra.Command) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	ldr, err := a.loadDataset(cmd)
	if err != nil {
		return err
	}
	ds, _ := ldr.Snapshot()
	members := listMembers(ds)

	if jsonOutput {
		payload, err := json.MarshalIndent(members, "", "  ")
		if err != nil {
			return Exitf(ExitCodeFailure, "encode members: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}

	tbl := newTable(
		column{Header: "MEMBER"},
		column{Header: "NAME", Max: maxCellWidth},
		column{Header: "WORKSHEETS", Max: maxCellWidth},
		column{Header: "ROWS"},
	)
	for _, m := range members {
		id := m.MemberID
		if id == "" {
			id = m.Name
		}
		tbl.Append(id, m.Name, strings.Join(m.Worksheets, ", "), strconv.Itoa(m.Rows))
	}
	return tbl.Render(cmd.OutOrStdout())
}

// listMembers returns members in the same natural order as the member filter.
func listMembers(ds models.Dataset) []memberOutput {
	options := query.MemberOptions(ds)
	out := make([]memberOutput, 0, len(options))
	for _, identity := range options {
		if identity == query.All {
			continue
		}
		m, ok := ds.FindMember(identity)
		if !ok {
			continue
		}
		worksheets := append([]string(nil), m.Worksheets...)
		if worksheets == nil {
			worksheets = []string{}
		}
		count := 0
		for _, r := range ds.Rows {
			if r.BelongsTo(identity) {
				count++
			}
		}
		out = append(out, memberOutput{
			MemberID:   m.MemberID,
			Name:       m.Name,
			Worksheets: worksheets,
			Rows:       count,
		})
	}
	return out
}
