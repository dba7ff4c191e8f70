package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"

	"github.com/tOgg1/plasmid-browser/internal/logging"
	"github.com/tOgg1/plasmid-browser/internal/testutil"
)

const inventoryBody = `{
  "members": [
    {"memberId": "m10", "name": "Morgan", "worksheets": ["S3"]},
    {"memberId": "m2", "name": "Alex", "worksheets": ["S2", "S1"]}
  ],
  "rows": [
    {"Plasmid_Name": "pNRC4", "Antibiotics": "Amp", "Box_(Location)": "A1", "memberId": "m2", "worksheet": "S1", "Benchling": "https://www.benchling.com/x/y/"},
    {"Plasmid_Name": "pKan1", "Antibiotics": "Kan", "Box_(Location)": "A2", "memberId": "m2", "worksheet": "S2", "Benchling": {"url": "https://benchling.com/k", "text": "kan map"}},
    {"Plasmid_Name": "pMCh", "Descriptions": "mCherry kan reporter", "Box_(Location)": "B7", "memberId": "m10", "worksheet": "S3", "Benchling": 12345}
  ],
  "updatedAt": "2024-03-01T10:15:00Z"
}`

// isolateEnv keeps the developer's config and environment out of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "PLASMID_") || strings.HasPrefix(key, "VITE_") {
			t.Setenv(key, "")
		}
	}
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd("test")
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommandAliases(t *testing.T) {
	root := newRootCmd("dev")

	for alias, name := range map[string]string{
		"search": "query",
		"q":      "query",
		"who":    "members",
		"ui":     "browse",
	} {
		found, _, err := root.Find([]string{alias})
		require.NoError(t, err)
		require.Equal(t, name, found.Name())
	}
}

func TestQueryPrintsMatchingRows(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)

	out, _, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok-123", "--log-level", "error", "query", "kan")
	require.NoError(t, err)
	require.Equal(t, []string{"tok-123"}, srv.Tokens())

	require.Contains(t, out, "pKan1")
	require.Contains(t, out, "pMCh")
	require.NotContains(t, out, "pNRC4")
	require.Contains(t, out, "kan map")
	require.Contains(t, out, "m2 · S2")
	require.Contains(t, out, "Page 1 / 1 · Showing 1–2 of 2 results")
}

func TestQueryJSONWithFiltersAndSort(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)

	out, _, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok", "--log-level", "error",
		"query", "--member", "m2", "--sort", "plasmid:desc", "--json")
	require.NoError(t, err)

	var got struct {
		Total     int              `json:"total"`
		Page      int              `json:"page"`
		PageCount int              `json:"pageCount"`
		Rows      []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, 2, got.Total)
	require.Equal(t, 1, got.PageCount)
	require.Len(t, got.Rows, 2)
	require.Equal(t, "pNRC4", got.Rows[0]["Plasmid_Name"])
	require.Equal(t, "pKan1", got.Rows[1]["Plasmid_Name"])
	require.Equal(t, "https://www.benchling.com/x/y/", got.Rows[0]["Benchling"])
}

func TestQueryPagination(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)

	out, _, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok", "--log-level", "error",
		"query", "--page-size", "1", "--page", "9")
	require.NoError(t, err)
	require.Contains(t, out, "Page 3 / 3 · Showing 3–3 of 3 results")
	require.Contains(t, out, "pNRC4")
}

func TestQueryNoMatches(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)

	out, _, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok", "--log-level", "error", "query", "nothing-here")
	require.NoError(t, err)
	require.Contains(t, out, "No matches")
}

func TestQueryRequiresToken(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)

	_, _, err := runCLI(t, "--endpoint", srv.URL, "query")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeAuth, exitErr.Code)
	require.Contains(t, err.Error(), "not signed in")
}

func TestQueryRequiresEndpoint(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "--token", "tok", "query")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, ExitCodeUsage, exitErr.Code)
	require.Contains(t, err.Error(), "endpoint.url")
}

func TestQueryReportsRemoteError(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)
	srv.SetResponse(http.StatusOK, `{"error": "unauthorized", "reason": "not on allowlist"}`)

	_, _, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok", "--log-level", "error", "query")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unauthorized: not on allowlist")
}

func TestQueryRejectsBadSort(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "--endpoint", "https://example.com/exec", "--token", "tok", "query", "--sort", "Box:sideways")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid --sort")
}

func TestTokenFromFileAndLegacyEnv(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("from-file\n"), 0o600))
	t.Setenv("VITE_DATA_URL", srv.URL)
	t.Setenv("PLASMID_AUTH_TOKEN_FILE", tokenFile)

	_, _, err := runCLI(t, "--log-level", "error", "members")
	require.NoError(t, err)
	require.Equal(t, []string{"from-file"}, srv.Tokens())
}

func TestMembersNaturalOrder(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)

	out, _, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok", "--log-level", "error", "members", "--json")
	require.NoError(t, err)

	var got []memberOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	require.Equal(t, "m2", got[0].MemberID)
	require.Equal(t, 2, got[0].Rows)
	require.Equal(t, "m10", got[1].MemberID)
	require.Equal(t, []string{"S3"}, got[1].Worksheets)
}

func TestBrowseRequiresTTY(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "--endpoint", "https://example.com/exec", "browse")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Contains(t, err.Error(), "interactive terminal")
}

func TestLogsGoToStderr(t *testing.T) {
	isolateEnv(t)
	srv := testutil.NewEndpoint(t, inventoryBody)

	_, stderr, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok-secret", "--log-level", "debug", "--log-format", "json", "query")
	require.NoError(t, err)
	require.Contains(t, stderr, `"component":"loader"`)
	require.Contains(t, stderr, "idToken=[REDACTED]")
	require.NotContains(t, stderr, "tok-secret")
}

func TestTableAlignsWideRunes(t *testing.T) {
	tbl := newTable(column{Header: "A"}, column{Header: "B"})
	tbl.Append("质粒", "x")
	tbl.Append("ab", "y")

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	xCol := runewidth.StringWidth(lines[1][:strings.Index(lines[1], "x")])
	yCol := runewidth.StringWidth(lines[2][:strings.Index(lines[2], "y")])
	require.Equal(t, xCol, yCol)
}

func TestTableCapsAndFlattensCells(t *testing.T) {
	tbl := newTable(column{Header: "DESCRIPTION", Max: 10}, column{Header: "BOX"})
	tbl.Append("mCherry\nreporter   under a strong promoter", "B7")
	tbl.Append("short")

	var buf bytes.Buffer
	require.NoError(t, tbl.Render(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	first := strings.Fields(lines[1])
	require.Equal(t, []string{"mCherry", "r…", "B7"}, first)
	require.Equal(t, 10, runewidth.StringWidth("mCherry r…"))
	require.Equal(t, "short", lines[2])
	require.NotContains(t, buf.String(), "promoter")
}

func TestQueryTruncatesLongDescriptions(t *testing.T) {
	isolateEnv(t)
	long := strings.Repeat("kanamycin ", 10)
	body := `{"members": [], "rows": [{"Plasmid_Name": "pLong", "Descriptions": "` + long + `"}]}`
	srv := testutil.NewEndpoint(t, body)

	out, _, err := runCLI(t, "--endpoint", srv.URL, "--token", "tok", "--log-level", "error", "query", "plong")
	require.NoError(t, err)
	require.Contains(t, out, "pLong")
	require.Contains(t, out, runewidth.Truncate(strings.TrimSpace(long), maxCellWidth, "…"))
	require.NotContains(t, out, strings.TrimSpace(long))
}
