package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/plasmid-browser/internal/models"
	"github.com/tOgg1/plasmid-browser/internal/testutil"
)

const sampleBody = `{
  "members": [{"memberId": "alice", "name": "Alice", "worksheets": ["S1"]}],
  "rows": [
    {"Plasmid_Name": "pNRC4", "memberId": "alice", "worksheet": "S1", "Benchling": "https://benchling.com/x/y/"},
    {"Plasmid_Name": "pKan1", "memberId": "bob", "worksheet": "S2", "Benchling": {"url": "https://benchling.com/k", "text": "kan"}},
    {"Plasmid_Name": "pBad", "Benchling": 12345}
  ],
  "updatedAt": "2024-03-01T10:15:00Z"
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	testutil.SkipIfNoNetwork(t)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecodesDataset(t *testing.T) {
	var gotQuery, gotCache, gotRequestID string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCache = r.Header.Get("Cache-Control")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	})

	client := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))
	ds, err := client.Fetch(context.Background(), "tok en")
	require.NoError(t, err)

	require.Equal(t, "idToken=tok+en", gotQuery)
	require.Equal(t, "no-store", gotCache)
	require.NotEmpty(t, gotRequestID)

	require.Len(t, ds.Members, 1)
	require.Len(t, ds.Rows, 3)
	require.Equal(t, models.LinkURL, ds.Rows[0].Link.Kind)
	require.Equal(t, models.LinkStructured, ds.Rows[1].Link.Kind)
	require.Equal(t, "kan", ds.Rows[1].Link.Text)
	require.Equal(t, models.LinkNone, ds.Rows[2].Link.Kind)
	require.NotNil(t, ds.UpdatedAt)
	require.True(t, ds.UpdatedAt.Equal(time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)))
}

func TestFetchAppendsToExistingQuery(t *testing.T) {
	var got string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	})

	client := NewClient(srv.URL+"/exec?sheet=all", time.Second,
		WithHTTPClient(srv.Client()), WithTokenParam("id_token"))
	ds, err := client.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, "sheet=all&id_token=abc", got)
	require.NotNil(t, ds.Members)
	require.NotNil(t, ds.Rows)
	require.Empty(t, ds.Rows)
	require.Nil(t, ds.UpdatedAt)
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"rows": []}`))
	})

	_, err := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client())).Fetch(context.Background(), "t")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
	require.Equal(t, "HTTP 503", err.Error())
	require.False(t, terr.Timeout())
}

func TestFetchInvalidJSON(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>sign in</html>`))
	})

	_, err := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client())).Fetch(context.Background(), "t")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestFetchRemoteErrorRegardlessOfStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": "unauthorized", "reason": "not on allowlist", "rows": "garbage"}`))
	})

	_, err := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client())).Fetch(context.Background(), "t")
	var rerr *RemoteError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "unauthorized: not on allowlist", err.Error())
}

func TestFetchTimeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	hc := srv.Client()
	hc.Timeout = 50 * time.Millisecond
	_, err := NewClient(srv.URL, time.Second, WithHTTPClient(hc)).Fetch(context.Background(), "secret-token")
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	require.True(t, terr.Timeout())
	require.NotContains(t, err.Error(), "secret-token")
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr any
	}{
		{name: "empty object", body: `{}`},
		{name: "null members and rows", body: `{"members": null, "rows": null}`},
		{name: "falsy error ignored", body: `{"error": "", "rows": []}`},
		{name: "array body", body: `[]`, wantErr: &ParseError{}},
		{name: "null body", body: `null`, wantErr: &ParseError{}},
		{name: "rows wrong type", body: `{"rows": {"a": 1}}`, wantErr: &ParseError{}},
		{name: "numeric member id and worksheet", body: `{"members": [{"memberId": 7, "worksheets": ["S1", 3]}], "rows": [{"Plasmid_Name": "p1"}]}`},
		{name: "malformed member entry", body: `{"members": ["alice", null, {"name": "Bo", "worksheets": "S1"}]}`},
		{name: "error without reason", body: `{"error": "boom"}`, wantErr: &RemoteError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Decode([]byte(tt.body))
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				require.NotNil(t, ds.Members)
				require.NotNil(t, ds.Rows)
			case *ParseError:
				require.ErrorAs(t, err, &want)
			case *RemoteError:
				require.ErrorAs(t, err, &want)
				require.Equal(t, "boom", err.Error())
			}
		})
	}
}

func TestDecodeStringifiesMemberScalars(t *testing.T) {
	ds, err := Decode([]byte(`{
  "members": [
    {"memberId": 7, "name": "Alex", "worksheets": ["S1", 3, {"x": 1}, ""]},
    "not a member"
  ],
  "rows": [{"Plasmid_Name": "p1", "memberId": 7, "worksheet": 3}]
}`))
	require.NoError(t, err)
	require.Len(t, ds.Rows, 1)
	require.Len(t, ds.Members, 2)
	require.Equal(t, models.Member{MemberID: "7", Name: "Alex", Worksheets: []string{"S1", "3"}}, ds.Members[0])
	require.Equal(t, models.Member{}, ds.Members[1])

	m, ok := ds.FindMember("7")
	require.True(t, ok)
	require.True(t, ds.Rows[0].BelongsTo(m.Identity()))
}

func TestDecodeUpdatedAt(t *testing.T) {
	ds, err := Decode([]byte(`{"updatedAt": "yesterday"}`))
	require.NoError(t, err)
	require.Nil(t, ds.UpdatedAt)

	ds, err = Decode([]byte(`{"updatedAt": "2024-03-01T10:15:00.123+02:00"}`))
	require.NoError(t, err)
	require.NotNil(t, ds.UpdatedAt)
}

func TestOutcome(t *testing.T) {
	require.Equal(t, OutcomeSuccess, Outcome(nil))
	require.Equal(t, OutcomeTransport, Outcome(&TransportError{StatusCode: 500}))
	require.Equal(t, OutcomeParse, Outcome(&ParseError{Err: errors.New("x")}))
	require.Equal(t, OutcomeRemote, Outcome(&RemoteError{Message: "x"}))
	require.Equal(t, OutcomeCanceled, Outcome(&TransportError{Err: context.Canceled}))
}
