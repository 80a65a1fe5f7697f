package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/remote"
	"saldo/internal/remote/remotetest"
)

// fakeSheets implements the handful of Sheets v4 endpoints the client uses,
// backed by in-memory string matrices.
type fakeSheets struct {
	mu     sync.Mutex
	sheets map[string][][]interface{}
	ids    map[string]int64
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{
		sheets: map[string][][]interface{}{
			"Transactions": {transactionHeader},
			"Budgets":      {budgetHeader},
		},
		ids: map[string]int64{"Transactions": 0, "Budgets": 7},
	}
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	id, rest, _ := strings.Cut(path, "/")

	switch {
	case r.Method == http.MethodGet && rest == "":
		var sheets []*gsheet.Sheet
		for title, sid := range f.ids {
			sheets = append(sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{Title: title, SheetId: sid}})
		}
		writeJSON(w, &gsheet.Spreadsheet{SpreadsheetId: id, Sheets: sheets})

	case r.Method == http.MethodPost && strings.HasSuffix(id, ":batchUpdate"):
		var req gsheet.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, rq := range req.Requests {
			dd := rq.DeleteDimension
			if dd == nil {
				continue
			}
			title := f.titleFor(dd.Range.SheetId)
			rows := f.sheets[title]
			f.sheets[title] = append(rows[:dd.Range.StartIndex:dd.Range.StartIndex], rows[dd.Range.EndIndex:]...)
		}
		writeJSON(w, &gsheet.BatchUpdateSpreadsheetResponse{SpreadsheetId: strings.TrimSuffix(id, ":batchUpdate")})

	case strings.HasPrefix(rest, "values/"):
		rng := strings.TrimPrefix(rest, "values/")
		switch r.Method {
		case http.MethodGet:
			title, _, _ := strings.Cut(rng, "!")
			writeJSON(w, &gsheet.ValueRange{Range: rng, MajorDimension: "ROWS", Values: f.sheets[title]})
		case http.MethodPost:
			rng = strings.TrimSuffix(rng, ":append")
			title, _, _ := strings.Cut(rng, "!")
			vr := decodeValues(w, r)
			if vr == nil {
				return
			}
			f.sheets[title] = append(f.sheets[title], vr.Values...)
			writeJSON(w, &gsheet.AppendValuesResponse{SpreadsheetId: id})
		case http.MethodPut:
			title, cells, _ := strings.Cut(rng, "!")
			start, _, _ := strings.Cut(cells, ":")
			n, err := strconv.Atoi(strings.TrimLeft(start, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			vr := decodeValues(w, r)
			if vr == nil {
				return
			}
			f.sheets[title][n-1] = vr.Values[0]
			writeJSON(w, &gsheet.UpdateValuesResponse{SpreadsheetId: id})
		}
	default:
		http.Error(w, fmt.Sprintf("unexpected %s %s", r.Method, r.URL.Path), http.StatusNotFound)
	}
}

func (f *fakeSheets) titleFor(sheetID int64) string {
	for title, id := range f.ids {
		if id == sheetID {
			return title
		}
	}
	return ""
}

func (f *fakeSheets) rows(title string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sheets[title])
}

func decodeValues(w http.ResponseWriter, r *http.Request) *gsheet.ValueRange {
	var vr gsheet.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	return &vr
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := newFakeSheets()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Options{
		SpreadsheetID: "sheet-1",
		ClientOptions: []goption.ClientOption{
			goption.WithEndpoint(srv.URL + "/"),
			goption.WithHTTPClient(srv.Client()),
		},
	})
	require.NoError(t, err)
	return c, fake
}

func TestClientContract(t *testing.T) {
	remotetest.Run(t, func(t *testing.T) remote.Store {
		c, _ := newTestClient(t)
		return c
	})
}

func TestUpsertBudgetRewritesRow(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.UpsertBudget(ctx, "alice", decimal.NewFromInt(100)))
	require.NoError(t, c.UpsertBudget(ctx, "alice", decimal.NewFromInt(200)))
	assert.Equal(t, 2, fake.rows("Budgets"), "header plus one row")

	amt, _, err := c.GetBudget(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, amt.Equal(decimal.NewFromInt(200)))
}

func TestNewRequiresSpreadsheetAndCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{SpreadsheetID: "x"})
	assert.ErrorContains(t, err, "credentials")
}

func TestNewWithServiceAccountJSON(t *testing.T) {
	creds := `{
		"type": "service_account",
		"client_email": "saldo@example.iam.gserviceaccount.com",
		"private_key_id": "k1",
		"private_key": "unused until the first token fetch",
		"token_uri": "https://oauth2.googleapis.com/token"
	}`
	c, err := New(context.Background(), Options{SpreadsheetID: "x", CredentialsJSON: creds})
	require.NoError(t, err)
	assert.NotNil(t, c.svc)

	_, err = New(context.Background(), Options{SpreadsheetID: "x", CredentialsJSON: `{"type":"authorized_user"}`})
	assert.ErrorContains(t, err, "service account key")
}

func TestNewHTTPClientPools(t *testing.T) {
	c := NewHTTPClient()
	assert.Equal(t, 60*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10, tr.MaxIdleConnsPerHost)
	assert.True(t, tr.ForceAttemptHTTP2)
}
