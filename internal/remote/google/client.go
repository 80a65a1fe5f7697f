// Package google stores ledger records in a Google Sheets spreadsheet, one
// sheet for transactions and one for budgets.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/core"
	"saldo/internal/remote"
)

type Options struct {
	SpreadsheetID     string
	TransactionsSheet string
	BudgetsSheet      string

	// Service account credentials, inline or from a file. Ignored when
	// ClientOptions already configure authentication.
	CredentialsJSON string
	CredentialsFile string

	ClientOptions []goption.ClientOption
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	budgetsSheet      string
	now               func() time.Time

	// Row indices shift on delete; writes are serialized.
	mu       sync.Mutex
	sheetIDs map[string]int64
}

var _ remote.Store = (*Client)(nil)

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if opts.TransactionsSheet == "" {
		opts.TransactionsSheet = "Transactions"
	}
	if opts.BudgetsSheet == "" {
		opts.BudgetsSheet = "Budgets"
	}

	clientOpts := opts.ClientOptions
	if len(clientOpts) == 0 {
		creds, err := readCredentials(opts)
		if err != nil {
			return nil, err
		}
		httpClient, err := authorizedClient(ctx, creds)
		if err != nil {
			return nil, err
		}
		clientOpts = []goption.ClientOption{goption.WithHTTPClient(httpClient)}
	}

	svc, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets client ready",
		"spreadsheet_id", opts.SpreadsheetID,
		"transactions_sheet", opts.TransactionsSheet,
		"budgets_sheet", opts.BudgetsSheet)

	return &Client{
		svc:               svc,
		spreadsheetID:     opts.SpreadsheetID,
		transactionsSheet: opts.TransactionsSheet,
		budgetsSheet:      opts.BudgetsSheet,
		now:               time.Now,
		sheetIDs:          make(map[string]int64),
	}, nil
}

func readCredentials(opts Options) ([]byte, error) {
	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		return []byte(opts.CredentialsJSON), nil
	case strings.TrimSpace(opts.CredentialsFile) != "":
		b, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// authorizedClient signs requests with the service account's tokens. Both
// token fetches and API calls go through the pooled NewHTTPClient transport.
func authorizedClient(ctx context.Context, creds []byte) (*http.Client, error) {
	jwtConfig, err := googleoauth.JWTConfigFromJSON(creds, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, NewHTTPClient())
	return oauth2.NewClient(ctx, jwtConfig.TokenSource(ctx)), nil
}

// NewHTTPClient returns a pooled client for the Sheets API.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// CreateTransaction appends a row with a fresh uuid.
func (c *Client) CreateTransaction(ctx context.Context, ownerID string, e core.Entry) (core.Transaction, error) {
	tx := core.FromEntry(uuid.NewString(), ownerID, e)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.appendRow(ctx, c.transactionsSheet, "A:G", transactionValues(tx)); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return tx, nil
}

// PutTransaction writes a record that already has an id. Existing ids are
// left alone, so replaying the same record is harmless.
func (c *Client) PutTransaction(ctx context.Context, tx core.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.transactions(ctx)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.tx.ID == tx.ID {
			return nil
		}
	}
	if err := c.appendRow(ctx, c.transactionsSheet, "A:G", transactionValues(tx)); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

func (c *Client) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := c.transactions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		if r.tx.OwnerID == ownerID {
			out = append(out, r.tx)
		}
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	rows, err := c.transactions(ctx)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, r := range rows {
		if r.tx.ID == id {
			return r.tx, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

// DeleteTransaction removes the row holding id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.transactions(ctx)
	if err != nil {
		return err
	}
	index := -1
	for _, r := range rows {
		if r.tx.ID == id {
			index = r.index
			break
		}
	}
	if index < 0 {
		return core.ErrNotFound
	}

	sheetID, err := c.sheetID(ctx, c.transactionsSheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(index),
					EndIndex:   int64(index + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in %s: %w", index+1, c.transactionsSheet, err)
	}
	return nil
}

func (c *Client) GetBudget(ctx context.Context, ownerID string) (decimal.Decimal, bool, error) {
	rows, err := c.budgets(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, r := range rows {
		if r.ownerID == ownerID {
			return r.amount, true, nil
		}
	}
	return decimal.Zero, false, nil
}

// UpsertBudget rewrites the owner's row in place or appends a new one.
func (c *Client) UpsertBudget(ctx context.Context, ownerID string, amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.budgets(ctx)
	if err != nil {
		return err
	}
	values := budgetValues(ownerID, amount, c.now())
	for _, r := range rows {
		if r.ownerID != ownerID {
			continue
		}
		n := r.index + 1
		rng := fmt.Sprintf("%s!A%d:C%d", c.budgetsSheet, n, n)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]interface{}{values}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update budget row %d: %w", n, err)
		}
		return nil
	}
	if err := c.appendRow(ctx, c.budgetsSheet, "A:C", values); err != nil {
		return fmt.Errorf("append budget: %w", err)
	}
	return nil
}

func (c *Client) transactions(ctx context.Context) ([]txRow, error) {
	values, err := c.readRange(ctx, c.transactionsSheet, "A:G")
	if err != nil {
		return nil, err
	}
	rows, err := parseTransactionRows(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.transactionsSheet, err)
	}
	return rows, nil
}

func (c *Client) budgets(ctx context.Context) ([]budgetRow, error) {
	values, err := c.readRange(ctx, c.budgetsSheet, "A:C")
	if err != nil {
		return nil, err
	}
	rows, err := parseBudgetRows(values)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", c.budgetsSheet, err)
	}
	return rows, nil
}

func (c *Client) readRange(ctx context.Context, sheet, cols string) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, sheet, cols string, values []interface{}) error {
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

// sheetID resolves a sheet title to its numeric id, needed by batch updates.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	if id, ok := c.sheetIDs[title]; ok {
		return id, nil
	}
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q not found", title)
	}
	return id, nil
}
