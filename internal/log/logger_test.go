package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Component: ComponentLedger, Level: slog.LevelDebug})
	l.ForOwner("alice").Info("loaded", FieldCount, 3)

	out := buf.String()
	assert.Contains(t, out, "component=ledger")
	assert.Contains(t, out, "owner_id=alice")
	assert.Contains(t, out, "count=3")
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithOperation(OpDelete).
		WithTransaction("tx1", "", "", "").
		WithError(errors.New("gone"), "state_inconsistency")

	assert.Equal(t, OpDelete, f[FieldOperation])
	assert.Equal(t, "tx1", f[FieldTransactionID])
	assert.NotContains(t, f, FieldCategoryID)
	assert.Equal(t, "state_inconsistency", f[FieldErrorType])
	assert.Len(t, f.ToSlice(), len(f)*2)
}

func TestContextLoggerAndHTTPEnd(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf, Component: ComponentHTTP}).With(FieldRequestID, "req-1")

	ctx := WithContext(context.Background(), base)
	req := httptest.NewRequest(http.MethodDelete, "/api/transactions/abc", nil)
	LogHTTPEnd(ctx, FromContext(ctx), req, http.StatusBadGateway, 12, "192.0.2.1")

	out := buf.String()
	assert.Contains(t, out, "request_id=req-1")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "status_code=502")
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, "unknown", l.Component())
}
