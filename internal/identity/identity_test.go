package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	id, err := Static("alice").OwnerID(nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	_, err = Static(" ").OwnerID(nil)
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestHeader(t *testing.T) {
	p := New("X-Owner-Id", "default")

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Owner-Id", "bob")
	id, err := p.OwnerID(r)
	require.NoError(t, err)
	assert.Equal(t, "bob", id)

	id, err = p.OwnerID(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "default", id)

	_, err = New("X-Owner-Id", "").OwnerID(httptest.NewRequest("GET", "/", nil))
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestNewWithoutHeaderIsStatic(t *testing.T) {
	assert.Equal(t, Static("alice"), New("", "alice"))
}
