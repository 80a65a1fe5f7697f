// Package identity resolves the owner id of a request. Authentication
// happens upstream; the id is treated as opaque and trusted.
package identity

import (
	"errors"
	"net/http"
	"strings"
)

var ErrNoIdentity = errors.New("no identity on request")

type Provider interface {
	OwnerID(r *http.Request) (string, error)
}

// Static always returns the same owner. Used for single-user deployments
// and the CLI.
type Static string

func (s Static) OwnerID(*http.Request) (string, error) {
	if id := strings.TrimSpace(string(s)); id != "" {
		return id, nil
	}
	return "", ErrNoIdentity
}

// Header reads the owner from a header set by a trusted proxy, falling back
// to Fallback when the header is absent.
type Header struct {
	Name     string
	Fallback Provider
}

func (h Header) OwnerID(r *http.Request) (string, error) {
	if id := strings.TrimSpace(r.Header.Get(h.Name)); id != "" {
		return id, nil
	}
	if h.Fallback != nil {
		return h.Fallback.OwnerID(r)
	}
	return "", ErrNoIdentity
}

// New builds the provider for the given configuration. An empty header name
// selects Static.
func New(header, staticOwner string) Provider {
	static := Static(staticOwner)
	if strings.TrimSpace(header) == "" {
		return static
	}
	var fallback Provider
	if strings.TrimSpace(staticOwner) != "" {
		fallback = static
	}
	return Header{Name: header, Fallback: fallback}
}
