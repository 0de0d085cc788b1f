package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"203.0.113.7:5555": "203.0.113.7",
		"[2001:db8::1]:80": "2001:db8::1",
		"203.0.113.7":      "203.0.113.7",
		"[2001:db8::1]":    "2001:db8::1",
	}
	for remote, want := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = remote
		require.Equal(t, want, FromRequest(r), remote)
	}
}
