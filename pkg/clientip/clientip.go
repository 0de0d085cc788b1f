package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the peer address of r without its port. It trusts only
// RemoteAddr; put chi's RealIP in front when running behind a proxy.
func FromRequest(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
