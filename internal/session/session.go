// Package session resolves the anonymous session identifier that
// correlates unauthenticated requests with resources they created.
// The identifier is client-asserted and never validated; it is a
// correlation key, not a security boundary.
package session

import "net/http"

const (
	// HeaderName is the custom header carrying the session identifier.
	HeaderName = "X-Session-ID"
	// QueryParam is the fallback query parameter.
	QueryParam = "session_id"
)

// Identifier resolves the session identifier for a request: header,
// then request-body value (decoded by the caller), then query
// parameter. First present wins.
func Identifier(r *http.Request, bodyValue string) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return v
	}
	if bodyValue != "" {
		return bodyValue
	}
	return r.URL.Query().Get(QueryParam)
}
