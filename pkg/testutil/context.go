package testutil

import (
	"context"
	"net/http"
	"time"

	id "circ/pkg/domain"
	"circ/pkg/requestcontext"
)

// WithActor stamps the request context the way the auth middleware would for
// an authenticated caller. Invalid IDs are silently ignored.
func WithActor(req *http.Request, userID string, role id.Role) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	ctx := requestcontext.WithActor(req.Context(), parsed)
	ctx = requestcontext.WithActorRole(ctx, role)
	return req.WithContext(ctx)
}

// WithFrozenTime pins the request-scoped clock, so handlers under test compute
// due dates and fines against a known instant.
func WithFrozenTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// ContextAt returns a background context with the clock pinned.
func ContextAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}
