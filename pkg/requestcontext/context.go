// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and the audit recorder read them.
// Keeping the package free of net/http lets services import only what they
// need without pulling in transport code.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	actor := requestcontext.Actor(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.1", "curl/8")
package requestcontext

import (
	"context"
	"time"

	id "circ/pkg/domain"
)

type (
	actorKey       struct{}
	actorRoleKey   struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Actor retrieves the authenticated actor's user ID from the context.
// Returns the zero value if the request was unauthenticated.
func Actor(ctx context.Context) id.UserID {
	if actor, ok := ctx.Value(actorKey{}).(id.UserID); ok {
		return actor
	}
	return id.UserID{}
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorRole retrieves the authenticated actor's role from the context.
func ActorRole(ctx context.Context) id.Role {
	if role, ok := ctx.Value(actorRoleKey{}).(id.Role); ok {
		return role
	}
	return ""
}

// WithActorRole injects the authenticated actor's role into the context.
func WithActorRole(ctx context.Context, role id.Role) context.Context {
	return context.WithValue(ctx, actorRoleKey{}, role)
}

// ClientIP retrieves the request's origin address from the context. The audit
// recorder persists it as source_address.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context, falling back to
// time.Now() for non-HTTP contexts (workers, tests that don't pin time).
// All due-date and overdue arithmetic goes through this so tests control the
// clock deterministically.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
