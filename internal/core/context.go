package core

import "context"

type (
	actorKey  struct{}
	clientKey struct{}
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID   string
	VendorID string // empty for admins acting on any vendor
	Admin    bool
}

// CanAccessVendor reports whether the actor may act on vendorID.
func (a Actor) CanAccessVendor(vendorID string) bool {
	return a.Admin || (a.VendorID != "" && a.VendorID == vendorID)
}

// ContextWithActor adds the authenticated caller to context.
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the caller stored by ContextWithActor, or the zero
// Actor.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

// Client describes where a request came from. Audit entries copy it.
type Client struct {
	IP        string
	UserAgent string
}

// ContextWithClient records the request origin for audit entries.
func ContextWithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// ClientFromContext returns the origin stored by ContextWithClient, or the
// zero Client.
func ClientFromContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}
