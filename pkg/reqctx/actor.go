package reqctx

import "context"

// Actor identifies who is performing a request. Identity and role are
// supplied by the auth gateway in front of this service; the core trusts
// them and performs no independent authentication.
type Actor struct {
	// ID is the acting user's patient/clinician identifier.
	ID string

	// Role is "patient" or "doctor".
	Role string
}

// WithActor stores the acting user in the context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, keyActor, actor)
}

// ActorFromContext retrieves the acting user from the context.
// Returns nil, false if the request is not authenticated.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	v := ctx.Value(keyActor)
	if v == nil {
		return nil, false
	}
	actor, ok := v.(*Actor)
	return actor, ok && actor != nil
}

// MustActor retrieves the acting user from the context.
// Panics if not set. Use only when middleware guarantees it's present.
func MustActor(ctx context.Context) *Actor {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		panic("reqctx: actor not found in context")
	}
	return actor
}
