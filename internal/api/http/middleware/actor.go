package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/dentelia/dentelia_backend/internal/model"
	"github.com/dentelia/dentelia_backend/pkg/reqctx"
)

const (
	// HeaderActorID and HeaderActorRole are set by the auth gateway in
	// front of this service after it has authenticated the user. The
	// record core trusts them and performs no authentication itself.
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"

	CtxKeyActor = "actor"
)

// ActorRequired rejects requests without a valid gateway-supplied actor.
// On success, stores *reqctx.Actor in c.Locals(CtxKeyActor) and on the
// request context.
func ActorRequired() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(HeaderActorID)
		if id == "" {
			return fiber.ErrUnauthorized
		}

		role, ok := model.ParseRole(c.Get(HeaderActorRole))
		if !ok {
			return fiber.ErrUnauthorized
		}

		actor := &reqctx.Actor{ID: id, Role: string(role)}
		c.Locals(CtxKeyActor, actor)
		c.SetContext(reqctx.WithActor(c.Context(), actor))

		return c.Next()
	}
}

// RequireRole gates a route on the actor's role.
func RequireRole(role model.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		actor, ok := ActorFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		if actor.Role != string(role) {
			return fiber.ErrForbidden
		}
		return c.Next()
	}
}

// ActorFromFiber retrieves the acting user from Fiber locals.
func ActorFromFiber(c fiber.Ctx) (*reqctx.Actor, bool) {
	v := c.Locals(CtxKeyActor)
	actor, ok := v.(*reqctx.Actor)
	return actor, ok && actor != nil
}
