package middleware

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/auth"
)

// AuthUserLocalKey is the context-locals key holding the verified identity label.
const AuthUserLocalKey = "auth_user"

// TokenVerifier is the credential check the access gate depends on.
// *auth.TokenManager satisfies it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Auth gates a route on a valid bearer token in the Authorization header.
// Missing and invalid credentials produce the same rejection class (401);
// the gate runs before any catalog or blob operation.
func Auth(v TokenVerifier) fiber.Handler {
	return authHandler(v, false)
}

// AuthAllowQuery additionally accepts the credential as a `token` query
// parameter. This exists only for the download route, where browser links
// cannot carry custom headers; everything else stays header-only.
func AuthAllowQuery(v TokenVerifier) fiber.Handler {
	return authHandler(v, true)
}

func authHandler(v TokenVerifier, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var token string

		if h := c.Get(fiber.HeaderAuthorization); h != "" {
			t, err := auth.ExtractBearer(h)
			if err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
			}
			token = t
		} else if allowQuery {
			token = c.Query("token")
		}

		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing token")
		}

		claims, err := v.Verify(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(AuthUserLocalKey, claims.User)
		return c.Next()
	}
}
