package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"bizprofile/internal/model"
	"bizprofile/internal/service"
)

const (
	// SessionCookieName carries the session token for browser clients.
	SessionCookieName = "session_token"

	userLocalKey = "user"
)

// SessionToken extracts the session token from the request. The cookie wins
// over an Authorization: Bearer header when both are present.
func SessionToken(c *fiber.Ctx) string {
	if tok := c.Cookies(SessionCookieName); tok != "" {
		return tok
	}
	auth := c.Get(fiber.HeaderAuthorization)
	scheme, tok, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Session resolves the caller's identity and stores it in locals. Requests
// without a valid session pass through anonymously; RequireUser rejects them.
func Session(sm service.SessionManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tok := SessionToken(c)
		if tok == "" {
			return c.Next()
		}
		user, err := sm.Resolve(c.UserContext(), tok)
		if err != nil {
			return err
		}
		if user != nil {
			c.Locals(userLocalKey, user)
		}
		return c.Next()
	}
}

// RequireUser rejects requests that Session did not resolve to a user.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserFromCtx(c) == nil {
			return service.ErrUnauthenticated
		}
		return c.Next()
	}
}

// UserFromCtx returns the user resolved by Session, or nil.
func UserFromCtx(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(userLocalKey).(*model.User)
	return u
}
