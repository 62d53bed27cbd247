package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"bizprofile/internal/broker"
	"bizprofile/internal/http/middleware"
	"bizprofile/internal/model"
	"bizprofile/internal/service"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type meResponse struct {
	userResponse
	CreatedAt time.Time `json:"created_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Picture: u.Picture}
}

func setSessionCookie(c *fiber.Ctx, cfg CookieConfig, token string, maxAge time.Duration) {
	ck := &fiber.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteNoneMode,
	}
	if maxAge > 0 {
		ck.MaxAge = int(maxAge.Seconds())
	} else {
		ck.Expires = time.Unix(0, 0)
	}
	c.Cookie(ck)
}

// CreateSession exchanges the broker session id in X-Session-ID for a local
// session and sets the session cookie.
//
// @Summary  Exchange broker session
// @Tags     auth
// @Produce  json
// @Param    X-Session-ID header string true "Broker session id"
// @Success  200 {object} userResponse
// @Failure  400 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Router   /auth/session [post]
func CreateSession(auth service.AuthService, cookie CookieConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Get(broker.SessionIDHeader))
		if sessionID == "" {
			return writeError(c, fiber.StatusBadRequest, "SESSION_ID_REQUIRED", "X-Session-ID header is required")
		}

		res, err := auth.Login(c.UserContext(), sessionID)
		if err != nil {
			return writeServiceError(c, err)
		}

		setSessionCookie(c, cookie, res.Session.SessionToken, cookie.MaxAge)
		return c.JSON(toUserResponse(res.User))
	}
}

// CurrentUser returns the authenticated user.
//
// @Summary  Current user
// @Tags     auth
// @Produce  json
// @Success  200 {object} meResponse
// @Failure  401 {object} errorPayload
// @Router   /auth/me [get]
func CurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := middleware.UserFromCtx(c)
		if u == nil {
			return writeServiceError(c, service.ErrUnauthenticated)
		}
		return c.JSON(meResponse{userResponse: toUserResponse(u), CreatedAt: u.CreatedAt})
	}
}

// Logout destroys the session named by the cookie and clears it.
//
// @Summary  Logout
// @Tags     auth
// @Produce  json
// @Success  200 {object} messageResponse
// @Failure  400 {object} errorPayload
// @Router   /auth/logout [post]
func Logout(sm service.SessionManager, cookie CookieConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(middleware.SessionCookieName)
		if token == "" {
			return writeError(c, fiber.StatusBadRequest, "NO_ACTIVE_SESSION", "No active session")
		}

		if _, err := sm.Destroy(c.UserContext(), token); err != nil {
			return writeServiceError(c, err)
		}

		setSessionCookie(c, cookie, "", 0)
		return c.JSON(messageResponse{Message: "Logged out successfully"})
	}
}
