package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"statementapi/internal/logging"
	"statementapi/internal/model"
	"statementapi/internal/service"
)

// UserLocalKey holds the *model.User loaded for the current session.
const UserLocalKey = "session_user"

// SessionToken extracts the session token from the named cookie or a
// Bearer Authorization header.
func SessionToken(c *fiber.Ctx, cookieName string) string {
	if v := c.Cookies(cookieName); v != "" {
		return v
	}
	if h := c.Get(fiber.HeaderAuthorization); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate loads the session user when a token is present. Requests
// without a valid session continue anonymously; RequireRole decides later.
// A failed user lookup is logged and also continues anonymously, so public
// routes keep their own response format; guarded routes answer 500.
func Authenticate(accounts service.AccountService, cookieName string, log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx) error {
		token := SessionToken(c, cookieName)
		if token == "" {
			return c.Next()
		}
		u, err := accounts.Authenticate(c.UserContext(), token)
		switch {
		case err == nil:
			c.Locals(UserLocalKey, u)
		case errors.Is(err, service.ErrUnauthorized):
			// stale or forged token: anonymous
		default:
			log.Error("session lookup failed",
				zap.String(logging.FieldRequestID, RequestIDFrom(c)),
				zap.String(logging.FieldPath, c.Path()),
				zap.Error(err),
			)
			c.Locals(sessionErrorKey, err)
		}
		return c.Next()
	}
}

const sessionErrorKey = "session_error"

// SessionFailed reports whether a session token was presented but its user
// could not be loaded.
func SessionFailed(c *fiber.Ctx) bool {
	err, _ := c.Locals(sessionErrorKey).(error)
	return err != nil
}

// anonymous rejects a caller without a user: 500 when the session could not
// be loaded, 401 otherwise.
func anonymous(c *fiber.Ctx) error {
	if SessionFailed(c) {
		return fiber.NewError(fiber.StatusInternalServerError, "session lookup failed")
	}
	return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
}

// CurrentUser returns the session user or nil.
func CurrentUser(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}

// RequireRole rejects anonymous callers with 401 and callers whose stored
// role is not listed with 403.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return anonymous(c)
		}
		for _, r := range roles {
			if u.Role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
}

// RequireSession rejects anonymous callers with 401.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return anonymous(c)
		}
		return c.Next()
	}
}
