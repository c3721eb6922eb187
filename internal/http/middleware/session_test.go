package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"statementapi/internal/model"
	"statementapi/internal/service"
	serviceMocks "statementapi/internal/service/mocks"
)

const cookieName = "statement_session"

func newSessionApp(accounts service.AccountService, guard fiber.Handler) *fiber.App {
	return newLoggedSessionApp(accounts, guard, nil)
}

func newLoggedSessionApp(accounts service.AccountService, guard fiber.Handler, log *zap.Logger) *fiber.App {
	app := fiber.New()
	app.Use(Authenticate(accounts, cookieName, log))
	handlers := []fiber.Handler{}
	if guard != nil {
		handlers = append(handlers, guard)
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u != nil {
			return c.SendString(u.ID)
		}
		return c.SendString("anonymous")
	})
	app.Get("/", handlers...)
	return app
}

func TestSessionToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(SessionToken(c, cookieName))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def")
	resp, _ := app.Test(req)
	assert.Equal(t, "abc.def", readBody(resp))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Cookie", cookieName+"=from-cookie")
	req.Header.Set("Authorization", "Bearer from-header")
	resp, _ = app.Test(req)
	assert.Equal(t, "from-cookie", readBody(resp))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, _ = app.Test(req)
	assert.Equal(t, "", readBody(resp))
}

func TestAuthenticate(t *testing.T) {
	t.Run("loads the user", func(t *testing.T) {
		accounts := new(serviceMocks.MockAccountService)
		accounts.On("Authenticate", mock.Anything, "good").Return(&model.User{ID: "u1", Role: model.RoleAdmin}, nil)
		app := newSessionApp(accounts, nil)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, _ := app.Test(req)

		assert.Equal(t, "u1", readBody(resp))
	})

	t.Run("invalid token continues anonymously", func(t *testing.T) {
		accounts := new(serviceMocks.MockAccountService)
		accounts.On("Authenticate", mock.Anything, "stale").Return(nil, service.ErrNoSession)
		app := newSessionApp(accounts, nil)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer stale")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "anonymous", readBody(resp))
	})

	t.Run("no token skips the lookup", func(t *testing.T) {
		accounts := new(serviceMocks.MockAccountService)
		app := newSessionApp(accounts, nil)

		resp, _ := app.Test(httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, "anonymous", readBody(resp))
		accounts.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure continues anonymously and is logged", func(t *testing.T) {
		accounts := new(serviceMocks.MockAccountService)
		accounts.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("db down"))
		core, logs := observer.New(zap.ErrorLevel)
		app := newLoggedSessionApp(accounts, nil, zap.New(core))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "anonymous", readBody(resp))
		assert.Equal(t, 1, logs.FilterMessage("session lookup failed").Len())
	})

	t.Run("lookup failure on a guarded route is a server error", func(t *testing.T) {
		accounts := new(serviceMocks.MockAccountService)
		accounts.On("Authenticate", mock.Anything, "tok").Return(nil, errors.New("db down"))

		for _, guard := range []fiber.Handler{RequireRole(model.RoleAdmin), RequireSession()} {
			app := newSessionApp(accounts, guard)
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer tok")
			resp, _ := app.Test(req)

			assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		}
	})
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *model.User
		wantStatus int
	}{
		{"anonymous", nil, fiber.StatusUnauthorized},
		{"pending", &model.User{ID: "u1", Role: model.RolePending}, fiber.StatusForbidden},
		{"admin", &model.User{ID: "u2", Role: model.RoleAdmin}, fiber.StatusOK},
		{"super admin", &model.User{ID: "u3", Role: model.RoleSuperAdmin}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(serviceMocks.MockAccountService)
			req := httptest.NewRequest("GET", "/", nil)
			if tt.user != nil {
				accounts.On("Authenticate", mock.Anything, "tok").Return(tt.user, nil)
				req.Header.Set("Authorization", "Bearer tok")
			}
			app := newSessionApp(accounts, RequireRole(model.RoleAdmin, model.RoleSuperAdmin))

			resp, _ := app.Test(req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRequireSession(t *testing.T) {
	accounts := new(serviceMocks.MockAccountService)
	app := newSessionApp(accounts, RequireSession())

	resp, _ := app.Test(httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
