package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"statementapi/internal/http/middleware"
	"statementapi/internal/model"
	"statementapi/internal/service"
)

// adminRoles may manage statements and issue links.
var adminRoles = []model.Role{model.RoleAdmin, model.RoleSuperAdmin}

// Deps carries what the routes need.
type Deps struct {
	DB         *sql.DB
	Statements service.StatementService
	Links      service.LinkService
	Downloads  service.DownloadService
	Accounts   service.AccountService
	Cookie     SessionCookie
	Log        *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	// Resolve the session once; public routes treat a bad session as anonymous.
	app.Use(middleware.Authenticate(d.Accounts, d.Cookie.Name, d.Log))

	download := Download(d.Downloads)
	app.Get("/download", download)

	api := app.Group("/api")
	api.Get("/download-financial-statement", download)
	api.Get("/financial-statements", ListPublicStatements(d.Statements))
	api.Post("/generate-financial-statement-link", middleware.RequireRole(adminRoles...), IssueLink(d.Links))

	authGroup := api.Group("/auth")
	authGroup.Post("/register", Register(d.Accounts))
	authGroup.Post("/login", Login(d.Accounts, d.Cookie))
	authGroup.Post("/logout", Logout(d.Cookie))
	authGroup.Get("/me", middleware.RequireSession(), Me())

	// The admin download answers its own 401/403 in plain text.
	api.Get("/admin/download-financial-statement", AdminDownload(d.Downloads))

	admin := api.Group("/admin", middleware.RequireRole(adminRoles...))
	admin.Get("/statements", ListStatements(d.Statements))
	admin.Post("/statements", UploadStatement(d.Statements))
	admin.Get("/statements/:id", GetStatement(d.Statements))
	admin.Delete("/statements/:id", DeleteStatement(d.Statements))
	admin.Get("/statements/:id/share-links", ListShareLinks(d.Links))
	admin.Get("/statements/:id/access-logs", ListAccessLogs(d.Downloads))
	admin.Delete("/share-links/:id", RevokeShareLink(d.Links))

	super := admin.Group("/access-requests", middleware.RequireRole(model.RoleSuperAdmin))
	super.Get("/", ListAccessRequests(d.Accounts))
	super.Post("/:id/approve", ApproveAccessRequest(d.Accounts))
	super.Post("/:id/reject", RejectAccessRequest(d.Accounts))
}
