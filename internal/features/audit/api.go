package audit

import (
	"go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller  *AuditController
	config      *config.Config
	permissions middleware.PermissionChecker
}

func NewAuditApi(controller *AuditController, config *config.Config, permissions middleware.PermissionChecker) api.Route {
	return &AuditApi{
		controller:  controller,
		config:      config,
		permissions: permissions,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config.SkipAuth))

	audit.Get("/", middleware.RequirePermission(h.permissions, "canViewReports"), h.controller.ListLogs)
}
