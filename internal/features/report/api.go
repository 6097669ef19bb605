package report

import (
	"go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/features/permission"
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
	Permissions      middleware.PermissionChecker
}

func NewReportApi(reportController *ReportController, config *config.Config, permissions middleware.PermissionChecker) api.Route {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
		Permissions:      permissions,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/metrics", middleware.RequirePermission(api.Permissions, string(permission.CanViewReports)), api.ReportController.Metrics)
	group.Get("/export", middleware.RequirePermission(api.Permissions, string(permission.CanExportData)), api.ReportController.Export)
}
