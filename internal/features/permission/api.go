package permission

import (
	"go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	Controller *PermissionController
	Resolver   *Resolver
	config     *config.Config
}

func NewPermissionApi(controller *PermissionController, resolver *Resolver, config *config.Config) api.Route {
	return &PermissionApi{
		Controller: controller,
		Resolver:   resolver,
		config:     config,
	}
}

func (a *PermissionApi) Setup(app *fiber.App) {
	permissions := app.Group("/api/permissions", middleware.AuthMiddleware(a.config.SkipAuth))

	permissions.Get("/me", a.Controller.GetMyPermissions)
	permissions.Get("/roles", middleware.RequirePermission(a.Resolver, string(CanAssignRoles)), a.Controller.ListRoles)
}
