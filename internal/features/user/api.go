package user

import (
	"go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller  *UserController
	config      *config.Config
	permissions middleware.PermissionChecker
}

func NewUserApi(controller *UserController, config *config.Config, permissions middleware.PermissionChecker) api.Route {
	return &UserApi{
		controller:  controller,
		config:      config,
		permissions: permissions,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	users.Get("/", middleware.RequirePermission(h.permissions, "canManageUsers"), h.controller.ListUsers)
	users.Post("/", middleware.RequirePermission(h.permissions, "canManageUsers"), h.controller.CreateUser)
	users.Get("/:id", h.controller.GetUser)
	users.Put("/:id/role", middleware.RequirePermission(h.permissions, "canAssignRoles"), h.controller.UpdateRole)
}
