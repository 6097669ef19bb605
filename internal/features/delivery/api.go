package delivery

import (
	"go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DeliveryApi struct {
	controller  *DeliveryController
	config      *config.Config
	permissions middleware.PermissionChecker
}

func NewDeliveryApi(controller *DeliveryController, config *config.Config, permissions middleware.PermissionChecker) api.Route {
	return &DeliveryApi{
		controller:  controller,
		config:      config,
		permissions: permissions,
	}
}

func (h *DeliveryApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	app.Post("/api/letters/:id/deliver", auth, h.controller.Deliver)
	app.Get("/api/letters/:id/emails", auth, h.controller.ListEmails)
	app.Post("/api/delivery/sweep", auth, middleware.RequirePermission(h.permissions, "canConfigureWorkflow"), h.controller.Sweep)
}
