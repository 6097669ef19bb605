package workflow

import (
	"go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/features/permission"
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowApi struct {
	controller  *WorkflowController
	config      *config.Config
	permissions middleware.PermissionChecker
}

func NewWorkflowApi(controller *WorkflowController, config *config.Config, permissions middleware.PermissionChecker) api.Route {
	return &WorkflowApi{
		controller:  controller,
		config:      config,
		permissions: permissions,
	}
}

func (h *WorkflowApi) Setup(app *fiber.App) {
	letters := app.Group("/api/letters", middleware.AuthMiddleware(h.config.SkipAuth))

	letters.Post("/", h.controller.Create)
	letters.Get("/", h.controller.List)
	letters.Get("/:id", h.controller.Get)
	letters.Put("/:id", h.controller.Update)
	letters.Delete("/:id", h.controller.Delete)

	letters.Post("/:id/submit", h.controller.Submit)
	letters.Post("/:id/steps/:level", h.controller.ActOnStep)
	letters.Post("/:id/approve", h.controller.Approve)
	letters.Post("/:id/reject", h.controller.Reject)
	letters.Post("/:id/sign", h.controller.Sign)

	workflow := app.Group("/api/workflow", middleware.AuthMiddleware(h.config.SkipAuth))
	workflow.Get("/chains", middleware.RequirePermission(h.permissions, string(permission.CanConfigureWorkflow)), h.controller.ListChains)
}
