package render

import (
	"go-elms/internal/common/api"
	"go-elms/internal/config"
	"go-elms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RenderApi struct {
	controller *RenderController
	config     *config.Config
}

func NewRenderApi(controller *RenderController, config *config.Config) api.Route {
	return &RenderApi{controller: controller, config: config}
}

func (h *RenderApi) Setup(app *fiber.App) {
	app.Get("/api/letters/:id/render", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Render)
}
