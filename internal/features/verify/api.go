package verify

import (
	"go-elms/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type VerifyApi struct {
	controller *VerifyController
}

func NewVerifyApi(controller *VerifyController) api.Route {
	return &VerifyApi{controller: controller}
}

// Setup registers the public routes; neither needs authentication.
func (h *VerifyApi) Setup(app *fiber.App) {
	app.Get("/api/verify/:key", h.controller.Verify)
	app.Get("/verify/:key", h.controller.Page)
}
