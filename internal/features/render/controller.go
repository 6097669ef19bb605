package render

import (
	"context"
	"errors"
	"fmt"

	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type RenderController struct {
	Manager *Manager
}

func NewRenderController(manager *Manager) *RenderController {
	return &RenderController{Manager: manager}
}

// Render godoc
// @Summary      Render a letter
// @Tags         letters
// @Produce      html
// @Produce      application/pdf
// @Produce      png
// @Param        id      path   string  true   "Letter ID"
// @Param        format  query  string  false  "html, pdf or qr"
// @Success      200
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/letters/{id}/render [get]
func (ctrl *RenderController) Render(c *fiber.Ctx) error {
	actor, ok := permission.ActorFromContext(c.UserContext())
	if !ok {
		return fiber.ErrUnauthorized
	}
	doc, err := ctrl.Manager.Render(c.UserContext(), actor, c.Params("id"), Format(c.Query("format", string(FormatHTML))))
	if errors.Is(err, context.Canceled) {
		return &apperrors.ConflictError{Resource: "render", Message: "superseded by a newer request"}
	}
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, doc.ContentType)
	if doc.Format == FormatPDF {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", doc.Filename))
	}
	return c.Send(doc.Data)
}
