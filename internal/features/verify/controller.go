package verify

import (
	"bytes"

	apperrors "go-elms/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type VerifyController struct {
	Service VerifyService
}

func NewVerifyController(service VerifyService) *VerifyController {
	return &VerifyController{Service: service}
}

// Verify godoc
// @Summary      Verify a signed letter
// @Description  Public endpoint; returns no body text or recipients.
// @Tags         verify
// @Produce      json
// @Param        key  path      string  true  "Reference or letter ID"
// @Success      200  {object}  VerificationResult
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/verify/{key} [get]
func (ctrl *VerifyController) Verify(c *fiber.Ctx) error {
	res, err := ctrl.Service.Verify(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Page renders the human readable verification page the QR code points to.
func (ctrl *VerifyController) Page(c *fiber.Ctx) error {
	key := c.Params("key")
	res, err := ctrl.Service.Verify(c.UserContext(), key)
	status := fiber.StatusOK
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return err
		}
		res = nil
		status = fiber.StatusNotFound
	}

	var buf bytes.Buffer
	if err := renderPage(&buf, key, res); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
