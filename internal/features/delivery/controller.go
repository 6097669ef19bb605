package delivery

import (
	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type DeliveryController struct {
	Service DeliveryService
}

func NewDeliveryController(service DeliveryService) *DeliveryController {
	return &DeliveryController{Service: service}
}

func actor(c *fiber.Ctx) (permission.Actor, error) {
	a, ok := permission.ActorFromContext(c.UserContext())
	if !ok {
		return permission.Actor{}, apperrors.NewUnauthorizedError("missing user claims")
	}
	return a, nil
}

// Deliver godoc
// @Summary      Deliver a signed letter
// @Description  Email the letter to recipients still pending delivery
// @Tags         delivery
// @Produce      json
// @Param        id   path  string  true  "Letter ID"
// @Success      200  {object}  Result
// @Failure      409  {object}  errors.ErrorResponse
// @Router       /api/letters/{id}/deliver [post]
func (ctrl *DeliveryController) Deliver(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	res, err := ctrl.Service.DeliverLetter(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// ListEmails godoc
// @Summary      Delivery log of a letter
// @Tags         delivery
// @Produce      json
// @Param        id   path  string  true  "Letter ID"
// @Success      200  {array}  Email
// @Router       /api/letters/{id}/emails [get]
func (ctrl *DeliveryController) ListEmails(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	emails, err := ctrl.Service.ListEmails(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(emails)
}

// Sweep godoc
// @Summary      Run the delivery sweep now
// @Tags         delivery
// @Produce      json
// @Success      200  {object}  Result
// @Router       /api/delivery/sweep [post]
func (ctrl *DeliveryController) Sweep(c *fiber.Ctx) error {
	res, err := ctrl.Service.Sweep(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(res)
}
