package auth

import (
	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login godoc
// @Summary      Log in
// @Description  Exchange email and password for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body  LoginRequest  true  "Credentials"
// @Success      200  {object}  LoginResult
// @Failure      401  {object}  errors.ErrorResponse
// @Router       /api/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("", "invalid request body")
	}

	res, err := ctrl.AuthService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  LoginResult
// @Failure      401  {object}  errors.ErrorResponse
// @Router       /api/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	actor, ok := permission.ActorFromContext(c.UserContext())
	if !ok {
		return apperrors.NewUnauthorizedError("missing user claims")
	}
	res, err := ctrl.AuthService.Me(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(res)
}
