package user

import (
	"strconv"

	"go-elms/internal/features/permission"
	apperrors "go-elms/pkg/errors"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserService UserService
}

func NewUserController(userService UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func actor(c *fiber.Ctx) (permission.Actor, error) {
	a, ok := permission.ActorFromContext(c.UserContext())
	if !ok {
		return permission.Actor{}, apperrors.NewUnauthorizedError("missing user claims")
	}
	return a, nil
}

// ListUsers godoc
// @Summary      List users
// @Description  Get a paginated list of users
// @Tags         users
// @Produce      json
// @Param        page    query  int     false  "Page number"  default(1)
// @Param        limit   query  int     false  "Items per page"  default(20)
// @Param        role    query  string  false  "Filter by role"
// @Param        status  query  string  false  "Filter by status"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  errors.ErrorResponse
// @Router       /api/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := make(map[string]interface{})
	for _, key := range []string{"role", "status", "department"} {
		if v := c.Query(key); v != "" {
			filter[key] = v
		}
	}

	users, total, err := ctrl.UserService.ListUsers(c.UserContext(), a, filter, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path  string  true  "User ID"
// @Success      200  {object}  models.User
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /api/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	u, err := ctrl.UserService.GetUser(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// CreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user  body  CreateUserRequest  true  "User"
// @Success      201  {object}  models.User
// @Failure      400  {object}  errors.ErrorResponse
// @Router       /api/users [post]
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("", "invalid request body")
	}
	u, err := ctrl.UserService.CreateUser(c.UserContext(), a, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// UpdateRole godoc
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "User ID"
// @Param        role  body  UpdateRoleRequest  true  "New role"
// @Success      200  {object}  models.User
// @Failure      400  {object}  errors.ErrorResponse
// @Failure      403  {object}  errors.ErrorResponse
// @Router       /api/users/{id}/role [put]
func (ctrl *UserController) UpdateRole(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("", "invalid request body")
	}
	u, err := ctrl.UserService.UpdateRole(c.UserContext(), a, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(u)
}
