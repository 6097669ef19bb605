package middleware

import (
	"errors"

	apperrors "go-elms/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler maps returned errors to {code, message} bodies, keeping the
// error kind visible to clients.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(apperrors.ErrorResponse{
				Code:    codeForStatus(fe.Code),
				Message: fe.Message,
			})
		}

		status := apperrors.GetHTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
				zap.Error(err),
			)
		}
		return c.Status(status).JSON(apperrors.ToResponse(err))
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return apperrors.CodeNotFound
	case fiber.StatusBadRequest:
		return apperrors.CodeValidationFailed
	case fiber.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		return apperrors.CodePermissionDenied
	default:
		return apperrors.CodeUnknown
	}
}
