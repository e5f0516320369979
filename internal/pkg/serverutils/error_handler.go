package serverutils

import (
	"errors"

	"medstudy-be/internal/pkg/logger"
	"medstudy-be/internal/repository/contract"
	"medstudy-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const errorHandlerModule = "ErrorHandler"

// ErrorHandlerMiddleware turns errors returned by handlers into JSON error responses. Records the
// requester may not touch answer 404 like missing ones so that existence is not leaked.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code, message := classify(err)
		details := map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"status": code,
			"error":  err.Error(),
		}
		switch {
		case code >= fiber.StatusInternalServerError:
			log.Error(errorHandlerModule, "Request failed", details)
		case errors.Is(err, contract.ErrForbidden):
			details["reason"] = "forbidden"
			log.Warn(errorHandlerModule, "Request rejected", details)
		default:
			log.Debug(errorHandlerModule, "Request rejected", details)
		}

		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

func classify(err error) (int, string) {
	var validationErr *contract.ValidationError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.Is(err, contract.ErrNotFound), errors.Is(err, contract.ErrForbidden):
		return fiber.StatusNotFound, "Resource not found"
	case errors.Is(err, service.ErrReviewUnavailable):
		return fiber.StatusServiceUnavailable, "Review system unavailable"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
