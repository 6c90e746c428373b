package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// StatusMapper lets a domain package translate its sentinel errors into HTTP status codes.
type StatusMapper func(err error) (int, bool)

var statusMappers []StatusMapper

func RegisterStatusMapper(m StatusMapper) {
	statusMappers = append(statusMappers, m)
}

func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return writeError(ctx, err)
	}
}

func writeError(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		res := ErrorResponse(fiber.StatusBadRequest, validationErr.Error())
		res.Data = validationErr.Fields
		return ctx.Status(fiber.StatusBadRequest).JSON(res)
	}

	for _, m := range statusMappers {
		if code, ok := m(err); ok {
			return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
		}
	}

	log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, "internal server error"))
}
