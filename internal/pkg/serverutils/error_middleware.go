package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors returned by handlers into a uniform
// JSON envelope. Controllers just return errors.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		message := err.Error()

		var httpErr *HttpError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			message = httpErr.Message
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		}

		return ctx.Status(code).JSON(Response{
			Success: false,
			Message: message,
		})
	}
}
