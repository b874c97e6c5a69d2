package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns any error returned further down the chain into
// the standard {success:false,message} envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := classifyError(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// ErrorHandler is the same conversion for errors fiber raises before any
// middleware runs (body limit, routing).
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code, message := classifyError(err)
	return ctx.Status(code).JSON(ErrorResponse(code, message))
}

func classifyError(err error) (int, string) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fiber.StatusBadRequest, err.Error()
	}

	return fiber.StatusInternalServerError, err.Error()
}
