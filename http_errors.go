package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

const internalErrorMessage = "internal server error"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// NewErrorHandler renders categorized errors with their status.
// Internal failures and unknown errors are logged with their cause and
// answered with a generic 500.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		var authErr *goerrors.Error
		if goerrors.As(err, &authErr) {
			status := StatusOf(authErr)
			if IsInternalError(authErr) {
				logger.Error("request failed",
					"text_code", TextCodeOf(authErr),
					"category", authErr.Category,
					"details", print.MaybePrettyJSON(authErr.Metadata),
					"error", err,
					"path", c.Path(),
					"method", c.Method(),
				)
				return c.Status(status).JSON(ErrorResponse{Error: internalErrorMessage})
			}

			return c.Status(status).JSON(ErrorResponse{
				Error:   authErr.Message,
				Details: DetailsOf(authErr),
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code >= fiber.StatusInternalServerError {
				logger.Error("request failed", "error", err, "path", c.Path(), "method", c.Method())
				return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: internalErrorMessage})
			}
			return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: fiberErr.Message})
		}

		logger.Error("unhandled error", "error", err, "path", c.Path(), "method", c.Method())
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: internalErrorMessage})
	}
}
