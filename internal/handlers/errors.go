package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

// ErrorHandler renders every error as {"error": kind, "details": message}.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	log = logger.OrNop(log)

	return func(c *fiber.Ctx, err error) error {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			status := apperrors.HTTPStatus(appErr.Kind)
			if status >= fiber.StatusInternalServerError {
				log.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.String("kind", string(appErr.Kind)),
					zap.Error(err),
				)
			}
			return c.Status(status).JSON(models.ErrorResponse{
				Error:   string(appErr.Kind),
				Details: appErr.Detail,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
				Error:   kindForStatus(fiberErr.Code),
				Details: fiberErr.Message,
			})
		}

		log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   string(apperrors.KindInternal),
			Details: "Internal Server Error",
		})
	}
}

func kindForStatus(code int) string {
	switch code {
	case fiber.StatusRequestEntityTooLarge:
		return string(apperrors.KindPayloadTooLarge)
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return string(apperrors.KindValidation)
	case fiber.StatusInternalServerError:
		return string(apperrors.KindInternal)
	default:
		return strings.ReplaceAll(http.StatusText(code), " ", "")
	}
}
