package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const subjectLocalKey = "auth.subject"

// RequireAuth rejects requests without a verifiable bearer token before any
// downstream handler runs, and exposes the token subject through SubjectID.
func RequireAuth(verifier services.IdentityVerifier, log *zap.Logger) fiber.Handler {
	log = logger.OrNop(log)

	return func(c *fiber.Ctx) error {
		token, ok := services.BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperrors.MissingCredential("Unauthorized: No token provided")
		}

		subject, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			log.Debug("token verification failed", zap.String("path", c.Path()), zap.Error(err))
			if !apperrors.Is(err, apperrors.KindInvalidCredential) {
				err = apperrors.InvalidCredential("Unauthorized: Invalid token", err)
			}
			return err
		}

		c.Locals(subjectLocalKey, subject)
		return c.Next()
	}
}

// SubjectID returns the authenticated subject, or "" outside RequireAuth.
func SubjectID(c *fiber.Ctx) string {
	subject, _ := c.Locals(subjectLocalKey).(string)
	return subject
}
