package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
)

const (
	bearerPrefix = "Bearer "

	// maxSubjectLength matches the identity provider's limit on user ids.
	maxSubjectLength = 128
)

// IdentityVerifier resolves a bearer token to the subject id of its holder.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

type identityVerifier struct {
	keySet   KeySet
	issuer   string
	audience string
	leeway   time.Duration
}

// NewIdentityVerifier checks signatures with keySet. Empty issuer or audience
// disables that claim check.
func NewIdentityVerifier(keySet KeySet, issuer, audience string) IdentityVerifier {
	return &identityVerifier{
		keySet:   keySet,
		issuer:   issuer,
		audience: audience,
		leeway:   30 * time.Second,
	}
}

// Verify implements IdentityVerifier. Every failure is an InvalidCredential.
func (v *identityVerifier) Verify(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", apperrors.InvalidCredential("empty token", nil)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.keySet.Methods()),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keySet.KeyFunc(ctx), opts...)
	if err != nil {
		return "", apperrors.InvalidCredential(describeTokenError(err), err)
	}
	if !parsed.Valid {
		return "", apperrors.InvalidCredential("invalid token", jwt.ErrTokenSignatureInvalid)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", apperrors.InvalidCredential("token subject is required", nil)
	}
	if len(subject) > maxSubjectLength {
		return "", apperrors.InvalidCredential(fmt.Sprintf("token subject exceeds %d characters", maxSubjectLength), nil)
	}

	return subject, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func describeTokenError(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token has expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token is malformed"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer is not accepted"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "token audience is not accepted"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token signature could not be verified"
	default:
		return "invalid or expired token"
	}
}
