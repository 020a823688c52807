// Package middleware provides authentication, logging, metrics and tracing middleware.
package middleware

import (
	"context"
	"errors"
	"strings"

	"amizades/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by verifiers for any unusable credential.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier resolves a bearer credential to the caller's user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// JWTVerifier validates HMAC-signed JWTs and returns the subject claim.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier returns a verifier for tokens signed with secret.
// When issuer is non-empty the iss claim must match it.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates the token.
func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// AuthRequired rejects requests without a usable bearer credential.
// A missing or malformed header is 401; a token that fails verification is 403.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		userID, err := verifier.Verify(c.UserContext(), parts[1])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Invalid or expired token"))
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
