package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(NewJWTVerifier(testSecret, "")), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userID":  c.Locals("userID"),
			"ctxUser": UserIDFromContext(c.UserContext()),
		})
	})

	valid := signToken(t, testSecret, jwt.MapClaims{
		"sub": "6f1c2a9e-user",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Empty Bearer", "Bearer ", http.StatusUnauthorized},
		{"Malformed Token", "Bearer malformed.token.here", http.StatusForbidden},
		{"Expired Token", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix(),
		}), http.StatusForbidden},
		{"Wrong Secret", "Bearer " + signToken(t, "another-secret-another-secret-another", jwt.MapClaims{
			"sub": "u1", "exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusForbidden},
		{"Missing Subject", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}), http.StatusForbidden},
		{"Missing Expiry", "Bearer " + signToken(t, testSecret, jwt.MapClaims{
			"sub": "u1",
		}), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "6f1c2a9e-user", body["userID"])
				assert.Equal(t, "6f1c2a9e-user", body["ctxUser"])
			}
		})
	}
}

func TestJWTVerifier_Issuer(t *testing.T) {
	v := NewJWTVerifier(testSecret, "auth.example")

	good := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1", "iss": "auth.example", "exp": time.Now().Add(time.Hour).Unix(),
	})
	sub, err := v.Verify(t.Context(), good)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)

	bad := signToken(t, testSecret, jwt.MapClaims{
		"sub": "u1", "iss": "someone-else", "exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = v.Verify(t.Context(), bad)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
