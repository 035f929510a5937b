// Package middleware provides authentication, rate limiting, logging, tracing and
// metrics middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strings"

	"reelsocial/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Token issuer and audience accepted by the API. Tokens are minted by the
// account service; this service only verifies them.
const (
	TokenIssuer   = "reelsocial-auth"
	TokenAudience = "reelsocial-client"
)

var (
	errMissingToken  = errors.New("authorization required")
	errInvalidHeader = errors.New("invalid authorization header format")
)

// Authenticator verifies HS256 bearer tokens and exposes the subject as the user id.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for the given signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Required rejects requests without a valid bearer token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := a.userFromRequest(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(authMessage(err)))
		}
		setUser(c, userID)
		return c.Next()
	}
}

// Optional attaches the user id when a valid token is present and lets
// anonymous requests through otherwise.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, err := a.userFromRequest(c); err == nil {
			setUser(c, userID)
		}
		return c.Next()
	}
}

func setUser(c *fiber.Ctx, userID string) {
	c.Locals("userID", userID)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

func (a *Authenticator) userFromRequest(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errInvalidHeader
	}

	return a.ParseToken(parts[1])
}

// ParseToken validates a signed token and returns its subject.
func (a *Authenticator) ParseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return a.secret, nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return "", errors.New("invalid subject claim")
	}
	return sub, nil
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, errMissingToken):
		return "Authorization required"
	case errors.Is(err, errInvalidHeader):
		return "Invalid authorization header format"
	default:
		return "Invalid or expired token"
	}
}
