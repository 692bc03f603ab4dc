package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

// AllScopes grants access to every scope.
const AllScopes = "*"

const tokenContextKey = "serviceToken"

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued to services (the classroom app, the admin CLI), not to end users.
type Claims struct {
	jwt.StandardClaims
	Scopes []string `json:"scopes,omitempty"`
}

// NewClaims returns claims for subject valid for ttl on the given scopes.
func NewClaims(issuer, subject string, ttl time.Duration, scopes ...string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  "Montree",
			ExpiresAt: now.Add(ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Scopes: scopes,
	}
}

// CanAccess reports whether the claims grant access to scopeID.
func (c Claims) CanAccess(scopeID string) bool {
	for _, s := range c.Scopes {
		if s == AllScopes || s == scopeID {
			return true
		}
	}
	return false
}

func jwtConfig(secretKey string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(secretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, secretKey string) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
