package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

// Service verifies tokens issued by the auth service with the shared HS256 secret. It also mints
// the short-lived stream tokens that board consoles pass as a query parameter.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateAccessToken(principal user.Principal, ttl time.Duration) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID, siteID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString, siteID string) (userID string, err error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken issues an access token in the auth service's claim layout. Used by tests and local tooling.
func (j *JWTService) GenerateAccessToken(principal user.Principal, ttl time.Duration) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": principal.ID,
		"email":   principal.Email,
		"role":    string(principal.Role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token bound to one site's event stream
func (j *JWTService) GenerateSSEToken(userID, siteID string) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"site_id": siteID,
		"type":    TokenTypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token for the given site and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString, siteID string) (userID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}

	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeSSE {
		return "", user.ErrInvalidToken
	}
	if tokenSite, _ := claims["site_id"].(string); tokenSite != siteID {
		return "", user.ErrInvalidToken
	}

	userID, _ = claims["user_id"].(string)
	if userID == "" {
		return "", user.ErrInvalidToken
	}

	return userID, nil
}
