package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bpo-ops/ops-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	RefreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

var ErrMissingClaims = errors.New("token claims missing or invalid")

type Service interface {
	GenerateAccessToken(u user.User) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	// ParseRefreshToken verifies signature, expiry and token type and returns the user id.
	ParseRefreshToken(token string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RefreshTokenCookie(token string, expiresAt int64) *http.Cookie
	ClearRefreshTokenCookie() *http.Cookie
}

type JWTService struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	secure     bool
	tokenAuth  *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTTL, refreshTTL time.Duration, secureCookies bool) Service {
	return &JWTService{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		secure:     secureCookies,
		tokenAuth:  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(u user.User) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTTL).Unix()

	claims := map[string]interface{}{
		"user_id":     u.ID,
		"email":       u.Email,
		"name":        u.FullName,
		"employee_id": nil,
		"role":        string(u.Role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}
	if u.EmployeeID != nil {
		claims["employee_id"] = *u.EmployeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateRefreshToken issues a refresh token. The jti keeps two tokens minted in the same second distinct,
// which rotation depends on since only the hash is stored.
func (j *JWTService) GenerateRefreshToken(userID string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.refreshTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     expiresAt,
		"type":    TokenTypeRefresh,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseRefreshToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", err
	}
	if t, _ := claims["type"].(string); t != TokenTypeRefresh {
		return "", ErrMissingClaims
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", ErrMissingClaims
	}
	return userID, nil
}

func (j *JWTService) RefreshTokenCookie(token string, expiresAt int64) *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     refreshCookiePath,
		Expires:  time.Unix(expiresAt, 0),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (j *JWTService) ClearRefreshTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Claims is the subset of access token claims services care about.
type Claims struct {
	UserID     string
	Email      string
	Name       string
	Role       user.Role
	EmployeeID string
}

// ClaimsFromContext reads the verified access token claims placed on ctx by jwtauth.Verifier.
func ClaimsFromContext(ctx context.Context) (Claims, error) {
	_, raw, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}
	var c Claims
	c.UserID, _ = raw["user_id"].(string)
	if c.UserID == "" {
		return Claims{}, ErrMissingClaims
	}
	c.Email, _ = raw["email"].(string)
	c.Name, _ = raw["name"].(string)
	role, _ := raw["role"].(string)
	c.Role = user.Role(role)
	c.EmployeeID, _ = raw["employee_id"].(string)
	return c, nil
}
