package middleware

import (
	"errors"
	"net/http"
	"strings"

	"paycompliance/internal/contextutil"
	"paycompliance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Roles carried in the "role" claim of tokens issued by the identity
// provider.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Gin context keys set by RequireRole.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

var (
	ErrMissingToken  = errors.New("authorization is missing")
	ErrInvalidFormat = errors.New("invalid authorization format, expected 'Bearer <token>'")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims is the subset of the token this service relies on.
type Claims struct {
	UserID string
	Role   string
}

// Authenticator verifies HMAC-signed JWTs.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// Parse validates tokenString and extracts the subject and role.
func (a *Authenticator) Parse(tokenString string) (Claims, error) {
	if tokenString == "" {
		return Claims{}, ErrMissingToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mapClaims.GetSubject()
	role, _ := mapClaims["role"].(string)
	return Claims{UserID: sub, Role: role}, nil
}

// RequireRole validates the JWT and checks the user's role against allowedRoles.
func (a *Authenticator) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}

		claims, err := a.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
			return
		}
		if claims.Role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}
		if !roleAllowed(claims.Role, allowedRoles) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserRole, claims.Role)

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID)
		logger := contextutil.GetLogger(ctx, nil).With(zap.String("user_id", claims.UserID))
		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, logger))

		c.Next()
	}
}

// CurrentUserID returns the authenticated subject, or "" on public routes.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// CurrentUserRole returns the authenticated role, or "" on public routes.
func CurrentUserRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}

// extractToken tries the access_token cookie first, then the Authorization header.
func extractToken(c *gin.Context) (string, error) {
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, nil
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", ErrInvalidFormat
	}
	return parts[1], nil
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}
