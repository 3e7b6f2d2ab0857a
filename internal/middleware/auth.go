package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"worktracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by RequireAuth.
const (
	ctxUserID   = "userID"
	ctxUserName = "userName"
	ctxUserRole = "userRole"
)

// Identity is the caller resolved from the access token.
type Identity struct {
	UserID int
	Name   string
	Role   string
}

// Authenticator validates HMAC-signed access tokens.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret []byte) *Authenticator {
	return &Authenticator{secret: secret}
}

// RequireAuth validates the JWT from the access_token cookie or the Authorization header
// and stores the caller identity in the gin context.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireRole is RequireAuth plus a check that the token role is one of allowedRoles.
func (a *Authenticator) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.authenticate(c)
		if !ok {
			return
		}

		for _, role := range allowedRoles {
			if id.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

func (a *Authenticator) authenticate(c *gin.Context) (Identity, bool) {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return Identity{}, false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return Identity{}, false
		}
		tokenString = parts[1]
	}

	id, err := ParseIdentity(tokenString, a.secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
		return Identity{}, false
	}

	c.Set(ctxUserID, id.UserID)
	c.Set(ctxUserName, id.Name)
	c.Set(ctxUserRole, id.Role)
	return id, true
}

// ParseIdentity verifies tokenString and reads sub, name and role.
// sub may be encoded as a JSON number or a numeric string.
func ParseIdentity(tokenString string, secret []byte) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, jwt.ErrTokenInvalidClaims
	}

	var userID int
	switch sub := claims["sub"].(type) {
	case float64:
		userID = int(sub)
	case string:
		userID, err = strconv.Atoi(sub)
		if err != nil {
			return Identity{}, fmt.Errorf("subject %q is not a user id", sub)
		}
	default:
		return Identity{}, fmt.Errorf("subject is missing")
	}

	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	return Identity{UserID: userID, Name: name, Role: role}, nil
}

// CurrentIdentity returns what RequireAuth stored; ok is false on unauthenticated routes.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	userID, ok := c.Get(ctxUserID)
	if !ok {
		return Identity{}, false
	}
	id, _ := userID.(int)
	return Identity{
		UserID: id,
		Name:   c.GetString(ctxUserName),
		Role:   c.GetString(ctxUserRole),
	}, true
}
