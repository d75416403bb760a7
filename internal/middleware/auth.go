package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthRequired rejects requests without a valid Bearer token and puts the
// acting user id into the request context.
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolveUserID(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// AuthOptional resolves the acting user id when a valid token is present
// and continues without identity otherwise. Used by the public feed.
func AuthOptional(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := resolveUserID(c, secret); ok {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func resolveUserID(c *gin.Context, secret []byte) (int, bool) {
	header := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == "" || tokenString == header {
		return 0, false
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, false
	}
	return int(id), true
}
