// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the caller's identity, set by the fronting auth
// proxy.
const UserIDHeader = "X-User-ID"

const userIDKey = "userID"

// RequireUser rejects requests without a user identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// OptionalUser records the user identity when one is present.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader(UserIDHeader)); uid != "" {
			c.Set(userIDKey, uid)
		}
		c.Next()
	}
}

// userID returns the identity stored by RequireUser or OptionalUser.
func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
