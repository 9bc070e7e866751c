package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the visitor's session id.
const SessionCookie = "cf_session"

// SessionKey is the gin context key the session id is stored under.
const SessionKey = "sessionId"

// Session assigns each visitor a session id, minting one on first contact.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(SessionKey, id)
		c.Next()
	}
}

// SessionID returns the session id set by the Session middleware.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}

// RequireSession aborts requests that somehow lack a session id.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionID(c) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing session"})
			return
		}
		c.Next()
	}
}
