package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"clothfit/internal/logger"
	"clothfit/internal/middleware"
	"clothfit/internal/session"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logger.Log.Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	logger.Log.Warn("request failed",
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("error", message),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondValidationError turns binding failures into field-level messages.
func respondValidationError(c *gin.Context, route string, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		logger.Log.Warn("validation failed",
			zap.String("route", route),
			zap.Strings("details", details),
		)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}
	respondWithError(c, http.StatusBadRequest, route, "invalid request body")
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func sessionIDFrom(c *gin.Context) string {
	return middleware.SessionID(c)
}

// attachSession resolves the visitor's session from the registry, responding
// with a 500 and returning nil when rehydration fails.
func attachSession(c *gin.Context, route string, sessions *session.Registry) *session.Session {
	sess, err := sessions.Attach(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		logger.Log.Error("session attach failed", zap.String("route", route), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return nil
	}
	return sess
}
