package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/auth"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

func authMiddleware(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			unauthorized(c)
			return
		}
		userID, err := auth.GetUserIDFromToken(token, secretKey)
		if err != nil {
			unauthorized(c)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// timezoneOffset reads the caller's offset in minutes. A missing or
// malformed header yields nil so the stored offset applies.
func timezoneOffset(c *gin.Context) *int {
	v := strings.TrimSpace(c.GetHeader(common.TimezoneOffsetHeaderName))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
