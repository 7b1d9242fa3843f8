// Package httpapi exposes the user and conversation operations over HTTP
// with gin. Every route under /api requires a bearer access token.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/server/services"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, callerID, id string, update models.UserUpdate) (*models.User, error)
}

type ConversationService interface {
	Start(ctx context.Context, senderID, targetID string, clientOffset *int) (*services.StartResult, error)
	Send(ctx context.Context, senderID, targetID, text string, clientOffset *int) (*services.SendResult, error)
	Rate(ctx context.Context, raterID, targetID string, good bool, reason string) (*services.RateResult, error)
	List(ctx context.Context, userID string) ([]models.ConversationSummary, error)
}

type Handler struct {
	users UserService
	convs ConversationService
	log   logging.Logger
}

// NewRouter builds the gin engine with all routes mounted.
func NewRouter(users UserService, convs ConversationService, secretKey []byte, log logging.Logger) *gin.Engine {
	log = log.With("module", "http")

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	h := &Handler{users: users, convs: convs, log: log}

	api := r.Group("/api")
	api.Use(authMiddleware(secretKey))

	api.GET("/users", h.listUsers)
	api.GET("/users/me", h.me)
	api.GET("/users/:id", h.getUser)
	api.PUT("/users/:id", h.updateUser)

	api.GET("/conversations", h.listConversations)
	api.POST("/conversations/start", h.startConversation)
	api.POST("/conversations/:userId/messages", h.sendMessage)
	api.POST("/conversations/:userId/rate", h.rateConversation)

	return r
}
