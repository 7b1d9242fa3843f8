package conversations

import (
	"context"

	"github.com/dmitrijs2005/aviato/internal/server/models"
)

type Repository interface {
	// FindBetween looks the conversation up by its ordered participant pair.
	// Messages are not loaded; MessageCount is.
	FindBetween(ctx context.Context, a, b string) (*models.Conversation, error)
	// Create inserts conv. It returns common.ErrorAlreadyExists when the pair
	// already has a conversation.
	Create(ctx context.Context, conv *models.Conversation) error
	AppendMessage(ctx context.Context, msg *models.Message) error
	// SetTimer restarts the response timer and clears rated/expired flags.
	SetTimer(ctx context.Context, conversationID string, startedAt int64) error
	Rate(ctx context.Context, conversationID, ratingType, reason string) error
	CountActive(ctx context.Context, userID string, since int64) (int, error)
	ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]models.Message, error)
}
