package users

import (
	"context"

	"github.com/dmitrijs2005/aviato/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	// LockByID reads the user with a row lock held until the surrounding
	// transaction ends.
	LockByID(ctx context.Context, id string) (*models.User, error)
	UpdateAvailability(ctx context.Context, user *models.User) error
	AdjustApprovalRating(ctx context.Context, id string, delta int) (int, error)
}
