// Package services contains server-side business logic. UserService serves
// profile reads and availability updates; ConversationService gates and
// records contact attempts.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/dbx"
	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/availability"
	"github.com/dmitrijs2005/aviato/internal/server/capacity"
	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/aviato/internal/timex"
	"github.com/google/uuid"
)

const defaultLocation = "Unknown"

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	evaluator   *availability.Evaluator
	clock       timex.Clock
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, ev *availability.Evaluator, clock timex.Clock, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		evaluator:   ev,
		clock:       clock,
		log:         log.With("module", "users"),
	}
}

func (s *UserService) counter(db dbx.DBTX) *capacity.Counter {
	return capacity.NewCounter(s.repomanager.Conversations(db))
}

// Create registers a user in immediate mode.
func (s *UserService) Create(ctx context.Context, email, name string) (*models.User, error) {
	if email == "" || name == "" {
		return nil, fmt.Errorf("%w: email and name are required", common.ErrorValidation)
	}
	user := &models.User{
		ID:               uuid.NewString(),
		Email:            email,
		Name:             name,
		Location:         defaultLocation,
		AvailabilityMode: models.ModeImmediate,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Get returns the user with CurrentContacts derived from conversations.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.counter(s.db).Refresh(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.counter(s.db).Refresh(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	counter := s.counter(s.db)
	for _, u := range list {
		if err := counter.Refresh(ctx, u); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Update applies a profile/availability update on behalf of callerID. Only
// the user may update themselves. Entering or editing capacity mode starts a
// new contact session. An empty update returns the user unchanged.
func (s *UserService) Update(ctx context.Context, callerID, id string, update models.UserUpdate) (*models.User, error) {
	if callerID != id {
		return nil, common.ErrorForbidden
	}
	if update.Empty() {
		return s.Get(ctx, id)
	}

	now := s.clock.Now()
	var result *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		current, err := repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.evaluator.ValidateUpdate(*current, update, now); err != nil {
			return err
		}

		updated, tr := availability.ApplyUpdate(*current, update, now)
		if err := repo.UpdateAvailability(ctx, &updated); err != nil {
			return err
		}
		if tr != availability.TransitionNone {
			s.log.Info(ctx, "availability transition", "user", id, "transition", tr.String(),
				"session_start", updated.Availability.SessionStart())
		}

		if err := s.counter(tx).Refresh(ctx, &updated); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
