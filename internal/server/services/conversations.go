package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/dbx"
	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/availability"
	"github.com/dmitrijs2005/aviato/internal/server/capacity"
	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/conversations"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/aviato/internal/timex"
	"github.com/google/uuid"
)

// sendAttempts bounds the retries of a send that lost a serialization race.
const sendAttempts = 2

// Start statuses.
const (
	StartStatusCreated = "created"
	StartStatusExists  = "exists"
)

type StartResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type SendResult struct {
	Message      models.Message
	Conversation *models.Conversation
	// ActiveCount is the target's active contact count before this message.
	ActiveCount int
}

type RateResult struct {
	RatingType     string
	ApprovalChange int
	ApprovalRating int
}

type ConversationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	evaluator   *availability.Evaluator
	clock       timex.Clock
	log         logging.Logger
}

func NewConversationService(db *sql.DB, m repomanager.RepositoryManager, ev *availability.Evaluator, clock timex.Clock, log logging.Logger) *ConversationService {
	return &ConversationService{
		db:          db,
		repomanager: m,
		evaluator:   ev,
		clock:       clock,
		log:         log.With("module", "conversations"),
	}
}

func validatePair(senderID, targetID string) error {
	if targetID == "" {
		return fmt.Errorf("%w: userId required", common.ErrorValidation)
	}
	if senderID == targetID {
		return fmt.Errorf("%w: cannot contact yourself", common.ErrorValidation)
	}
	return nil
}

// CheckAvailability evaluates whether targetID is reachable right now.
func (s *ConversationService) CheckAvailability(ctx context.Context, targetID string, clientOffset *int) (availability.Decision, error) {
	target, err := s.repomanager.Users(s.db).GetByID(ctx, targetID)
	if err != nil {
		return availability.Decision{}, err
	}
	return s.evaluator.Evaluate(target, s.clock.Now(), clientOffset), nil
}

// Start opens a conversation with targetID, or reports the existing one.
// Schedule checks apply either way; capacity never blocks starting.
func (s *ConversationService) Start(ctx context.Context, senderID, targetID string, clientOffset *int) (*StartResult, error) {
	if err := validatePair(senderID, targetID); err != nil {
		return nil, err
	}

	target, err := s.repomanager.Users(s.db).GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	d := s.evaluator.Evaluate(target, s.clock.Now(), clientOffset)
	if !d.Reachable {
		s.log.Debug(ctx, "start blocked", "sender", senderID, "target", targetID, "mode", string(d.Mode))
		return nil, common.NewScheduleBlock(d.Reason)
	}

	convs := s.repomanager.Conversations(s.db)

	existing, err := convs.FindBetween(ctx, senderID, targetID)
	if err == nil {
		return &StartResult{ID: existing.ID, Status: StartStatusExists}, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	conv := &models.Conversation{ID: uuid.NewString(), Participants: models.OrderedPair(senderID, targetID)}
	if err := convs.Create(ctx, conv); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			existing, err := convs.FindBetween(ctx, senderID, targetID)
			if err != nil {
				return nil, err
			}
			return &StartResult{ID: existing.ID, Status: StartStatusExists}, nil
		}
		return nil, err
	}

	return &StartResult{ID: conv.ID, Status: StartStatusCreated}, nil
}

// Send delivers a message from senderID to targetID. The target row is locked
// for the whole admission and append, so two senders racing for the last
// capacity slot are serialized.
func (s *ConversationService) Send(ctx context.Context, senderID, targetID, text string, clientOffset *int) (*SendResult, error) {
	if err := validatePair(senderID, targetID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text required", common.ErrorValidation)
	}

	var result *SendResult
	err := dbx.WithTxRetry(ctx, s.db, nil, sendAttempts, func(ctx context.Context, tx dbx.DBTX) error {
		convs := s.repomanager.Conversations(tx)

		target, err := s.repomanager.Users(tx).LockByID(ctx, targetID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		d := s.evaluator.Evaluate(target, now, clientOffset)
		if !d.Reachable {
			return common.NewScheduleBlock(d.Reason)
		}

		adm, err := capacity.NewCounter(convs).AdmitSend(ctx, target, senderID)
		if err != nil {
			return err
		}
		if !adm.Admit {
			s.log.Info(ctx, "send rejected at capacity", "sender", senderID, "target", targetID,
				"active", adm.ActiveCount, "max", target.Availability.MaxContact)
			return common.NewCapacityBlock(adm.Reason)
		}

		conv, err := findOrCreate(ctx, convs, senderID, targetID)
		if err != nil {
			return err
		}

		nowMs := timex.UnixMilli(now)
		msg := models.Message{
			ID:             uuid.NewString(),
			ConversationID: conv.ID,
			SenderID:       senderID,
			Text:           text,
			Timestamp:      nowMs,
		}
		if err := convs.AppendMessage(ctx, &msg); err != nil {
			return err
		}

		if availability.ShouldRestartTimer(conv, target) {
			if err := convs.SetTimer(ctx, conv.ID, nowMs); err != nil {
				return err
			}
			conv.TimerStarted = &nowMs
			conv.Rated = false
			conv.TimerExpired = false
		}
		conv.MessageCount++

		result = &SendResult{Message: msg, Conversation: conv, ActiveCount: adm.ActiveCount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func findOrCreate(ctx context.Context, convs conversations.Repository, senderID, targetID string) (*models.Conversation, error) {
	conv, err := convs.FindBetween(ctx, senderID, targetID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	conv = &models.Conversation{ID: uuid.NewString(), Participants: models.OrderedPair(senderID, targetID)}
	if err := convs.Create(ctx, conv); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return convs.FindBetween(ctx, senderID, targetID)
		}
		return nil, err
	}
	return conv, nil
}

// Rate records raterID's rating of the conversation with targetID, ends its
// timer and adjusts the target's approval rating. The contact slot stays used.
func (s *ConversationService) Rate(ctx context.Context, raterID, targetID string, good bool, reason string) (*RateResult, error) {
	if err := validatePair(raterID, targetID); err != nil {
		return nil, err
	}

	ratingType := models.RatingBad
	if good {
		ratingType = models.RatingGood
	}
	change := ratingChange(ratingType, reason)

	var result *RateResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		convs := s.repomanager.Conversations(tx)

		conv, err := convs.FindBetween(ctx, raterID, targetID)
		if err != nil {
			return err
		}
		if err := convs.Rate(ctx, conv.ID, ratingType, reason); err != nil {
			return err
		}

		rating, err := s.repomanager.Users(tx).AdjustApprovalRating(ctx, targetID, change)
		if err != nil {
			return err
		}
		result = &RateResult{RatingType: ratingType, ApprovalChange: change, ApprovalRating: rating}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns userID's conversations as seen by userID, newest activity first.
func (s *ConversationService) List(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	convs := s.repomanager.Conversations(s.db)

	list, err := convs.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]models.ConversationSummary, 0, len(list))
	for _, c := range list {
		msgs, err := convs.Messages(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, summarize(c, msgs, userID))
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastMessageTime > result[j].LastMessageTime
	})
	return result, nil
}

func summarize(c *models.Conversation, msgs []models.Message, viewerID string) models.ConversationSummary {
	if msgs == nil {
		msgs = []models.Message{}
	}
	sum := models.ConversationSummary{
		ID:              c.ID,
		UserID:          c.Other(viewerID),
		Messages:        msgs,
		TimerStarted:    c.TimerStarted,
		TimerExpired:    c.TimerExpired,
		Rated:           c.Rated,
		LastMessageTime: timex.UnixMilli(c.CreatedAt),
	}
	if len(msgs) > 0 {
		last := msgs[len(msgs)-1]
		sum.LastMessage = last.Text
		sum.LastMessageTime = last.Timestamp
		sum.LastMessageSenderID = last.SenderID
		sum.WaitingForResponse = last.SenderID == viewerID
		sum.TheyRespondedLast = last.SenderID != viewerID
	}
	return sum
}
