// Package capacity implements the contact limit of capacity-limited (orange)
// users. The number of active contacts is always derived from conversation
// records; nothing here keeps a counter of its own.
package capacity

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/server/models"
)

// MaxContactsReason is the rejection text for a saturated target.
const MaxContactsReason = "User has reached maximum contacts (Orange Mode)"

// Store is the slice of the conversation store the counter reads.
type Store interface {
	// CountActive counts conversations of userID that have at least one
	// message and whose timer started strictly after since (epoch ms).
	CountActive(ctx context.Context, userID string, since int64) (int, error)
	// FindBetween returns the conversation of a and b or common.ErrorNotFound.
	FindBetween(ctx context.Context, a, b string) (*models.Conversation, error)
}

// Counter answers capacity questions for one store snapshot. Bind it to a
// transactional store to make AdmitSend and the following append atomic.
type Counter struct {
	store Store
}

func NewCounter(store Store) *Counter {
	return &Counter{store: store}
}

// Admission is the result of AdmitSend.
type Admission struct {
	Admit bool
	// Reason is set when Admit is false.
	Reason string
	// ActiveCount is the count observed while deciding (0 for non-orange targets).
	ActiveCount int
	// NewContact reports whether the message would take a fresh slot.
	NewContact bool
}

// ActiveCount returns the number of conversations currently occupying a slot
// of target's session.
func (c *Counter) ActiveCount(ctx context.Context, target *models.User) (int, error) {
	n, err := c.store.CountActive(ctx, target.ID, target.Availability.SessionStart())
	if err != nil {
		return 0, fmt.Errorf("count active conversations: %w", err)
	}
	return n, nil
}

// WouldBeNewContact reports whether a message from senderID would take a new
// slot: there is no conversation yet, it has no messages, or its last counted
// activity predates the current session.
func (c *Counter) WouldBeNewContact(ctx context.Context, target *models.User, senderID string) (bool, error) {
	conv, err := c.store.FindBetween(ctx, senderID, target.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("find conversation: %w", err)
	}
	if !conv.HasMessages() || conv.TimerStarted == nil {
		return true, nil
	}
	return *conv.TimerStarted <= target.Availability.SessionStart(), nil
}

// AdmitSend decides whether senderID may send a message to target. Only new
// contacts are limited; a sender already holding a slot is always admitted.
func (c *Counter) AdmitSend(ctx context.Context, target *models.User, senderID string) (Admission, error) {
	if target.AvailabilityMode != models.ModeCapacityLimited {
		return Admission{Admit: true}, nil
	}

	count, err := c.ActiveCount(ctx, target)
	if err != nil {
		return Admission{}, err
	}

	isNew, err := c.WouldBeNewContact(ctx, target, senderID)
	if err != nil {
		return Admission{}, err
	}

	if isNew && count >= target.Availability.MaxContact {
		return Admission{Admit: false, Reason: MaxContactsReason, ActiveCount: count, NewContact: true}, nil
	}
	return Admission{Admit: true, ActiveCount: count, NewContact: isNew}, nil
}

// Refresh overwrites user.Availability.CurrentContacts with the derived
// count. Non-orange users are left as they are.
func (c *Counter) Refresh(ctx context.Context, user *models.User) error {
	if user.AvailabilityMode != models.ModeCapacityLimited {
		return nil
	}
	n, err := c.ActiveCount(ctx, user)
	if err != nil {
		return err
	}
	user.Availability.CurrentContacts = n
	return nil
}
