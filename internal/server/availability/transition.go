package availability

import (
	"time"

	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/timex"
)

// Transition classifies a settings update with respect to the capacity session.
type Transition int

const (
	TransitionNone Transition = iota
	// TransitionEnterCapacityMode: the update explicitly sets the mode to
	// orange, whether or not the user was already in it.
	TransitionEnterCapacityMode
	// TransitionEditCapacitySettings: the user stays in orange and the
	// update carries availability settings.
	TransitionEditCapacitySettings
	// TransitionLeaveCapacityMode: the user switches from orange to another mode.
	TransitionLeaveCapacityMode
)

func (t Transition) String() string {
	switch t {
	case TransitionEnterCapacityMode:
		return "enter-capacity-mode"
	case TransitionEditCapacitySettings:
		return "edit-capacity-settings"
	case TransitionLeaveCapacityMode:
		return "leave-capacity-mode"
	default:
		return "none"
	}
}

// Action is what a transition does to the stored availability.
type Action int

const (
	ActionNone Action = iota
	// ActionResetSession stamps ModeStartedAt with the current instant,
	// which drops the active count to zero.
	ActionResetSession
)

var transitionActions = map[Transition]Action{
	TransitionNone:                 ActionNone,
	TransitionEnterCapacityMode:    ActionResetSession,
	TransitionEditCapacitySettings: ActionResetSession,
	TransitionLeaveCapacityMode:    ActionNone,
}

// ActionFor looks up the action of t.
func ActionFor(t Transition) Action {
	return transitionActions[t]
}

// ClassifyUpdate determines the transition caused by applying update to a
// user currently in mode current.
func ClassifyUpdate(current models.Mode, update models.UserUpdate) Transition {
	next := current
	if update.AvailabilityMode != nil {
		next = *update.AvailabilityMode
	}

	switch {
	case update.AvailabilityMode != nil && next == models.ModeCapacityLimited:
		return TransitionEnterCapacityMode
	case current == models.ModeCapacityLimited && next == models.ModeCapacityLimited && update.Availability != nil:
		return TransitionEditCapacitySettings
	case current == models.ModeCapacityLimited && next != models.ModeCapacityLimited:
		return TransitionLeaveCapacityMode
	default:
		return TransitionNone
	}
}

// ApplyUpdate returns user with update applied at now, and the transition
// that was taken. A supplied Availability replaces the stored one, except
// that ModeStartedAt is server-owned and CurrentContacts is display-only.
func ApplyUpdate(user models.User, update models.UserUpdate, now time.Time) (models.User, Transition) {
	tr := ClassifyUpdate(user.AvailabilityMode, update)

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	if update.AvailabilityMode != nil {
		user.AvailabilityMode = *update.AvailabilityMode
	}
	if update.Availability != nil {
		sessionStart := user.Availability.ModeStartedAt
		user.Availability = *update.Availability
		user.Availability.ModeStartedAt = sessionStart
		user.Availability.CurrentContacts = 0
	}

	if ActionFor(tr) == ActionResetSession {
		ms := timex.UnixMilli(now)
		user.Availability.ModeStartedAt = &ms
	}

	return user, tr
}
