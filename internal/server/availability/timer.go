package availability

import "github.com/dmitrijs2005/aviato/internal/server/models"

// ShouldRestartTimer reports whether sending a message into conv restarts its
// activity timer: no timer yet, rated, expired, or, for an orange target,
// the timer predates the target's current session.
func ShouldRestartTimer(conv *models.Conversation, target *models.User) bool {
	if conv.TimerStarted == nil || conv.Rated || conv.TimerExpired {
		return true
	}
	if target.AvailabilityMode == models.ModeCapacityLimited {
		return *conv.TimerStarted <= target.Availability.SessionStart()
	}
	return false
}
