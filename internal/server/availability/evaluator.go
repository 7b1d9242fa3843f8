// Package availability decides whether a user can currently be contacted.
//
// Evaluate is a pure function of the target's stored settings, the request
// instant and the caller's timezone offset. Capacity-limited users are always
// reported reachable here; the capacity package decides whether a message
// may actually be sent to them.
package availability

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/timex"
)

// Decision is the outcome of an availability check.
type Decision struct {
	Reachable bool
	// Reason is the client-visible explanation when not reachable.
	Reason string
	Mode   models.Mode
}

func reachable(m models.Mode) Decision {
	return Decision{Reachable: true, Mode: m}
}

func blocked(m models.Mode, reason string) Decision {
	return Decision{Reachable: false, Mode: m, Reason: reason}
}

// Evaluator evaluates availability. Calendar dates (blue mode) are compared
// in the server's location.
type Evaluator struct {
	loc *time.Location
}

// NewEvaluator returns an Evaluator comparing open dates in loc; nil means time.Local.
func NewEvaluator(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{loc: loc}
}

// Evaluate decides whether target is reachable at now. clientOffset is the
// caller's timezone offset in minutes behind UTC, nil when not supplied.
func (e *Evaluator) Evaluate(target *models.User, now time.Time, clientOffset *int) Decision {
	mode := target.AvailabilityMode
	a := target.Availability

	switch mode {
	case models.ModeFutureDateLock:
		return e.evaluateOpenDate(a, now)
	case models.ModeDelayedWindow:
		return evaluateWindow(a, now)
	case models.ModeScheduledDeadline:
		return evaluateDeadline(a, now, clientOffset)
	default:
		return reachable(mode)
	}
}

// evaluateOpenDate blocks everyone, including existing conversations, while
// today is before the open date. Malformed dates fail open.
func (e *Evaluator) evaluateOpenDate(a models.Availability, now time.Time) Decision {
	if a.OpenDate == "" {
		return reachable(models.ModeFutureDateLock)
	}
	open, err := timex.ParseDate(a.OpenDate, e.loc)
	if err != nil {
		return reachable(models.ModeFutureDateLock)
	}
	today := timex.DateOf(now.In(e.loc))
	if open.After(today) {
		return blocked(models.ModeFutureDateLock, fmt.Sprintf("User is unavailable until %s (Blue Mode)", a.OpenDate))
	}
	return reachable(models.ModeFutureDateLock)
}

// evaluateWindow blocks once now is past start + minutes. A window without a
// start or with zero minutes was never activated.
func evaluateWindow(a models.Availability, now time.Time) Decision {
	if a.LaterStartTime == nil || *a.LaterStartTime == 0 || a.LaterMinutes <= 0 {
		return reachable(models.ModeDelayedWindow)
	}
	end := *a.LaterStartTime + int64(a.LaterMinutes)*60_000
	if timex.UnixMilli(now) > end {
		return blocked(models.ModeDelayedWindow, "User's availability duration has expired (Yellow Mode)")
	}
	return reachable(models.ModeDelayedWindow)
}

// evaluateDeadline compares time of day only; the date is ignored.
func evaluateDeadline(a models.Availability, now time.Time, clientOffset *int) Decision {
	if a.TimedHour == nil {
		return reachable(models.ModeScheduledDeadline)
	}
	hour := *a.TimedHour
	minute := 0
	if a.TimedMinute != nil {
		minute = *a.TimedMinute
	}

	local := timex.ShiftByOffset(now, EffectiveOffset(a, clientOffset))
	if timex.MinuteOfDay(local) >= hour*60+minute {
		return blocked(models.ModeScheduledDeadline, fmt.Sprintf(
			"User is unavailable after %02d:%02d (Brown Mode). Your local time: %02d:%02d",
			hour, minute, local.Hour(), local.Minute()))
	}
	return reachable(models.ModeScheduledDeadline)
}

// EffectiveOffset picks the caller supplied offset, then the stored one, then UTC.
func EffectiveOffset(a models.Availability, clientOffset *int) int {
	if clientOffset != nil {
		return *clientOffset
	}
	if a.TimezoneOffset != nil {
		return *a.TimezoneOffset
	}
	return 0
}
