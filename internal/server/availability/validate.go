package availability

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/timex"
)

// ValidateUpdate checks an update before it is stored. Entering blue, or
// changing the settings while staying in blue, with an open date of today or
// earlier is rejected; an unparsable open date is let through and later
// fails open in Evaluate.
func (e *Evaluator) ValidateUpdate(current models.User, update models.UserUpdate, now time.Time) error {
	if update.AvailabilityMode != nil && !update.AvailabilityMode.Valid() {
		return fmt.Errorf("%w: unknown availability mode %q", common.ErrorValidation, *update.AvailabilityMode)
	}

	a := current.Availability
	if update.Availability != nil {
		a = *update.Availability
		if err := validateSettings(a); err != nil {
			return err
		}
	}

	next := current.AvailabilityMode
	if update.AvailabilityMode != nil {
		next = *update.AvailabilityMode
	}
	touched := update.AvailabilityMode != nil || update.Availability != nil

	if next == models.ModeFutureDateLock && touched && a.OpenDate != "" {
		open, err := timex.ParseDate(a.OpenDate, e.loc)
		if err != nil {
			return nil
		}
		if !open.After(timex.DateOf(now.In(e.loc))) {
			return common.ErrInvalidOpenDate
		}
	}
	return nil
}

func validateSettings(a models.Availability) error {
	if a.LaterMinutes < 0 {
		return fmt.Errorf("%w: laterMinutes must not be negative", common.ErrorValidation)
	}
	if a.MaxContact < 0 {
		return fmt.Errorf("%w: maxContact must not be negative", common.ErrorValidation)
	}
	if a.TimedHour != nil && (*a.TimedHour < 0 || *a.TimedHour > 23) {
		return fmt.Errorf("%w: timedHour must be within 0..23", common.ErrorValidation)
	}
	if a.TimedMinute != nil && (*a.TimedMinute < 0 || *a.TimedMinute > 59) {
		return fmt.Errorf("%w: timedMinute must be within 0..59", common.ErrorValidation)
	}
	if a.TimezoneOffset != nil && (*a.TimezoneOffset < -14*60 || *a.TimezoneOffset > 12*60) {
		return fmt.Errorf("%w: timezoneOffset out of range", common.ErrorValidation)
	}
	return nil
}
