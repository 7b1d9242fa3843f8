// Package models defines server-side data models persisted in the database.
package models

import "time"

// Mode is the availability mode of a user. The persisted values are the
// product color names.
type Mode string

const (
	ModeNone              Mode = ""
	ModeImmediate         Mode = "green"
	ModeDelayedWindow     Mode = "yellow"
	ModeScheduledDeadline Mode = "brown"
	ModeFutureDateLock    Mode = "blue"
	ModeCapacityLimited   Mode = "orange"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeNone, ModeImmediate, ModeDelayedWindow, ModeScheduledDeadline, ModeFutureDateLock, ModeCapacityLimited:
		return true
	}
	return false
}

// Availability holds the per-mode settings of a user. Instants are epoch
// milliseconds.
type Availability struct {
	// OpenDate is a YYYY-MM-DD calendar date (blue).
	OpenDate string `json:"openDate,omitempty"`

	// LaterMinutes and LaterStartTime define the yellow window.
	LaterMinutes   int    `json:"laterMinutes"`
	LaterStartTime *int64 `json:"laterStartTime,omitempty"`

	// MaxContact is the orange capacity limit.
	MaxContact int `json:"maxContact"`
	// CurrentContacts is display-only; every read recomputes it.
	CurrentContacts int `json:"currentContacts"`

	// TimedHour and TimedMinute are the brown daily deadline in the
	// user's local time; TimezoneOffset is minutes behind UTC.
	TimedHour      *int `json:"timedHour,omitempty"`
	TimedMinute    *int `json:"timedMinute,omitempty"`
	TimezoneOffset *int `json:"timezoneOffset,omitempty"`

	// ModeStartedAt marks the start of the current orange session.
	ModeStartedAt *int64 `json:"modeStartedAt,omitempty"`
}

// SessionStart returns ModeStartedAt or 0 when the session was never stamped.
func (a Availability) SessionStart() int64 {
	if a.ModeStartedAt == nil {
		return 0
	}
	return *a.ModeStartedAt
}

type User struct {
	ID               string       `json:"id"`
	Email            string       `json:"email"`
	Name             string       `json:"name"`
	Location         string       `json:"location"`
	AvailabilityMode Mode         `json:"availabilityMode"`
	Availability     Availability `json:"availability"`
	ApprovalRating   int          `json:"approvalRating"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// UserUpdate is a partial update; nil fields are left untouched. A non-nil
// Availability replaces the stored settings as a whole.
type UserUpdate struct {
	Name             *string       `json:"name,omitempty"`
	Location         *string       `json:"location,omitempty"`
	AvailabilityMode *Mode         `json:"availabilityMode,omitempty"`
	Availability     *Availability `json:"availability,omitempty"`
}

// Empty reports whether the update carries no field at all.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Location == nil && u.AvailabilityMode == nil && u.Availability == nil
}
