// Package users provides the PostgreSQL-backed user repository. Availability
// settings are stored flattened into the users row.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/dbx"
	"github.com/dmitrijs2005/aviato/internal/server/models"
)

const userColumns = `id, email, name, location, availability_mode,
		open_date, later_minutes, later_start_time, max_contact,
		timed_hour, timed_minute, timezone_offset, mode_started_at,
		approval_rating, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u              models.User
		mode           string
		openDate       sql.NullString
		laterStart     sql.NullInt64
		timedHour      sql.NullInt32
		timedMinute    sql.NullInt32
		timezoneOffset sql.NullInt32
		modeStartedAt  sql.NullInt64
	)

	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Location, &mode,
		&openDate, &u.Availability.LaterMinutes, &laterStart, &u.Availability.MaxContact,
		&timedHour, &timedMinute, &timezoneOffset, &modeStartedAt,
		&u.ApprovalRating, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	u.AvailabilityMode = models.Mode(mode)
	u.Availability.OpenDate = openDate.String
	u.Availability.LaterStartTime = int64OrNil(laterStart)
	u.Availability.TimedHour = intOrNil(timedHour)
	u.Availability.TimedMinute = intOrNil(timedMinute)
	u.Availability.TimezoneOffset = intOrNil(timezoneOffset)
	u.Availability.ModeStartedAt = int64OrNil(modeStartedAt)

	return &u, nil
}

func int64OrNil(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func intOrNil(v sql.NullInt32) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int32)
	return &n
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		// A malformed id cannot name a stored user.
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, email, name, location, availability_mode)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.Location, string(user.AvailabilityMode)).Scan(&user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email %s", common.ErrorAlreadyExists, user.Email)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) LockByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// UpdateAvailability writes profile and availability columns of user.
// CurrentContacts is derived and never written.
func (r *PostgresRepository) UpdateAvailability(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET name = $2, location = $3, availability_mode = $4,
		 open_date = $5, later_minutes = $6, later_start_time = $7, max_contact = $8,
		 timed_hour = $9, timed_minute = $10, timezone_offset = $11, mode_started_at = $12
		 WHERE id = $1`

	a := user.Availability
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Location, string(user.AvailabilityMode),
		nullString(a.OpenDate), a.LaterMinutes, a.LaterStartTime, a.MaxContact,
		a.TimedHour, a.TimedMinute, a.TimezoneOffset, a.ModeStartedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// AdjustApprovalRating adds delta to the user's approval rating and returns
// the new value.
func (r *PostgresRepository) AdjustApprovalRating(ctx context.Context, id string, delta int) (int, error) {
	query :=
		`UPDATE users SET approval_rating = approval_rating + $2
		 WHERE id = $1
		 RETURNING approval_rating`

	var rating int
	err := r.db.QueryRowContext(ctx, query, id, delta).Scan(&rating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return rating, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
