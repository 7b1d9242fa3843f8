package services

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/dbx"
	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/availability"
	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/conversations"
	"github.com/dmitrijs2005/aviato/internal/server/repositories/users"
)

// -------- in-memory store shared by the fake repositories --------

type memStore struct {
	users map[string]*models.User
	convs []*models.Conversation
	msgs  map[string][]models.Message

	// failOnce makes the named operation fail exactly once.
	failOnce map[string]error
	locked   []string
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*models.User{},
		msgs:     map[string][]models.Message{},
		failOnce: map[string]error{},
	}
}

func (s *memStore) fail(op string) error {
	if err, ok := s.failOnce[op]; ok {
		delete(s.failOnce, op)
		return err
	}
	return nil
}

func (s *memStore) addUser(u models.User) {
	cp := u
	s.users[u.ID] = &cp
}

func (s *memStore) conv(id string) *models.Conversation {
	for _, c := range s.convs {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *memStore) between(a, b string) *models.Conversation {
	pair := models.OrderedPair(a, b)
	for _, c := range s.convs {
		if c.Participants == pair {
			return c
		}
	}
	return nil
}

func (s *memStore) snapshot(c *models.Conversation) *models.Conversation {
	cp := *c
	cp.Messages = nil
	cp.MessageCount = len(s.msgs[c.ID])
	return &cp
}

type memUsers struct{ s *memStore }

var _ users.Repository = (*memUsers)(nil)

func (r *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.s.fail("users.Create"); err != nil {
		return nil, err
	}
	r.s.addUser(*user)
	return user, nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := r.s.fail("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) List(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUsers) LockByID(ctx context.Context, id string) (*models.User, error) {
	if err := r.s.fail("users.LockByID"); err != nil {
		return nil, err
	}
	r.s.locked = append(r.s.locked, id)
	return r.GetByID(ctx, id)
}

func (r *memUsers) UpdateAvailability(ctx context.Context, user *models.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *user
	cp.Availability.CurrentContacts = 0
	r.s.users[user.ID] = &cp
	return nil
}

func (r *memUsers) AdjustApprovalRating(ctx context.Context, id string, delta int) (int, error) {
	u, ok := r.s.users[id]
	if !ok {
		return 0, common.ErrorNotFound
	}
	u.ApprovalRating += delta
	return u.ApprovalRating, nil
}

type memConvs struct{ s *memStore }

var _ conversations.Repository = (*memConvs)(nil)

func (r *memConvs) FindBetween(ctx context.Context, a, b string) (*models.Conversation, error) {
	if err := r.s.fail("conversations.FindBetween"); err != nil {
		return nil, err
	}
	c := r.s.between(a, b)
	if c == nil {
		return nil, common.ErrorNotFound
	}
	return r.s.snapshot(c), nil
}

func (r *memConvs) Create(ctx context.Context, conv *models.Conversation) error {
	pair := models.OrderedPair(conv.Participants[0], conv.Participants[1])
	if r.s.between(pair[0], pair[1]) != nil {
		return common.ErrorAlreadyExists
	}
	conv.Participants = pair
	cp := *conv
	r.s.convs = append(r.s.convs, &cp)
	return nil
}

func (r *memConvs) AppendMessage(ctx context.Context, msg *models.Message) error {
	if r.s.conv(msg.ConversationID) == nil {
		return common.ErrorNotFound
	}
	r.s.msgs[msg.ConversationID] = append(r.s.msgs[msg.ConversationID], *msg)
	return nil
}

func (r *memConvs) SetTimer(ctx context.Context, id string, startedAt int64) error {
	c := r.s.conv(id)
	if c == nil {
		return common.ErrorNotFound
	}
	c.TimerStarted = &startedAt
	c.Rated = false
	c.TimerExpired = false
	return nil
}

func (r *memConvs) Rate(ctx context.Context, id, ratingType, reason string) error {
	c := r.s.conv(id)
	if c == nil {
		return common.ErrorNotFound
	}
	c.Rated = true
	c.TimerExpired = true
	c.RatingType = ratingType
	c.RatingReason = reason
	return nil
}

func (r *memConvs) CountActive(ctx context.Context, userID string, since int64) (int, error) {
	n := 0
	for _, c := range r.s.convs {
		if c.Participants[0] != userID && c.Participants[1] != userID {
			continue
		}
		if c.TimerStarted == nil || *c.TimerStarted <= since || len(r.s.msgs[c.ID]) == 0 {
			continue
		}
		n++
	}
	return n, nil
}

func (r *memConvs) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range r.s.convs {
		if c.Participants[0] == userID || c.Participants[1] == userID {
			out = append(out, r.s.snapshot(c))
		}
	}
	return out, nil
}

func (r *memConvs) Messages(ctx context.Context, id string) ([]models.Message, error) {
	return append([]models.Message(nil), r.s.msgs[id]...), nil
}

type fakeRepoManager struct{ s *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository           { return &memUsers{m.s} }
func (m *fakeRepoManager) Conversations(db dbx.DBTX) conversations.Repository {
	return &memConvs{m.s}
}

// -------- clock --------

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func (c *stepClock) ms() int64 { return c.t.UnixMilli() }

// -------- environment --------

var noon = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *memStore
	clock *stepClock
	users *UserService
	convs *ConversationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := newMemStore()
	rm := &fakeRepoManager{s: store}
	clock := &stepClock{t: noon}
	ev := availability.NewEvaluator(time.UTC)

	return &env{
		db:    db,
		mock:  mock,
		store: store,
		clock: clock,
		users: NewUserService(db, rm, ev, clock, logging.Nop{}),
		convs: NewConversationService(db, rm, ev, clock, logging.Nop{}),
	}
}

func (e *env) expectTx() {
	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
}

func (e *env) expectRollback() {
	e.mock.ExpectBegin()
	e.mock.ExpectRollback()
}

func (e *env) orange(id string, max int, startedAt int64) {
	e.store.addUser(models.User{
		ID:               id,
		Email:            id + "@example.com",
		Name:             id,
		AvailabilityMode: models.ModeCapacityLimited,
		Availability:     models.Availability{MaxContact: max, ModeStartedAt: &startedAt},
	})
}

func (e *env) green(id string) {
	e.store.addUser(models.User{ID: id, Email: id + "@example.com", Name: id, AvailabilityMode: models.ModeImmediate})
}

func intPtr(v int) *int { return &v }

func modePtr(m models.Mode) *models.Mode { return &m }
