package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/aviato/internal/common"
	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/auth"
	"github.com/dmitrijs2005/aviato/internal/server/availability"
	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const testSecret = "secret"

type fakeConvs struct {
	decision  availability.Decision
	start     *services.StartResult
	send      *services.SendResult
	err       error
	gotSender string
	gotTarget string
	gotOffset *int
}

func (f *fakeConvs) CheckAvailability(ctx context.Context, targetID string, off *int) (availability.Decision, error) {
	f.gotTarget, f.gotOffset = targetID, off
	return f.decision, f.err
}

func (f *fakeConvs) Start(ctx context.Context, senderID, targetID string, off *int) (*services.StartResult, error) {
	f.gotSender, f.gotTarget, f.gotOffset = senderID, targetID, off
	return f.start, f.err
}

func (f *fakeConvs) Send(ctx context.Context, senderID, targetID, text string, off *int) (*services.SendResult, error) {
	f.gotSender, f.gotTarget, f.gotOffset = senderID, targetID, off
	return f.send, f.err
}

type fakeUsers struct {
	user     *models.User
	err      error
	gotEmail string
	gotName  string
}

func (f *fakeUsers) Create(ctx context.Context, email, name string) (*models.User, error) {
	f.gotEmail, f.gotName = email, name
	return f.user, f.err
}

func startBufServer(t *testing.T, convs *fakeConvs) *AvailabilityClient {
	t.Helper()
	return startBufServerWithUsers(t, &fakeUsers{}, convs)
}

func startBufServerWithUsers(t *testing.T, users *fakeUsers, convs *fakeConvs) *AvailabilityClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", logging.Nop{}, users, convs, testSecret)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		<-done
	})
	return NewAvailabilityClient(conn)
}

func withToken(t *testing.T, userID string) context.Context {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestCheckAvailability_Public(t *testing.T) {
	convs := &fakeConvs{decision: availability.Decision{
		Reachable: false,
		Reason:    "User's availability duration has expired (Yellow Mode)",
		Mode:      models.ModeDelayedWindow,
	}}
	client := startBufServer(t, convs)

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.TimezoneOffsetHeaderName, "60")
	out, err := client.CheckAvailability(ctx, mustStruct(t, map[string]any{"userId": "u2"}))
	require.NoError(t, err)

	got := out.AsMap()
	assert.Equal(t, false, got["reachable"])
	assert.Equal(t, "yellow", got["mode"])
	assert.Equal(t, "u2", convs.gotTarget)
	require.NotNil(t, convs.gotOffset)
	assert.Equal(t, 60, *convs.gotOffset)
}

func TestCheckAvailability_RequiresUserID(t *testing.T) {
	client := startBufServer(t, &fakeConvs{})

	_, err := client.CheckAvailability(context.Background(), mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCheckAvailability_UnknownUser(t *testing.T) {
	client := startBufServer(t, &fakeConvs{err: common.ErrorNotFound})

	_, err := client.CheckAvailability(context.Background(), mustStruct(t, map[string]any{"userId": "ghost"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestStartConversation_RequiresToken(t *testing.T) {
	client := startBufServer(t, &fakeConvs{})

	_, err := client.StartConversation(context.Background(), mustStruct(t, map[string]any{"userId": "u2"}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestStartConversation(t *testing.T) {
	convs := &fakeConvs{start: &services.StartResult{ID: "c1", Status: services.StartStatusExists}}
	client := startBufServer(t, convs)

	out, err := client.StartConversation(withToken(t, "u1"), mustStruct(t, map[string]any{"userId": "u2"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": "c1", "status": "exists"}, out.AsMap())
	assert.Equal(t, "u1", convs.gotSender)
}

func TestSendMessage(t *testing.T) {
	convs := &fakeConvs{send: &services.SendResult{Message: models.Message{
		ID: "m1", ConversationID: "c1", SenderID: "u1", Text: "hi", Timestamp: 1700000000000,
	}}}
	client := startBufServer(t, convs)

	out, err := client.SendMessage(withToken(t, "u1"), mustStruct(t, map[string]any{"userId": "u2", "text": "hi"}))
	require.NoError(t, err)

	got := out.AsMap()
	assert.Equal(t, "m1", got["id"])
	assert.Equal(t, float64(1700000000000), got["timestamp"])
	assert.Equal(t, "u2", convs.gotTarget)
}

func TestSendMessage_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "capacity", err: common.NewCapacityBlock("User has reached maximum contacts (Orange Mode)"), want: codes.PermissionDenied},
		{name: "schedule", err: common.NewScheduleBlock("User is unavailable until 2030-01-01 (Blue Mode)"), want: codes.PermissionDenied},
		{name: "validation", err: common.ErrorValidation, want: codes.InvalidArgument},
		{name: "not found", err: common.ErrorNotFound, want: codes.NotFound},
		{name: "internal", err: errors.New("db error: boom"), want: codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startBufServer(t, &fakeConvs{err: tt.err})

			_, err := client.SendMessage(withToken(t, "u1"), mustStruct(t, map[string]any{"userId": "u2", "text": "hi"}))
			assert.Equal(t, tt.want, status.Code(err))

			var blocked *common.BlockedError
			if errors.As(tt.err, &blocked) {
				assert.Equal(t, blocked.Reason, status.Convert(err).Message())
			}
		})
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, &fakeUsers{}, &fakeConvs{}, "secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, &fakeUsers{}, &fakeConvs{}, "secret")

	assert.Error(t, srv.Run(context.Background()))
}

func TestCreateUser_ReturnsUser(t *testing.T) {
	users := &fakeUsers{user: &models.User{
		ID: "n1", Email: "ann@example.com", Name: "Ann", AvailabilityMode: models.ModeImmediate,
	}}
	client := startBufServerWithUsers(t, users, &fakeConvs{})

	out, err := client.CreateUser(withToken(t, "admin"), mustStruct(t, map[string]any{
		"email": "ann@example.com", "name": "Ann",
	}))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"id": "n1", "email": "ann@example.com", "name": "Ann", "availabilityMode": "green",
	}, out.AsMap())
	assert.Equal(t, "ann@example.com", users.gotEmail)
	assert.Equal(t, "Ann", users.gotName)
}

func TestCreateUser_RequiresToken(t *testing.T) {
	users := &fakeUsers{}
	client := startBufServerWithUsers(t, users, &fakeConvs{})

	_, err := client.CreateUser(context.Background(), mustStruct(t, map[string]any{"email": "a@b.c", "name": "A"}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Empty(t, users.gotEmail)
}

func TestCreateUser_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"missing fields", fmt.Errorf("%w: email and name are required", common.ErrorValidation), codes.InvalidArgument},
		{"duplicate email", fmt.Errorf("error creating user: %w", common.ErrorAlreadyExists), codes.AlreadyExists},
		{"db failure", errors.New("db down"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := startBufServerWithUsers(t, &fakeUsers{err: tt.err}, &fakeConvs{})
			_, err := client.CreateUser(withToken(t, "admin"), mustStruct(t, map[string]any{"email": "a@b.c", "name": "A"}))
			assert.Equal(t, tt.want, status.Code(err))
		})
	}
}
