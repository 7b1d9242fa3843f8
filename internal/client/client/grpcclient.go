// Package client talks to the aviato gRPC AvailabilityService on behalf of
// the operator CLI.
package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/aviato/internal/common"
	gs "github.com/dmitrijs2005/aviato/internal/server/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Availability is the answer to a CheckAvailability call.
type Availability struct {
	Reachable bool
	Reason    string
	Mode      string
}

// Conversation identifies a started conversation.
type Conversation struct {
	ID     string
	Status string
}

// Message is a delivered message.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Text           string
	Timestamp      int64
}

// User is a newly registered user.
type User struct {
	ID               string
	Email            string
	Name             string
	AvailabilityMode string
}

type GRPCClient struct {
	conn           *grpc.ClientConn
	client         *gs.AvailabilityClient
	accessToken    string
	timezoneOffset *int
}

// withMetadata replaces the token and timezone offset entries of the
// outgoing metadata in ctx.
func withMetadata(ctx context.Context, token string, offset *int) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	md.Delete(common.TimezoneOffsetHeaderName)
	if offset != nil {
		md.Set(common.TimezoneOffsetHeaderName, strconv.Itoa(*offset))
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) metadataInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withMetadata(ctx, s.accessToken, s.timezoneOffset), method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpointURL without transport security. Extra
// dial options are appended after the defaults.
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.metadataInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = gs.NewAvailabilityClient(conn)
	return c, nil
}

// SetAccessToken sets the token sent with every subsequent call; an empty
// token makes calls anonymous.
func (s *GRPCClient) SetAccessToken(token string) {
	s.accessToken = token
}

// SetTimezoneOffset sets the caller's offset in minutes; nil omits it.
func (s *GRPCClient) SetTimezoneOffset(offset *int) {
	s.timezoneOffset = offset
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) CheckAvailability(ctx context.Context, userID string) (*Availability, error) {
	req, err := structpb.NewStruct(map[string]any{"userId": userID})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CheckAvailability(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &Availability{
		Reachable: f["reachable"].GetBoolValue(),
		Reason:    f["reason"].GetStringValue(),
		Mode:      f["mode"].GetStringValue(),
	}, nil
}

func (s *GRPCClient) StartConversation(ctx context.Context, userID string) (*Conversation, error) {
	req, err := structpb.NewStruct(map[string]any{"userId": userID})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.StartConversation(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &Conversation{
		ID:     f["id"].GetStringValue(),
		Status: f["status"].GetStringValue(),
	}, nil
}

func (s *GRPCClient) SendMessage(ctx context.Context, userID, text string) (*Message, error) {
	req, err := structpb.NewStruct(map[string]any{"userId": userID, "text": text})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.SendMessage(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &Message{
		ID:             f["id"].GetStringValue(),
		ConversationID: f["conversationId"].GetStringValue(),
		SenderID:       f["senderId"].GetStringValue(),
		Text:           f["text"].GetStringValue(),
		Timestamp:      int64(f["timestamp"].GetNumberValue()),
	}, nil
}

func (s *GRPCClient) CreateUser(ctx context.Context, email, name string) (*User, error) {
	req, err := structpb.NewStruct(map[string]any{"email": email, "name": name})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.CreateUser(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := resp.GetFields()
	return &User{
		ID:               f["id"].GetStringValue(),
		Email:            f["email"].GetStringValue(),
		Name:             f["name"].GetStringValue(),
		AvailabilityMode: f["availabilityMode"].GetStringValue(),
	}, nil
}

// mapError turns a gRPC status into one of the package errors. Blocked and
// invalid requests keep the server's message.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrBlocked, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
