package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/aviato/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) CheckAvailability(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	targetID := stringField(req, "userId")
	if targetID == "" {
		return nil, status.Error(codes.InvalidArgument, "userId required")
	}

	d, err := s.convs.CheckAvailability(ctx, targetID, timezoneOffset(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return structpb.NewStruct(map[string]any{
		"reachable": d.Reachable,
		"reason":    d.Reason,
		"mode":      string(d.Mode),
	})
}

func (s *GRPCServer) StartConversation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	targetID := stringField(req, "userId")
	if targetID == "" {
		return nil, status.Error(codes.InvalidArgument, "userId required")
	}

	res, err := s.convs.Start(ctx, userIDFromContext(ctx), targetID, timezoneOffset(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return structpb.NewStruct(map[string]any{
		"id":     res.ID,
		"status": res.Status,
	})
}

func (s *GRPCServer) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sender := userIDFromContext(ctx)
	res, err := s.convs.Send(ctx, sender, stringField(req, "userId"), stringField(req, "text"), timezoneOffset(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Debug(ctx, "message sent", "sender", sender, "conversation", res.Message.ConversationID)

	return structpb.NewStruct(map[string]any{
		"id":             res.Message.ID,
		"conversationId": res.Message.ConversationID,
		"senderId":       res.Message.SenderID,
		"text":           res.Message.Text,
		"timestamp":      res.Message.Timestamp,
	})
}

func (s *GRPCServer) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.users.Create(ctx, stringField(req, "email"), stringField(req, "name"))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "user created", "id", u.ID, "by", userIDFromContext(ctx))

	return structpb.NewStruct(map[string]any{
		"id":               u.ID,
		"email":            u.Email,
		"name":             u.Name,
		"availabilityMode": string(u.AvailabilityMode),
	})
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var blocked *common.BlockedError
	switch {
	case errors.As(err, &blocked):
		return status.Error(codes.PermissionDenied, blocked.Reason)
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrInvalidOpenDate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
