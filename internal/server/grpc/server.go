// Package grpc serves the availability checks and contact operations over
// gRPC for clients that do not speak the HTTP API.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/aviato/internal/logging"
	"github.com/dmitrijs2005/aviato/internal/server/availability"
	"github.com/dmitrijs2005/aviato/internal/server/models"
	"github.com/dmitrijs2005/aviato/internal/server/services"
	"google.golang.org/grpc"
)

type ConversationService interface {
	CheckAvailability(ctx context.Context, targetID string, clientOffset *int) (availability.Decision, error)
	Start(ctx context.Context, senderID, targetID string, clientOffset *int) (*services.StartResult, error)
	Send(ctx context.Context, senderID, targetID, text string, clientOffset *int) (*services.SendResult, error)
}

// UserService registers new users. Any authenticated caller may add one.
type UserService interface {
	Create(ctx context.Context, email, name string) (*models.User, error)
}

type GRPCServer struct {
	address   string
	users     UserService
	convs     ConversationService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, users UserService, convs ConversationService, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		users:     users,
		convs:     convs,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	return srv.Serve(lis)
}
