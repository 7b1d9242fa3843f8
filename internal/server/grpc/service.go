package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The service carries google.protobuf.Struct messages in both directions,
// so it needs no generated code of its own.
const serviceName = "aviato.availability.AvailabilityService"

const (
	MethodCheckAvailability = "/" + serviceName + "/CheckAvailability"
	MethodStartConversation = "/" + serviceName + "/StartConversation"
	MethodSendMessage       = "/" + serviceName + "/SendMessage"
	MethodCreateUser        = "/" + serviceName + "/CreateUser"
)

// AvailabilityServer is the server API of the availability service.
type AvailabilityServer interface {
	CheckAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartConversation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AvailabilityServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AvailabilityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AvailabilityServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes the availability service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AvailabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CheckAvailability",
			Handler:    unaryHandler(MethodCheckAvailability, AvailabilityServer.CheckAvailability),
		},
		{
			MethodName: "StartConversation",
			Handler:    unaryHandler(MethodStartConversation, AvailabilityServer.StartConversation),
		},
		{
			MethodName: "SendMessage",
			Handler:    unaryHandler(MethodSendMessage, AvailabilityServer.SendMessage),
		},
		{
			MethodName: "CreateUser",
			Handler:    unaryHandler(MethodCreateUser, AvailabilityServer.CreateUser),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// AvailabilityClient calls the availability service.
type AvailabilityClient struct {
	cc grpc.ClientConnInterface
}

func NewAvailabilityClient(cc grpc.ClientConnInterface) *AvailabilityClient {
	return &AvailabilityClient{cc: cc}
}

func (c *AvailabilityClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AvailabilityClient) CheckAvailability(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCheckAvailability, in, opts...)
}

func (c *AvailabilityClient) StartConversation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodStartConversation, in, opts...)
}

func (c *AvailabilityClient) SendMessage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSendMessage, in, opts...)
}

func (c *AvailabilityClient) CreateUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCreateUser, in, opts...)
}
