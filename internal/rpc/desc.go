// Package rpc serves the session service over gRPC. Messages are
// google.protobuf.Struct documents carrying the same JSON shapes as the HTTP
// API, so no generated code is needed.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "rngcrack.v1.Cracker"

// CrackerServer is the server API for the Cracker service. Requests that
// address a session carry its ID in the "id" field or as a StringValue.
type CrackerServer interface {
	CreateSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetState(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Observe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Finalize(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Steps(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Trusted(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Plan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Tick(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteSession(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// CrackerServiceDesc describes the service for grpc.Server.RegisterService.
var CrackerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CrackerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateSession", CrackerServer.CreateSession),
		unary("GetState", CrackerServer.GetState),
		unary("Observe", CrackerServer.Observe),
		unary("Finalize", CrackerServer.Finalize),
		unary("Steps", CrackerServer.Steps),
		unary("Trusted", CrackerServer.Trusted),
		unary("Reset", CrackerServer.Reset),
		unary("Plan", CrackerServer.Plan),
		unary("Tick", CrackerServer.Tick),
		unary("DeleteSession", CrackerServer.DeleteSession),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rngcrack/v1/cracker.proto",
}

func RegisterCrackerServer(s grpc.ServiceRegistrar, srv CrackerServer) {
	s.RegisterService(&CrackerServiceDesc, srv)
}

func fullMethod(name string) string { return "/" + ServiceName + "/" + name }

func unary[Req, Resp any](name string, call func(CrackerServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CrackerServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// CrackerClient is a thin client for the Cracker service.
type CrackerClient struct {
	cc grpc.ClientConnInterface
}

func NewCrackerClient(cc grpc.ClientConnInterface) *CrackerClient {
	return &CrackerClient{cc: cc}
}

func (c *CrackerClient) call(ctx context.Context, name string, in any, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CrackerClient) CreateSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "CreateSession", in, opts)
}

func (c *CrackerClient) GetState(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "GetState", in, opts)
}

func (c *CrackerClient) Observe(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Observe", in, opts)
}

func (c *CrackerClient) Finalize(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Finalize", in, opts)
}

func (c *CrackerClient) Steps(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Steps", in, opts)
}

func (c *CrackerClient) Trusted(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Trusted", in, opts)
}

func (c *CrackerClient) Reset(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Reset", in, opts)
}

func (c *CrackerClient) Plan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Plan", in, opts)
}

func (c *CrackerClient) Tick(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.call(ctx, "Tick", in, opts)
}

func (c *CrackerClient) DeleteSession(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, fullMethod("DeleteSession"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
