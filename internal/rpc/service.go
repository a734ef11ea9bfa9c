// Package rpc exposes the runner over gRPC. Messages are well-known
// structpb and emptypb types, so the service descriptor is written by hand.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "awut.validate.v1.Validation"

const (
	runCheckMethod = "/" + ServiceName + "/RunCheck"
	runAllMethod   = "/" + ServiceName + "/RunAll"
)

// #region interfaces
// ValidationServer is the server API for the Validation service.
type ValidationServer interface {
	// RunCheck runs the check named by the "check" field and returns its report.
	RunCheck(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// RunAll runs every check and returns the run id and scorecard.
	RunAll(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// ValidationClient is the client API for the Validation service.
type ValidationClient interface {
	RunCheck(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RunAll(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// #endregion interfaces

// #region client-stub
type validationClient struct {
	cc grpc.ClientConnInterface
}

// NewValidationClient returns a client stub bound to cc.
func NewValidationClient(cc grpc.ClientConnInterface) ValidationClient {
	return &validationClient{cc: cc}
}

func (c *validationClient) RunCheck(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, runCheckMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *validationClient) RunAll(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, runAllMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion client-stub

// #region service-desc
// RegisterValidationServer attaches srv to s.
func RegisterValidationServer(s grpc.ServiceRegistrar, srv ValidationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the Validation service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValidationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunCheck", Handler: runCheckHandler},
		{MethodName: "RunAll", Handler: runAllHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "awut/validate/v1/validation.proto",
}

func runCheckHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidationServer).RunCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: runCheckMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ValidationServer).RunCheck(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func runAllHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidationServer).RunAll(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: runAllMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ValidationServer).RunAll(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion service-desc
