package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "fundbalance.v1.RebalanceService"

// RebalanceServiceServer is the server API for the RebalanceService service
// Messages are google.protobuf.Struct values shaped like the HTTP API's data payloads
type RebalanceServiceServer interface {
	ListBuckets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Rebalance(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterRebalanceServiceServer registers srv on s
func RegisterRebalanceServiceServer(s grpc.ServiceRegistrar, srv RebalanceServiceServer) {
	s.RegisterService(&RebalanceService_ServiceDesc, srv)
}

// RebalanceService_ServiceDesc is the grpc.ServiceDesc for RebalanceService
var RebalanceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RebalanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListBuckets", Handler: unaryHandler("ListBuckets", RebalanceServiceServer.ListBuckets)},
		{MethodName: "Rebalance", Handler: unaryHandler("Rebalance", RebalanceServiceServer.Rebalance)},
		{MethodName: "ListHistory", Handler: unaryHandler("ListHistory", RebalanceServiceServer.ListHistory)},
		{MethodName: "GetHistory", Handler: unaryHandler("GetHistory", RebalanceServiceServer.GetHistory)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fundbalance/v1/rebalance.proto",
}

type unaryMethod func(RebalanceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, method unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + name

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(RebalanceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(RebalanceServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
