package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "rippleeffect.charity.v1.CharityService"

// CharityServiceServer is the server API of the charity service. Requests and
// replies are google.protobuf.Struct documents.
type CharityServiceServer interface {
	Check(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyCharity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindNearbyCharities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddCharity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddNearbyCharity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecordPurchase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Donate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDashboard(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(CharityServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CharityServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CharityServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var CharityServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CharityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Check", CharityServiceServer.Check),
		unary("VerifyCharity", CharityServiceServer.VerifyCharity),
		unary("FindNearbyCharities", CharityServiceServer.FindNearbyCharities),
		unary("AddCharity", CharityServiceServer.AddCharity),
		unary("AddNearbyCharity", CharityServiceServer.AddNearbyCharity),
		unary("RecordPurchase", CharityServiceServer.RecordPurchase),
		unary("Donate", CharityServiceServer.Donate),
		unary("UpdateProfile", CharityServiceServer.UpdateProfile),
		unary("GetDashboard", CharityServiceServer.GetDashboard),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rippleeffect/charity/v1/charity.proto",
}

// CharityServiceClient calls the service by method name.
type CharityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCharityServiceClient(cc grpc.ClientConnInterface) *CharityServiceClient {
	return &CharityServiceClient{cc: cc}
}

func (c *CharityServiceClient) Call(ctx context.Context, method string, in map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
