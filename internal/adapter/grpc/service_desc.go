package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "mpf.v1.FinanceService"

// Method names of FinanceService.
const (
	MethodImportCSV        = "ImportCSV"
	MethodImportPDF        = "ImportPDF"
	MethodDetectTransfers  = "DetectTransfers"
	MethodListTransfers    = "ListTransfers"
	MethodConfirmTransfer  = "ConfirmTransfer"
	MethodDismissTransfer  = "DismissTransfer"
	MethodDetectRecurring  = "DetectRecurring"
	MethodListRecurring    = "ListRecurring"
	MethodUpdateRecurring  = "UpdateRecurring"
	MethodRecurringSummary = "RecurringSummary"
	MethodListRules        = "ListRules"
	MethodCreateRule       = "CreateRule"
	MethodUpdateRule       = "UpdateRule"
	MethodDeleteRule       = "DeleteRule"
	MethodApplyRules       = "ApplyRules"
	MethodReorderRules     = "ReorderRules"
	MethodListProfiles     = "ListProfiles"
	MethodGetProfile       = "GetProfile"
	MethodCreateProfile    = "CreateProfile"
	MethodDeleteProfile    = "DeleteProfile"
)

// FinanceServiceServer is the server API for FinanceService.
// Every method exchanges google.protobuf.Struct messages.
type FinanceServiceServer interface {
	ImportCSV(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportPDF(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DetectTransfers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransfers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DismissTransfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DetectRecurring(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRecurring(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRecurring(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RecurringSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateRule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteRule(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplyRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReorderRules(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProfiles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(FinanceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(FinanceServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(FinanceServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// FinanceServiceDesc describes FinanceService for grpc.ServiceRegistrar.
var FinanceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FinanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodImportCSV, FinanceServiceServer.ImportCSV),
		unaryMethod(MethodImportPDF, FinanceServiceServer.ImportPDF),
		unaryMethod(MethodDetectTransfers, FinanceServiceServer.DetectTransfers),
		unaryMethod(MethodListTransfers, FinanceServiceServer.ListTransfers),
		unaryMethod(MethodConfirmTransfer, FinanceServiceServer.ConfirmTransfer),
		unaryMethod(MethodDismissTransfer, FinanceServiceServer.DismissTransfer),
		unaryMethod(MethodDetectRecurring, FinanceServiceServer.DetectRecurring),
		unaryMethod(MethodListRecurring, FinanceServiceServer.ListRecurring),
		unaryMethod(MethodUpdateRecurring, FinanceServiceServer.UpdateRecurring),
		unaryMethod(MethodRecurringSummary, FinanceServiceServer.RecurringSummary),
		unaryMethod(MethodListRules, FinanceServiceServer.ListRules),
		unaryMethod(MethodCreateRule, FinanceServiceServer.CreateRule),
		unaryMethod(MethodUpdateRule, FinanceServiceServer.UpdateRule),
		unaryMethod(MethodDeleteRule, FinanceServiceServer.DeleteRule),
		unaryMethod(MethodApplyRules, FinanceServiceServer.ApplyRules),
		unaryMethod(MethodReorderRules, FinanceServiceServer.ReorderRules),
		unaryMethod(MethodListProfiles, FinanceServiceServer.ListProfiles),
		unaryMethod(MethodGetProfile, FinanceServiceServer.GetProfile),
		unaryMethod(MethodCreateProfile, FinanceServiceServer.CreateProfile),
		unaryMethod(MethodDeleteProfile, FinanceServiceServer.DeleteProfile),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mpf/v1/finance_service",
}

// RegisterFinanceServiceServer registers srv on s.
func RegisterFinanceServiceServer(s grpc.ServiceRegistrar, srv FinanceServiceServer) {
	s.RegisterService(&FinanceServiceDesc, srv)
}

// FinanceServiceClient calls FinanceService methods by name.
type FinanceServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFinanceServiceClient creates a client on an established connection.
func NewFinanceServiceClient(cc grpc.ClientConnInterface) *FinanceServiceClient {
	return &FinanceServiceClient{cc: cc}
}

// Call invokes method with req and returns the decoded response.
func (c *FinanceServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if req == nil {
		req = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
