package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "securepay.v1.SecurePay"

const (
	PingMethod            = "/" + ServiceName + "/Ping"
	RegisterMethod        = "/" + ServiceName + "/Register"
	LoginMethod           = "/" + ServiceName + "/Login"
	RefreshTokenMethod    = "/" + ServiceName + "/RefreshToken"
	CurrentUserMethod     = "/" + ServiceName + "/CurrentUser"
	QueryMethod           = "/" + ServiceName + "/Query"
	UpsertMethod          = "/" + ServiceName + "/Upsert"
	DeleteMethod          = "/" + ServiceName + "/Delete"
	SubscribeMethod       = "/" + ServiceName + "/Subscribe"
	AvatarUploadURLMethod = "/" + ServiceName + "/AvatarUploadURL"
	AvatarURLMethod       = "/" + ServiceName + "/AvatarURL"
)

// PublicMethods can be called without an access token.
var PublicMethods = map[string]struct{}{
	PingMethod:         {},
	RegisterMethod:     {},
	LoginMethod:        {},
	RefreshTokenMethod: {},
}

// SecurePayServer is the server API for the SecurePay service.
type SecurePayServer interface {
	Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CurrentUser(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Query(context.Context, *structpb.Struct) (*structpb.ListValue, error)
	Upsert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Subscribe(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
	AvatarUploadURL(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AvatarURL(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// UnimplementedSecurePayServer can be embedded to keep servers compiling
// when methods are added.
type UnimplementedSecurePayServer struct{}

func (UnimplementedSecurePayServer) Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedSecurePayServer) Register(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedSecurePayServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedSecurePayServer) RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RefreshToken not implemented")
}
func (UnimplementedSecurePayServer) CurrentUser(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CurrentUser not implemented")
}
func (UnimplementedSecurePayServer) Query(context.Context, *structpb.Struct) (*structpb.ListValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Query not implemented")
}
func (UnimplementedSecurePayServer) Upsert(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Upsert not implemented")
}
func (UnimplementedSecurePayServer) Delete(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}
func (UnimplementedSecurePayServer) Subscribe(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method Subscribe not implemented")
}
func (UnimplementedSecurePayServer) AvatarUploadURL(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method AvatarUploadURL not implemented")
}
func (UnimplementedSecurePayServer) AvatarURL(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method AvatarURL not implemented")
}

// RegisterSecurePayServer registers srv on s.
func RegisterSecurePayServer(s grpc.ServiceRegistrar, srv SecurePayServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary adapts a typed server method to a grpc.MethodHandler, running it
// through the server's unary interceptor chain.
func unary[Req proto.Message, Resp any](fullMethod string, newReq func() Req, call func(SecurePayServer, context.Context, Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(SecurePayServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func newEmpty() *emptypb.Empty   { return new(emptypb.Empty) }
func newStruct() *structpb.Struct { return new(structpb.Struct) }

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SecurePayServer).Subscribe(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// ServiceDesc is the grpc.ServiceDesc for the SecurePay service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SecurePayServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(PingMethod, newEmpty, SecurePayServer.Ping)},
		{MethodName: "Register", Handler: unary(RegisterMethod, newStruct, SecurePayServer.Register)},
		{MethodName: "Login", Handler: unary(LoginMethod, newStruct, SecurePayServer.Login)},
		{MethodName: "RefreshToken", Handler: unary(RefreshTokenMethod, newStruct, SecurePayServer.RefreshToken)},
		{MethodName: "CurrentUser", Handler: unary(CurrentUserMethod, newEmpty, SecurePayServer.CurrentUser)},
		{MethodName: "Query", Handler: unary(QueryMethod, newStruct, SecurePayServer.Query)},
		{MethodName: "Upsert", Handler: unary(UpsertMethod, newStruct, SecurePayServer.Upsert)},
		{MethodName: "Delete", Handler: unary(DeleteMethod, newStruct, SecurePayServer.Delete)},
		{MethodName: "AvatarUploadURL", Handler: unary(AvatarUploadURLMethod, newEmpty, SecurePayServer.AvatarUploadURL)},
		{MethodName: "AvatarURL", Handler: unary(AvatarURLMethod, newEmpty, SecurePayServer.AvatarURL)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "securepay/v1/securepay.proto",
}
