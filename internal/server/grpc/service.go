package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The LinkService is described by hand over well-known types so the admin
// surface needs no generated code:
//
//	MintViewLink(Struct{document_id, file_index?, ttl_seconds?}) -> StringValue(url)
//	MintDownloadLink(Struct{document_id, file_index, ttl_seconds?}) -> StringValue(url)
//	RevokeLink(StringValue(token or url)) -> Empty
const (
	ServiceName = "securelinks.LinkService"

	MintViewLinkMethod     = "/" + ServiceName + "/MintViewLink"
	MintDownloadLinkMethod = "/" + ServiceName + "/MintDownloadLink"
	RevokeLinkMethod       = "/" + ServiceName + "/RevokeLink"
)

type LinkServiceServer interface {
	MintViewLink(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	MintDownloadLink(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	RevokeLink(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

var LinkServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LinkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "MintViewLink", Handler: mintViewLinkHandler},
		{MethodName: "MintDownloadLink", Handler: mintDownloadLinkHandler},
		{MethodName: "RevokeLink", Handler: revokeLinkHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "securelinks/link_service",
}

func RegisterLinkServiceServer(s grpc.ServiceRegistrar, srv LinkServiceServer) {
	s.RegisterService(&LinkServiceDesc, srv)
}

func mintViewLinkHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinkServiceServer).MintViewLink(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MintViewLinkMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LinkServiceServer).MintViewLink(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func mintDownloadLinkHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinkServiceServer).MintDownloadLink(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MintDownloadLinkMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LinkServiceServer).MintDownloadLink(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func revokeLinkHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LinkServiceServer).RevokeLink(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RevokeLinkMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(LinkServiceServer).RevokeLink(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// LinkServiceClient calls the LinkService.
type LinkServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLinkServiceClient(cc grpc.ClientConnInterface) *LinkServiceClient {
	return &LinkServiceClient{cc: cc}
}

func (c *LinkServiceClient) MintViewLink(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MintViewLinkMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LinkServiceClient) MintDownloadLink(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MintDownloadLinkMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LinkServiceClient) RevokeLink(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, RevokeLinkMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
