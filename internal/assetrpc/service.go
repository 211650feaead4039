package assetrpc

import (
	"context"

	"google.golang.org/grpc"

	"vitehub/pkg/models"
)

const ServiceName = "vitehub.AssetService"

type GetPayloadRequest struct {
	Entry string `json:"entry"`
}

type GetPayloadResponse struct {
	Payload models.PayloadDTO `json:"payload"`
}

type ResolveEntryRequest struct {
	Key string `json:"key"`
}

type ResolveEntryResponse struct {
	Entry models.EntryDTO `json:"entry"`
}

type ListEntriesRequest struct{}

type ListEntriesResponse struct {
	List models.EntryListDTO `json:"list"`
}

type AssetServiceServer interface {
	GetPayload(context.Context, *GetPayloadRequest) (*GetPayloadResponse, error)
	ResolveEntry(context.Context, *ResolveEntryRequest) (*ResolveEntryResponse, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AssetServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPayload", Handler: unary("GetPayload", AssetServiceServer.GetPayload)},
		{MethodName: "ResolveEntry", Handler: unary("ResolveEntry", AssetServiceServer.ResolveEntry)},
		{MethodName: "ListEntries", Handler: unary("ListEntries", AssetServiceServer.ListEntries)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vitehub/assetrpc",
}

func RegisterAssetServiceServer(s grpc.ServiceRegistrar, srv AssetServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method handler grpc-go expects from a typed method.
func unary[Req, Resp any](method string, call func(AssetServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AssetServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AssetServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls AssetService over any client connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetPayload(ctx context.Context, in *GetPayloadRequest, opts ...grpc.CallOption) (*GetPayloadResponse, error) {
	out := new(GetPayloadResponse)
	if err := c.invoke(ctx, "GetPayload", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResolveEntry(ctx context.Context, in *ResolveEntryRequest, opts ...grpc.CallOption) (*ResolveEntryResponse, error) {
	out := new(ResolveEntryResponse)
	if err := c.invoke(ctx, "ResolveEntry", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	out := new(ListEntriesResponse)
	if err := c.invoke(ctx, "ListEntries", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}
