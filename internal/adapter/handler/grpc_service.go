package handler

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	cartServiceName = "poscart.v1.CartService"
	codecName       = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries the request and response structs below as JSON. Clients
// select it with grpc.CallContentSubtype("json").
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return codecName }

type CreateCartRequest struct{}

type CartRequest struct {
	CartID    string `json:"cart_id"`
	RequestID string `json:"request_id,omitempty"`
}

type LineRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	RequestID string `json:"request_id,omitempty"`
}

type SetQuantityRequest struct {
	CartID    string `json:"cart_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	RequestID string `json:"request_id,omitempty"`
}

type ListProductsRequest struct{}

type ListProductsResponse struct {
	Products []ProductView `json:"products"`
}

type CartServiceServer interface {
	CreateCart(context.Context, *CreateCartRequest) (*CartView, error)
	GetCart(context.Context, *CartRequest) (*CartView, error)
	ClearCart(context.Context, *CartRequest) (*CartView, error)
	AddLine(context.Context, *LineRequest) (*CartView, error)
	RemoveLine(context.Context, *LineRequest) (*CartView, error)
	SetQuantity(context.Context, *SetQuantityRequest) (*CartView, error)
	IncrementLine(context.Context, *LineRequest) (*CartView, error)
	DecrementLine(context.Context, *LineRequest) (*CartView, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
}

var CartServiceDesc = grpc.ServiceDesc{
	ServiceName: cartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateCart", CartServiceServer.CreateCart),
		unaryMethod("GetCart", CartServiceServer.GetCart),
		unaryMethod("ClearCart", CartServiceServer.ClearCart),
		unaryMethod("AddLine", CartServiceServer.AddLine),
		unaryMethod("RemoveLine", CartServiceServer.RemoveLine),
		unaryMethod("SetQuantity", CartServiceServer.SetQuantity),
		unaryMethod("IncrementLine", CartServiceServer.IncrementLine),
		unaryMethod("DecrementLine", CartServiceServer.DecrementLine),
		unaryMethod("ListProducts", CartServiceServer.ListProducts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "poscart/v1/cart_service",
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&CartServiceDesc, srv)
}

func unaryMethod[Req, Resp any](name string, call func(CartServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CartServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CartServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func fullMethod(name string) string {
	return "/" + cartServiceName + "/" + name
}

type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

func (c *CartServiceClient) CreateCart(ctx context.Context, in *CreateCartRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "CreateCart", in, opts)
}

func (c *CartServiceClient) GetCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "GetCart", in, opts)
}

func (c *CartServiceClient) ClearCart(ctx context.Context, in *CartRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "ClearCart", in, opts)
}

func (c *CartServiceClient) AddLine(ctx context.Context, in *LineRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "AddLine", in, opts)
}

func (c *CartServiceClient) RemoveLine(ctx context.Context, in *LineRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "RemoveLine", in, opts)
}

func (c *CartServiceClient) SetQuantity(ctx context.Context, in *SetQuantityRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "SetQuantity", in, opts)
}

func (c *CartServiceClient) IncrementLine(ctx context.Context, in *LineRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "IncrementLine", in, opts)
}

func (c *CartServiceClient) DecrementLine(ctx context.Context, in *LineRequest, opts ...grpc.CallOption) (*CartView, error) {
	return invoke[CartView](ctx, c.cc, "DecrementLine", in, opts)
}

func (c *CartServiceClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ListProductsResponse, error) {
	return invoke[ListProductsResponse](ctx, c.cc, "ListProducts", in, opts)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
