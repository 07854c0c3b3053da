package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pos-cart/internal/core/domain"
	"github.com/rl1809/pos-cart/internal/core/service"
)

type GRPCHandler struct {
	cartService    *service.CartService
	catalogService *service.CatalogService
}

func NewGRPCHandler(cartService *service.CartService, catalogService *service.CatalogService) *GRPCHandler {
	return &GRPCHandler{cartService: cartService, catalogService: catalogService}
}

func (h *GRPCHandler) CreateCart(ctx context.Context, req *CreateCartRequest) (*CartView, error) {
	return cartReply(h.cartService.CreateCart(ctx))
}

func (h *GRPCHandler) GetCart(ctx context.Context, req *CartRequest) (*CartView, error) {
	return cartReply(h.cartService.GetCart(ctx, req.CartID))
}

func (h *GRPCHandler) ClearCart(ctx context.Context, req *CartRequest) (*CartView, error) {
	return cartReply(h.cartService.ClearCart(ctx, req.CartID, req.RequestID))
}

func (h *GRPCHandler) AddLine(ctx context.Context, req *LineRequest) (*CartView, error) {
	if req.ProductID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing product_id")
	}
	return cartReply(h.cartService.AddLine(ctx, req.CartID, req.ProductID, req.RequestID))
}

func (h *GRPCHandler) RemoveLine(ctx context.Context, req *LineRequest) (*CartView, error) {
	return cartReply(h.cartService.RemoveLine(ctx, req.CartID, req.ProductID, req.RequestID))
}

func (h *GRPCHandler) SetQuantity(ctx context.Context, req *SetQuantityRequest) (*CartView, error) {
	return cartReply(h.cartService.SetQuantity(ctx, req.CartID, req.ProductID, req.Quantity, req.RequestID))
}

func (h *GRPCHandler) IncrementLine(ctx context.Context, req *LineRequest) (*CartView, error) {
	return cartReply(h.cartService.IncrementLine(ctx, req.CartID, req.ProductID, req.RequestID))
}

func (h *GRPCHandler) DecrementLine(ctx context.Context, req *LineRequest) (*CartView, error) {
	return cartReply(h.cartService.DecrementLine(ctx, req.CartID, req.ProductID, req.RequestID))
}

func (h *GRPCHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	products, err := h.catalogService.ListProducts(ctx)
	if err != nil {
		return nil, grpcError(err)
	}

	resp := &ListProductsResponse{Products: make([]ProductView, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductView(p))
	}
	return resp, nil
}

func cartReply(cart *domain.Cart, err error) (*CartView, error) {
	if err != nil {
		return nil, grpcError(err)
	}
	view := toCartView(cart)
	return &view, nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, domain.ErrCorruptCart):
		return status.Error(codes.Internal, "internal error")
	case errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrLineNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, "duplicate request")
	case errors.Is(err, domain.ErrVersionConflict):
		return status.Error(codes.Aborted, "cart was modified concurrently")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func UnaryLoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if code == codes.Internal || code == codes.Unknown {
			logger.Error("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			logger.Info("grpc request", fields...)
		}
		return resp, err
	}
}
