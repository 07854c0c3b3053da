package handler

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/pos-cart/internal/core/domain"
)

func setupGRPC(t *testing.T) *CartServiceClient {
	svcs := newServices(t)

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(UnaryLoggingInterceptor(zap.NewNop())))
	RegisterCartServiceServer(server, NewGRPCHandler(svcs.carts, svcs.catalog))
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewCartServiceClient(conn)
}

func TestGRPC_CartFlow(t *testing.T) {
	client := setupGRPC(t)
	ctx := context.Background()

	cart, err := client.CreateCart(ctx, &CreateCartRequest{})
	require.NoError(t, err)
	require.NotEmpty(t, cart.ID)

	for _, id := range []string{"cheese", "cheese", "butter"} {
		cart, err = client.AddLine(ctx, &LineRequest{CartID: cart.ID, ProductID: id})
		require.NoError(t, err)
	}
	assert.Len(t, cart.Offers, 2)
	assert.InDelta(t, 3.00, cart.Subtotal, tolerance)
	assert.InDelta(t, 1.30, cart.TotalSavings, tolerance)
	assert.Equal(t, "£1.70", cart.Display.FinalTotal)

	cart, err = client.SetQuantity(ctx, &SetQuantityRequest{CartID: cart.ID, ProductID: "cheese", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ItemCount)

	cart, err = client.IncrementLine(ctx, &LineRequest{CartID: cart.ID, ProductID: "butter"})
	require.NoError(t, err)
	cart, err = client.DecrementLine(ctx, &LineRequest{CartID: cart.ID, ProductID: "butter"})
	require.NoError(t, err)
	assert.Equal(t, 4, cart.ItemCount)

	cart, err = client.RemoveLine(ctx, &LineRequest{CartID: cart.ID, ProductID: "butter"})
	require.NoError(t, err)
	require.Len(t, cart.Offers, 1)
	assert.Equal(t, "cheese", cart.Offers[0].ProductID)

	got, err := client.GetCart(ctx, &CartRequest{CartID: cart.ID})
	require.NoError(t, err)
	assert.Equal(t, cart, got)

	cart, err = client.ClearCart(ctx, &CartRequest{CartID: cart.ID})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Zero(t, cart.FinalTotal)
}

func TestGRPC_ListProducts(t *testing.T) {
	client := setupGRPC(t)

	resp, err := client.ListProducts(context.Background(), &ListProductsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Products, 5)
	assert.Equal(t, "£0.90", resp.Products[2].Display)
}

func TestGRPC_ErrorCodes(t *testing.T) {
	client := setupGRPC(t)
	ctx := context.Background()

	cart, err := client.CreateCart(ctx, &CreateCartRequest{})
	require.NoError(t, err)
	_, err = client.AddLine(ctx, &LineRequest{CartID: cart.ID, ProductID: "milk", RequestID: "r1"})
	require.NoError(t, err)

	_, err = client.GetCart(ctx, &CartRequest{CartID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.AddLine(ctx, &LineRequest{CartID: cart.ID})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.SetQuantity(ctx, &SetQuantityRequest{CartID: cart.ID, ProductID: "milk", Quantity: -3})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.AddLine(ctx, &LineRequest{CartID: cart.ID, ProductID: "milk", RequestID: "r1"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestGRPCError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrLineNotFound, codes.NotFound},
		{domain.ErrVersionConflict, codes.Aborted},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{domain.ErrCorruptCart, codes.Internal},
		{errors.New("boom"), codes.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(grpcError(tt.err)), tt.err.Error())
	}
}
