package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pos-cart/internal/adapter/handler"
	"github.com/rl1809/pos-cart/internal/core/domain"
)

const (
	totalRequests = 200
	// every request ID is sent this many times
	repeatsPerID = 2
)

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC address of the cart server")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()
	client := handler.NewCartServiceClient(conn)

	// Setup: fresh cart with one cheese line
	cart, err := client.CreateCart(ctx, &handler.CreateCartRequest{})
	if err != nil {
		log.Fatalf("failed to create cart: %v", err)
	}
	if _, err := client.AddLine(ctx, &handler.LineRequest{CartID: cart.ID, ProductID: domain.ProductCheese}); err != nil {
		log.Fatalf("failed to add line: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var duplicateCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent requests
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := client.IncrementLine(ctx, &handler.LineRequest{
				CartID:    cart.ID,
				ProductID: domain.ProductCheese,
				RequestID: fmt.Sprintf("stress-%d", n/repeatsPerID),
			})
			switch status.Code(err) {
			case codes.OK:
				successCount.Add(1)
			case codes.AlreadyExists:
				duplicateCount.Add(1)
			default:
				failCount.Add(1)
				log.Printf("request %d failed: %v", n, err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	distinct := int32(totalRequests / repeatsPerID)
	success := successCount.Load()
	duplicates := duplicateCount.Load()
	fail := failCount.Load()

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Cart:              %s\n", cart.ID)
	fmt.Printf("Total Requests:    %d\n", totalRequests)
	fmt.Printf("Distinct IDs:      %d\n", distinct)
	fmt.Printf("Successful:        %d\n", success)
	fmt.Printf("Duplicates:        %d\n", duplicates)
	fmt.Printf("Failed:            %d\n", fail)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == distinct && duplicates == int32(totalRequests)-distinct {
		fmt.Printf("PASS: Exactly %d increments applied, %d duplicates rejected\n", distinct, duplicates)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d duplicate, got %d/%d\n",
			distinct, int32(totalRequests)-distinct, success, duplicates)
	}

	// Verify final cart state
	final, err := client.GetCart(ctx, &handler.CartRequest{CartID: cart.ID})
	if err != nil {
		log.Fatalf("failed to read cart: %v", err)
	}

	expected := int(distinct) + 1
	fmt.Printf("Final Quantity:    %d\n", final.ItemCount)
	fmt.Printf("Final Total:       %s (savings %s)\n", final.Display.FinalTotal, final.Display.TotalSavings)

	if final.ItemCount == expected {
		fmt.Printf("PASS: Quantity is %d\n", expected)
	} else {
		fmt.Printf("FAIL: Expected quantity %d, got %d\n", expected, final.ItemCount)
	}
}
