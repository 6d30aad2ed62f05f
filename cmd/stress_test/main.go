package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digistall/digistall/internal/adapter/storage"
	"github.com/digistall/digistall/internal/core/domain"
	"github.com/digistall/digistall/internal/core/service"
)

const (
	mysqlDSN      = "root:root@tcp(localhost:3306)/digistall?parseTime=true"
	initialStock  = 20
	totalRequests = 50
)

// inlineDispatcher runs effects synchronously; the stress run has no
// notification or analytics sinks wired anyway.
type inlineDispatcher struct{}

func (inlineDispatcher) Submit(effect func()) { effect() }

func main() {
	ctx := context.Background()

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	// Seed a fresh item for this run
	itemID := "stress-" + uuid.New().String()
	_, err = db.ExecContext(ctx, `
		INSERT INTO items (id, name, description, price, quantity, created_at, updated_at)
		VALUES (?, 'Stress Test Product', 'stress test', 1.00, ?, NOW(), NOW())`,
		itemID, initialStock,
	)
	if err != nil {
		log.Fatalf("failed to seed item: %v", err)
	}

	adapter := storage.NewMySQLAdapter(db)
	purchaseService := service.NewPurchaseService(adapter, inlineDispatcher{}, nil, nil, nil, zap.NewNop())

	var confirmed, outOfStock, failed atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			session := &domain.Session{
				UserID:  fmt.Sprintf("stress-user-%d", n),
				Expires: time.Now().Add(time.Hour),
			}
			_, err := purchaseService.Purchase(ctx, itemID, session)
			switch {
			case err == nil:
				confirmed.Add(1)
			case errors.Is(err, service.ErrOutOfStock):
				outOfStock.Add(1)
			default:
				failed.Add(1)
				log.Printf("request %d: %v", n, err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	var finalQuantity int
	if err := db.QueryRowContext(ctx, `SELECT quantity FROM items WHERE id = ?`, itemID).Scan(&finalQuantity); err != nil {
		log.Fatalf("failed to read final quantity: %v", err)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Confirmed:        %d\n", confirmed.Load())
	fmt.Printf("Out of Stock:     %d\n", outOfStock.Load())
	fmt.Printf("Errors:           %d\n", failed.Load())
	fmt.Printf("Final Quantity:   %d\n", finalQuantity)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if confirmed.Load() == int32(initialStock) && finalQuantity == 0 {
		fmt.Println("PASS: no oversell, stock depleted exactly")
	} else {
		fmt.Printf("FAIL: expected %d confirmed and quantity 0, got %d confirmed and quantity %d\n",
			initialStock, confirmed.Load(), finalQuantity)
	}
}
