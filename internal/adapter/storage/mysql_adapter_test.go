package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/digistall/digistall/internal/core/domain"
	"github.com/digistall/digistall/internal/port"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/digistall?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertTestItem(t *testing.T, db *sql.DB, quantity int) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO items (id, name, description, price, quantity)
		VALUES (?, 'Adapter Test Item', 'test', 9.99, ?)`, id, quantity)
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	t.Cleanup(func() {
		db.ExecContext(context.Background(), `DELETE FROM purchases WHERE item_id = ?`, id)
		db.ExecContext(context.Background(), `DELETE FROM items WHERE id = ?`, id)
	})
	return id
}

func TestMySQLAdapter_LockItemMissing(t *testing.T) {
	db := openTestDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()

	err := adapter.WithinTx(ctx, func(tx port.PurchaseTx) error {
		item, err := tx.LockItem(ctx, "no-such-item")
		if err != nil {
			return err
		}
		if item != nil {
			t.Errorf("expected nil for missing item, got %+v", item)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}
}

func TestMySQLAdapter_RollbackLeavesQuantityUntouched(t *testing.T) {
	db := openTestDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()

	itemID := insertTestItem(t, db, 5)
	boom := errors.New("boom")

	err := adapter.WithinTx(ctx, func(tx port.PurchaseTx) error {
		item, err := tx.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := tx.SetItemQuantity(ctx, itemID, item.Quantity-1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got: %v", err)
	}

	var quantity int
	if err := db.QueryRowContext(ctx, `SELECT quantity FROM items WHERE id = ?`, itemID).Scan(&quantity); err != nil {
		t.Fatalf("read quantity: %v", err)
	}
	if quantity != 5 {
		t.Errorf("expected quantity 5 after rollback, got %d", quantity)
	}
}

func TestMySQLAdapter_CommitPersistsDecrementAndPurchase(t *testing.T) {
	db := openTestDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()

	itemID := insertTestItem(t, db, 3)
	price := 9.99
	purchaseID := uuid.New().String()

	err := adapter.WithinTx(ctx, func(tx port.PurchaseTx) error {
		item, err := tx.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := tx.SetItemQuantity(ctx, itemID, item.Quantity-1); err != nil {
			return err
		}
		return tx.InsertPurchase(ctx, domain.Purchase{
			ID:         purchaseID,
			ItemID:     itemID,
			BuyerLogin: "adapter-test-buyer",
			PricePaid:  &price,
			Status:     domain.PurchaseStatusConfirmed,
			CreatedAt:  time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	var quantity int
	if err := db.QueryRowContext(ctx, `SELECT quantity FROM items WHERE id = ?`, itemID).Scan(&quantity); err != nil {
		t.Fatalf("read quantity: %v", err)
	}
	if quantity != 2 {
		t.Errorf("expected quantity 2, got %d", quantity)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM purchases WHERE id = ?`, purchaseID).Scan(&count); err != nil {
		t.Fatalf("count purchases: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 purchase row, got %d", count)
	}
}

func TestMySQLAdapter_GetSessionUnknownToken(t *testing.T) {
	db := openTestDB(t)
	adapter := NewMySQLAdapter(db)

	session, err := adapter.GetSession(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session != nil {
		t.Errorf("expected nil session, got %+v", session)
	}
}

func TestMySQLAdapter_DeleteExpiredSessions(t *testing.T) {
	db := openTestDB(t)
	adapter := NewMySQLAdapter(db)
	ctx := context.Background()

	userID := uuid.New().String()
	token := uuid.New().String()
	if _, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, name) VALUES (?, ?, 'Sweeper Test')`,
		userID, userID+"@example.com"); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	t.Cleanup(func() {
		db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	})
	if _, err := db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires) VALUES (?, ?, DATE_SUB(NOW(), INTERVAL 1 HOUR))`,
		token, userID); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	if _, err := adapter.DeleteExpiredSessions(ctx); err != nil {
		t.Fatalf("delete expired sessions: %v", err)
	}

	session, err := adapter.GetSession(ctx, token)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if session != nil {
		t.Errorf("expected expired session to be gone, got %+v", session)
	}
}
