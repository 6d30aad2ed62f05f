package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/digistall/digistall/internal/core/domain"
	"github.com/digistall/digistall/internal/port"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// WithinTx runs fn inside one database transaction. fn returning an error
// rolls everything back; the deferred Rollback is a no-op after Commit.
func (m *MySQLAdapter) WithinTx(ctx context.Context, fn func(tx port.PurchaseTx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&purchaseTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type purchaseTx struct {
	tx *sql.Tx
}

func (t *purchaseTx) LockItem(ctx context.Context, itemID string) (*domain.Item, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, owner_user_id, name, description, price, quantity, share_link, created_at, updated_at
		FROM items WHERE id = ? FOR UPDATE`, itemID)

	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("lock item: %w", err)
	}
	return item, nil
}

func (t *purchaseTx) SetItemQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE items SET quantity = ?, updated_at = NOW() WHERE id = ?`,
		quantity, itemID,
	)
	if err != nil {
		return fmt.Errorf("set item quantity: %w", err)
	}
	return nil
}

func (t *purchaseTx) InsertPurchase(ctx context.Context, p domain.Purchase) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO purchases
			(id, item_id, buyer_login, buyer_user_id, seller_login, price_paid, status, payment_method, payment_reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ItemID, p.BuyerLogin, p.BuyerUserID, p.SellerLogin, p.PricePaid,
		p.Status, p.PaymentMethod, p.PaymentReference, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (t *purchaseTx) SellerLogin(ctx context.Context, userID string) (*string, error) {
	var login, name sql.NullString
	err := t.tx.QueryRowContext(ctx, `
		SELECT github_login, name FROM users WHERE id = ?`, userID,
	).Scan(&login, &name)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query seller: %w", err)
	}
	if login.Valid && login.String != "" {
		return &login.String, nil
	}
	if name.Valid && name.String != "" {
		return &name.String, nil
	}
	return nil, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item      domain.Item
		owner     sql.NullString
		shareLink sql.NullString
	)
	err := row.Scan(
		&item.ID, &owner, &item.Name, &item.Description,
		&item.Price, &item.Quantity, &shareLink,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		item.OwnerUserID = &owner.String
	}
	if shareLink.Valid {
		item.ShareLink = &shareLink.String
	}
	return &item, nil
}
