package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/digistall/digistall/internal/core/domain"
)

func (m *MySQLAdapter) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, item_id, buyer_login, buyer_user_id, seller_login, price_paid, status, payment_method, payment_reference, created_at
		FROM purchases WHERE id = ?`, id)

	p, err := scanPurchase(row)
	if err != nil {
		return nil, fmt.Errorf("query purchase: %w", err)
	}
	return p, nil
}

func (m *MySQLAdapter) ListPurchases(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT p.id, COALESCE(i.name, 'unknown item'), COALESCE(p.seller_login, 'seller'),
		       p.buyer_login, COALESCE(p.price_paid, i.price, 0), p.status, p.created_at
		FROM purchases p
		LEFT JOIN items i ON i.id = p.item_id
		ORDER BY p.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()
	return collectLedger(rows)
}

func (m *MySQLAdapter) ListPurchasesByBuyer(ctx context.Context, buyerUserID string) ([]domain.LedgerEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT p.id, COALESCE(i.name, 'unknown item'), COALESCE(p.seller_login, 'seller'),
		       p.buyer_login, COALESCE(p.price_paid, i.price, 0), p.status, p.created_at
		FROM purchases p
		LEFT JOIN items i ON i.id = p.item_id
		WHERE p.buyer_user_id = ?
		ORDER BY p.created_at DESC`, buyerUserID)
	if err != nil {
		return nil, fmt.Errorf("query buyer purchases: %w", err)
	}
	defer rows.Close()
	return collectLedger(rows)
}

func (m *MySQLAdapter) ListPurchasesByItem(ctx context.Context, itemID string) ([]domain.Purchase, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, item_id, buyer_login, buyer_user_id, seller_login, price_paid, status, payment_method, payment_reference, created_at
		FROM purchases WHERE item_id = ? ORDER BY created_at DESC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query item purchases: %w", err)
	}
	defer rows.Close()

	var purchases []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}
	return purchases, nil
}

func scanPurchase(row rowScanner) (*domain.Purchase, error) {
	var (
		p           domain.Purchase
		buyerUserID sql.NullString
		sellerLogin sql.NullString
		pricePaid   sql.NullFloat64
		method      sql.NullString
		reference   sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.ItemID, &p.BuyerLogin, &buyerUserID, &sellerLogin,
		&pricePaid, &p.Status, &method, &reference, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if buyerUserID.Valid {
		p.BuyerUserID = &buyerUserID.String
	}
	if sellerLogin.Valid {
		p.SellerLogin = &sellerLogin.String
	}
	if pricePaid.Valid {
		p.PricePaid = &pricePaid.Float64
	}
	if method.Valid {
		pm := domain.PaymentMethod(method.String)
		p.PaymentMethod = &pm
	}
	if reference.Valid {
		p.PaymentReference = &reference.String
	}
	return &p, nil
}

func collectLedger(rows *sql.Rows) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Product, &e.Seller, &e.Buyer, &e.Price, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return entries, nil
}
