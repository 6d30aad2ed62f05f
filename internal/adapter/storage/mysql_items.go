package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/digistall/digistall/internal/core/domain"
)

const itemColumns = "id, owner_user_id, name, description, price, quantity, share_link, created_at, updated_at"

func (m *MySQLAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO items (id, owner_user_id, name, description, price, quantity, share_link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OwnerUserID, item.Name, item.Description,
		item.Price, item.Quantity, item.ShareLink,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	row := m.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id)

	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return item, nil
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (m *MySQLAdapter) ListItemsByOwner(ctx context.Context, userID string) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE owner_user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("query items by owner: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE items
		SET name = ?, description = ?, price = ?, quantity = ?, share_link = ?, updated_at = NOW()
		WHERE id = ?`,
		item.Name, item.Description, item.Price, item.Quantity, item.ShareLink, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteItem(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func collectItems(rows *sql.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
