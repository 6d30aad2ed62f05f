package port

import (
	"context"

	"github.com/digistall/digistall/internal/core/domain"
)

// PurchaseTx is the unit of work handed to the purchase orchestrator. Every
// method runs inside the same database transaction; the whole set commits or
// rolls back together.
type PurchaseTx interface {
	// LockItem reads the item under an exclusive row lock (SELECT ... FOR
	// UPDATE semantics). Concurrent transactions targeting the same item id
	// serialize here. Returns nil when no such item exists.
	LockItem(ctx context.Context, itemID string) (*domain.Item, error)

	// SetItemQuantity persists a new quantity for the locked item. The caller
	// has already validated quantity >= 0.
	SetItemQuantity(ctx context.Context, itemID string, quantity int) error

	// InsertPurchase appends a ledger row inside the transaction.
	InsertPurchase(ctx context.Context, purchase domain.Purchase) error

	// SellerLogin resolves the stored display login of the item's owner.
	// Returns nil when the owner is unknown or has no login.
	SellerLogin(ctx context.Context, userID string) (*string, error)
}

// TxRunner opens a transaction, runs fn, and commits when fn returns nil.
// Any error from fn rolls the whole transaction back.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx PurchaseTx) error) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item domain.Item) error
	GetItem(ctx context.Context, id string) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	ListItemsByOwner(ctx context.Context, userID string) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, id string) error
}

type PurchaseRepository interface {
	GetPurchase(ctx context.Context, id string) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	ListPurchasesByBuyer(ctx context.Context, buyerUserID string) ([]domain.LedgerEntry, error)
	ListPurchasesByItem(ctx context.Context, itemID string) ([]domain.Purchase, error)
}

type SessionRepository interface {
	// GetSession resolves a bearer token to its session joined with the
	// owning user. Returns nil when the token is unknown.
	GetSession(ctx context.Context, token string) (*domain.Session, error)

	// DeleteExpiredSessions removes sessions past their expiry, returning
	// how many were dropped.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}
