package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/digistall/digistall/internal/core/domain"
	"github.com/digistall/digistall/internal/port"
)

const ledgerLimit = 200

// LedgerService serves the read side of the purchase ledger. These are
// eventually-consistent snapshots: the count of rows for an item can exceed
// its remaining quantity, since quantity is a live counter the seller can
// edit directly.
type LedgerService struct {
	items     port.ItemRepository
	purchases port.PurchaseRepository
}

func NewLedgerService(items port.ItemRepository, purchases port.PurchaseRepository) *LedgerService {
	return &LedgerService{items: items, purchases: purchases}
}

// Ledger returns the latest ledger entries, optionally filtered by a
// case-insensitive match on product, seller or buyer.
func (s *LedgerService) Ledger(ctx context.Context, query string) ([]domain.LedgerEntry, error) {
	entries, err := s.purchases.ListPurchases(ctx, ledgerLimit)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	for i := range entries {
		entries[i].Status = ledgerStatus(entries[i].Status)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries, nil
	}

	filtered := make([]domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Product), q) ||
			strings.Contains(strings.ToLower(e.Seller), q) ||
			strings.Contains(strings.ToLower(e.Buyer), q) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *LedgerService) PurchasesForBuyer(ctx context.Context, session *domain.Session) ([]domain.LedgerEntry, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	entries, err := s.purchases.ListPurchasesByBuyer(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list purchases by buyer: %w", err)
	}
	for i := range entries {
		entries[i].Status = ledgerStatus(entries[i].Status)
	}
	return entries, nil
}

type Sale struct {
	ID        string
	Buyer     string
	PricePaid float64
	Status    domain.PurchaseStatus
	CreatedAt time.Time
}

type SalesSummary struct {
	TotalSales int
	Revenue    float64
	Sales      []Sale
}

// SalesForItem summarizes an item's sales for its owner.
func (s *LedgerService) SalesForItem(ctx context.Context, itemID string, session *domain.Session) (SalesSummary, error) {
	if session == nil {
		return SalesSummary{}, ErrUnauthorized
	}
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return SalesSummary{}, ErrItemNotFound
	}
	if item.OwnerUserID == nil || *item.OwnerUserID != session.UserID {
		return SalesSummary{}, ErrForbidden
	}

	purchases, err := s.purchases.ListPurchasesByItem(ctx, itemID)
	if err != nil {
		return SalesSummary{}, fmt.Errorf("list purchases by item: %w", err)
	}

	summary := SalesSummary{Sales: make([]Sale, 0, len(purchases))}
	for _, p := range purchases {
		var paid float64
		if p.PricePaid != nil {
			paid = *p.PricePaid
		}
		summary.Sales = append(summary.Sales, Sale{
			ID:        p.ID,
			Buyer:     p.BuyerLogin,
			PricePaid: paid,
			Status:    p.Status,
			CreatedAt: p.CreatedAt,
		})
		summary.Revenue += paid
	}
	summary.TotalSales = len(summary.Sales)
	return summary, nil
}

func ledgerStatus(raw string) string {
	if raw == string(domain.PurchaseStatusConfirmed) {
		return "VERIFIED"
	}
	return "PENDING"
}
