package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/digistall/digistall/internal/core/domain"
)

type mockPurchaseRepo struct {
	entries []domain.LedgerEntry
	byItem  map[string][]domain.Purchase
}

func (m *mockPurchaseRepo) GetPurchase(ctx context.Context, id string) (*domain.Purchase, error) {
	return nil, nil
}

func (m *mockPurchaseRepo) ListPurchases(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	if limit < len(m.entries) {
		return append([]domain.LedgerEntry(nil), m.entries[:limit]...), nil
	}
	return append([]domain.LedgerEntry(nil), m.entries...), nil
}

func (m *mockPurchaseRepo) ListPurchasesByBuyer(ctx context.Context, buyerUserID string) ([]domain.LedgerEntry, error) {
	return append([]domain.LedgerEntry(nil), m.entries...), nil
}

func (m *mockPurchaseRepo) ListPurchasesByItem(ctx context.Context, itemID string) ([]domain.Purchase, error) {
	return m.byItem[itemID], nil
}

func TestLedger_FiltersByQuery(t *testing.T) {
	purchases := &mockPurchaseRepo{entries: []domain.LedgerEntry{
		{ID: "p1", Product: "Red Widget", Seller: "alice", Buyer: "bob", Status: "CONFIRMED"},
		{ID: "p2", Product: "Blue Gadget", Seller: "carol", Buyer: "dave", Status: "CONFIRMED"},
		{ID: "p3", Product: "Widget Pro", Seller: "bob", Buyer: "erin", Status: "PENDING"},
	}}
	svc := NewLedgerService(newMockItemRepo(), purchases)

	entries, err := svc.Ledger(context.Background(), "widget")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 matches for widget, got %d", len(entries))
	}

	// Seller and buyer fields match too.
	entries, err = svc.Ledger(context.Background(), "BOB")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 matches for bob, got %d", len(entries))
	}
}

func TestLedger_StatusMapping(t *testing.T) {
	purchases := &mockPurchaseRepo{entries: []domain.LedgerEntry{
		{ID: "p1", Product: "Widget", Status: "CONFIRMED"},
		{ID: "p2", Product: "Widget", Status: "PENDING"},
	}}
	svc := NewLedgerService(newMockItemRepo(), purchases)

	entries, err := svc.Ledger(context.Background(), "")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if entries[0].Status != "VERIFIED" {
		t.Errorf("confirmed purchase should read VERIFIED, got %s", entries[0].Status)
	}
	if entries[1].Status != "PENDING" {
		t.Errorf("non-confirmed purchase should read PENDING, got %s", entries[1].Status)
	}
}

func TestSalesForItem_Summary(t *testing.T) {
	owner := "seller-1"
	items := newMockItemRepo()
	items.items["i1"] = domain.Item{ID: "i1", Name: "Widget", OwnerUserID: &owner}

	paid1, paid2 := 10.0, 12.5
	purchases := &mockPurchaseRepo{byItem: map[string][]domain.Purchase{
		"i1": {
			{ID: "p1", ItemID: "i1", BuyerLogin: "bob", PricePaid: &paid1, Status: domain.PurchaseStatusConfirmed, CreatedAt: time.Now()},
			{ID: "p2", ItemID: "i1", BuyerLogin: "erin", PricePaid: &paid2, Status: domain.PurchaseStatusConfirmed, CreatedAt: time.Now()},
		},
	}}
	svc := NewLedgerService(items, purchases)

	summary, err := svc.SalesForItem(context.Background(), "i1", testSession("seller-1"))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if summary.TotalSales != 2 {
		t.Errorf("expected 2 sales, got %d", summary.TotalSales)
	}
	if summary.Revenue != 22.5 {
		t.Errorf("expected revenue 22.5, got %v", summary.Revenue)
	}
}

func TestSalesForItem_OwnerOnly(t *testing.T) {
	owner := "seller-1"
	items := newMockItemRepo()
	items.items["i1"] = domain.Item{ID: "i1", Name: "Widget", OwnerUserID: &owner}
	svc := NewLedgerService(items, &mockPurchaseRepo{})

	if _, err := svc.SalesForItem(context.Background(), "i1", testSession("intruder")); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.SalesForItem(context.Background(), "missing", testSession("seller-1")); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}
