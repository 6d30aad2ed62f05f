package domain

import "time"

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusConfirmed PurchaseStatus = "CONFIRMED"
	PurchaseStatusFailed    PurchaseStatus = "FAILED"
	PurchaseStatusCanceled  PurchaseStatus = "CANCELED"
)

type PaymentMethod string

const PaymentMethodPix PaymentMethod = "PIX"

// Purchase is an append-only ledger row. Buyer/seller logins and the price
// are snapshotted at purchase time so later edits to the item or user never
// rewrite history.
type Purchase struct {
	ID               string
	ItemID           string
	BuyerLogin       string
	BuyerUserID      *string
	SellerLogin      *string
	PricePaid        *float64
	Status           PurchaseStatus
	PaymentMethod    *PaymentMethod
	PaymentReference *string
	CreatedAt        time.Time
}

// LedgerEntry is the public ledger projection of a purchase joined with its
// item.
type LedgerEntry struct {
	ID        string
	Product   string
	Seller    string
	Buyer     string
	Price     float64
	Status    string
	CreatedAt time.Time
}
