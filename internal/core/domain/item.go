package domain

import "time"

type Item struct {
	ID          string
	OwnerUserID *string
	Name        string
	Description string
	Price       float64
	Quantity    int
	ShareLink   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InStock reports whether at least one unit remains.
func (i Item) InStock() bool {
	return i.Quantity > 0
}
