package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digistall/digistall/internal/core/domain"
	"github.com/digistall/digistall/internal/port"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrItemNotFound = errors.New("item not found")
	ErrOutOfStock   = errors.New("item out of stock")
)

const effectTimeout = 10 * time.Second

// PurchaseService executes a purchase as one all-or-nothing unit of work:
// lock the item row, validate stock, decrement, snapshot identities and
// price, append the ledger row, commit. Notification and analytics run after
// commit and can never fail the purchase.
type PurchaseService struct {
	tx         port.TxRunner
	dispatcher port.EffectsDispatcher
	notifier   port.Notifier
	analytics  port.AnalyticsPublisher
	assigner   port.IdentityAssigner
	logger     *zap.Logger
}

func NewPurchaseService(
	tx port.TxRunner,
	dispatcher port.EffectsDispatcher,
	notifier port.Notifier,
	analytics port.AnalyticsPublisher,
	assigner port.IdentityAssigner,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		tx:         tx,
		dispatcher: dispatcher,
		notifier:   notifier,
		analytics:  analytics,
		assigner:   assigner,
		logger:     logger,
	}
}

func (s *PurchaseService) Purchase(ctx context.Context, itemID string, session *domain.Session) (domain.Purchase, error) {
	if session == nil || session.Expired(time.Now()) {
		return domain.Purchase{}, ErrUnauthorized
	}

	var (
		purchase domain.Purchase
		itemName string
	)

	err := s.tx.WithinTx(ctx, func(tx port.PurchaseTx) error {
		item, err := tx.LockItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("lock item: %w", err)
		}
		if item == nil {
			return ErrItemNotFound
		}
		if !item.InStock() {
			return ErrOutOfStock
		}

		if err := tx.SetItemQuantity(ctx, item.ID, item.Quantity-1); err != nil {
			return fmt.Errorf("decrement quantity: %w", err)
		}

		buyerLogin, err := s.buyerLogin(ctx, *session)
		if err != nil {
			return fmt.Errorf("resolve buyer identity: %w", err)
		}

		var sellerLogin *string
		if item.OwnerUserID != nil {
			sellerLogin, err = tx.SellerLogin(ctx, *item.OwnerUserID)
			if err != nil {
				return fmt.Errorf("resolve seller identity: %w", err)
			}
		}

		price := item.Price
		method := domain.PaymentMethodPix
		ref := newPaymentReference()
		buyerUserID := session.UserID

		purchase = domain.Purchase{
			ID:               uuid.New().String(),
			ItemID:           item.ID,
			BuyerLogin:       buyerLogin,
			BuyerUserID:      &buyerUserID,
			SellerLogin:      sellerLogin,
			PricePaid:        &price,
			Status:           domain.PurchaseStatusConfirmed,
			PaymentMethod:    &method,
			PaymentReference: &ref,
			CreatedAt:        time.Now().UTC(),
		}
		if err := tx.InsertPurchase(ctx, purchase); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		itemName = item.Name
		return nil
	})
	if err != nil {
		return domain.Purchase{}, err
	}

	s.dispatchEffects(purchase, itemName, session.Email)
	return purchase, nil
}

// buyerLogin resolves the identity to stamp. Deployments with an external
// assigner use it; a failed assignment aborts the transaction. Otherwise the
// session fallback chain always yields a non-empty login.
func (s *PurchaseService) buyerLogin(ctx context.Context, session domain.Session) (string, error) {
	if s.assigner == nil {
		return ResolveBuyerLogin(session), nil
	}
	login, err := s.assigner.AssignLogin(ctx)
	if err != nil {
		return "", err
	}
	return login, nil
}

func (s *PurchaseService) dispatchEffects(p domain.Purchase, itemName string, buyerEmail *string) {
	s.dispatcher.Submit(func() {
		if s.notifier == nil || buyerEmail == nil || *buyerEmail == "" {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()

		if err := s.notifier.SendPurchaseConfirmation(ctx, *buyerEmail, itemName, p.BuyerLogin); err != nil {
			s.logger.Warn("purchase confirmation not sent",
				zap.String("purchase_id", p.ID),
				zap.Error(err),
			)
		}
	})

	s.dispatcher.Submit(func() {
		if s.analytics == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
		defer cancel()

		fields := map[string]any{
			"purchase_id": p.ID,
			"item_id":     p.ItemID,
			"buyer":       p.BuyerLogin,
		}
		if p.PricePaid != nil {
			fields["price_paid"] = *p.PricePaid
		}
		if err := s.analytics.Publish(ctx, "purchase_completed", fields); err != nil {
			s.logger.Warn("purchase analytics not recorded",
				zap.String("purchase_id", p.ID),
				zap.Error(err),
			)
		}
	})
}

func newPaymentReference() string {
	return "pix_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
