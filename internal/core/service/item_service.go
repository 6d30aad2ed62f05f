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
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidItem = errors.New("invalid item")
)

type ItemService struct {
	items      port.ItemRepository
	cache      port.ListingCache
	queue      port.EnhancementQueue
	dispatcher port.EffectsDispatcher
	analytics  port.AnalyticsPublisher
	logger     *zap.Logger
}

func NewItemService(
	items port.ItemRepository,
	cache port.ListingCache,
	queue port.EnhancementQueue,
	dispatcher port.EffectsDispatcher,
	analytics port.AnalyticsPublisher,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:      items,
		cache:      cache,
		queue:      queue,
		dispatcher: dispatcher,
		analytics:  analytics,
		logger:     logger,
	}
}

type CreateItemParams struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
	Enhance     bool
}

type UpdateItemParams struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

func (p CreateItemParams) validate() error {
	if strings.TrimSpace(p.Name) == "" || p.Price < 0 || p.Quantity < 0 {
		return ErrInvalidItem
	}
	return nil
}

func (s *ItemService) CreateItem(ctx context.Context, params CreateItemParams, session *domain.Session) (domain.Item, error) {
	if session == nil {
		return domain.Item{}, ErrUnauthorized
	}
	if err := params.validate(); err != nil {
		return domain.Item{}, err
	}

	ownerID := session.UserID
	now := time.Now().UTC()
	item := domain.Item{
		ID:          uuid.New().String(),
		OwnerUserID: &ownerID,
		Name:        strings.TrimSpace(params.Name),
		Description: params.Description,
		Price:       params.Price,
		Quantity:    params.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return domain.Item{}, fmt.Errorf("create item: %w", err)
	}

	s.invalidateListing(ctx)

	if params.Enhance && s.queue != nil {
		task := port.EnhancementTask{ItemID: item.ID, Name: item.Name, Description: item.Description}
		if !s.queue.Enqueue(task) {
			s.logger.Warn("enhancement queue full, task dropped", zap.String("item_id", item.ID))
		}
	}

	if s.dispatcher != nil && s.analytics != nil {
		itemID := item.ID
		s.dispatcher.Submit(func() {
			ctx, cancel := context.WithTimeout(context.Background(), effectTimeout)
			defer cancel()
			if err := s.analytics.Publish(ctx, "item_created", map[string]any{"item_id": itemID}); err != nil {
				s.logger.Warn("item analytics not recorded", zap.String("item_id", itemID), zap.Error(err))
			}
		})
	}

	return item, nil
}

// ListItems serves the marketplace listing, cache first. Cache errors fall
// through to the database.
func (s *ItemService) ListItems(ctx context.Context) ([]domain.Item, error) {
	if s.cache != nil {
		items, ok, err := s.cache.GetListing(ctx)
		if err != nil {
			s.logger.Warn("listing cache read failed", zap.Error(err))
		} else if ok {
			return items, nil
		}
	}

	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetListing(ctx, items); err != nil {
			s.logger.Warn("listing cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (s *ItemService) GetItem(ctx context.Context, id string) (domain.Item, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return domain.Item{}, ErrItemNotFound
	}
	return *item, nil
}

func (s *ItemService) ListOwnItems(ctx context.Context, session *domain.Session) ([]domain.Item, error) {
	if session == nil {
		return nil, ErrUnauthorized
	}
	items, err := s.items.ListItemsByOwner(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("list own items: %w", err)
	}
	return items, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, id string, params UpdateItemParams, session *domain.Session) (domain.Item, error) {
	if session == nil {
		return domain.Item{}, ErrUnauthorized
	}
	if strings.TrimSpace(params.Name) == "" || params.Price < 0 || params.Quantity < 0 {
		return domain.Item{}, ErrInvalidItem
	}

	item, err := s.ownedItem(ctx, id, session)
	if err != nil {
		return domain.Item{}, err
	}

	item.Name = strings.TrimSpace(params.Name)
	item.Description = params.Description
	item.Price = params.Price
	item.Quantity = params.Quantity
	item.UpdatedAt = time.Now().UTC()

	if err := s.items.UpdateItem(ctx, *item); err != nil {
		return domain.Item{}, fmt.Errorf("update item: %w", err)
	}
	s.invalidateListing(ctx)
	return *item, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, id string, session *domain.Session) error {
	if session == nil {
		return ErrUnauthorized
	}
	item, err := s.ownedItem(ctx, id, session)
	if err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, item.ID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	s.invalidateListing(ctx)
	return nil
}

func (s *ItemService) ownedItem(ctx context.Context, id string, session *domain.Session) (*domain.Item, error) {
	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if item.OwnerUserID == nil || *item.OwnerUserID != session.UserID {
		return nil, ErrForbidden
	}
	return item, nil
}

func (s *ItemService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateListing(ctx); err != nil {
		s.logger.Warn("listing cache invalidation failed", zap.Error(err))
	}
}
