package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/digistall/digistall/internal/core/domain"
	"github.com/digistall/digistall/internal/port"
)

type stubItemRepo struct {
	mu    sync.Mutex
	items map[string]domain.Item
}

func (s *stubItemRepo) CreateItem(ctx context.Context, item domain.Item) error { return nil }

func (s *stubItemRepo) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *stubItemRepo) ListItems(ctx context.Context) ([]domain.Item, error) { return nil, nil }
func (s *stubItemRepo) ListItemsByOwner(ctx context.Context, userID string) ([]domain.Item, error) {
	return nil, nil
}

func (s *stubItemRepo) UpdateItem(ctx context.Context, item domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	return nil
}

func (s *stubItemRepo) DeleteItem(ctx context.Context, id string) error { return nil }

type stubRewriter struct {
	out string
	err error
}

func (s stubRewriter) Rewrite(ctx context.Context, name, description string) (string, error) {
	return s.out, s.err
}

func TestEnhancer_RewritesDescription(t *testing.T) {
	repo := &stubItemRepo{items: map[string]domain.Item{
		"i1": {ID: "i1", Name: "Widget", Description: "plain"},
	}}
	e := NewEnhancer(repo, stubRewriter{out: "much better"}, 10, zap.NewNop())
	e.Start(1)

	if ok := e.Enqueue(port.EnhancementTask{ItemID: "i1", Name: "Widget", Description: "plain"}); !ok {
		t.Fatal("enqueue should succeed")
	}
	e.Stop()

	item, _ := repo.GetItem(context.Background(), "i1")
	if item.Description != "much better" {
		t.Errorf("expected rewritten description, got %q", item.Description)
	}
}

func TestEnhancer_FailureLeavesItemUntouched(t *testing.T) {
	repo := &stubItemRepo{items: map[string]domain.Item{
		"i1": {ID: "i1", Name: "Widget", Description: "plain"},
	}}
	e := NewEnhancer(repo, stubRewriter{err: errors.New("model down")}, 10, zap.NewNop())
	e.Start(1)

	e.Enqueue(port.EnhancementTask{ItemID: "i1"})
	e.Stop()

	item, _ := repo.GetItem(context.Background(), "i1")
	if item.Description != "plain" {
		t.Errorf("expected original description, got %q", item.Description)
	}
}

func TestEnhancer_FullQueueDropsTask(t *testing.T) {
	repo := &stubItemRepo{items: map[string]domain.Item{}}
	// Workers not started: the single slot fills and the next enqueue drops.
	e := NewEnhancer(repo, stubRewriter{out: "x"}, 1, zap.NewNop())

	if ok := e.Enqueue(port.EnhancementTask{ItemID: "a"}); !ok {
		t.Fatal("first enqueue should fit")
	}
	if ok := e.Enqueue(port.EnhancementTask{ItemID: "b"}); ok {
		t.Error("second enqueue should be dropped, not blocked")
	}

	e.Start(1)
	e.Stop()
}

func TestEnhancer_DeletedItemSkipped(t *testing.T) {
	repo := &stubItemRepo{items: map[string]domain.Item{}}
	e := NewEnhancer(repo, stubRewriter{out: "x"}, 10, zap.NewNop())
	e.Start(1)

	e.Enqueue(port.EnhancementTask{ItemID: "gone"})

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not drain queue")
	}
}
