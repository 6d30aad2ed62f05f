package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/digistall/digistall/internal/port"
)

const taskTimeout = 30 * time.Second

// Rewriter produces an improved item description.
type Rewriter interface {
	Rewrite(ctx context.Context, name, description string) (string, error)
}

// Enhancer consumes description-enhancement tasks from a buffered channel
// with a small worker pool. Enqueue never blocks; a full queue drops the
// task. A failed enhancement leaves the item untouched.
type Enhancer struct {
	queue    chan port.EnhancementTask
	items    port.ItemRepository
	rewriter Rewriter
	logger   *zap.Logger
	wg       sync.WaitGroup
}

func NewEnhancer(items port.ItemRepository, rewriter Rewriter, queueSize int, logger *zap.Logger) *Enhancer {
	return &Enhancer{
		queue:    make(chan port.EnhancementTask, queueSize),
		items:    items,
		rewriter: rewriter,
		logger:   logger,
	}
}

func (e *Enhancer) Enqueue(task port.EnhancementTask) bool {
	select {
	case e.queue <- task:
		return true
	default:
		return false
	}
}

func (e *Enhancer) Start(workers int) {
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go func(id int) {
			defer e.wg.Done()
			e.workerLoop(id)
		}(i)
	}
}

// Stop closes the queue and waits for in-flight tasks to drain.
func (e *Enhancer) Stop() {
	close(e.queue)
	e.wg.Wait()
}

func (e *Enhancer) workerLoop(id int) {
	for task := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		e.process(ctx, id, task)
		cancel()
	}
}

func (e *Enhancer) process(ctx context.Context, id int, task port.EnhancementTask) {
	rewritten, err := e.rewriter.Rewrite(ctx, task.Name, task.Description)
	if err != nil {
		e.logger.Warn("enhancement failed",
			zap.Int("worker", id),
			zap.String("item_id", task.ItemID),
			zap.Error(err),
		)
		return
	}

	item, err := e.items.GetItem(ctx, task.ItemID)
	if err != nil {
		e.logger.Warn("enhancement load failed", zap.Int("worker", id), zap.String("item_id", task.ItemID), zap.Error(err))
		return
	}
	if item == nil {
		// Item deleted while the task was queued.
		return
	}

	item.Description = rewritten
	item.UpdatedAt = time.Now().UTC()
	if err := e.items.UpdateItem(ctx, *item); err != nil {
		e.logger.Warn("enhancement save failed", zap.Int("worker", id), zap.String("item_id", task.ItemID), zap.Error(err))
		return
	}

	e.logger.Info("description enhanced", zap.Int("worker", id), zap.String("item_id", task.ItemID))
}
