package effects

import (
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// PoolDispatcher runs post-commit side effects on a bounded goroutine pool.
// Submit is non-blocking: when the pool is saturated the effect is dropped
// and logged, never pushed back into the purchase path.
type PoolDispatcher struct {
	pool   *ants.Pool
	logger *zap.Logger
}

func NewPoolDispatcher(size int, logger *zap.Logger) (*PoolDispatcher, error) {
	pool, err := ants.NewPool(size, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &PoolDispatcher{pool: pool, logger: logger}, nil
}

func (d *PoolDispatcher) Submit(effect func()) {
	err := d.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("post-commit effect panicked", zap.Any("panic", r))
			}
		}()
		effect()
	})
	if err != nil {
		d.logger.Warn("post-commit effect dropped", zap.Error(err))
	}
}

// Release stops the pool. Pending effects already running are allowed to
// finish.
func (d *PoolDispatcher) Release() {
	d.pool.Release()
}
