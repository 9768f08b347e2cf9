package inventory

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/inventario-engine/internal/domain"
)

// Gate exclusión mutua a nivel de proceso para las operaciones que mutan stock.
// Acquire espera como máximo timeout y luego falla con domain.ErrBusy.
type Gate struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

// NewGate construye el candado global.
func NewGate(timeout time.Duration) *Gate {
	return &Gate{sem: semaphore.NewWeighted(1), timeout: timeout}
}

// Acquire obtiene el candado. El release devuelto es idempotente.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		gateTimeouts.Add(ctx, 1)
		return nil, domain.ErrBusy
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		g.sem.Release(1)
	}, nil
}
