// Package background runs fire-and-forget work (cache writes, event
// publishing) that has to finish before brokers and connections are closed.
package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"restobook/config"

	"github.com/rs/zerolog/log"
)

const defaultDrainTimeout = 10 * time.Second

type Group struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	closed  bool
	timeout time.Duration
}

// New drains for the configured cleanup period on Close.
func New(cfg *config.Config) *Group {
	timeout := time.Duration(cfg.Server.Shutdown.CleanupPeriodSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultDrainTimeout
	}

	return &Group{timeout: timeout}
}

// Go runs task detached from the caller's cancellation. Tasks submitted after
// Close are dropped.
func (g *Group) Go(ctx context.Context, name string, task func(ctx context.Context)) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		log.Warn().Str("task", name).Msg("Background task dropped, shutting down")

		return
	}

	g.wg.Add(1)

	go func() {
		defer g.wg.Done()

		task(context.WithoutCancel(ctx))
	}()
}

// Close stops accepting tasks and waits for the running ones.
func (g *Group) Close() error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	done := make(chan struct{})

	go func() {
		g.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(g.timeout):
		return fmt.Errorf("background tasks still running after %s", g.timeout)
	}
}
