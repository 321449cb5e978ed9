// Package lifecycle coordinates startup hooks, shutdown hooks and readiness
// for long-running processes.
package lifecycle

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup and shutdown hooks. Hooks start running as
// soon as they are registered.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu          sync.RWMutex
	startedFlag bool
	checks      map[string]ReadinessChecker
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
		checks: make(map[string]ReadinessChecker),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently as part of startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown runs fn concurrently; fn should block on <-Context().Done()
// before cleaning up.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// AddCheck registers a named readiness check consulted by Ready.
func (c *Coordinator) AddCheck(name string, check ReadinessChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Ready reports whether startup finished and every check passes.
func (c *Coordinator) Ready() bool {
	return c.started() && len(c.NotReady()) == 0
}

// NotReady returns the names of failing checks in sorted order.
func (c *Coordinator) NotReady() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var failing []string
	for _, name := range slices.Sorted(maps.Keys(c.checks)) {
		if !c.checks[name].Ready() {
			failing = append(failing, name)
		}
	}
	return failing
}

func (c *Coordinator) started() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.startedFlag
}

// WaitForStartup blocks until all startup hooks have completed.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.mu.Lock()
	c.startedFlag = true
	c.mu.Unlock()
}

// Shutdown cancels the context and waits for shutdown hooks up to timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
