package syncer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunFunc executes one sync run.
type RunFunc func(ctx context.Context) error

// Coordinator coalesces repeated sync triggers: at most one run is in
// flight and at most one more is queued, no matter how many Enqueue
// calls arrive while busy. Triggers are fire-and-forget; run failures
// are logged and never reach the caller.
type Coordinator struct {
	run    RunFunc
	onDone func(err error) // optional completion hook

	mu      sync.Mutex
	running bool
	pending bool
}

func NewCoordinator(run RunFunc) *Coordinator {
	return &Coordinator{run: run}
}

// OnDone installs a completion hook invoked after every run, successful
// or not. Must be called before the first Enqueue.
func (c *Coordinator) OnDone(hook func(err error)) {
	c.onDone = hook
}

// Enqueue requests a sync. If one is already running, a single follow-up
// run is queued instead of starting a second one concurrently.
func (c *Coordinator) Enqueue() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		c.pending = true
		return
	}
	c.running = true
	go c.loop()
}

func (c *Coordinator) loop() {
	for {
		runID := uuid.New()
		log.Info().Str("runId", runID.String()).Msg("sync run starting")

		err := c.run(context.Background())
		if err != nil {
			log.Error().Str("runId", runID.String()).Err(err).Msg("sync run failed")
		} else {
			log.Info().Str("runId", runID.String()).Msg("sync run finished")
		}
		if c.onDone != nil {
			c.onDone(err)
		}

		c.mu.Lock()
		if c.pending {
			c.pending = false
			c.mu.Unlock()
			continue
		}
		c.running = false
		c.mu.Unlock()
		return
	}
}
