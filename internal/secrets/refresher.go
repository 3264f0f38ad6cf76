package secrets

import (
	"context"
	"sync"
	"time"

	"storefront/internal/logger"
)

// Refresher keeps the last known PIN in memory so request handling never
// waits on the source.
type Refresher struct {
	source   Source
	interval time.Duration
	timeout  time.Duration

	mu   sync.RWMutex
	pin  string
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewRefresher wraps source. Call Refresh once before serving, then Start.
func NewRefresher(source Source, interval time.Duration) *Refresher {
	return &Refresher{
		source:   source,
		interval: interval,
		timeout:  5 * time.Second,
		stop:     make(chan struct{}),
	}
}

// PIN returns the last successfully fetched PIN, or "" if none yet.
func (r *Refresher) PIN() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pin
}

// Refresh fetches the PIN now. On failure the previous value is kept.
func (r *Refresher) Refresh(ctx context.Context) error {
	pin, err := r.source.StagingPIN(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.pin = pin
	r.mu.Unlock()
	return nil
}

// Start refreshes in the background every interval until Stop.
func (r *Refresher) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
				if err := r.Refresh(ctx); err != nil {
					logger.Get().Warn().Err(err).Msg("Staging PIN refresh failed, keeping previous value")
				}
				cancel()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop ends background refreshes and waits for the loop to exit.
func (r *Refresher) Stop() {
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()
}
