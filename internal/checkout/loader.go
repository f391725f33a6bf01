package checkout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"membership-payments/internal/infra/metrics"
)

// Bridge is the third-party checkout capability the loader brings up. Load is
// the transport-level fetch; Callable checks that the capability actually
// works afterwards (a fetched script is not the same as a usable one).
type Bridge interface {
	Load(ctx context.Context) error
	Callable(ctx context.Context) bool
}

type loaderState int32

const (
	stateUnloaded loaderState = iota
	stateLoading
	stateLoaded
	stateFailed
)

// Loader guards the process-wide "is the checkout bridge up" lifecycle
// {unloaded, loading, loaded, failed}. Concurrent callers during a load
// attach to the same in-flight attempt instead of starting their own.
// EnsureLoaded never returns an error: callers branch to the fallback on
// false.
type Loader struct {
	bridge  Bridge
	timeout time.Duration
	log     *zerolog.Logger

	mu       sync.Mutex
	state    loaderState
	inflight chan struct{} // closed when the current attempt resolves
	attempts uint64        // read with atomic; one increment per real load
}

func NewLoader(bridge Bridge, timeout time.Duration, log *zerolog.Logger) *Loader {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Loader{bridge: bridge, timeout: timeout, log: log}
}

// EnsureLoaded resolves true once the bridge is loaded and callable. A failed
// or timed-out attempt is terminal for that attempt only; the next call
// starts a fresh one.
func (l *Loader) EnsureLoaded(ctx context.Context) bool {
	l.mu.Lock()
	switch l.state {
	case stateLoaded:
		l.mu.Unlock()
		return true
	case stateLoading:
		done := l.inflight
		l.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return false
		}
		l.mu.Lock()
		ok := l.state == stateLoaded
		l.mu.Unlock()
		return ok
	default: // unloaded or failed: start a new attempt
		done := make(chan struct{})
		l.state = stateLoading
		l.inflight = done
		l.mu.Unlock()
		return l.load(ctx, done)
	}
}

func (l *Loader) load(ctx context.Context, done chan struct{}) bool {
	defer close(done)
	atomic.AddUint64(&l.attempts, 1)

	lctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ok := false
	if err := l.bridge.Load(lctx); err != nil {
		l.log.Warn().Err(err).Msg("checkout bridge load failed")
	} else if !l.bridge.Callable(lctx) {
		l.log.Warn().Msg("checkout bridge loaded but not callable")
	} else {
		ok = true
	}

	l.mu.Lock()
	if ok {
		l.state = stateLoaded
		metrics.BridgeLoads.WithLabelValues("ok").Inc()
	} else {
		l.state = stateFailed
		metrics.BridgeLoads.WithLabelValues("fail").Inc()
	}
	l.mu.Unlock()
	return ok
}

// LoadAttempts reports how many real load attempts ran. Test hook for the
// coalescing guarantee.
func (l *Loader) LoadAttempts() uint64 { return atomic.LoadUint64(&l.attempts) }
