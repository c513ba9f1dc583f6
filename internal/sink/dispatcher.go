package sink

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Cheertaboi/tips-console/internal/concurrency"
)

type DispatcherConfig struct {
	Workers int           `mapstructure:"workers"`
	// Buffer is the queue capacity of each worker.
	Buffer  int           `mapstructure:"buffer"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Dispatcher queues mutations and persists them on a pool of workers.
// Mutations of one tip or package always go to the same worker, so they are
// persisted in the order they were submitted. Submit never blocks: when the
// queue is full, or the dispatcher is closed, the mutation is dropped and
// logged.
type Dispatcher struct {
	sink    Sink
	cfg     DispatcherConfig
	logger  *slog.Logger
	queues  []chan Mutation
	dropped atomic.Int64
	failed  atomic.Int64

	mu     sync.RWMutex
	closed bool

	startOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(s Sink, cfg DispatcherConfig, logger *slog.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 2
	}
	if cfg.Buffer < 1 {
		cfg.Buffer = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	queues := make([]chan Mutation, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan Mutation, cfg.Buffer)
	}
	return &Dispatcher{
		sink:   s,
		cfg:    cfg,
		logger: logger,
		queues: queues,
		done:   make(chan struct{}),
	}
}

// Start launches the workers. They run until Close is called and the queues
// are drained, or ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		go func() {
			defer close(d.done)
			concurrency.Drain(ctx, d.queues, d.persist)
		}()
	})
}

func (d *Dispatcher) persist(ctx context.Context, m Mutation) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	if err := d.sink.Persist(ctx, m); err != nil {
		d.failed.Add(1)
		d.logger.Error("persist mutation failed", "mutation_id", m.ID, "kind", m.Kind, "error", err)
		return
	}
	d.logger.Debug("mutation persisted", "mutation_id", m.ID, "kind", m.Kind)
}

// shard picks the worker owning the mutation's entity.
func (d *Dispatcher) shard(m Mutation) chan Mutation {
	h := fnv.New32a()
	_, _ = h.Write([]byte(m.Kind))
	_, _ = h.Write([]byte(m.EntityID()))
	return d.queues[h.Sum32()%uint32(len(d.queues))]
}

// Submit queues m for persistence and reports whether it was accepted.
func (d *Dispatcher) Submit(m Mutation) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		d.logger.Warn("dispatcher closed, dropping mutation", "mutation_id", m.ID, "kind", m.Kind)
		return false
	}
	select {
	case d.shard(m) <- m:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("persistence queue full, dropping mutation", "mutation_id", m.ID, "kind", m.Kind)
		return false
	}
}

// Close stops accepting mutations and waits for queued ones to be persisted
// or for ctx to end. Mutations submitted after Close are dropped.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()

	// never started: nothing will close done
	d.startOnce.Do(func() { close(d.done) })
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

func (d *Dispatcher) Failed() int64 { return d.failed.Load() }
