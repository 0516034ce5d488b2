// Package notifier forwards dashboard notifications to outbound channels.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/good-yellow-bee/testdesk/internal/metrics"
)

// Message is one dashboard notification.
type Message struct {
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// Notifier is the interface for all notification channels.
type Notifier interface {
	// Name returns the channel name (e.g., "slack", "webhook").
	Name() string
	// Send delivers one message.
	Send(ctx context.Context, msg Message) error
	// Close releases any resources.
	Close() error
}

// ErrRateLimited is returned when a message is dropped by the rate limiter.
var ErrRateLimited = errors.New("notification rate limited")

// ErrQueueFull is returned when the delivery queue has no room.
var ErrQueueFull = errors.New("notification queue full")

// DispatcherConfig configures queueing and rate limiting.
type DispatcherConfig struct {
	QueueSize int
	RateLimit RateLimitConfig
	// SendTimeout bounds a single delivery to one channel.
	SendTimeout time.Duration
}

// DefaultDispatcherConfig returns default settings.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:   256,
		RateLimit:   DefaultRateLimitConfig(),
		SendTimeout: 10 * time.Second,
	}
}

// Dispatcher queues messages and delivers them to every registered
// channel from a single worker. Enqueue never blocks.
type Dispatcher struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	limiter   *RateLimiter
	queue     chan Message
	timeout   time.Duration
	log       zerolog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewDispatcher creates a dispatcher. Call Start to begin delivery.
func NewDispatcher(cfg DispatcherConfig, log zerolog.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultDispatcherConfig().QueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultDispatcherConfig().SendTimeout
	}
	return &Dispatcher{
		notifiers: make(map[string]Notifier),
		limiter:   NewRateLimiter(cfg.RateLimit),
		queue:     make(chan Message, cfg.QueueSize),
		timeout:   cfg.SendTimeout,
		log:       log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Register adds a notifier, replacing any with the same name.
func (d *Dispatcher) Register(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if old, ok := d.notifiers[n.Name()]; ok {
		old.Close()
	}
	d.notifiers[n.Name()] = n
}

// Unregister removes and closes a notifier.
func (d *Dispatcher) Unregister(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n, ok := d.notifiers[name]; ok {
		n.Close()
		delete(d.notifiers, name)
	}
}

// Get returns a notifier by name.
func (d *Dispatcher) Get(name string) (Notifier, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.notifiers[name]
	return n, ok
}

// Names returns the registered channel names.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.notifiers))
	for name := range d.notifiers {
		names = append(names, name)
	}
	return names
}

// SetRateLimit replaces the rate limit settings.
func (d *Dispatcher) SetRateLimit(cfg RateLimitConfig) {
	d.limiter.Configure(cfg)
}

// Enqueue schedules msg for delivery. It returns ErrQueueFull instead of
// blocking the caller.
func (d *Dispatcher) Enqueue(msg Message) error {
	select {
	case d.queue <- msg:
		return nil
	default:
		metrics.NotificationsDropped.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// Backlog reports queued messages and the queue capacity.
func (d *Dispatcher) Backlog() (queued, capacity int) {
	return len(d.queue), cap(d.queue)
}

// Start launches the delivery worker. It stops when ctx is canceled or
// Close is called.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		case msg := <-d.queue:
			if err := d.Dispatch(ctx, msg); err != nil {
				d.log.Warn().Err(err).Str("text", msg.Text).Msg("notification delivery failed")
			}
		}
	}
}

// Dispatch delivers msg to every registered channel synchronously.
// Returns ErrRateLimited if the message is dropped by the rate limiter.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	if !d.limiter.Allow() {
		metrics.NotificationsDropped.WithLabelValues("rate_limited").Inc()
		return ErrRateLimited
	}

	d.mu.RLock()
	targets := make([]Notifier, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		targets = append(targets, n)
	}
	d.mu.RUnlock()

	var errs []error
	for _, n := range targets {
		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		err := n.Send(sendCtx, msg)
		cancel()
		if err != nil {
			metrics.NotificationsFailed.WithLabelValues(n.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		metrics.NotificationsSent.WithLabelValues(n.Name()).Inc()
	}
	return errors.Join(errs...)
}

// RateLimitStats returns the rate limiter statistics.
func (d *Dispatcher) RateLimitStats() RateLimitStats {
	return d.limiter.Stats()
}

// Close stops the worker and closes all registered notifiers. Messages
// still queued are discarded.
func (d *Dispatcher) Close() error {
	d.stopOnce.Do(func() { close(d.stop) })

	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for name, n := range d.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	d.notifiers = make(map[string]Notifier)
	return errors.Join(errs...)
}

// Wait blocks until the worker started by Start has exited.
func (d *Dispatcher) Wait() {
	<-d.done
}
