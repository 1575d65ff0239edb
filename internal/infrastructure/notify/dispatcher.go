package notify

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/insightdesk/access-directory/internal/api/metrics"
	"github.com/insightdesk/access-directory/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Deduper suppresses repeat deliveries to the same recipient (Redis-backed
// in production). A nil Deduper disables suppression.
type Deduper interface {
	Seen(ctx context.Context, email string) (bool, error)
	Mark(ctx context.Context, email string) error
}

type notification struct {
	email     string
	loginName string
}

// Dispatcher delivers access-granted notifications asynchronously through a
// fixed set of workers, sharded by recipient email so deliveries to one
// client stay ordered. It implements ports.Notifier: Notify only enqueues,
// so record-mutating operations never block on the mail relay.
type Dispatcher struct {
	workers  []chan notification
	delivery ports.Notifier
	dedup    Deduper
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers
// delivering through the given Notifier. If numWorkers <= 0, defaultWorkers
// is used.
func NewDispatcher(numWorkers int, delivery ports.Notifier, dedup Deduper, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan notification, numWorkers),
		delivery: delivery,
		dedup:    dedup,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// notifications still queued at that point are dropped (they are best-effort
// by contract).
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify enqueues a notification for asynchronous delivery. It satisfies
// ports.Notifier and never returns an error: a full worker channel drops the
// notification with a warning instead of blocking the caller.
func (d *Dispatcher) Notify(_ context.Context, email, loginName string) error {
	n := notification{email: email, loginName: loginName}
	idx := d.shardIndex(email)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("email", email).Msg("notification queue full, dropping")
		metrics.NotificationDeliveriesTotal.WithLabelValues("error").Inc()
	}
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan notification) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

// deliver sends one notification, consulting the dedup cache first. Dedup
// errors fail open: better a duplicate mail than a silently missing one.
func (d *Dispatcher) deliver(ctx context.Context, workerID int, n notification) {
	if d.dedup != nil {
		seen, err := d.dedup.Seen(ctx, n.email)
		if err != nil {
			d.log.Warn().Err(err).Str("email", n.email).Msg("dedup check failed, sending anyway")
		} else if seen {
			d.log.Debug().Str("email", n.email).Msg("duplicate notification suppressed")
			metrics.NotificationDeliveriesTotal.WithLabelValues("deduplicated").Inc()
			return
		}
	}

	if err := d.delivery.Notify(ctx, n.email, n.loginName); err != nil {
		d.log.Error().Err(err).
			Str("email", n.email).
			Int("worker_id", workerID).
			Msg("notification delivery failed")
		metrics.NotificationDeliveriesTotal.WithLabelValues("error").Inc()
		return
	}

	if d.dedup != nil {
		if err := d.dedup.Mark(ctx, n.email); err != nil {
			d.log.Warn().Err(err).Str("email", n.email).Msg("failed to set dedup key")
		}
	}

	metrics.NotificationDeliveriesTotal.WithLabelValues("sent").Inc()
	d.log.Info().Str("email", n.email).Str("login_name", n.loginName).Msg("access-granted notification sent")
}
