package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cabinet-comptable/backoffice/internal/api/metrics"
	"github.com/cabinet-comptable/backoffice/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher implements ports.Notifier. Notifications are routed to a fixed
// set of workers by hashing the entity id, so the outcomes of one entity are
// published in the order they happened.
type Dispatcher struct {
	workers   []chan domain.Notification
	publisher Publisher
	renderer  Renderer
	lang      string
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher Publisher, renderer Renderer, lang string, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, publisher, renderer, lang, log)
}

func newDispatcher(numWorkers, buffer int, publisher Publisher, renderer Renderer, lang string, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.Notification, numWorkers),
		publisher: publisher,
		renderer:  renderer,
		lang:      lang,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Notify hands n to the worker responsible for its entity. It never blocks:
// when that worker is saturated the notification is dropped and counted.
func (d *Dispatcher) Notify(_ context.Context, n domain.Notification) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	idx := d.shardIndex(n.EntityID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "dropped").Inc()
		d.log.Warn().
			Str("event", n.Event).
			Str("entity_id", n.EntityID).
			Int("worker_id", idx).
			Msg("notification dropped, worker queue full")
	}
}

// shardIndex maps an entity id deterministically to a worker index.
func (d *Dispatcher) shardIndex(entityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.publish(ctx, id, n)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, worker int, n domain.Notification) {
	title, msg := n.Event, ""
	if d.renderer != nil {
		title, msg = d.renderer.Render(d.lang, n)
	}
	m := Message{
		Kind:     n.Kind,
		Event:    n.Event,
		Title:    title,
		Message:  msg,
		Entity:   n.Entity,
		EntityID: n.EntityID,
		ActorID:  n.ActorID,
		At:       n.At,
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := d.publisher.Publish(pctx, m)
	metrics.NotificationPublishDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
		d.log.Error().Err(err).
			Str("event", n.Event).
			Str("entity_id", n.EntityID).
			Int("worker_id", worker).
			Msg("notification publish failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "published").Inc()
}
