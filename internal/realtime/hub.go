// Package realtime implements live queries over change notifications.
//
// A subscription pairs a snapshot function with a callback. Whenever the
// subscribed collection changes, the snapshot is recomputed and the callback
// invoked with the full current result set. Subscriptions are long-lived
// resources: callers must invoke the returned Cancel to stop delivery.
package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Hub fans change notifications out to subscriptions, keyed by collection.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription is the cancellation handle for one live query.
type Subscription struct {
	hub        *Hub
	collection string
	notify     chan struct{}
	stop       chan struct{}
	done       chan struct{}
	cancelOnce sync.Once
}

// Cancel stops delivery and releases the subscription. It blocks until the
// delivery goroutine has exited, so no callback runs after Cancel returns.
// Safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		s.hub.remove(s)
		close(s.stop)
	})
	<-s.done
}

// Publish signals that a collection changed. Every subscription on that
// collection recomputes its snapshot. Pending signals coalesce: a burst of
// changes may produce a single recomputation, which still ends on the latest
// state because the snapshot is re-read, not diffed.
func (h *Hub) Publish(collection string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[collection] {
		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[s.collection]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.collection)
		}
	}
}

// Subscribe establishes a live query on a collection. The callback is invoked
// once with the initial snapshot and again after every change until Cancel.
// Snapshot errors are logged and that delivery skipped; the subscription
// stays alive.
func Subscribe[T any](h *Hub, collection string, fetch func(context.Context) (T, error), callback func(T)) *Subscription {
	sub := &Subscription{
		hub:        h,
		collection: collection,
		notify:     make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[*Subscription]struct{})
	}
	h.subs[collection][sub] = struct{}{}
	h.mu.Unlock()

	deliver := func() {
		snapshot, err := fetch(context.Background())
		if err != nil {
			log.Error().Err(err).Str("collection", collection).Msg("live query snapshot failed")
			return
		}
		callback(snapshot)
	}

	go func() {
		defer close(sub.done)
		deliver()
		for {
			select {
			case <-sub.stop:
				return
			case <-sub.notify:
				// Drop deliveries racing with cancellation.
				select {
				case <-sub.stop:
					return
				default:
				}
				deliver()
			}
		}
	}()

	return sub
}
