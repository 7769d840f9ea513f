// Package realtime fans remote snapshot deliveries out to streaming clients.
package realtime

import (
	"context"
	"sync"

	"couple-plans-backend-go/internal/metrics"
	"couple-plans-backend-go/internal/models"
)

// Snapshot kinds, also used as Server-Sent-Events event names.
const (
	KindPlans     = "plans"
	KindLocations = "locations"
)

var kindOrder = []string{KindPlans, KindLocations}

// Snapshot is a full copy of one shared collection at a point in time.
type Snapshot struct {
	Kind      string        `json:"kind"`
	Plans     []models.Plan `json:"plans,omitempty"`
	Locations []string      `json:"locations,omitempty"`
}

// Hub broadcasts snapshots to subscribers. Publishing never blocks: a subscriber
// that has not consumed the previous snapshot of a kind only ever sees the newest one.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
	last map[string]Snapshot
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[*Subscription]struct{}),
		last: make(map[string]Snapshot),
	}
}

// Subscription receives snapshots from a Hub.
type Subscription struct {
	mu      sync.Mutex
	pending map[string]Snapshot
	notify  chan struct{}
}

func (s *Subscription) offer(snap Snapshot) {
	s.mu.Lock()
	s.pending[snap.Kind] = snap
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until at least one snapshot is pending or ctx is done.
// Snapshots are returned plans first, then locations.
func (s *Subscription) Next(ctx context.Context) ([]Snapshot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.notify:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, 0, len(s.pending))
	for _, kind := range kindOrder {
		if snap, ok := s.pending[kind]; ok {
			out = append(out, snap)
			delete(s.pending, kind)
		}
	}
	return out, nil
}

// Subscribe registers a new subscriber, primed with the latest snapshot of each kind.
// The returned function unregisters it.
func (h *Hub) Subscribe() (*Subscription, func()) {
	sub := &Subscription{
		pending: make(map[string]Snapshot),
		notify:  make(chan struct{}, 1),
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	for _, snap := range h.last {
		sub.offer(snap)
	}
	h.mu.Unlock()
	metrics.StreamSubscribers.Inc()

	var once sync.Once
	return sub, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, sub)
			h.mu.Unlock()
			metrics.StreamSubscribers.Dec()
		})
	}
}

// Publish records snap as the latest of its kind and offers it to every subscriber.
func (h *Hub) Publish(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[snap.Kind] = snap
	for sub := range h.subs {
		sub.offer(snap)
	}
}

// PublishPlans is a shorthand for publishing a plans snapshot.
func (h *Hub) PublishPlans(plans []models.Plan) {
	h.Publish(Snapshot{Kind: KindPlans, Plans: plans})
}

// PublishLocations is a shorthand for publishing a locations snapshot.
func (h *Hub) PublishLocations(locations []string) {
	h.Publish(Snapshot{Kind: KindLocations, Locations: locations})
}

// Subscribers returns the number of registered subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
