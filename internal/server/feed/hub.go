// Package feed fans database change notifications out to subscribers.
package feed

import (
	"sync"

	"github.com/dmitrijs2005/securepay/internal/server/models"
)

type key struct {
	table string
	owner string
}

// Hub routes changes to the subscribers of a (table, owner) pair. Every
// subscriber channel holds one pending signal; bursts collapse into it.
type Hub struct {
	mu   sync.Mutex
	subs map[key]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[key]map[chan struct{}]struct{})}
}

// Subscribe registers interest in the owner's rows of table. The returned
// cancel func unregisters and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe(table, owner string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	k := key{table, owner}

	h.mu.Lock()
	set, ok := h.subs[k]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.subs[k] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[k], ch)
			if len(h.subs[k]) == 0 {
				delete(h.subs, k)
			}
			close(ch)
		})
	}
}

// Publish signals every subscriber of the change's table and owner.
// It never blocks.
func (h *Hub) Publish(c models.Change) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for ch := range h.subs[key{c.Table, c.UserID}] {
		select {
		case ch <- struct{}{}:
		default:
		}
		n++
	}
	return n
}

// Subscribers reports how many subscribers watch table for owner.
func (h *Hub) Subscribers(table, owner string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key{table, owner}])
}
