package reconcile

import (
	"slices"
	"sync"
)

// Record is the constraint for collection elements. The Reconciler owns the
// optimistic flag and stamps it through WithOptimistic.
type Record[T any] interface {
	RecordID() string
	WithOptimistic(bool) T
}

// Ticket identifies one issued refresh. See BeginRefresh.
type Ticket struct {
	seq uint64
	gen uint64
}

type entry[T any] struct {
	rec        T
	id         string
	seq        uint64
	optimistic bool
}

// Option configures a Reconciler.
type Option[T any] func(*options[T])

type options[T any] struct {
	onChange func([]T)
}

// WithOnChange registers fn to be called with the visible collection after
// every mutation.
func WithOnChange[T any](fn func([]T)) Option[T] {
	return func(o *options[T]) {
		o.onChange = fn
	}
}

// Reconciler is an ordered collection of confirmed and optimistic records.
type Reconciler[T Record[T]] struct {
	mu      sync.Mutex
	compare func(a, b T) int

	entries []entry[T]

	// shadows holds confirmed records hidden by a pending edit, keyed by the
	// temporary id of the edit.
	shadows map[string]entry[T]
	retired map[string]struct{}
	// removedSeq remembers the insertion order of removed records so Restore
	// puts them back where they were.
	removedSeq map[string]uint64

	nextSeq uint64

	// gen counts local confirm/remove operations; touched maps a record id to
	// the generation of its latest local change.
	gen     uint64
	touched map[string]uint64

	issued  uint64
	applied uint64

	onChange func([]T)
}

// New returns an empty Reconciler ordered by compare. Records comparing equal
// keep their insertion order.
func New[T Record[T]](compare func(a, b T) int, opts ...Option[T]) *Reconciler[T] {
	o := &options[T]{}
	for _, opt := range opts {
		opt(o)
	}
	return &Reconciler[T]{
		compare:    compare,
		shadows:    make(map[string]entry[T]),
		retired:    make(map[string]struct{}),
		removedSeq: make(map[string]uint64),
		touched:    make(map[string]uint64),
		onChange:   o.onChange,
	}
}

// InsertOptimistic shows r as an unconfirmed record at its sort position.
// An id that was already confirmed or reverted is never shown again.
func (r *Reconciler[T]) InsertOptimistic(rec T) {
	r.mutate(func() bool {
		return r.insertOptimistic(rec, "")
	})
}

// InsertOptimisticReplacing shows rec as an unconfirmed edit of the confirmed
// record replacedID. The original is hidden until the edit is confirmed
// (dropped) or reverted (restored).
func (r *Reconciler[T]) InsertOptimisticReplacing(rec T, replacedID string) {
	r.mutate(func() bool {
		return r.insertOptimistic(rec, replacedID)
	})
}

func (r *Reconciler[T]) insertOptimistic(rec T, replacedID string) bool {
	id := rec.RecordID()
	if _, ok := r.retired[id]; ok {
		return false
	}

	seq := r.seq()
	if i := r.index(id); i >= 0 {
		seq = r.entries[i].seq
		r.entries = slices.Delete(r.entries, i, i+1)
	}

	if replacedID != "" && replacedID != id {
		if i := r.index(replacedID); i >= 0 {
			orig := r.entries[i]
			r.entries = slices.Delete(r.entries, i, i+1)
			r.shadows[id] = orig
			seq = orig.seq
		}
	}

	r.insert(entry[T]{rec: rec.WithOptimistic(true), id: id, seq: seq, optimistic: true})
	return true
}

// Confirm replaces the optimistic record tempID with canonical. Any other
// entry carrying the canonical id is collapsed, so exactly one record for the
// entity stays visible. The canonical record is inserted even if tempID is
// no longer present.
func (r *Reconciler[T]) Confirm(tempID string, canonical T) {
	r.mutate(func() bool {
		id := canonical.RecordID()
		var seq uint64
		var haveSeq bool

		if i := r.index(tempID); i >= 0 && tempID != id {
			seq, haveSeq = r.entries[i].seq, true
			r.entries = slices.Delete(r.entries, i, i+1)
		}
		if sh, ok := r.shadows[tempID]; ok {
			if !haveSeq {
				seq, haveSeq = sh.seq, true
			}
			delete(r.shadows, tempID)
		}

		r.entries = slices.DeleteFunc(r.entries, func(e entry[T]) bool {
			if e.id != id {
				return false
			}
			if !haveSeq {
				seq, haveSeq = e.seq, true
			}
			return true
		})
		if !haveSeq {
			seq = r.seq()
		}

		if tempID != id {
			r.retired[tempID] = struct{}{}
		}
		r.touch(id)
		r.insert(entry[T]{rec: canonical.WithOptimistic(false), id: id, seq: seq})
		return true
	})
}

// Revert drops the entry tempID and restores the record it was hiding, if
// any. Calling it for an absent id is a no-op.
func (r *Reconciler[T]) Revert(tempID string) {
	r.mutate(func() bool {
		changed := false
		if i := r.index(tempID); i >= 0 {
			r.entries = slices.Delete(r.entries, i, i+1)
			changed = true
		}
		if sh, ok := r.shadows[tempID]; ok {
			delete(r.shadows, tempID)
			if r.index(sh.id) < 0 {
				r.insert(sh)
			}
			changed = true
		}
		r.retired[tempID] = struct{}{}
		return changed
	})
}

// Remove takes the record id out of the visible collection, typically right
// before a remote delete. The returned record can be put back with Restore.
func (r *Reconciler[T]) Remove(id string) (T, bool) {
	var removed T
	var ok bool
	r.mutate(func() bool {
		i := r.index(id)
		if i < 0 {
			return false
		}
		e := r.entries[i]
		r.entries = slices.Delete(r.entries, i, i+1)
		r.removedSeq[id] = e.seq
		r.touch(id)
		removed, ok = e.rec, true
		return true
	})
	return removed, ok
}

// Restore puts back a confirmed record previously taken out by Remove.
func (r *Reconciler[T]) Restore(rec T) {
	r.mutate(func() bool {
		id := rec.RecordID()
		if r.index(id) >= 0 {
			return false
		}
		seq, ok := r.removedSeq[id]
		if ok {
			delete(r.removedSeq, id)
		} else {
			seq = r.seq()
		}
		r.touch(id)
		r.insert(entry[T]{rec: rec.WithOptimistic(false), id: id, seq: seq})
		return true
	})
}

// Refresh replaces the confirmed subset with list. Pending optimistic
// entries are kept.
func (r *Reconciler[T]) Refresh(list []T) {
	r.ApplyRefresh(r.BeginRefresh(), list)
}

// BeginRefresh issues a ticket for a refresh about to be fetched from the
// remote store. Pass it to ApplyRefresh together with the fetched list.
func (r *Reconciler[T]) BeginRefresh() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.issued++
	return Ticket{seq: r.issued, gen: r.gen}
}

// ApplyRefresh applies list fetched under ticket t. It reports false and
// changes nothing when a refresh issued after t has already been applied.
//
// Records confirmed, removed or restored locally after t was issued keep
// their local state: the fetched list may predate those writes.
func (r *Reconciler[T]) ApplyRefresh(t Ticket, list []T) bool {
	r.mu.Lock()
	if t.seq <= r.applied {
		r.mu.Unlock()
		return false
	}
	r.applied = t.seq

	hidden := make(map[string]string, len(r.shadows))
	for tempID, sh := range r.shadows {
		hidden[sh.id] = tempID
	}

	current := make(map[string]entry[T], len(r.entries))
	next := make([]entry[T], 0, len(list)+len(r.entries))
	for _, e := range r.entries {
		if e.optimistic {
			next = append(next, e)
			continue
		}
		current[e.id] = e
	}

	seen := make(map[string]struct{}, len(list))
	for _, rec := range list {
		id := rec.RecordID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if g, ok := r.touched[id]; ok && g > t.gen {
			continue
		}

		e := entry[T]{rec: rec.WithOptimistic(false), id: id}
		if tempID, ok := hidden[id]; ok {
			e.seq = r.shadows[tempID].seq
			r.shadows[tempID] = e
			continue
		}
		if cur, ok := current[id]; ok {
			e.seq = cur.seq
		} else {
			e.seq = r.seq()
		}
		next = append(next, e)
	}

	// Locally changed records newer than the ticket win over the snapshot.
	for id, e := range current {
		if g, ok := r.touched[id]; ok && g > t.gen {
			next = append(next, e)
		}
	}

	// A hidden original missing from the snapshot was deleted remotely.
	for tempID, sh := range r.shadows {
		if _, ok := seen[sh.id]; !ok {
			if g, touched := r.touched[sh.id]; !touched || g <= t.gen {
				delete(r.shadows, tempID)
			}
		}
	}

	for id, g := range r.touched {
		if g <= t.gen {
			delete(r.touched, id)
		}
	}

	r.entries = next
	r.sort()
	snap, cb := r.snapshotLocked(), r.onChange
	r.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
	return true
}

// Snapshot returns a copy of the visible collection in order.
func (r *Reconciler[T]) Snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Len returns the number of visible records.
func (r *Reconciler[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Get returns the visible record with the given id.
func (r *Reconciler[T]) Get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(id); i >= 0 {
		return r.entries[i].rec, true
	}
	var zero T
	return zero, false
}

// Pending returns the number of unconfirmed records.
func (r *Reconciler[T]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.optimistic {
			n++
		}
	}
	return n
}

func (r *Reconciler[T]) mutate(fn func() bool) {
	r.mu.Lock()
	if !fn() {
		r.mu.Unlock()
		return
	}
	snap, cb := r.snapshotLocked(), r.onChange
	r.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

func (r *Reconciler[T]) snapshotLocked() []T {
	out := make([]T, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.rec
	}
	return out
}

func (r *Reconciler[T]) seq() uint64 {
	r.nextSeq++
	return r.nextSeq
}

func (r *Reconciler[T]) touch(id string) {
	r.gen++
	r.touched[id] = r.gen
}

func (r *Reconciler[T]) index(id string) int {
	return slices.IndexFunc(r.entries, func(e entry[T]) bool { return e.id == id })
}

func (r *Reconciler[T]) insert(e entry[T]) {
	r.entries = append(r.entries, e)
	r.sort()
}

func (r *Reconciler[T]) sort() {
	slices.SortStableFunc(r.entries, func(a, b entry[T]) int {
		if c := r.compare(a.rec, b.rec); c != 0 {
			return c
		}
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
}
