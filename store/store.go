// Package store implements the in-memory object store: the
// by_key/by_logical/by_type/by_id indexes over SAOs, updated only by
// whole-provider-contribution replacement under a single RWMutex. A single
// guarded root is swapped atomically on write; readers acquire a Snapshot
// under RLock and hold it for the duration of one query.
package store

import (
	"sync"
	"time"

	"github.com/sebitommy123/SA/value"
)

type keyTuple struct {
	typ, id, source string
}

type logicalTuple struct {
	typ, id string
}

// snapshot is the immutable index root swapped in by ReplaceProvider. Every
// reader sees one snapshot for the whole duration of its query.
type snapshot struct {
	byKey      map[keyTuple]*value.SAO
	byLogical  map[logicalTuple][]*value.SAO
	byType     map[string][]*value.SAO
	byID       map[string][]*value.SAO
	sourceKeys map[string][]keyTuple // which by_key entries a source currently owns
	// order lists every live by_key entry in the order it was (re)contributed:
	// older sources first, and within a source the order objects appeared in
	// its last ReplaceProvider call. by_type, by_id and All() derive their
	// element order from this instead of Go map iteration, so that "earliest
	// in input order" tie-breaks (lowest) and ordered listings stay stable
	// across rebuilds.
	order []keyTuple
}

func emptySnapshot() *snapshot {
	return &snapshot{
		byKey:      map[keyTuple]*value.SAO{},
		byLogical:  map[logicalTuple][]*value.SAO{},
		byType:     map[string][]*value.SAO{},
		byID:       map[string][]*value.SAO{},
		sourceKeys: map[string][]keyTuple{},
	}
}

// Store is the shared mutable resource the poller writes and query
// evaluation reads. All mutation is whole-snapshot rebuild:
// no index is ever updated in place.
type Store struct {
	mu       sync.RWMutex
	snap     *snapshot
	statusMu sync.RWMutex
	statuses map[string]ProviderStatus
}

// New returns an empty store with zero providers.
func New() *Store {
	return &Store{snap: emptySnapshot(), statuses: map[string]ProviderStatus{}}
}

// ProviderStatus is a provider's last-known health, surfaced for rendering
// and metrics. It is operational metadata, not
// query-visible index data, so it lives outside the snapshot and is guarded
// by its own lock — recording it never blocks or is blocked by a query.
type ProviderStatus struct {
	Source      string
	Degraded    bool
	LastError   string
	LastAttempt time.Time
	LastSuccess time.Time
}

// SetStatus records source's current health, called by the poller after
// every fetch attempt.
func (s *Store) SetStatus(st ProviderStatus) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.statuses[st.Source] = st
}

// Status returns source's last-recorded health.
func (s *Store) Status(source string) (ProviderStatus, bool) {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	st, ok := s.statuses[source]
	return st, ok
}

// Statuses returns a snapshot copy of every provider's last-recorded health,
// keyed by source.
func (s *Store) Statuses() map[string]ProviderStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	out := make(map[string]ProviderStatus, len(s.statuses))
	for k, v := range s.statuses {
		out[k] = v
	}
	return out
}

// ReplaceProvider atomically swaps source's entire contribution for objects,
// rebuilding the derived indexes that reference it. Passing a nil or empty
// objects slice clears the source's contribution (the degraded-provider
// case). Duplicate (type,id,source) entries within objects
// collapse to the last one, matching the store's by_key map semantics.
func (s *Store) ReplaceProvider(source string, objects []*value.SAO) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneSnapshot(s.snap)

	if old, ok := next.sourceKeys[source]; ok {
		stale := make(map[keyTuple]bool, len(old))
		for _, k := range old {
			delete(next.byKey, k)
			stale[k] = true
		}
		kept := next.order[:0:0]
		for _, k := range next.order {
			if !stale[k] {
				kept = append(kept, k)
			}
		}
		next.order = kept
	}
	delete(next.sourceKeys, source)

	var owned []keyTuple
	seenOwned := map[keyTuple]bool{}
	for _, o := range objects {
		if o == nil || o.ID == "" || len(o.Types) == 0 {
			continue
		}
		for _, t := range o.Types {
			k := keyTuple{typ: t, id: o.ID, source: o.Source}
			next.byKey[k] = o
			if !seenOwned[k] {
				seenOwned[k] = true
				owned = append(owned, k)
			}
		}
	}
	if len(owned) > 0 {
		next.sourceKeys[source] = owned
		next.order = append(next.order, owned...)
	}

	next.byType = rebuildByType(next.order, next.byKey)
	next.byID = rebuildByID(next.order, next.byKey)
	next.byLogical = rebuildByLogical(next.order, next.byKey)

	s.snap = next
}

func cloneSnapshot(s *snapshot) *snapshot {
	n := emptySnapshot()
	for k, v := range s.byKey {
		n.byKey[k] = v
	}
	for src, keys := range s.sourceKeys {
		n.sourceKeys[src] = append([]keyTuple(nil), keys...)
	}
	n.order = append([]keyTuple(nil), s.order...)
	return n
}

// rebuildByType, rebuildByID and rebuildByLogical walk order rather than
// ranging over byKey directly, so their output lists carry the same stable,
// source-contribution order as order itself instead of Go's randomized map
// iteration order.

func rebuildByType(order []keyTuple, byKey map[keyTuple]*value.SAO) map[string][]*value.SAO {
	out := map[string][]*value.SAO{}
	seen := map[string]map[*value.SAO]bool{}
	for _, k := range order {
		o, ok := byKey[k]
		if !ok {
			continue
		}
		if seen[k.typ] == nil {
			seen[k.typ] = map[*value.SAO]bool{}
		}
		if seen[k.typ][o] {
			continue
		}
		seen[k.typ][o] = true
		out[k.typ] = append(out[k.typ], o)
	}
	return out
}

func rebuildByID(order []keyTuple, byKey map[keyTuple]*value.SAO) map[string][]*value.SAO {
	out := map[string][]*value.SAO{}
	seen := map[string]map[*value.SAO]bool{}
	for _, k := range order {
		o, ok := byKey[k]
		if !ok {
			continue
		}
		if seen[k.id] == nil {
			seen[k.id] = map[*value.SAO]bool{}
		}
		if seen[k.id][o] {
			continue
		}
		seen[k.id][o] = true
		out[k.id] = append(out[k.id], o)
	}
	return out
}

func rebuildByLogical(order []keyTuple, byKey map[keyTuple]*value.SAO) map[logicalTuple][]*value.SAO {
	out := map[logicalTuple][]*value.SAO{}
	for _, k := range order {
		o, ok := byKey[k]
		if !ok {
			continue
		}
		lt := logicalTuple{typ: k.typ, id: k.id}
		out[lt] = append(out[lt], o)
	}
	return out
}

// Snapshot is a read-locked view handed to query evaluation for its whole
// duration. Release
// must be called exactly once.
type Snapshot struct {
	s    *Store
	snap *snapshot
}

// Acquire takes the store's read lock and returns a Snapshot. Call Release
// when the query finishes evaluating.
func (s *Store) Acquire() *Snapshot {
	s.mu.RLock()
	return &Snapshot{s: s, snap: s.snap}
}

// Release drops the read lock taken by Acquire.
func (sn *Snapshot) Release() { sn.s.mu.RUnlock() }

// All returns every SAO in the store as an ObjectList (the root context
// query evaluation starts from), de-duplicated by identity even though an
// SAO may appear under several types in by_type. Walks order rather than
// ranging over by_type directly: ranging over by_type would still
// randomize the relative order of objects belonging to different types,
// even with each individual by_type list internally ordered.
func (sn *Snapshot) All() *value.ObjectList {
	seen := map[*value.SAO]bool{}
	var items []*value.SAO
	for _, k := range sn.snap.order {
		o, ok := sn.snap.byKey[k]
		if !ok || seen[o] {
			continue
		}
		seen[o] = true
		items = append(items, o)
	}
	return value.NewObjectList(items)
}

// ByType returns the ObjectList for a single declared type, or an empty
// one if the type is unknown. Used by the optimizer's type-index fast path.
func (sn *Snapshot) ByType(t string) *value.ObjectList {
	return value.NewObjectList(append([]*value.SAO(nil), sn.snap.byType[t]...))
}

// ByID returns every SAO (across types and sources) with the given id,
// used by the optimizer's id-index fast path and by bare "#id" queries.
func (sn *Snapshot) ByID(id string) *value.ObjectList {
	return value.NewObjectList(append([]*value.SAO(nil), sn.snap.byID[id]...))
}

// ByLogical returns every SAO sharing the (type,id) pair across sources —
// a cross-source semantic object, or CSAO.
func (sn *Snapshot) ByLogical(t, id string) []*value.SAO {
	return sn.snap.byLogical[logicalTuple{typ: t, id: id}]
}
