// Package cache is the in-memory result store behind the endpoint registry.
// Entries are keyed by operation name plus canonical arguments; for any key at
// most one fetch is in flight and concurrent subscribers share its outcome.
// Mutations invalidate by tag; stale entries refetch lazily on next access.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

type Tag string

type Status int

const (
	StatusUninitialized Status = iota
	StatusPending
	StatusFulfilled
	StatusRejected
)

// Fetch loads the value for an entry. The cache runs it on a context detached
// from the subscriber's: a subscriber tearing down never cancels the call, the
// completed result still lands in the cache.
type Fetch func(ctx context.Context) (any, error)

// Recorder receives cache observability signals.
type Recorder interface {
	RecordCacheHit(op string)
	RecordCacheMiss(op string)
	RecordCacheRefetch(op string)
	RecordCacheInvalidation(tag string)
}

var ErrClosed = errors.New("cache: subscription closed")

type Cache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	retention time.Duration
	metrics   Recorder
}

type entry struct {
	op          string
	tags        []Tag
	status      Status
	data        any
	err         error
	stale       bool
	subscribers int
	done        chan struct{} // non-nil while a fetch is in flight
	evict       *time.Timer
	fetch       Fetch
}

// New creates a cache whose entries linger for retention after the last
// subscriber detaches. The grace period absorbs rapid detach/reattach cycles
// without refetch storms.
func New(retention time.Duration, metrics Recorder) *Cache {
	if metrics == nil {
		metrics = noopRecorder{}
	}

	return &Cache{
		entries:   map[string]*entry{},
		retention: retention,
		metrics:   metrics,
	}
}

// Key builds the canonical cache key for an operation call. Structurally equal
// arguments always serialize to the same key.
func Key(op string, args any) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("cache: unserializable arguments for %s: %w", op, err)
	}

	return op + "(" + string(data) + ")", nil
}

type Subscription struct {
	c      *Cache
	key    string
	closed bool
}

// Subscribe attaches to the entry for key, creating it if needed. A rejected
// entry is marked stale so the new subscriber's first read re-attempts the
// fetch; existing subscribers keep seeing the cached failure until then.
func (c *Cache) Subscribe(op string, key string, tags []Tag, fetch Fetch) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{op: op, tags: tags, fetch: fetch}
		c.entries[key] = e
	} else if e.status == StatusRejected {
		e.stale = true
	}

	e.subscribers++
	if e.evict != nil {
		e.evict.Stop()
		e.evict = nil
	}

	return &Subscription{c: c, key: key}
}

// Get returns the entry's value, fetching if the entry is uninitialized or
// stale and waiting on any in-flight fetch. A cached rejection is returned
// as-is; it is never retried automatically.
func (s *Subscription) Get(ctx context.Context) (any, error) {
	for {
		s.c.mu.Lock()
		if s.closed {
			s.c.mu.Unlock()
			return nil, ErrClosed
		}

		e := s.c.entries[s.key]
		if e == nil {
			s.c.mu.Unlock()
			return nil, ErrClosed
		}

		if e.done != nil {
			ch := e.done
			s.c.mu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ch:
			}
			continue
		}

		switch {
		case e.status == StatusFulfilled && !e.stale:
			data := e.data
			s.c.mu.Unlock()
			s.c.metrics.RecordCacheHit(e.op)
			return data, nil
		case e.status == StatusRejected && !e.stale:
			err := e.err
			s.c.mu.Unlock()
			return nil, err
		}

		if e.status == StatusUninitialized {
			s.c.metrics.RecordCacheMiss(e.op)
		} else {
			s.c.metrics.RecordCacheRefetch(e.op)
		}

		e.status = StatusPending
		e.stale = false
		e.done = make(chan struct{})
		go s.c.run(e, context.WithoutCancel(ctx))
		s.c.mu.Unlock()
	}
}

// Refetch marks the entry stale and reads it again.
func (s *Subscription) Refetch(ctx context.Context) (any, error) {
	s.c.mu.Lock()
	if e := s.c.entries[s.key]; e != nil {
		e.stale = true
	}
	s.c.mu.Unlock()

	return s.Get(ctx)
}

func (s *Subscription) Status() (Status, bool) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	e := s.c.entries[s.key]
	if e == nil {
		return StatusUninitialized, false
	}

	return e.status, e.stale
}

// Close detaches the subscriber. When the last one detaches the entry is
// scheduled for eviction after the retention window; resubscribing within the
// window cancels it.
func (s *Subscription) Close() {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	e := s.c.entries[s.key]
	if e == nil {
		return
	}

	e.subscribers--
	if e.subscribers > 0 {
		return
	}

	key := s.key
	e.evict = time.AfterFunc(s.c.retention, func() {
		s.c.mu.Lock()
		defer s.c.mu.Unlock()

		if cur := s.c.entries[key]; cur == e && cur.subscribers == 0 && cur.done == nil {
			delete(s.c.entries, key)
		}
	})
}

// Invalidate marks every entry whose query declared an overlapping tag as
// stale. Refetching is lazy: nothing happens until the next access.
func (c *Cache) Invalidate(tags ...Tag) {
	if len(tags) == 0 {
		return
	}

	set := map[Tag]struct{}{}
	for _, tag := range tags {
		set[tag] = struct{}{}
		c.metrics.RecordCacheInvalidation(string(tag))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		for _, tag := range e.tags {
			if _, hit := set[tag]; hit {
				e.stale = true
				break
			}
		}
	}
}

// Size reports the number of live entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) run(e *entry, ctx context.Context) {
	data, err := e.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		e.status = StatusRejected
		e.err = err
	} else {
		e.status = StatusFulfilled
		e.data = data
		e.err = nil
	}

	close(e.done)
	e.done = nil
}

type noopRecorder struct{}

func (noopRecorder) RecordCacheHit(string)          {}
func (noopRecorder) RecordCacheMiss(string)         {}
func (noopRecorder) RecordCacheRefetch(string)      {}
func (noopRecorder) RecordCacheInvalidation(string) {}
