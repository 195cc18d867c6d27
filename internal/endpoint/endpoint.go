// Package endpoint declares the typed request/response contract for every
// backend operation. Queries subscribe through the client cache and share one
// entry (and one in-flight request) per operation+arguments; mutations bypass
// the cache, run an optional completion hook and invalidate declared tags on
// success.
package endpoint

import (
	"context"
	"fmt"

	"learnhub-web/internal/api"
	"learnhub-web/internal/cache"
	"learnhub-web/internal/session"
)

// Registry bundles the transport, the cache and the session store that
// completion hooks mutate.
type Registry struct {
	client  *api.Client
	cache   *cache.Cache
	session *session.Store
}

func NewRegistry(client *api.Client, c *cache.Cache, sess *session.Store) *Registry {
	return &Registry{client: client, cache: c, session: sess}
}

func (r *Registry) Session() *session.Store { return r.session }

func (r *Registry) Invalidate(tags ...cache.Tag) { r.cache.Invalidate(tags...) }

// Query is an idempotent, cacheable read. Request builds the wire request from
// the arguments; a malformed call fails fast before anything is subscribed.
type Query[A any, R any] struct {
	Name    string
	Tags    []cache.Tag
	Request func(args A) (api.Request, error)
}

// Subscribe attaches a typed handle to the cache entry for args. The caller
// must Close the handle on teardown.
func (q Query[A, R]) Subscribe(reg *Registry, args A) (*QueryHandle[R], error) {
	req, err := q.Request(args)
	if err != nil {
		return nil, err
	}

	key, err := cache.Key(q.Name, args)
	if err != nil {
		return nil, err
	}

	sub := reg.cache.Subscribe(q.Name, key, q.Tags, func(ctx context.Context) (any, error) {
		res, err := reg.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}

		var out R
		if err := res.Decode(&out); err != nil {
			return nil, fmt.Errorf("%s: decoding response: %w", q.Name, err)
		}
		return out, nil
	})

	return &QueryHandle[R]{sub: sub}, nil
}

type QueryHandle[R any] struct {
	sub *cache.Subscription
}

func (h *QueryHandle[R]) Get(ctx context.Context) (R, error) {
	return typed[R](h.sub.Get(ctx))
}

func (h *QueryHandle[R]) Refetch(ctx context.Context) (R, error) {
	return typed[R](h.sub.Refetch(ctx))
}

func (h *QueryHandle[R]) Status() (cache.Status, bool) { return h.sub.Status() }

func (h *QueryHandle[R]) Close() { h.sub.Close() }

func typed[R any](v any, err error) (R, error) {
	var out R
	if err != nil {
		return out, err
	}

	out, ok := v.(R)
	if !ok {
		return out, fmt.Errorf("cache entry holds %T, want %T", v, out)
	}
	return out, nil
}

// Mutation is a non-cached write. OnCompleted always runs after the call,
// success or not, before tags are invalidated; invalidation only happens on
// success.
type Mutation[A any, R any] struct {
	Name        string
	Invalidates []cache.Tag
	Request     func(args A) (api.Request, error)
	OnCompleted func(reg *Registry, args A, res R, err error)
}

func (m Mutation[A, R]) Call(ctx context.Context, reg *Registry, args A) (R, error) {
	var out R

	req, err := m.Request(args)
	if err != nil {
		return out, err
	}

	res, err := reg.client.Do(ctx, req)
	if err == nil {
		if decodeErr := res.Decode(&out); decodeErr != nil {
			err = fmt.Errorf("%s: decoding response: %w", m.Name, decodeErr)
		}
	}

	if m.OnCompleted != nil {
		m.OnCompleted(reg, args, out, err)
	}

	if err != nil {
		return out, err
	}

	reg.cache.Invalidate(m.Invalidates...)
	return out, nil
}
