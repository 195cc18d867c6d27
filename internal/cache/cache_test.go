package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_StructurallyEqualArgs(t *testing.T) {
	type args struct {
		UserID string `json:"userId"`
		Page   int    `json:"page"`
	}

	a, err := Key("fetchEnrollments", args{UserID: "u1", Page: 2})
	require.NoError(t, err)
	b, err := Key("fetchEnrollments", args{UserID: "u1", Page: 2})
	require.NoError(t, err)
	c, err := Key("fetchEnrollments", args{UserID: "u2", Page: 2})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCache_ConcurrentSubscribersShareOneFetch(t *testing.T) {
	c := New(time.Minute, nil)

	var calls int32
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return "payload", nil
	}

	const n = 10
	subs := make([]*Subscription, n)
	for i := range subs {
		subs[i] = c.Subscribe("op", "op()", nil, fetch)
	}

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(s *Subscription) {
			defer wg.Done()
			v, err := s.Get(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "payload", v)
		}(sub)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_SecondGetIsAHit(t *testing.T) {
	c := New(time.Minute, nil)

	var calls int32
	sub := c.Subscribe("op", "op()", nil, func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return "payload", nil
	})

	_, err := sub.Get(context.Background())
	require.NoError(t, err)
	_, err = sub.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_InvalidationTriggersLazyRefetch(t *testing.T) {
	c := New(time.Minute, nil)

	var calls int32
	sub := c.Subscribe("op", "op()", []Tag{"Enrollments"}, func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&calls, 1), nil
	})

	v, err := sub.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	c.Invalidate("Enrollments")

	// Nothing happens until the next access.
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	status, stale := sub.Status()
	assert.Equal(t, StatusFulfilled, status)
	assert.True(t, stale)

	v, err = sub.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)

	v, err = sub.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}

func TestCache_UnrelatedTagNotInvalidated(t *testing.T) {
	c := New(time.Minute, nil)

	var calls int32
	sub := c.Subscribe("op", "op()", []Tag{"Courses"}, func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&calls, 1), nil
	})

	_, err := sub.Get(context.Background())
	require.NoError(t, err)

	c.Invalidate("Payments")

	_, err = sub.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCache_RejectedIsCachedNotRetried(t *testing.T) {
	c := New(time.Minute, nil)

	boom := errors.New("backend down")
	var calls int32
	fetch := func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, boom
	}

	sub := c.Subscribe("op", "op()", nil, fetch)

	_, err := sub.Get(context.Background())
	assert.ErrorIs(t, err, boom)

	// Same subscriber sees the cached rejection.
	_, err = sub.Get(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A new subscription re-attempts.
	sub2 := c.Subscribe("op", "op()", nil, fetch)
	_, err = sub2.Get(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_ExplicitRefetch(t *testing.T) {
	c := New(time.Minute, nil)

	var calls int32
	sub := c.Subscribe("op", "op()", nil, func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&calls, 1), nil
	})

	v, err := sub.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	v, err = sub.Refetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), v)
}

func TestCache_EvictionAfterRetention(t *testing.T) {
	c := New(10*time.Millisecond, nil)

	sub := c.Subscribe("op", "op()", nil, func(ctx context.Context) (any, error) {
		return "payload", nil
	})
	_, err := sub.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Size())

	sub.Close()

	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCache_ResubscribeCancelsEviction(t *testing.T) {
	c := New(25*time.Millisecond, nil)

	var calls int32
	fetch := func(ctx context.Context) (any, error) {
		return atomic.AddInt32(&calls, 1), nil
	}

	sub := c.Subscribe("op", "op()", nil, fetch)
	_, err := sub.Get(context.Background())
	require.NoError(t, err)
	sub.Close()

	// Reattach within the grace period: no eviction, no refetch storm.
	sub2 := c.Subscribe("op", "op()", nil, fetch)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 1, c.Size())
	v, err := sub2.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)
}

func TestCache_ClosedSubscriptionRejectsReads(t *testing.T) {
	c := New(time.Minute, nil)

	sub := c.Subscribe("op", "op()", nil, func(ctx context.Context) (any, error) {
		return "payload", nil
	})
	sub.Close()

	_, err := sub.Get(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCache_SubscriberTeardownDoesNotCancelFetch(t *testing.T) {
	c := New(time.Minute, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var completed int32

	sub := c.Subscribe("op", "op()", nil, func(ctx context.Context) (any, error) {
		close(started)
		<-release
		// The fetch context must survive the waiter's cancellation.
		assert.NoError(t, ctx.Err())
		atomic.StoreInt32(&completed, 1)
		return "payload", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := sub.Get(ctx)
		done <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)

	// The completed result still lands in the cache.
	assert.Eventually(t, func() bool {
		status, _ := sub.Status()
		return status == StatusFulfilled
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&completed))
}
