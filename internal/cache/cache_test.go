package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration, maxSize int) (*Cache[string], *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	c := New[string](ttl, maxSize, clock)
	t.Cleanup(c.Close)
	return c, clock
}

// compute helper that returns a fixed value and counts invocations.
func counting(value string, calls *int) func() (string, error) {
	return func() (string, error) {
		*calls++
		return value, nil
	}
}

func TestCache_GetOrCompute_TTL(t *testing.T) {
	c, clock := newTestCache(t, 600*time.Second, 10)
	calls := 0

	v, err := c.GetOrCompute("octocat", counting("v1", &calls))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, 1, calls)

	// Just before expiry the cached value is served without recomputing.
	clock.Advance(599 * time.Second)
	v, err = c.GetOrCompute("octocat", counting("v2", &calls))
	require.NoError(t, err)
	assert.Equal(t, "v1", v)
	assert.Equal(t, 1, calls)

	// Past expiry the entry is treated as absent and recomputed.
	clock.Advance(2 * time.Second)
	v, err = c.GetOrCompute("octocat", counting("v2", &calls))
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 2, calls)
}

func TestCache_CapacityEviction_OldestInsertionFirst(t *testing.T) {
	c, clock := newTestCache(t, time.Hour, 2)
	calls := 0

	_, err := c.GetOrCompute("a", counting("va", &calls))
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = c.GetOrCompute("b", counting("vb", &calls))
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = c.GetOrCompute("c", counting("vc", &calls))
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())

	// b and c survive; a was the oldest insertion and must recompute.
	_, err = c.GetOrCompute("b", counting("vb2", &calls))
	require.NoError(t, err)
	_, err = c.GetOrCompute("c", counting("vc2", &calls))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	v, err := c.GetOrCompute("a", counting("va2", &calls))
	require.NoError(t, err)
	assert.Equal(t, "va2", v)
	assert.Equal(t, 4, calls)
}

func TestCache_SingleFlight(t *testing.T) {
	c := New[string](time.Hour, 10, clockwork.NewRealClock())
	defer c.Close()

	var calls int32
	release := make(chan struct{})
	compute := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "shared", nil
	}

	const waiters = 10
	results := make([]string, waiters)
	errs := make([]error, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.GetOrCompute("octocat", compute)
		}()
	}

	// Give every goroutine a chance to join the in-flight computation
	// before it is allowed to finish.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < waiters; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, "shared", results[i])
	}
}

func TestCache_SingleFlight_SharesError(t *testing.T) {
	c := New[string](time.Hour, 10, clockwork.NewRealClock())
	defer c.Close()

	computeErr := errors.New("upstream exploded")
	var calls int32
	release := make(chan struct{})
	compute := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "", computeErr
	}

	const waiters = 5
	errs := make([]error, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.GetOrCompute("ghost", compute)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < waiters; i++ {
		assert.ErrorIs(t, errs[i], computeErr)
	}
	assert.Equal(t, 0, c.Len())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)

	calls := 0
	boom := errors.New("boom")
	_, err := c.GetOrCompute("ghost", func() (string, error) {
		calls++
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	// Immediately retrying must hit compute again.
	v, err := c.GetOrCompute("ghost", counting("ok", &calls))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, c.Len())
}

func TestCache_DistinctKeysDoNotCoalesce(t *testing.T) {
	c, _ := newTestCache(t, time.Hour, 10)
	calls := 0

	_, err := c.GetOrCompute("a", counting("va", &calls))
	require.NoError(t, err)
	_, err = c.GetOrCompute("b", counting("vb", &calls))
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, c.Len())
}
