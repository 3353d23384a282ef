package registry_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/c360studio/pageforge/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closer struct {
	name   string
	err    error
	closed atomic.Int32
	log    *[]string
	logMu  *sync.Mutex
}

func (c *closer) Close(_ context.Context) error {
	c.closed.Add(1)
	if c.log != nil {
		c.logMu.Lock()
		*c.log = append(*c.log, c.name)
		c.logMu.Unlock()
	}
	return c.err
}

func TestRegistry_ResolveInstance(t *testing.T) {
	r := registry.New()
	r.RegisterInstance("answer", 42)

	v, err := r.Resolve(context.Background(), "answer")
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRegistry_ResolveUnknownKey(t *testing.T) {
	r := registry.New()

	_, err := r.Resolve(context.Background(), "missing")
	require.Error(t, err)

	var rerr *registry.ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "missing", rerr.Key)
}

func TestRegistry_FactoryMemoized(t *testing.T) {
	r := registry.New()

	var constructed atomic.Int32
	r.RegisterFactory("service", func(_ context.Context) (any, error) {
		constructed.Add(1)
		return &closer{name: "service"}, nil
	})

	a, err := r.Resolve(context.Background(), "service")
	require.NoError(t, err)
	b, err := r.Resolve(context.Background(), "service")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), constructed.Load())
}

func TestRegistry_FactoryMemoizedUnderConcurrency(t *testing.T) {
	r := registry.New()

	var constructed atomic.Int32
	r.RegisterFactory("shared", func(_ context.Context) (any, error) {
		constructed.Add(1)
		return &closer{name: "shared"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "shared")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), constructed.Load())
}

func TestRegistry_FailedFactoryIsRetried(t *testing.T) {
	r := registry.New()

	calls := 0
	r.RegisterFactory("flaky", func(_ context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("not ready")
		}
		return "ready", nil
	})

	_, err := r.Resolve(context.Background(), "flaky")
	require.Error(t, err)

	v, err := r.Resolve(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, "ready", v)
}

func TestRegistry_FactoryMayResolveDependencies(t *testing.T) {
	r := registry.New()
	r.RegisterInstance("dep", "lower")
	r.RegisterFactory("upper", func(ctx context.Context) (any, error) {
		dep, err := r.Resolve(ctx, "dep")
		if err != nil {
			return nil, err
		}
		return "wraps:" + dep.(string), nil
	})

	v, err := r.Resolve(context.Background(), "upper")
	require.NoError(t, err)
	assert.Equal(t, "wraps:lower", v)
}

func TestRegistry_DisposeReverseOrder(t *testing.T) {
	r := registry.New()

	var log []string
	var mu sync.Mutex
	first := &closer{name: "first", log: &log, logMu: &mu}
	second := &closer{name: "second", log: &log, logMu: &mu}

	r.RegisterInstance("first", first)
	r.RegisterInstance("second", second)

	require.NoError(t, r.Dispose(context.Background()))
	assert.Equal(t, []string{"second", "first"}, log)
}

func TestRegistry_DisposeSkipsUnresolved(t *testing.T) {
	r := registry.New()

	var constructed atomic.Int32
	r.RegisterFactory("lazy", func(_ context.Context) (any, error) {
		constructed.Add(1)
		return &closer{name: "lazy"}, nil
	})

	require.NoError(t, r.Dispose(context.Background()))
	assert.Equal(t, int32(0), constructed.Load(), "dispose must not construct unresolved factories")
}

func TestRegistry_DisposeCollectsFailures(t *testing.T) {
	r := registry.New()

	failing := &closer{name: "failing", err: errors.New("release failed")}
	healthy := &closer{name: "healthy"}

	r.RegisterInstance("healthy", healthy)
	r.RegisterInstance("failing", failing)

	err := r.Dispose(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "release failed")

	// The failing release must not abort the remaining ones.
	assert.Equal(t, int32(1), healthy.closed.Load())
	assert.Equal(t, int32(1), failing.closed.Load())
}

func TestRegistry_DisposeIdempotent(t *testing.T) {
	r := registry.New()
	c := &closer{name: "c"}
	r.RegisterInstance("c", c)

	require.NoError(t, r.Dispose(context.Background()))
	require.NoError(t, r.Dispose(context.Background()))
	assert.Equal(t, int32(1), c.closed.Load())
}
