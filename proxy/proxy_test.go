package proxy_test

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/svctable/di"
	"github.com/sghaida/svctable/proxy"
)

//
// -----------------------------------------------------------------------------
// Factory
// -----------------------------------------------------------------------------

// TestFactory_Names verifies generated proxy names.
func TestFactory_Names(t *testing.T) {
	t.Parallel()

	var f proxy.Factory
	repo := di.Define("Repository", 1, di.AsInterface())
	sql := di.Define("SqlRepository", 1)
	user := di.Named("User")

	got, err := f.CreateInterfaceProxyType(repo.Of(user), sql.Of(user))
	require.NoError(t, err)
	assert.Equal(t, "InterfaceProxy<Repository[User],SqlRepository[User]>", got.String())

	got, err = f.CreateClassProxyType(di.Named("Clock"), di.Named("SystemClock"))
	require.NoError(t, err)
	assert.Equal(t, di.Named("ClassProxy<SystemClock>"), got)
	assert.False(t, got.IsInterface())
}

// TestFactory_Rejections verifies invalid proxy requests.
func TestFactory_Rejections(t *testing.T) {
	t.Parallel()

	var f proxy.Factory
	_, err := f.CreateClassProxyType(di.Named("Clock"), di.NamedInterface("AbstractClock"))
	assert.ErrorIs(t, err, proxy.ErrInterfaceImplementation)

	_, err = f.CreateInterfaceProxyType(di.Type{}, di.Named("SystemClock"))
	assert.ErrorIs(t, err, di.ErrNilType)
}

//
// -----------------------------------------------------------------------------
// Memo
// -----------------------------------------------------------------------------

type countingFactory struct {
	calls atomic.Int32
	next  proxy.Factory
	err   error
}

func (c *countingFactory) CreateClassProxyType(contract, impl di.Type) (di.Type, error) {
	c.calls.Add(1)
	if c.err != nil {
		return di.Type{}, c.err
	}
	return c.next.CreateClassProxyType(contract, impl)
}

func (c *countingFactory) CreateInterfaceProxyType(contract, impl di.Type) (di.Type, error) {
	c.calls.Add(1)
	if c.err != nil {
		return di.Type{}, c.err
	}
	return c.next.CreateInterfaceProxyType(contract, impl)
}

// TestMemoize_Preconditions verifies Memoize argument checks.
func TestMemoize_Preconditions(t *testing.T) {
	t.Parallel()

	_, err := proxy.Memoize(nil, 8)
	assert.ErrorIs(t, err, proxy.ErrNilFactory)

	_, err = proxy.Memoize(proxy.Factory{}, 0)
	assert.Error(t, err, "lru rejects a non-positive size")
}

// TestMemo_CachesPerKindAndPair verifies that each proxy kind and type pair is generated once.
func TestMemo_CachesPerKindAndPair(t *testing.T) {
	t.Parallel()

	inner := &countingFactory{}
	m, err := proxy.Memoize(inner, 8)
	require.NoError(t, err)

	contract, impl := di.Named("Clock"), di.Named("SystemClock")

	a, err := m.CreateClassProxyType(contract, impl)
	require.NoError(t, err)
	b, err := m.CreateClassProxyType(contract, impl)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, int32(1), inner.calls.Load())

	_, err = m.CreateInterfaceProxyType(contract, impl)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load(), "interface proxies are cached separately")
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, int64(2), m.Calls())
}

// TestMemo_ErrorsNotCached verifies that failed generations are retried.
func TestMemo_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	inner := &countingFactory{err: assert.AnError}
	m, err := proxy.Memoize(inner, 8)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = m.CreateClassProxyType(di.Named("Clock"), di.Named("SystemClock"))
		assert.ErrorIs(t, err, assert.AnError)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Zero(t, m.Len())
}

// TestMemo_ConcurrentCallersShareOneGeneration verifies that concurrent callers share one generation.
func TestMemo_ConcurrentCallersShareOneGeneration(t *testing.T) {
	t.Parallel()

	inner := &countingFactory{}
	m, err := proxy.Memoize(inner, 8)
	require.NoError(t, err)

	contract := di.NamedInterface("Mailer")
	impl := di.Named("SmtpMailer")
	workers := runtime.GOMAXPROCS(0) * 4

	results := make([]di.Type, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			got, err := m.CreateInterfaceProxyType(contract, impl)
			if err != nil {
				t.Errorf("worker %d: %v", w, err)
				return
			}
			results[w] = got
		}(w)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, results[0], got)
	}
	assert.Equal(t, int32(1), inner.calls.Load())
}

// TestMemo_WithTable verifies a memo shared by two tables.
func TestMemo_WithTable(t *testing.T) {
	t.Parallel()

	inner := &countingFactory{}
	m, err := proxy.Memoize(inner, 16)
	require.NoError(t, err)

	repo := di.Define("Repository", 1, di.AsInterface())
	sql := di.Define("SqlRepository", 1)
	accept := di.ValidatorFunc(func(d *di.Descriptor) (di.Type, bool, error) {
		return d.ImplementationType(), true, nil
	})

	// Two tables sharing the memo generate each proxy type once.
	for i := 0; i < 2; i++ {
		table := di.New(di.WithInterception(accept, m))
		require.NoError(t, table.Populate([]*di.Descriptor{
			di.NewType(repo.Open(), sql.Open(), di.Transient),
		}))
		d, ok, err := table.TryGetService(repo.Of(di.Named("User")))
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "InterfaceProxy<Repository[User],SqlRepository[User]>", d.ProxyType().String())
	}
	assert.Equal(t, int32(1), inner.calls.Load())
}
