package overwatch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jxo-me/curl-dyndns/core/ddns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	name     string
	hash     string
	started  atomic.Int32
	stopped  atomic.Int32
	stopOnce sync.Once
	stopCh   chan struct{}
}

func newMockService(name, hash string) *mockService {
	return &mockService{name: name, hash: hash, stopCh: make(chan struct{})}
}

func (s *mockService) String() string        { return s.name }
func (s *mockService) Hash() string          { return s.hash }
func (s *mockService) Run()                  {}
func (s *mockService) RunOnce() ddns.Outcome { return ddns.Outcome{} }

func (s *mockService) Start() error {
	s.started.Add(1)
	<-s.stopCh
	return nil
}

func (s *mockService) Stop() error {
	s.stopped.Add(1)
	s.stopOnce.Do(func() { close(s.stopCh) })
	return nil
}

func TestManagerAddAndRemove(t *testing.T) {
	var (
		mu   sync.Mutex
		done []string
	)
	m := NewAppManager(func(name, hash string, err error) {
		mu.Lock()
		defer mu.Unlock()
		done = append(done, name+"@"+hash)
	})

	first := newMockService("home", "a")
	m.Add(first)
	require.Eventually(t, func() bool { return first.started.Load() == 1 }, time.Second, 5*time.Millisecond)

	// same hash: kept
	m.Add(newMockService("home", "a"))
	assert.Equal(t, int32(0), first.stopped.Load())
	require.Len(t, m.Services(), 1)
	assert.Same(t, first, m.Services()[0])

	// new hash: replaced
	second := newMockService("home", "b")
	m.Add(second)
	assert.Equal(t, int32(1), first.stopped.Load())
	require.Eventually(t, func() bool { return second.started.Load() == 1 }, time.Second, 5*time.Millisecond)

	m.Remove("home")
	assert.Equal(t, int32(1), second.stopped.Load())
	assert.Empty(t, m.Services())

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(done) == 2
	}, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"home@a", "home@b"}, done)
}

func TestManagerShutdown(t *testing.T) {
	m := NewAppManager(nil)
	a, b := newMockService("a", "1"), newMockService("b", "1")
	m.Add(a)
	m.Add(b)

	m.Shutdown()

	assert.Equal(t, int32(1), a.stopped.Load())
	assert.Equal(t, int32(1), b.stopped.Load())
	assert.Empty(t, m.Services())
}
