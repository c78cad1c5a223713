package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryTake_Empty(t *testing.T) {
	m := New[int]()
	_, ok := m.TryTake()
	assert.False(t, ok)
	assert.False(t, m.Pending())
}

func TestPut_LatestWins(t *testing.T) {
	m := New[string]()
	m.Put("first")
	m.Put("second")
	assert.True(t, m.Pending())

	v, ok := m.TryTake()
	require.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = m.TryTake()
	assert.False(t, ok, "slot is cleared after a take")
}

func TestPut_ConcurrentWriters(t *testing.T) {
	m := New[int]()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Put(i)
		}()
	}
	wg.Wait()

	v, ok := m.TryTake()
	require.True(t, ok)
	assert.GreaterOrEqual(t, v, 1)
	assert.LessOrEqual(t, v, 50)
	assert.False(t, m.Pending())
}
