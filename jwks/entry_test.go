package jwks

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry(t *testing.T) {
	ttl := 5 * time.Minute
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty slot misses", func(t *testing.T) {
		var e entry[string]
		_, ok := e.load(t0, ttl)
		assert.False(t, ok)
	})

	t.Run("fresh until ttl elapses", func(t *testing.T) {
		var e entry[string]
		e.store("v1", t0)

		v, ok := e.load(t0, ttl)
		assert.True(t, ok)
		assert.Equal(t, "v1", v)

		_, ok = e.load(t0.Add(ttl-time.Nanosecond), ttl)
		assert.True(t, ok)

		_, ok = e.load(t0.Add(ttl), ttl)
		assert.False(t, ok, "an entry exactly ttl old is stale")
	})

	t.Run("store replaces value and timestamp together", func(t *testing.T) {
		var e entry[string]
		e.store("v1", t0)
		e.store("v2", t0.Add(ttl))

		v, ok := e.load(t0.Add(ttl+time.Minute), ttl)
		assert.True(t, ok)
		assert.Equal(t, "v2", v)
	})

	t.Run("concurrent readers and writers", func(t *testing.T) {
		type pair struct{ a, b int }
		var e entry[pair]

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				e.store(pair{i, i}, time.Now())
			}(i)
			go func() {
				defer wg.Done()
				if v, ok := e.load(time.Now(), ttl); ok {
					assert.Equal(t, v.a, v.b)
				}
			}()
		}
		wg.Wait()
	})
}
