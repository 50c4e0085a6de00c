package async

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	q := NewQueue(nil, WithWorkers(4))
	jobs := []int{50, 10, 40, 0, 30, 20}

	out := Map(context.Background(), q, jobs, func(_ context.Context, i int, ms int) int {
		// later jobs finish first
		time.Sleep(time.Duration(ms) * time.Millisecond)
		return i*100 + ms
	})

	require.Len(t, out, len(jobs))
	for i, ms := range jobs {
		assert.Equal(t, i*100+ms, out[i])
	}
}

func TestMap_BoundedConcurrency(t *testing.T) {
	q := NewQueue(nil, WithWorkers(2))
	var running, peak int32

	Map(context.Background(), q, make([]struct{}, 8), func(context.Context, int, struct{}) bool {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return true
	})
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestMap_ProcessTimeout(t *testing.T) {
	q := NewQueue(nil, WithWorkers(1), WithProcessTimeout(10*time.Millisecond))
	out := Map(context.Background(), q, []int{1}, func(ctx context.Context, _ int, _ int) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, out[0], context.DeadlineExceeded)
}

func TestMap_Empty(t *testing.T) {
	out := Map(context.Background(), NewQueue(nil), []string{}, func(context.Context, int, string) int { return 1 })
	assert.Empty(t, out)
}

func TestNewQueue_IgnoresNonPositive(t *testing.T) {
	q := NewQueue(nil, WithWorkers(0), WithProcessTimeout(-time.Second))
	assert.Equal(t, 4, q.Workers())
}
