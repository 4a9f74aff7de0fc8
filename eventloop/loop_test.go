package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T, config *Config) *Loop {
	l := New(config)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Run()
	}()

	t.Cleanup(func() {
		l.Stop()
		wg.Wait()
	})

	return l
}

func TestQueueRunsCallbacksInOrder(t *testing.T) {
	l := startLoop(t, &Config{})

	var got []interface{}
	for i := 0; i < 5; i++ {
		l.Queue(func(args ...interface{}) {
			got = append(got, args[0])
		}, i)
	}

	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.Equal(t, []interface{}{0, 1, 2, 3, 4}, got)
}

func TestEmitReachesListeners(t *testing.T) {
	l := startLoop(t, &Config{})

	var first, second []interface{}
	l.On("connected", func(args ...interface{}) {
		first = append(first, args...)
	})
	sub := l.On("connected", func(args ...interface{}) {
		second = append(second, args...)
	})
	l.On("disconnected", func(args ...interface{}) {
		t.Error("unexpected disconnected event")
	})

	l.Emit("connected", "a")
	require.NoError(t, l.Do(context.Background(), func() {}))

	sub.Cancel()

	l.Emit("connected", "b")
	require.NoError(t, l.Do(context.Background(), func() {}))

	assert.Equal(t, []interface{}{"a", "b"}, first)
	assert.Equal(t, []interface{}{"a"}, second)
}

func TestQueueDropsWhenFull(t *testing.T) {
	l := New(&Config{QueueSize: 2})

	calls := 0
	cb := func(args ...interface{}) {
		calls++
	}

	l.Queue(cb)
	l.Queue(cb)
	l.Queue(cb)
	l.Emit("connected")

	assert.Equal(t, ErrQueueFull, l.Do(context.Background(), func() {}))

	go l.Run()
	defer l.Stop()

	assert.Eventually(t, func() bool {
		return len(l.tasks) == 0
	}, time.Second, time.Millisecond)
}

func TestDoHonorsContext(t *testing.T) {
	l := New(&Config{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Equal(t, context.DeadlineExceeded, l.Do(ctx, func() {}))
}

func TestDoAfterStop(t *testing.T) {
	l := New(&Config{})
	l.Stop()
	l.Stop()

	assert.Equal(t, ErrStopped, l.Do(context.Background(), func() {}))
}

func TestPanickingTaskKeepsLoopRunning(t *testing.T) {
	l := startLoop(t, &Config{})

	l.Queue(func(args ...interface{}) {
		panic("boom")
	})

	ran := false
	require.NoError(t, l.Do(context.Background(), func() {
		ran = true
	}))
	assert.True(t, ran)
}
