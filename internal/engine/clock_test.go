package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickClockCountsDownAndExpiresOnce(t *testing.T) {
	ticks := make(chan int, 8)
	var expired int32
	c := NewTickClock(
		func(r int) { ticks <- r },
		func() { atomic.AddInt32(&expired, 1) },
	)

	c.Start(2)

	var got []int
	deadline := time.After(4 * time.Second)
	for len(got) < 2 {
		select {
		case r := <-ticks:
			got = append(got, r)
		case <-deadline:
			t.Fatal("clock did not tick in time")
		}
	}
	require.Equal(t, []int{1, 0}, got)

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&expired) == 1
	}, time.Second, 10*time.Millisecond)

	// 过期后不再触发
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))
}

func TestTickClockCancelStopsCallbacks(t *testing.T) {
	var ticked, expired int32
	c := NewTickClock(
		func(int) { atomic.AddInt32(&ticked, 1) },
		func() { atomic.AddInt32(&expired, 1) },
	)

	c.Start(1)
	c.Cancel()
	time.Sleep(1500 * time.Millisecond)

	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))
	assert.Equal(t, int32(0), atomic.LoadInt32(&ticked))
}

func TestTickClockRestartCancelsPrevious(t *testing.T) {
	var expired int32
	c := NewTickClock(func(int) {}, func() { atomic.AddInt32(&expired, 1) })

	c.Start(10)
	c.Start(1) // 隐式取消上一个

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&expired) == 1
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expired))
}

func TestTickClockZeroSecondsExpiresImmediately(t *testing.T) {
	var expired int32
	c := NewTickClock(func(int) {}, func() { atomic.AddInt32(&expired, 1) })

	c.Start(0)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&expired) == 1
	}, time.Second, 5*time.Millisecond)
}
