package engine

import (
	"sync"
	"time"
)

// Clock 驱动一次倒计时。同一时刻最多一个倒计时在跑，
// 重复 Start 会先取消上一个。
type Clock interface {
	Start(seconds int)
	Cancel()
}

// ClockFactory 由会话创建时钟并注册回调。onTick 每秒一次（剩余秒数），
// onExpire 在归零时恰好触发一次；Cancel 之后两者都不再触发。
type ClockFactory func(onTick func(remaining int), onExpire func()) Clock

// tickClock 基于 time.Ticker 的真实时钟。
type tickClock struct {
	mu       sync.Mutex
	gen      int
	stop     chan struct{}
	onTick   func(int)
	onExpire func()
}

func NewTickClock(onTick func(remaining int), onExpire func()) Clock {
	return &tickClock{onTick: onTick, onExpire: onExpire}
}

func (c *tickClock) Start(seconds int) {
	c.mu.Lock()
	c.cancelLocked()
	c.gen++
	gen := c.gen
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	if seconds <= 0 {
		// 零秒倒计时立即过期；异步触发，调用方可能还持有自己的锁
		go func() {
			if c.alive(gen) {
				c.onExpire()
			}
		}()
		return
	}
	go c.run(gen, seconds, stop)
}

func (c *tickClock) Cancel() {
	c.mu.Lock()
	c.cancelLocked()
	c.mu.Unlock()
}

func (c *tickClock) cancelLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.gen++
}

func (c *tickClock) alive(gen int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

func (c *tickClock) run(gen, seconds int, stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := seconds
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining--
			// 回调前再确认一次代次，避免 Cancel/Start 竞态下的迟到 tick
			if !c.alive(gen) {
				return
			}
			if remaining > 0 {
				c.onTick(remaining)
				continue
			}
			c.onTick(0)
			c.onExpire()
			return
		}
	}
}
