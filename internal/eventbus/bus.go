package eventbus

import (
	"context"
	"fmt"
	"sync"
)

// Event 领域事件，按类型字符串路由
type Event interface {
	EventType() string
}

// Handler 同步事件处理函数
type Handler func(ctx context.Context, evt Event) error

// Bus 进程内同步事件总线
// 订阅在组装期静态声明；Publish 按订阅顺序依次执行全部处理函数，
// 返回前级联已完全落定，任一处理函数出错即中断并向发布方传播。
// 总线实例由组装方持有并注入，不做全局单例。
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New 创建事件总线
func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe 注册处理函数，同一类型按注册顺序执行
func (b *Bus) Subscribe(eventType string, h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
	b.mu.Unlock()
}

// Publish 同步派发事件
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	if b == nil || evt == nil {
		return nil
	}

	b.mu.RLock()
	hs := b.handlers[evt.EventType()]
	b.mu.RUnlock()

	for _, h := range hs {
		if err := h(ctx, evt); err != nil {
			return fmt.Errorf("事件 %s 处理失败: %w", evt.EventType(), err)
		}
	}
	return nil
}
