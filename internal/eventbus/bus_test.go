package eventbus

import (
	"context"
	"errors"
	"testing"
)

type testEvent struct {
	typ string
}

func (e testEvent) EventType() string { return e.typ }

func TestPublishInvokesHandlersInOrder(t *testing.T) {
	bus := New()
	var got []string

	bus.Subscribe("a", func(ctx context.Context, evt Event) error {
		got = append(got, "first")
		return nil
	})
	bus.Subscribe("a", func(ctx context.Context, evt Event) error {
		got = append(got, "second")
		return nil
	})
	bus.Subscribe("b", func(ctx context.Context, evt Event) error {
		got = append(got, "other")
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent{typ: "a"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("处理顺序错误: %v", got)
	}
}

func TestPublishStopsOnFirstError(t *testing.T) {
	bus := New()
	boom := errors.New("boom")
	var secondCalled bool

	bus.Subscribe("a", func(ctx context.Context, evt Event) error { return boom })
	bus.Subscribe("a", func(ctx context.Context, evt Event) error {
		secondCalled = true
		return nil
	})

	err := bus.Publish(context.Background(), testEvent{typ: "a"})
	if !errors.Is(err, boom) {
		t.Fatalf("应向发布方传播处理错误，实际 %v", err)
	}
	if secondCalled {
		t.Error("出错后不应继续执行后续处理函数")
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	bus := New()
	if err := bus.Publish(context.Background(), testEvent{typ: "nobody"}); err != nil {
		t.Fatalf("无订阅者时 Publish 应为无操作: %v", err)
	}
}

func TestNestedPublish(t *testing.T) {
	bus := New()
	var got []string

	bus.Subscribe("outer", func(ctx context.Context, evt Event) error {
		got = append(got, "outer")
		return bus.Publish(ctx, testEvent{typ: "inner"})
	})
	bus.Subscribe("inner", func(ctx context.Context, evt Event) error {
		got = append(got, "inner")
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent{typ: "outer"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 2 || got[1] != "inner" {
		t.Errorf("嵌套发布应在返回前完成: %v", got)
	}
}
