package event

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// Bus is a double-buffered event bus. Events emitted before the dispatch
// phase are delivered in the same tick, later ones in the next tick.
// SwapBuffers() is called by the dispatch system.
// Emit is not synchronised: only the game loop goroutine emits, never a
// partition worker.
type Bus struct {
	mu       sync.Mutex // only protects handler registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
		log:      log,
	}
}

// Emit queues an event into the back buffer until the next swap.
// A nil bus drops the event.
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once per tick before DispatchAll.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// Pending returns the number of events waiting in the back buffer.
func (b *Bus) Pending() int {
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
// A panicking handler is logged and skipped.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	handlers := make(map[reflect.Type][]any, len(b.handlers))
	for t, hs := range b.handlers {
		handlers[t] = hs
	}
	b.mu.Unlock()

	for t, events := range b.front {
		for _, ev := range events {
			for _, h := range handlers[t] {
				b.callHandler(t, h, ev)
			}
		}
	}
}

func (b *Bus) callHandler(t reflect.Type, handler any, event any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("事件處理 panic 已恢復",
				zap.String("event", t.String()),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
