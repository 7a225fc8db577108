package packet

import "sync"

const subscriberBuffer = 16

type EventEmitter struct {
	subscribers map[chan Packet]struct{}
	mu          sync.Mutex
}

func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		subscribers: make(map[chan Packet]struct{}),
	}
}

func (e *EventEmitter) Subscribe() chan Packet {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Packet, subscriberBuffer)

	if e.subscribers == nil {
		close(ch)

		return ch
	}

	e.subscribers[ch] = struct{}{}

	return ch
}

func (e *EventEmitter) Unsubscribe(ch chan Packet) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.subscribers[ch]; !ok {
		return
	}

	delete(e.subscribers, ch)
	close(ch)
}

// Emit never blocks; a subscriber whose buffer is full misses the packet.
func (e *EventEmitter) Emit(data Packet) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for ch := range e.subscribers {
		select {
		case ch <- data:
		default:
		}
	}
}

func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for ch := range e.subscribers {
		close(ch)
	}

	e.subscribers = nil
}

func (e *EventEmitter) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.subscribers)
}
