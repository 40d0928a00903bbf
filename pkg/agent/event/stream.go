package event

import (
	"sync"
	"time"
)

// Stream is the ordered progress channel for one agent session. Producers
// emit from the single session flow; exactly one observer drains Events().
// Emission never blocks the producer (the buffer is unbounded, the session
// is short lived) and emitting after Close is a safe no-op.
type Stream struct {
	mu     sync.Mutex
	buf    []Event
	notify chan struct{}
	out    chan Event
	closed bool
}

func NewStream() *Stream {
	s := &Stream{
		notify: make(chan struct{}, 1),
		out:    make(chan Event),
	}
	go s.pump()
	return s
}

// Emit appends an event to the stream in producer order.
func (s *Stream) Emit(ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buf = append(s.buf, ev)
	s.mu.Unlock()

	s.wake()
}

// Events returns the consumer side of the stream. The channel is closed
// after Close once every buffered event has been delivered.
func (s *Stream) Events() <-chan Event {
	return s.out
}

// Close marks the stream finished. Buffered events are still delivered.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.wake()
}

func (s *Stream) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Stream) pump() {
	for {
		s.mu.Lock()
		if len(s.buf) > 0 {
			ev := s.buf[0]
			s.buf = s.buf[1:]
			s.mu.Unlock()
			s.out <- ev
			continue
		}
		if s.closed {
			s.mu.Unlock()
			close(s.out)
			return
		}
		s.mu.Unlock()
		<-s.notify
	}
}
