package event

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamDeliversInOrder(t *testing.T) {
	s := NewStream()

	const n = 100
	for i := 0; i < n; i++ {
		s.Emit(Event{Type: TypeReasoning, Content: fmt.Sprintf("step-%d", i)})
	}
	s.Close()

	var got []Event
	for ev := range s.Events() {
		got = append(got, ev)
	}

	require.Len(t, got, n)
	for i, ev := range got {
		require.Equal(t, fmt.Sprintf("step-%d", i), ev.Content, "event %d out of order", i)
	}
}

func TestStreamEmitNeverBlocksWithoutConsumer(t *testing.T) {
	s := NewStream()
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			s.Emit(Event{Type: TypeDecision, Decision: "tool"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked without a consumer")
	}
	s.Close()
}

func TestStreamCloseDrainsBuffered(t *testing.T) {
	s := NewStream()
	s.Emit(Event{Type: TypeDecisionStart})
	s.Emit(Event{Type: TypeDecision, Decision: "finish"})
	s.Close()

	count := 0
	for range s.Events() {
		count++
	}
	assert.Equal(t, 2, count, "buffered events drain after close")
}

func TestStreamEmitAfterCloseIsNoop(t *testing.T) {
	s := NewStream()
	s.Close()
	s.Emit(Event{Type: TypeFlowComplete})

	count := 0
	for range s.Events() {
		count++
	}
	assert.Zero(t, count, "events emitted after close must be dropped")
}

func TestStreamStampsOccurredAt(t *testing.T) {
	s := NewStream()
	s.Emit(Event{Type: TypeFinishStart})
	s.Close()

	ev, ok := <-s.Events()
	require.True(t, ok, "no event delivered")
	assert.False(t, ev.OccurredAt.IsZero(), "OccurredAt was not stamped")
}
