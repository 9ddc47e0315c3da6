package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_ProcessesEnqueuedEvents(t *testing.T) {
	t.Parallel()

	v := testVault(t)
	install(t, v, "T1", "B1")
	poster := &fakePoster{}
	d := NewDispatcher(NewRouter(v, poster, nil), 16, 2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	for i := 0; i < 3; i++ {
		ok := d.Enqueue(ctx, &Envelope{
			TeamID: "T1",
			Event:  Event{Type: EventAppMention, Channel: "C1"},
		})
		require.True(t, ok)
	}

	require.Eventually(t, func() bool {
		return len(poster.posted()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestDispatcher_EnqueueDropsWhenFull(t *testing.T) {
	t.Parallel()

	v := testVault(t)
	poster := &fakePoster{}
	// No se arranca Run: la cola de tamaño 1 se llena con el primer evento.
	d := NewDispatcher(NewRouter(v, poster, nil), 1, 1)

	ctx := context.Background()
	env := &Envelope{TeamID: "T1", Event: Event{Type: EventAppMention}}
	require.True(t, d.Enqueue(ctx, env))
	require.False(t, d.Enqueue(ctx, env))
}

func TestDispatcher_DefaultsApplied(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil, 0, 0)
	require.Equal(t, defaultQueueSize, cap(d.queue))
	require.Equal(t, defaultWorkers, d.workers)
}
