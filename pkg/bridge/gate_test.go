package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateOpensOnceBothSidesReady(t *testing.T) {
	g := NewGate()
	assert.False(t, g.MarkUSB())
	assert.True(t, g.USBReady())

	select {
	case <-g.Ready():
		t.Fatal("gate opened with one side ready")
	default:
	}

	assert.True(t, g.MarkNetwork())
	assert.False(t, g.MarkNetwork())
	require.NoError(t, g.Wait(context.Background()))
}

func TestGateConcurrentMarksOpenExactlyOnce(t *testing.T) {
	for i := 0; i < 100; i++ {
		g := NewGate()
		var wg sync.WaitGroup
		opened := make(chan bool, 2)
		wg.Add(2)
		go func() { defer wg.Done(); opened <- g.MarkUSB() }()
		go func() { defer wg.Done(); opened <- g.MarkNetwork() }()
		wg.Wait()
		close(opened)

		count := 0
		for v := range opened {
			if v {
				count++
			}
		}
		require.Equal(t, 1, count)
	}
}

func TestGateWaitCancelled(t *testing.T) {
	g := NewGate()
	g.MarkUSB()

	ctx, cancel := context.WithCancelCause(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel(ErrCancelled)
	}()

	start := time.Now()
	err := g.Wait(ctx)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGateWakesWaitersImmediately(t *testing.T) {
	g := NewGate()
	done := make(chan error, 1)
	go func() { done <- g.Wait(context.Background()) }()

	g.MarkNetwork()
	time.Sleep(10 * time.Millisecond)
	g.MarkUSB()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}
}
