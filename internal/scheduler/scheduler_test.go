package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
)

func cats(keys ...string) []issuance.Category {
	out := make([]issuance.Category, 0, len(keys))
	for _, k := range keys {
		out = append(out, issuance.Category{Key: k})
	}
	return out
}

func TestTickSkipsCategoryStillInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	job := func(_ context.Context, _ issuance.Category) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}

	s := New(time.Hour, cats("ra"), job, zap.NewNop())
	ctx := context.Background()

	require.Equal(t, 1, s.tick(ctx))
	<-started

	// The first run is still blocked, so the next tick must skip it.
	require.Equal(t, 0, s.tick(ctx))

	close(release)
	s.wg.Wait()

	require.Equal(t, 1, s.tick(ctx))
	s.wg.Wait()
}

func TestTickRunsEveryCategory(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	ran := make(map[string]int)

	job := func(_ context.Context, cat issuance.Category) error {
		mu.Lock()
		defer mu.Unlock()
		ran[cat.Key]++
		return nil
	}

	s := New(time.Hour, cats("ra", "pd", "lo", "jc"), job, zap.NewNop())
	require.Equal(t, 4, s.tick(context.Background()))
	s.wg.Wait()

	require.Equal(t, map[string]int{"ra": 1, "pd": 1, "lo": 1, "jc": 1}, ran)
}

func TestRunFiresImmediatelyAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	firstRun := make(chan struct{})
	var once sync.Once

	job := func(_ context.Context, _ issuance.Category) error {
		runs.Add(1)
		once.Do(func() { close(firstRun) })
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(time.Hour, cats("ra"), job, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-firstRun:
	case <-time.After(2 * time.Second):
		t.Fatal("first tick did not fire immediately")
	}

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	require.GreaterOrEqual(t, runs.Load(), int64(1))
}

func TestRunWaitsForInFlightRunsOnShutdown(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	var finished atomic.Bool

	job := func(_ context.Context, _ issuance.Category) error {
		close(started)
		<-release
		finished.Store(true)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := New(time.Hour, cats("ra"), job, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	<-started
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a job was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the job finished")
	}
	require.True(t, finished.Load())
}
