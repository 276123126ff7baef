package processor

import (
	"context"
	"testing"
	"time"

	"eco/internal/testutil"
)

func TestAcquireReleaseCycle(t *testing.T) {
	p := New()
	defer p.Shutdown(time.Second)

	testutil.NoError(t, p.TryAcquire())
	testutil.True(t, p.Busy(), "busy after acquire")
	testutil.ErrorIs(t, p.TryAcquire(), ErrBusy)

	p.Release()
	testutil.True(t, !p.Busy(), "idle after release")
	testutil.NoError(t, p.TryAcquire())
	p.Release()
}

func TestSubmitRunsTask(t *testing.T) {
	p := New()
	defer p.Shutdown(time.Second)

	ran := make(chan string, 1)
	testutil.NoError(t, p.TryAcquire())
	testutil.NoError(t, p.Submit(Task{RunID: "run-1", Run: func(ctx context.Context) {
		ran <- "run-1"
	}}))

	select {
	case got := <-ran:
		if got != "run-1" {
			t.Errorf("got %q; want run-1", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	// The worker clears the slot once the task returns
	deadline := time.Now().Add(2 * time.Second)
	for p.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("processor stayed busy after task finished")
		}
		time.Sleep(5 * time.Millisecond)
	}
	testutil.NoError(t, p.TryAcquire())
	p.Release()
}

func TestShutdownCancelsTask(t *testing.T) {
	p := New()

	started := make(chan struct{})
	stopped := make(chan struct{})
	testutil.NoError(t, p.TryAcquire())
	testutil.NoError(t, p.Submit(Task{RunID: "run-2", Run: func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		close(stopped)
	}}))

	<-started
	testutil.NoError(t, p.Shutdown(2*time.Second))

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("task context was never cancelled")
	}
}

func TestShutdownTimeout(t *testing.T) {
	p := New()

	started := make(chan struct{})
	block := make(chan struct{})
	defer close(block)

	testutil.NoError(t, p.TryAcquire())
	testutil.NoError(t, p.Submit(Task{RunID: "run-3", Run: func(ctx context.Context) {
		close(started)
		<-block
	}}))

	<-started
	err := p.Shutdown(50 * time.Millisecond)
	testutil.Error(t, err)
	testutil.Contains(t, err.Error(), "timeout")
}
