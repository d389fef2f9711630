package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type mockSessionDeleter struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)
	callCount       int
}

func (m *mockSessionDeleter) DeleteExpired(ctx context.Context) (int64, error) {
	m.callCount++
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupJob_Run_DeletesExpiredSessions(t *testing.T) {
	deleter := &mockSessionDeleter{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 5, nil
		},
	}
	job := NewCleanupJob(deleter, discardLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if deleter.callCount != 1 {
		t.Errorf("call count = %d, want 1", deleter.callCount)
	}
}

func TestCleanupJob_Run_NothingToDelete_Succeeds(t *testing.T) {
	deleter := &mockSessionDeleter{}
	job := NewCleanupJob(deleter, discardLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestCleanupJob_Run_PropagatesError(t *testing.T) {
	deleter := &mockSessionDeleter{
		deleteExpiredFn: func(ctx context.Context) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	job := NewCleanupJob(deleter, discardLogger())

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCleanupJob_Start_StopsOnContextCancel(t *testing.T) {
	deleter := &mockSessionDeleter{}
	job := NewCleanupJob(deleter, discardLogger())
	job.Interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	// 数回実行されるのを待ってからキャンセル
	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not stop after context cancel")
	}

	if deleter.callCount < 2 {
		t.Errorf("call count = %d, want at least 2", deleter.callCount)
	}
}
