package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"notlikethat/internal/observability"
	contextutils "notlikethat/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockHandler struct {
	mock.Mock
}

func (m *mockHandler) Refresh(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockHandler) Tick(ctx context.Context, now time.Time) {
	m.Called(ctx, now)
}

func startWorker(t *testing.T, w *Worker) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()
	return cancel, done
}

func stopWorker(t *testing.T, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_StartupAndManualRefresh(t *testing.T) {
	handler := &mockHandler{}
	handler.On("Refresh", mock.Anything).Return("item 3", nil)
	handler.On("Tick", mock.Anything, mock.Anything).Maybe()

	w, err := NewWorker(handler, Config{TickInterval: 10 * time.Millisecond}, observability.NewNopLogger())
	require.NoError(t, err)

	cancel, done := startWorker(t, w)

	assert.Eventually(t, func() bool { return w.GetStatus().Runs == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, w.GetStatus().IsRunning)

	w.TriggerManualRun()
	assert.Eventually(t, func() bool { return w.GetStatus().Runs == 2 }, 2*time.Second, 5*time.Millisecond)

	stopWorker(t, cancel, done)
	assert.False(t, w.GetStatus().IsRunning)

	history := w.GetHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "startup", history[0].Trigger)
	assert.Equal(t, "manual", history[1].Trigger)
	assert.Equal(t, "Success", history[1].Status)
	assert.Equal(t, "item 3", history[1].Details)

	handler.AssertCalled(t, "Tick", mock.Anything, mock.Anything)
}

func TestWorker_ScheduledRefresh(t *testing.T) {
	handler := &mockHandler{}
	handler.On("Refresh", mock.Anything).Return("ok", nil)
	handler.On("Tick", mock.Anything, mock.Anything).Maybe()

	w, err := NewWorker(handler, Config{Schedule: "@every 1s", TickInterval: time.Second}, nil)
	require.NoError(t, err)

	cancel, done := startWorker(t, w)
	assert.Eventually(t, func() bool {
		for _, record := range w.GetHistory() {
			if record.Trigger == "schedule" {
				return true
			}
		}
		return false
	}, 4*time.Second, 20*time.Millisecond)
	stopWorker(t, cancel, done)
}

func TestWorker_RefreshFailureIsRecorded(t *testing.T) {
	handler := &mockHandler{}
	handler.On("Refresh", mock.Anything).Return("", errors.New("store unavailable"))
	handler.On("Tick", mock.Anything, mock.Anything).Maybe()

	w, err := NewWorker(handler, Config{}, nil)
	require.NoError(t, err)

	cancel, done := startWorker(t, w)
	assert.Eventually(t, func() bool { return w.GetStatus().Runs == 1 }, 2*time.Second, 5*time.Millisecond)
	stopWorker(t, cancel, done)

	status := w.GetStatus()
	assert.Equal(t, "store unavailable", status.LastRunError)
	assert.False(t, status.NextRun.IsZero())
	assert.Equal(t, "Failure", w.GetHistory()[0].Status)
}

func TestWorker_HistoryIsBounded(t *testing.T) {
	handler := &mockHandler{}
	handler.On("Refresh", mock.Anything).Return("ok", nil)

	w, err := NewWorker(handler, Config{MaxHistory: 3}, nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		w.run(context.Background(), "manual")
	}
	assert.Len(t, w.GetHistory(), 3)
	assert.Equal(t, 5, w.GetStatus().Runs)
}

func TestNewWorker_InvalidSchedule(t *testing.T) {
	_, err := NewWorker(&mockHandler{}, Config{Schedule: "every midnight"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contextutils.ErrInvalidInput))
}

func TestWorker_NextRunIsLocalMidnight(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	w, err := NewWorker(&mockHandler{}, Config{Location: tokyo}, nil)
	require.NoError(t, err)

	now := time.Date(2024, time.March, 10, 23, 59, 30, 0, tokyo)
	next := w.NextRun(now.UTC())
	assert.True(t, next.Equal(time.Date(2024, time.March, 11, 0, 0, 0, 0, tokyo)), "got %s", next)
}
