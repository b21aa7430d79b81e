package cronjob

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/y4d-ngo/beneficiary-portal/internal/lifecycle"
)

type fakeReconciler struct {
	calls   atomic.Int32
	results []lifecycle.ReconcileResult
	err     error
}

func (f *fakeReconciler) ReconcileAll(ctx context.Context) ([]lifecycle.ReconcileResult, error) {
	f.calls.Add(1)
	return f.results, f.err
}

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_RunOnce(t *testing.T) {
	r := &fakeReconciler{results: []lifecycle.ReconcileResult{
		{ProjectID: "a", Previous: 3, Actual: 2, Repaired: true},
		{ProjectID: "b", Previous: 1, Actual: 1},
	}}
	s := NewScheduler(r, "@every 1h", quiet())

	repaired, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	r.err = errors.New("store unavailable")
	_, err = s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestScheduler_Start(t *testing.T) {
	t.Run("runs on schedule", func(t *testing.T) {
		r := &fakeReconciler{}
		s := NewScheduler(r, "@every 1s", quiet())
		require.NoError(t, s.Start())

		assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
	})

	t.Run("rejects a bad schedule", func(t *testing.T) {
		s := NewScheduler(&fakeReconciler{}, "every now and then", quiet())
		assert.Error(t, s.Start())
	})
}
