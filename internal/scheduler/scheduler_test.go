package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	calls int
	err   error
}

func (n *countingNotifier) NotifyDue(ctx context.Context) (int, error) {
	n.calls++
	return 2, n.err
}

func TestRegisterAndRunByName(t *testing.T) {
	s := New()
	notifier := &countingNotifier{}

	require.NoError(t, s.Register(NewMaterialNoticeJob(notifier, "@every 1m")))
	assert.Equal(t, []string{"material_notice"}, s.Jobs())

	require.NoError(t, s.RunByName(context.Background(), "material_notice"))
	assert.Equal(t, 1, notifier.calls)

	require.NoError(t, s.RunByName(context.Background(), "unknown"))
	assert.Equal(t, 1, notifier.calls)
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := New()
	assert.Error(t, s.Register(NewMaterialNoticeJob(&countingNotifier{}, "not a cron spec")))
}

func TestJobPropagatesError(t *testing.T) {
	boom := errors.New("db down")
	job := NewMaterialNoticeJob(&countingNotifier{err: boom}, "")

	s := New()
	require.NoError(t, s.Register(job))
	assert.ErrorIs(t, s.RunByName(context.Background(), job.Name()), boom)
}
