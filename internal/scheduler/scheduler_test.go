package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/courtside/internal/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRemindersTargetsNextDay(t *testing.T) {
	mock := booking.NewMock()
	mock.SendRemindersFunc = func(ctx context.Context, date string) (int, error) {
		return 2, nil
	}
	s, err := New(mock)
	require.NoError(t, err)
	defer s.Stop()

	sent, err := s.RunReminders(context.Background(), time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, []string{"2025-03-01"}, mock.RemindersRequested())
}

func TestRegisterReminders(t *testing.T) {
	s, err := New(booking.NewMock())
	require.NoError(t, err)
	defer s.Stop()

	job, err := s.RegisterReminders("0 18 * * *")
	require.NoError(t, err)
	assert.Equal(t, reminderJobName, job.Name())

	_, err = s.RegisterReminders("")
	assert.ErrorIs(t, err, ErrEmptyCronExpr)

	_, err = s.RegisterReminders("not a cron")
	assert.Error(t, err)
}

func TestJobRunsOnSchedule(t *testing.T) {
	done := make(chan string, 1)
	mock := booking.NewMock()
	mock.SendRemindersFunc = func(ctx context.Context, date string) (int, error) {
		select {
		case done <- date:
		default:
		}
		return 0, nil
	}
	s, err := New(mock)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC) }

	job, err := s.RegisterReminders("* * * * *")
	require.NoError(t, err)
	s.Start()
	defer s.Stop()

	require.NoError(t, job.RunNow())
	select {
	case date := <-done:
		assert.Equal(t, "2025-03-01", date)
	case <-time.After(5 * time.Second):
		t.Fatal("reminder job did not run")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s, err := New(booking.NewMock())
	require.NoError(t, err)
	s.Start()
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
