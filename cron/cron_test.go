package cron_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meinhoongagan/carehub/config"
	"github.com/meinhoongagan/carehub/cron"
	"github.com/meinhoongagan/carehub/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReminders struct {
	mock.Mock
}

func (m *mockReminders) SendReminders(ctx context.Context, lead time.Duration) (int, error) {
	args := m.Called(ctx, lead)
	return args.Int(0), args.Error(1)
}

func TestReminderJob(t *testing.T) {
	reminders := new(mockReminders)
	reminders.On("SendReminders", mock.Anything, 24*time.Hour).Return(2, nil).Once()
	reminders.On("SendReminders", mock.Anything, 24*time.Hour).Return(0, errors.New("db down")).Once()

	job := cron.ReminderJob(reminders, 24*time.Hour, logging.Nop())
	job()
	job()

	reminders.AssertExpectations(t)
	reminders.AssertNumberOfCalls(t, "SendReminders", 2)
}

func TestScheduler(t *testing.T) {
	t.Run("InvalidSpec", func(t *testing.T) {
		_, err := cron.New(config.JobsConfig{ReminderSpec: "every now and then"}, new(mockReminders), logging.Nop())
		assert.Error(t, err)
	})

	t.Run("StartStop", func(t *testing.T) {
		s, err := cron.New(config.JobsConfig{ReminderSpec: "*/15 * * * *", ReminderLead: time.Hour}, new(mockReminders), logging.Nop())
		require.NoError(t, err)
		s.Start()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
		assert.NoError(t, ctx.Err())
	})
}
