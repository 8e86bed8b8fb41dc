package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semlayer/semgov/internal/testutil"
	"github.com/semlayer/semgov/pkg/registry"
)

func TestParseScheduleInterval(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "every_seconds",
			schedule: "@every 30s",
			expected: 30 * time.Second,
		},
		{
			name:     "every_minutes",
			schedule: "@every 5m",
			expected: 5 * time.Minute,
		},
		{
			name:     "hourly_cron",
			schedule: "0 * * * *",
			expected: time.Hour,
		},
		{
			name:     "invalid",
			schedule: "not a schedule",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interval, err := parseScheduleInterval(tt.schedule)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, interval)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, (&Config{Enabled: true, Schedule: "@every 1h"}).Validate())
	assert.Error(t, (&Config{Enabled: true, Schedule: "bogus"}).Validate())

	// Disabled schedulers skip schedule validation
	assert.NoError(t, (&Config{Enabled: false, Schedule: "bogus"}).Validate())
}

func newTestRegistry(t *testing.T) registry.Service {
	t.Helper()

	reg := registry.NewService(testutil.Logger(), testutil.NewStore(t))
	require.NoError(t, reg.Start(context.Background()))

	return reg
}

func TestSweep_ScoresEveryMetric(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	ids := []string{}

	for _, name := range []string{"Daily Revenue", "Active Users"} {
		m, err := reg.Define(ctx, &registry.Definition{
			Name:        name,
			Description: "sweep fixture metric for " + name,
			Calculation: "SELECT COUNT(*) FROM raw.events",
		})
		require.NoError(t, err)

		ids = append(ids, m.ID)
	}

	svc, err := NewService(testutil.Logger(), &Config{Enabled: true, Schedule: "@every 1h"}, reg)
	require.NoError(t, err)

	scored, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, scored)

	// Every metric now has a persisted score snapshot
	for _, id := range ids {
		history, err := reg.ScoreHistory(ctx, id, 1)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	}
}

func TestSweep_EmptyCatalog(t *testing.T) {
	reg := newTestRegistry(t)

	svc, err := NewService(testutil.Logger(), &Config{Enabled: true, Schedule: "@every 1h"}, reg)
	require.NoError(t, err)

	scored, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, scored)
}

func TestService_DisabledStartStop(t *testing.T) {
	reg := newTestRegistry(t)

	svc, err := NewService(testutil.Logger(), &Config{Enabled: false}, reg)
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	require.NoError(t, svc.Stop())
}

func TestNewService_InvalidSchedule(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := NewService(testutil.Logger(), &Config{Enabled: true, Schedule: "bogus"}, reg)
	require.Error(t, err)
}
