package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semlayer/semgov/internal/testutil"
	"github.com/semlayer/semgov/pkg/metric"
	"github.com/semlayer/semgov/pkg/store"
)

func testMetric(id string) *metric.Metric {
	return testutil.NewMetric(id,
		testutil.WithOwner("@revenue-team"),
		testutil.WithTags("revenue", "finance"),
	)
}

func TestStore_PutAndGet(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	m := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, m))

	got, err := s.Get(ctx, "daily_revenue")
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Tags, got.Tags)
	assert.Equal(t, m.Dependencies, got.Dependencies)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
}

func TestStore_PutDuplicate(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, testMetric("daily_revenue")))

	err := s.Put(ctx, testMetric("daily_revenue"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestStore_GetMissing(t *testing.T) {
	s := testutil.NewStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_UpdateRecordsHistory(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	m := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, m))

	m.Owner = "@finance"
	m.UpdatedAt = time.Now().UTC()

	changes := []metric.ChangeRecord{{
		MetricID:  m.ID,
		FieldName: "owner",
		OldValue:  "@revenue-team",
		NewValue:  "@finance",
		ChangedBy: "alice",
		ChangedAt: time.Now().UTC(),
	}}
	require.NoError(t, s.Update(ctx, m, changes))

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "@finance", got.Owner)

	history, err := s.ChangeHistory(ctx, m.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "owner", history[0].FieldName)
	assert.Equal(t, "alice", history[0].ChangedBy)
}

func TestStore_UpdateMissing(t *testing.T) {
	s := testutil.NewStore(t)

	err := s.Update(context.Background(), testMetric("ghost"), nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_ChangeHistoryOrderAndLimit(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	m := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, m))

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		changes := []metric.ChangeRecord{{
			MetricID:  m.ID,
			FieldName: "description",
			NewValue:  "v",
			ChangedAt: base.Add(time.Duration(i) * time.Minute),
		}}
		require.NoError(t, s.Update(ctx, m, changes))
	}

	history, err := s.ChangeHistory(ctx, m.ID, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	// Newest first
	assert.True(t, history[0].ChangedAt.After(history[1].ChangedAt))
	assert.True(t, history[1].ChangedAt.After(history[2].ChangedAt))
}

func TestStore_DeleteCascades(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	m := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, m))
	require.NoError(t, s.AddValidationTest(ctx, &metric.ValidationTest{
		MetricID: m.ID, TestType: "range", Status: "pending",
	}))
	require.NoError(t, s.RecordUsage(ctx, &metric.UsageEvent{
		MetricID: m.ID, UsedBy: "dash", UsedAt: time.Now().UTC(), Context: "dashboard",
	}))

	require.NoError(t, s.Delete(ctx, m.ID))

	_, err := s.Get(ctx, m.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	stats, err := s.UsageStats(ctx, m.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalUses)

	assert.ErrorIs(t, s.Delete(ctx, m.ID), store.ErrNotFound)
}

func TestStore_Search(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	revenue := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, revenue))

	churn := testMetric("churn_rate")
	churn.Name = "Churn Rate"
	churn.Description = "Share of accounts lost per month"
	require.NoError(t, s.Put(ctx, churn))

	results, err := s.Search(ctx, "revenue")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "daily_revenue", results[0].ID)

	results, err = s.Search(ctx, "accounts lost")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "churn_rate", results[0].ID)
}

func TestStore_ByOwnerAndTag(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	a := testMetric("a")
	require.NoError(t, s.Put(ctx, a))

	b := testutil.NewMetric("b",
		testutil.WithOwner("@growth"),
		testutil.WithTags("growth"),
	)
	require.NoError(t, s.Put(ctx, b))

	byOwner, err := s.ByOwner(ctx, "@growth")
	require.NoError(t, err)
	require.Len(t, byOwner, 1)
	assert.Equal(t, "b", byOwner[0].ID)

	byTag, err := s.ByTag(ctx, "finance")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "a", byTag[0].ID)
}

func TestStore_ValidationTestRefreshesCount(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	m := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, m))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.AddValidationTest(ctx, &metric.ValidationTest{
			MetricID: m.ID, TestType: "not_null", Status: "pending",
		}))
	}

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TestCount)
}

func TestStore_UsageRefreshesCountAndStats(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	m := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, m))

	now := time.Now().UTC()
	events := []metric.UsageEvent{
		{MetricID: m.ID, UsedBy: "alice", UsedAt: now, Context: "dashboard"},
		{MetricID: m.ID, UsedBy: "alice", UsedAt: now, Context: "report"},
		{MetricID: m.ID, UsedBy: "bob", UsedAt: now, Context: "dashboard"},
		// Outside the 30-day window
		{MetricID: m.ID, UsedBy: "carol", UsedAt: now.AddDate(0, 0, -60), Context: "query"},
	}
	for i := range events {
		require.NoError(t, s.RecordUsage(ctx, &events[i]))
	}

	got, err := s.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.UsageCount)

	stats, err := s.UsageStats(ctx, m.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUses)
	assert.Equal(t, 2, stats.UniqueUsers)
	assert.Equal(t, 2, stats.UniqueContexts)
}

func TestStore_ScoreHistory(t *testing.T) {
	s := testutil.NewStore(t)
	ctx := context.Background()

	m := testMetric("daily_revenue")
	require.NoError(t, s.Put(ctx, m))

	now := time.Now().UTC()
	offsets := []int{-10, -5, 0}
	scores := []float64{60, 70, 80}
	for i, score := range scores {
		require.NoError(t, s.RecordScoreSnapshot(ctx, &metric.TrustScoreSnapshot{
			MetricID:   m.ID,
			Score:      score,
			Breakdown:  map[string]float64{"tests": score / 2},
			RecordedAt: now.AddDate(0, 0, offsets[i]),
		}))
	}

	history, err := s.ScoreHistory(ctx, m.ID, 90)
	require.NoError(t, err)
	require.Len(t, history, 3)
	// Newest first
	assert.Equal(t, 80.0, history[0].Score)
	assert.Equal(t, 60.0, history[2].Score)
	assert.Equal(t, 40.0, history[0].Breakdown["tests"])

	old, err := s.ScoreHistory(ctx, m.ID, 1)
	require.NoError(t, err)
	assert.Len(t, old, 1)
}
