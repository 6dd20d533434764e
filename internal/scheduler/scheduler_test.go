package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"landmarket/server/internal/database/dbtest"
	"landmarket/server/internal/metrics"
	"landmarket/server/internal/models"
)

type MockBacklogStore struct {
	mock.Mock
}

func (m *MockBacklogStore) CountPendingSince(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestJobTypeString(t *testing.T) {
	assert.Equal(t, "pending-backlog", JobTypeBacklog.String())
	assert.Equal(t, "stats-refresh", JobTypeStatsRefresh.String())
	assert.Equal(t, "unknown", JobType(42).String())
}

func TestUpdateBacklogUsesCutoff(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := new(MockBacklogStore)
	store.On("CountPendingSince", mock.Anything, now.Add(-72*time.Hour)).Return(int64(4), nil)
	m := metrics.New(prometheus.NewRegistry())

	s, err := NewScheduler(store, m, nil, Options{Interval: time.Minute, StaleAfter: 72 * time.Hour}, quietLogger())
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	require.NoError(t, s.updateBacklog(context.Background()))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PendingBacklog))
	store.AssertExpectations(t)
}

func TestUpdateBacklogKeepsGaugeOnError(t *testing.T) {
	store := new(MockBacklogStore)
	store.On("CountPendingSince", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	m := metrics.New(prometheus.NewRegistry())
	m.SetPendingBacklog(7)

	s, err := NewScheduler(store, m, nil, Options{StaleAfter: time.Hour}, quietLogger())
	require.NoError(t, err)

	assert.EqualError(t, s.updateBacklog(context.Background()), "db down")
	assert.Equal(t, 7.0, testutil.ToFloat64(m.PendingBacklog))
}

func TestBacklogAgainstDatabase(t *testing.T) {
	db := dbtest.New(t)
	seller := dbtest.Seller(t, db, "seller")
	dbtest.Listing(t, db, seller, "fresh", models.ModerationPending)
	dbtest.Listing(t, db, seller, "approved", models.ModerationApproved)

	m := metrics.New(prometheus.NewRegistry())
	s, err := NewScheduler(db, m, nil, Options{StaleAfter: time.Hour}, quietLogger())
	require.NoError(t, err)

	require.NoError(t, s.updateBacklog(context.Background()))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PendingBacklog))

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.NoError(t, s.updateBacklog(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PendingBacklog))
}

func TestStartRunsJobsImmediately(t *testing.T) {
	store := new(MockBacklogStore)
	store.On("CountPendingSince", mock.Anything, mock.Anything).Return(int64(2), nil)
	m := metrics.New(prometheus.NewRegistry())
	refresher := &countingRefresher{}

	s, err := NewScheduler(store, m, refresher, Options{Interval: time.Hour, StaleAfter: time.Hour}, quietLogger())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer func() { assert.NoError(t, s.Stop()) }()

	assert.Equal(t, []string{"pending-backlog", "stats-refresh"}, s.Jobs())
	assert.Eventually(t, func() bool {
		return refresher.calls.Load() == 1 && testutil.ToFloat64(m.PendingBacklog) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartWithoutStatsRefresher(t *testing.T) {
	store := new(MockBacklogStore)
	store.On("CountPendingSince", mock.Anything, mock.Anything).Return(int64(0), nil)

	s, err := NewScheduler(store, nil, nil, Options{Interval: time.Hour}, quietLogger())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Equal(t, []string{"pending-backlog"}, s.Jobs())
}
