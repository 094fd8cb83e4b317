package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calibrify/internal/entities"
	"calibrify/pkg/constants"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestMergeUpcomingEvents_SortsAndTruncates(t *testing.T) {
	cals := make([]entities.CalibrationFeedRow, 0)
	for i := 1; i <= 5; i++ {
		cals = append(cals, entities.CalibrationFeedRow{ID: uint64(i), EquipmentName: "cal", CalibrationDate: day(2 * i)})
	}
	maint := make([]entities.MaintenanceFeedRow, 0)
	for i := 1; i <= 5; i++ {
		maint = append(maint, entities.MaintenanceFeedRow{ID: uint64(i), EquipmentName: "mnt", MaintenanceDate: day(2*i - 1)})
	}

	events := MergeUpcomingEvents(cals, maint, constants.FeedLimit)

	require.Len(t, events, 5)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Date.Before(events[i-1].Date), "даты по возрастанию")
	}
	assert.Equal(t, day(1), events[0].Date)
	assert.Equal(t, constants.EventTypeMaintenance, events[0].Type)
	assert.Equal(t, constants.EventTypeCalibration, events[1].Type)
	assert.Equal(t, day(5), events[4].Date)
}

func TestMergeUpcomingEvents_StatusAndTitle(t *testing.T) {
	events := MergeUpcomingEvents(
		[]entities.CalibrationFeedRow{
			{EquipmentID: 1, EquipmentName: "Scale", EquipmentSerialNumber: "S-1", CalibrationDate: day(3)},
			{EquipmentID: 2, EquipmentName: "Thermometer", CalibrationDate: day(3), Results: "Completed"},
		},
		[]entities.MaintenanceFeedRow{
			{EquipmentID: 3, EquipmentName: "Oven", MaintenanceDate: day(3), ReturnedToProduction: true},
		},
		constants.FeedLimit,
	)

	require.Len(t, events, 3)
	assert.Equal(t, "Calibration: Scale", events[0].Title)
	assert.Equal(t, constants.StatusPending, events[0].Status)
	assert.Equal(t, "S-1", events[0].Equipment.SerialNumber)
	assert.Equal(t, "Completed", events[1].Status)
	assert.Equal(t, "Maintenance: Oven", events[2].Title, "при равной дате калибровки идут первыми")
	assert.Equal(t, constants.StatusCompleted, events[2].Status)
}

func TestMergeRecentActivities(t *testing.T) {
	ts := func(h int) time.Time { return time.Date(2025, 3, 10, h, 0, 0, 0, time.UTC) }

	cals := []entities.CalibrationFeedRow{
		{EquipmentName: "Scale", Results: "Completed", UpdatedAt: ts(9)},
		{EquipmentName: "Thermometer", UpdatedAt: ts(7)},
		{EquipmentName: "Gauge", Results: "Failed", UpdatedAt: ts(5)},
	}
	maint := []entities.MaintenanceFeedRow{
		{EquipmentName: "Oven", ReturnedToProduction: true, UpdatedAt: ts(8)},
		{EquipmentName: "Press", UpdatedAt: ts(6)},
		{EquipmentName: "Lathe", UpdatedAt: ts(4)},
	}

	acts := MergeRecentActivities(cals, maint, constants.FeedLimit)

	require.Len(t, acts, 5)
	assert.Equal(t, "Calibration completed for Scale", acts[0].Description)
	assert.Equal(t, constants.IconCalibration, acts[0].Icon)
	assert.Equal(t, "Maintenance completed for Oven", acts[1].Description)
	assert.Equal(t, constants.IconMaintenance, acts[1].Icon)
	assert.Equal(t, "Calibration pending for Thermometer", acts[2].Description)
	assert.Equal(t, "Maintenance pending for Press", acts[3].Description)
	assert.Equal(t, "Calibration failed for Gauge", acts[4].Description)
}

func TestMergeFeeds_Empty(t *testing.T) {
	assert.Empty(t, MergeUpcomingEvents(nil, nil, constants.FeedLimit))
	assert.NotNil(t, MergeRecentActivities(nil, nil, constants.FeedLimit))
}

func newDashboardFixture(repo *fakeDashboardRepo, cache *fakeCache) *DashboardService {
	loc := time.FixedZone("UTC+5", 5*3600)
	clock := FixedClock(time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC), loc)
	logger := zap.NewNop()
	return NewDashboardService(NewBaseService(cache, logger), repo, clock, time.Minute, logger).(*DashboardService)
}

func TestDashboardService_Window(t *testing.T) {
	svc := newDashboardFixture(&fakeDashboardRepo{}, newFakeCache())
	loc := time.FixedZone("UTC+5", 5*3600)

	w := svc.Window()

	// 23:30 UTC - это уже 11 марта в UTC+5
	assert.True(t, w.Today.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, loc)))
	assert.True(t, w.WindowEnd.Equal(time.Date(2025, 4, 11, 0, 0, 0, 0, loc)), "конец окна исключающий: today+31")
	assert.True(t, w.MonthStart.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, loc)))
}

func TestDashboardService_GetDashboardCachesResult(t *testing.T) {
	repo := &fakeDashboardRepo{total: 12}
	cache := newFakeCache()
	svc := newDashboardFixture(repo, cache)
	ctx := context.Background()

	first, err := svc.GetDashboard(ctx)
	require.NoError(t, err)

	assert.Equal(t, uint64(12), first.TotalEquipment)
	assert.Equal(t, uint64(2), first.DueCalibrations)
	assert.Equal(t, uint64(1), first.OverdueMaintenance)
	assert.Equal(t, uint64(7), first.CompletedThisMonth)
	assert.Contains(t, cache.data, "dashboard:full:2025-03-11")

	second, err := svc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.TotalEquipment, second.TotalEquipment)
	assert.Equal(t, 1, repo.countCalls, "второй вызов отдан из кэша")
}

func TestDashboardService_GetDashboardPropagatesErrors(t *testing.T) {
	repo := &fakeDashboardRepo{failCount: errors.New("db down")}
	cache := newFakeCache()
	svc := newDashboardFixture(repo, cache)

	_, err := svc.GetDashboard(context.Background())

	require.Error(t, err)
	assert.Empty(t, cache.data)
}

func TestDashboardService_GetSummary(t *testing.T) {
	repo := &fakeDashboardRepo{total: 9}
	svc := newDashboardFixture(repo, newFakeCache())

	res, err := svc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(9), res.TotalEquipment)
	assert.Equal(t, uint64(5), res.PendingCalibrations)
	assert.Equal(t, uint64(1), res.PendingMaintenance)
	assert.Equal(t, uint64(2), res.OverdueItems)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), repo.lastSummaryDay)
}

func TestDashboardService_GetSummaryPropagatesErrors(t *testing.T) {
	dbErr := errors.New("db down")
	svc := newDashboardFixture(&fakeDashboardRepo{failCount: dbErr}, newFakeCache())

	res, err := svc.GetSummary(context.Background())
	require.ErrorIs(t, err, dbErr)
	assert.Nil(t, res)
}

func TestRunTasks(t *testing.T) {
	var done [3]bool
	err := runTasks(
		func() error { done[0] = true; return nil },
		func() error { done[1] = true; return nil },
		func() error { done[2] = true; return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, [3]bool{true, true, true}, done)

	first, second := errors.New("first"), errors.New("second")
	finished := false
	err = runTasks(
		func() error { return first },
		func() error { finished = true; return nil },
		func() error { return second },
	)
	require.ErrorIs(t, err, first)
	require.ErrorIs(t, err, second)
	assert.True(t, finished, "ошибка одной задачи не отменяет остальные")
	assert.Equal(t, "first\nsecond", err.Error())

	assert.NoError(t, runTasks())
}
