package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	"calibrify/pkg/constants"
	"calibrify/pkg/utils"
)

type DashboardServiceInterface interface {
	GetDashboard(ctx context.Context) (*dto.DashboardDTO, error)
	GetSummary(ctx context.Context) (*dto.EquipmentSummaryDTO, error)
}

type DashboardService struct {
	*BaseService
	repo     repositories.DashboardRepositoryInterface
	clock    Clock
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewDashboardService(
	base *BaseService,
	repo repositories.DashboardRepositoryInterface,
	clock Clock,
	cacheTTL time.Duration,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{BaseService: base, repo: repo, clock: clock, cacheTTL: cacheTTL, logger: logger}
}

// Window - границы периодов дашборда для текущего дня.
func (s *DashboardService) Window() repositories.DashboardWindow {
	today := s.clock.Today()
	return repositories.DashboardWindow{
		Today:      s.clock.DayStart(today),
		WindowEnd:  s.clock.DayStart(utils.AddDays(today, constants.DueWindowDays+1)),
		MonthStart: s.clock.DayStart(utils.MonthStart(today)),
	}
}

func (s *DashboardService) GetDashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyDashboard, s.clock.Today().Format(constants.DateLayout))

	var cached dto.DashboardDTO
	if s.CacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	w := s.Window()
	limit := uint64(constants.FeedLimit)

	var (
		total          uint64
		due            uint64
		overdue        uint64
		completedCal   uint64
		completedMaint uint64
		upcomingCal    []entities.CalibrationFeedRow
		upcomingMaint  []entities.MaintenanceFeedRow
		recentCal      []entities.CalibrationFeedRow
		recentMaint    []entities.MaintenanceFeedRow
	)

	err := runTasks(
		func() (err error) { total, err = s.repo.CountEquipment(ctx); return },
		func() (err error) { due, err = s.repo.CountDueCalibrations(ctx, w); return },
		func() (err error) { overdue, err = s.repo.CountOverdueMaintenance(ctx, w); return },
		func() (err error) { completedCal, err = s.repo.CountCompletedCalibrations(ctx, w); return },
		func() (err error) { completedMaint, err = s.repo.CountCompletedMaintenance(ctx, w); return },
		func() (err error) { upcomingCal, err = s.repo.UpcomingCalibrations(ctx, w, limit); return },
		func() (err error) { upcomingMaint, err = s.repo.UpcomingMaintenance(ctx, w, limit); return },
		func() (err error) { recentCal, err = s.repo.RecentCalibrations(ctx, w, limit); return },
		func() (err error) { recentMaint, err = s.repo.RecentMaintenance(ctx, w, limit); return },
	)
	if err != nil {
		s.logger.Error("Ошибки при сборке дашборда", zap.Error(err))
		return nil, err
	}

	result := &dto.DashboardDTO{
		TotalEquipment:     total,
		DueCalibrations:    due,
		OverdueMaintenance: overdue,
		CompletedThisMonth: completedCal + completedMaint,
		UpcomingEvents:     MergeUpcomingEvents(upcomingCal, upcomingMaint, constants.FeedLimit),
		RecentActivities:   MergeRecentActivities(recentCal, recentMaint, constants.FeedLimit),
	}

	s.CacheSet(ctx, cacheKey, result, s.cacheTTL)
	return result, nil
}

// GetSummary - простая сводка по оборудованию, без кэша.
func (s *DashboardService) GetSummary(ctx context.Context) (*dto.EquipmentSummaryDTO, error) {
	today := s.clock.Today()

	var result dto.EquipmentSummaryDTO
	err := runTasks(
		func() (err error) { result.TotalEquipment, err = s.repo.CountEquipment(ctx); return },
		func() (err error) { result.PendingCalibrations, err = s.repo.CountEquipmentDueBy(ctx, today); return },
		func() (err error) { result.PendingMaintenance, err = s.repo.CountPendingMaintenance(ctx); return },
		func() (err error) { result.OverdueItems, err = s.repo.CountEquipmentOverdue(ctx, today); return },
	)
	if err != nil {
		s.logger.Error("Ошибки при сборке сводки", zap.Error(err))
		return nil, err
	}
	return &result, nil
}

// runTasks запускает независимые запросы параллельно и ждёт все.
// Ошибки собираются через errors.Join, порядок соответствует порядку fns.
func runTasks(fns ...func() error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(fns))
	for i, fn := range fns {
		wg.Add(1)
		go func(i int, fn func() error) {
			defer wg.Done()
			errs[i] = fn()
		}(i, fn)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// MergeUpcomingEvents объединяет калибровки и ТО, сортирует по дате по возрастанию
// и оставляет первые limit записей. При равной дате калибровка идёт первой.
func MergeUpcomingEvents(calibrations []entities.CalibrationFeedRow, maintenance []entities.MaintenanceFeedRow, limit int) []dto.UpcomingEventDTO {
	events := make([]dto.UpcomingEventDTO, 0, len(calibrations)+len(maintenance))

	for _, c := range calibrations {
		status := constants.StatusPending
		if c.Results != "" {
			status = c.Results
		}
		events = append(events, dto.UpcomingEventDTO{
			Date:      c.CalibrationDate,
			Title:     "Calibration: " + c.EquipmentName,
			Equipment: dto.ShortEquipmentDTO{ID: c.EquipmentID, Name: c.EquipmentName, SerialNumber: c.EquipmentSerialNumber},
			Type:      constants.EventTypeCalibration,
			Status:    status,
		})
	}

	for _, m := range maintenance {
		status := constants.StatusPending
		if m.ReturnedToProduction {
			status = constants.StatusCompleted
		}
		events = append(events, dto.UpcomingEventDTO{
			Date:      m.MaintenanceDate,
			Title:     "Maintenance: " + m.EquipmentName,
			Equipment: dto.ShortEquipmentDTO{ID: m.EquipmentID, Name: m.EquipmentName, SerialNumber: m.EquipmentSerialNumber},
			Type:      constants.EventTypeMaintenance,
			Status:    status,
		})
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })

	if len(events) > limit {
		events = events[:limit]
	}
	return events
}

// MergeRecentActivities объединяет изменения калибровок и ТО,
// сортирует по времени изменения по убыванию и оставляет первые limit записей.
func MergeRecentActivities(calibrations []entities.CalibrationFeedRow, maintenance []entities.MaintenanceFeedRow, limit int) []dto.RecentActivityDTO {
	activities := make([]dto.RecentActivityDTO, 0, len(calibrations)+len(maintenance))

	for _, c := range calibrations {
		status := "pending"
		if c.Results != "" {
			status = strings.ToLower(c.Results)
		}
		activities = append(activities, dto.RecentActivityDTO{
			Icon:        constants.IconCalibration,
			Description: fmt.Sprintf("Calibration %s for %s", status, c.EquipmentName),
			Timestamp:   c.UpdatedAt,
		})
	}

	for _, m := range maintenance {
		status := "pending"
		if m.ReturnedToProduction {
			status = "completed"
		}
		activities = append(activities, dto.RecentActivityDTO{
			Icon:        constants.IconMaintenance,
			Description: fmt.Sprintf("Maintenance %s for %s", status, m.EquipmentName),
			Timestamp:   m.UpdatedAt,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool { return activities[i].Timestamp.After(activities[j].Timestamp) })

	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}
