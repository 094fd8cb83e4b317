package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
)

// fakeTxManager вызывает fn без настоящей транзакции.
type fakeTxManager struct{ calls int }

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.calls++
	return fn(nil)
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	default:
		c.data[key] = fmt.Sprint(v)
	}
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	_, _ = fmt.Sscan(c.data[key], &n)
	n++
	c.data[key] = fmt.Sprint(n)
	return n, nil
}

func (c *fakeCache) Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	return true, nil
}

func (c *fakeCache) DelByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fakeEquipmentRepo struct {
	repositories.EquipmentRepositoryInterface
	items       map[uint64]*entities.Equipment
	dateUpdates int
}

func (r *fakeEquipmentRepo) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	e, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEquipmentRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.FindByIDForUpdate(ctx, tx, id)
}

func (r *fakeEquipmentRepo) UpdateCalibrationDates(ctx context.Context, tx pgx.Tx, id uint64, last, next *time.Time) error {
	r.dateUpdates++
	r.items[id].LastCalibrationDate = last
	r.items[id].NextCalibrationDate = next
	return nil
}

func (r *fakeEquipmentRepo) ExistsBySerialNumber(ctx context.Context, tx pgx.Tx, serialNumber string, excludeID uint64) (bool, error) {
	for id, e := range r.items {
		if id != excludeID && e.SerialNumber == serialNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEquipmentRepo) Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	e.ID = uint64(len(r.items) + 100)
	r.items[e.ID] = &e
	return e.ID, nil
}

type fakeCalibrationRepo struct {
	repositories.CalibrationRepositoryInterface
	items  map[uint64]*entities.Calibration
	nextID uint64
}

func (r *fakeCalibrationRepo) Create(ctx context.Context, tx pgx.Tx, c entities.Calibration) (uint64, error) {
	r.nextID++
	c.ID = r.nextID
	r.items[c.ID] = &c
	return c.ID, nil
}

func (r *fakeCalibrationRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Calibration, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCalibrationRepo) Update(ctx context.Context, tx pgx.Tx, c entities.Calibration) error {
	r.items[c.ID] = &c
	return nil
}

type fakeUserRepo struct {
	repositories.UserRepositoryInterface
	users map[string]*entities.User
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, tx pgx.Tx, username string) (*entities.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

type fakeDashboardRepo struct {
	total          uint64
	upcomingCal    []entities.CalibrationFeedRow
	upcomingMaint  []entities.MaintenanceFeedRow
	recentCal      []entities.CalibrationFeedRow
	recentMaint    []entities.MaintenanceFeedRow
	failCount      error
	countCalls     int
	mu             sync.Mutex
	lastWindow     repositories.DashboardWindow
	lastSummaryDay time.Time
}

func (r *fakeDashboardRepo) CountEquipment(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	r.countCalls++
	r.mu.Unlock()
	return r.total, r.failCount
}

func (r *fakeDashboardRepo) CountDueCalibrations(ctx context.Context, w repositories.DashboardWindow) (uint64, error) {
	r.mu.Lock()
	r.lastWindow = w
	r.mu.Unlock()
	return 2, nil
}

func (r *fakeDashboardRepo) CountOverdueMaintenance(ctx context.Context, w repositories.DashboardWindow) (uint64, error) {
	return 1, nil
}

func (r *fakeDashboardRepo) CountCompletedCalibrations(ctx context.Context, w repositories.DashboardWindow) (uint64, error) {
	return 3, nil
}

func (r *fakeDashboardRepo) CountCompletedMaintenance(ctx context.Context, w repositories.DashboardWindow) (uint64, error) {
	return 4, nil
}

func (r *fakeDashboardRepo) UpcomingCalibrations(ctx context.Context, w repositories.DashboardWindow, limit uint64) ([]entities.CalibrationFeedRow, error) {
	return r.upcomingCal, nil
}

func (r *fakeDashboardRepo) UpcomingMaintenance(ctx context.Context, w repositories.DashboardWindow, limit uint64) ([]entities.MaintenanceFeedRow, error) {
	return r.upcomingMaint, nil
}

func (r *fakeDashboardRepo) RecentCalibrations(ctx context.Context, w repositories.DashboardWindow, limit uint64) ([]entities.CalibrationFeedRow, error) {
	return r.recentCal, nil
}

func (r *fakeDashboardRepo) RecentMaintenance(ctx context.Context, w repositories.DashboardWindow, limit uint64) ([]entities.MaintenanceFeedRow, error) {
	return r.recentMaint, nil
}

func (r *fakeDashboardRepo) CountEquipmentDueBy(ctx context.Context, today time.Time) (uint64, error) {
	r.mu.Lock()
	r.lastSummaryDay = today
	r.mu.Unlock()
	return 5, nil
}

func (r *fakeDashboardRepo) CountEquipmentOverdue(ctx context.Context, today time.Time) (uint64, error) {
	return 2, nil
}

func (r *fakeDashboardRepo) CountPendingMaintenance(ctx context.Context) (uint64, error) {
	return 1, nil
}

type fakeReportRepo struct {
	rows []entities.ScheduleReportRow
}

func (r *fakeReportRepo) GetCalibrationSchedule(ctx context.Context, filter repositories.ScheduleReportFilter) ([]entities.ScheduleReportRow, error) {
	return r.rows, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }
