package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/entities"
	"calibrify/internal/repositories"
	apperrors "calibrify/pkg/errors"
)

type fakeMaintenanceRepo struct {
	repositories.MaintenanceRepositoryInterface
	items  map[uint64]*entities.Maintenance
	nextID uint64
}

func (r *fakeMaintenanceRepo) Create(ctx context.Context, tx pgx.Tx, m entities.Maintenance) (uint64, error) {
	r.nextID++
	m.ID = r.nextID
	r.items[m.ID] = &m
	return m.ID, nil
}

func (r *fakeMaintenanceRepo) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Maintenance, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMaintenanceRepo) Update(ctx context.Context, tx pgx.Tx, m entities.Maintenance) error {
	r.items[m.ID] = &m
	return nil
}

func (r *fakeMaintenanceRepo) UpdateCertificate(ctx context.Context, tx pgx.Tx, id uint64, ref *string) error {
	r.items[id].CertificateFile = ref
	return nil
}

// fakeStorage хранит имена сохранённых и удалённых файлов.
type fakeStorage struct {
	saved   []string
	deleted []string
}

func (s *fakeStorage) Save(ctx context.Context, file io.Reader, size int64, originalFileName string, prefix string) (string, error) {
	ref := fmt.Sprintf("%s/%d-%s", prefix, len(s.saved)+1, originalFileName)
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *fakeStorage) Delete(ctx context.Context, ref string) error {
	s.deleted = append(s.deleted, ref)
	return nil
}

func (s *fakeStorage) URL(ref string) string { return "/uploads/" + ref }

type maintenanceFixture struct {
	svc     MaintenanceServiceInterface
	repo    *fakeMaintenanceRepo
	storage *fakeStorage
	metrics *DomainMetrics
}

func newMaintenanceFixture(t *testing.T) *maintenanceFixture {
	t.Helper()
	f := &maintenanceFixture{
		repo:    &fakeMaintenanceRepo{items: map[uint64]*entities.Maintenance{}},
		storage: &fakeStorage{},
		metrics: NewDomainMetrics(prometheus.NewRegistry()),
	}
	equipment := &fakeEquipmentRepo{items: map[uint64]*entities.Equipment{7: {ID: 7, Name: "Oven"}}}
	logger := zap.NewNop()
	clock := FixedClock(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), time.UTC)
	f.svc = NewMaintenanceService(NewBaseService(newFakeCache(), logger), &fakeTxManager{}, f.repo, equipment, f.storage, f.metrics, clock, logger)
	return f
}

func TestMaintenanceService_Create(t *testing.T) {
	f := newMaintenanceFixture(t)

	res, err := f.svc.Create(context.Background(), 4, dto.CreateMaintenanceDTO{
		EquipmentID:     7,
		ServiceProvider: " Acme Service ",
		Description:     "Замена датчика",
	})
	require.NoError(t, err)

	stored := f.repo.items[res.ID]
	require.NotNil(t, stored.PerformedBy)
	assert.Equal(t, uint64(4), *stored.PerformedBy)
	assert.Equal(t, "Acme Service", stored.ServiceProvider)
	assert.Equal(t, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), stored.MaintenanceDate, "дата по умолчанию - сейчас")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.MaintenanceRecorded))
}

func TestMaintenanceService_CreateRejects(t *testing.T) {
	f := newMaintenanceFixture(t)

	_, err := f.svc.Create(context.Background(), 4, dto.CreateMaintenanceDTO{EquipmentID: 99, ServiceProvider: "Acme", Description: "x"})
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Contains(t, httpErr.Details, "equipment")

	_, err = f.svc.Create(context.Background(), 4, dto.CreateMaintenanceDTO{EquipmentID: 7, ServiceProvider: "  ", Description: "x"})
	require.ErrorAs(t, err, &httpErr)
	assert.Contains(t, httpErr.Details, "service_provider")

	assert.Empty(t, f.repo.items)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.MaintenanceRecorded))
}

func TestMaintenanceService_UpdateKeepsEquipment(t *testing.T) {
	f := newMaintenanceFixture(t)
	f.repo.items[1] = &entities.Maintenance{ID: 1, EquipmentID: 7, ServiceProvider: "Acme", Description: "x"}

	_, err := f.svc.Update(context.Background(), 1, dto.UpdateMaintenanceDTO{EquipmentID: null.Uint64From(8)})
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Contains(t, httpErr.Details, "equipment")

	res, err := f.svc.Update(context.Background(), 1, dto.UpdateMaintenanceDTO{
		EquipmentID:          null.Uint64From(7),
		ReturnedToProduction: null.BoolFrom(true),
	})
	require.NoError(t, err)
	assert.True(t, res.ReturnedToProduction)
}

func TestMaintenanceService_AttachCertificateReplacesFile(t *testing.T) {
	f := newMaintenanceFixture(t)
	old := "maintenance_certificates/old.pdf"
	f.repo.items[1] = &entities.Maintenance{ID: 1, EquipmentID: 7, ServiceProvider: "Acme", Description: "x", CertificateFile: &old}

	res, err := f.svc.AttachCertificate(context.Background(), 1, strings.NewReader("%PDF"), 4, "act.pdf")
	require.NoError(t, err)

	require.Len(t, f.storage.saved, 1)
	require.NotNil(t, res.CertificateFile)
	assert.Equal(t, f.storage.saved[0], *res.CertificateFile)
	assert.Equal(t, []string{old}, f.storage.deleted, "старый файл удаляется")
}
