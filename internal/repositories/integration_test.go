//go:build integration

package repositories

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"calibrify/internal/entities"
	"calibrify/pkg/constants"
	"calibrify/pkg/database/postgresql"
	apperrors "calibrify/pkg/errors"
	"calibrify/pkg/types"
	"calibrify/pkg/utils"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("calibrify"),
		postgres.WithUsername("calibrify"),
		postgres.WithPassword("calibrify"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("не удалось остановить контейнер: %v", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgresql.ConnectDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgresql.Migrate(ctx, pool))
	return pool
}

func newEquipment(serial string) entities.Equipment {
	return entities.Equipment{
		Name:                     "Multimeter " + serial,
		SerialNumber:             serial,
		Category:                 "Electrical",
		PurchaseDate:             time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC),
		ModelNumber:              "87V",
		Manufacturer:             "Fluke",
		Location:                 "Lab A",
		CalibrationIntervalType:  constants.IntervalMonths,
		CalibrationIntervalValue: 6,
		IsActive:                 true,
	}
}

func TestIntegration_Repositories(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	logger := zap.NewNop()

	users := NewUserRepository(pool, logger)
	equipment := NewEquipmentRepository(pool, logger, time.UTC)
	calibrations := NewCalibrationRepository(pool, logger, time.UTC)
	maintenance := NewMaintenanceRepository(pool, logger, time.UTC)
	dashboard := NewDashboardRepository(pool, logger)
	reports := NewReportRepository(pool)
	txManager := NewTxManager(pool, logger)

	userID, err := users.Create(ctx, nil, entities.User{Username: "tech", Password: "x", IsActive: true})
	require.NoError(t, err)

	eq := newEquipment("SN-001")
	eq.CreatedBy = &userID
	eqID, err := equipment.Create(ctx, nil, eq)
	require.NoError(t, err)

	t.Run("серийный номер уникален", func(t *testing.T) {
		exists, err := equipment.ExistsBySerialNumber(ctx, nil, "SN-001", 0)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = equipment.ExistsBySerialNumber(ctx, nil, "SN-001", eqID)
		require.NoError(t, err)
		assert.False(t, exists, "собственная запись не считается конфликтом")

		_, err = equipment.Create(ctx, nil, newEquipment("SN-001"))
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Contains(t, httpErr.Details, "serial_number")
	})

	t.Run("даты калибровки и фильтры", func(t *testing.T) {
		last := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		next := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)
		require.NoError(t, equipment.UpdateCalibrationDates(ctx, nil, eqID, &last, &next))

		got, err := equipment.FindByID(ctx, nil, eqID)
		require.NoError(t, err)
		require.NotNil(t, got.NextCalibrationDate)
		assert.Equal(t, "2025-07-09", got.NextCalibrationDate.Format(constants.DateLayout))
		require.NotNil(t, got.Creator)
		assert.Equal(t, "tech", got.Creator.Username)

		list, total, err := equipment.GetAll(ctx, types.Filter{Filter: map[string]string{"next_calibration_date__lt": "2025-08-01"}})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		assert.Len(t, list, 1)

		_, total, err = equipment.GetAll(ctx, types.Filter{Search: "fluke lab", Filter: map[string]string{"is_active": "true"}})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)

		_, _, err = equipment.GetAll(ctx, types.Filter{Filter: map[string]string{"is_active": "maybe"}})
		var httpErr *apperrors.HttpError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("откат транзакции", func(t *testing.T) {
		boom := errors.New("boom")
		err := txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			if _, err := calibrations.Create(ctx, tx, entities.Calibration{
				EquipmentID: eqID, CalibrationDate: time.Now(), CalibrationStandard: "std", MeasurementPoint: "p",
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		list, err := calibrations.FindByEquipmentID(ctx, nil, eqID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("дашборд", func(t *testing.T) {
		today := utils.DateOnly(time.Now(), time.UTC)
		w := DashboardWindow{Today: today, WindowEnd: utils.AddDays(today, 31), MonthStart: utils.MonthStart(today)}

		addCalibration := func(days int, result string) {
			_, err := calibrations.Create(ctx, nil, entities.Calibration{
				EquipmentID: eqID, CalibrationDate: utils.AddDays(today, days), CalibratedBy: &userID,
				CalibrationStandard: "std", MeasurementPoint: "p", Results: result,
			})
			require.NoError(t, err)
		}
		addMaintenance := func(days int, returned bool) {
			_, err := maintenance.Create(ctx, nil, entities.Maintenance{
				EquipmentID: eqID, MaintenanceDate: utils.AddDays(today, days), ServiceProvider: "Acme", Description: "clean",
				ReturnedToProduction: returned,
			})
			require.NoError(t, err)
		}

		addCalibration(3, "")
		addCalibration(5, constants.ResultCompleted)
		addCalibration(30, "")
		addCalibration(31, "")
		addMaintenance(-2, false)
		addMaintenance(-2, true)
		addMaintenance(0, false)

		due, err := dashboard.CountDueCalibrations(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), due, "+3 и +30 дней; Completed и +31 не считаются")

		overdue, err := dashboard.CountOverdueMaintenance(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), overdue, "сегодняшнее и возвращённое ТО не просрочены")

		completed, err := dashboard.CountCompletedCalibrations(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), completed)

		completedMaintenance, err := dashboard.CountCompletedMaintenance(ctx, w)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), completedMaintenance)

		upcoming, err := dashboard.UpcomingCalibrations(ctx, w, constants.FeedLimit)
		require.NoError(t, err)
		require.Len(t, upcoming, 3)
		assert.True(t, utils.AddDays(today, 3).Equal(upcoming[0].CalibrationDate))
		assert.True(t, utils.AddDays(today, 30).Equal(upcoming[2].CalibrationDate), "+31 вне окна")
		assert.Equal(t, "SN-001", upcoming[0].EquipmentSerialNumber)

		pending, err := dashboard.CountPendingMaintenance(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), pending)
	})

	t.Run("график калибровок", func(t *testing.T) {
		_, err := equipment.Create(ctx, nil, newEquipment("SN-002"))
		require.NoError(t, err)

		rows, err := reports.GetCalibrationSchedule(ctx, ScheduleReportFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "SN-001", rows[0].SerialNumber)
		assert.Nil(t, rows[1].NextCalibrationDate, "без даты в конце")
	})

	t.Run("удаление пользователя обнуляет ссылки", func(t *testing.T) {
		require.NoError(t, users.Delete(ctx, nil, userID))

		got, err := equipment.FindByID(ctx, nil, eqID)
		require.NoError(t, err)
		assert.Nil(t, got.CreatedBy)
		assert.Nil(t, got.Creator)
	})

	t.Run("каскадное удаление оборудования", func(t *testing.T) {
		require.NoError(t, equipment.Delete(ctx, nil, eqID))

		_, err := equipment.FindByID(ctx, nil, eqID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		list, err := calibrations.FindByEquipmentID(ctx, nil, eqID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
