package services

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"calibrify/internal/entities"
	"calibrify/pkg/constants"
	apperrors "calibrify/pkg/errors"
)

func buildImportFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func findBySerial(repo *fakeEquipmentRepo, serial string) *entities.Equipment {
	for _, e := range repo.items {
		if e.SerialNumber == serial {
			return e
		}
	}
	return nil
}

func TestEquipmentImport(t *testing.T) {
	repo := &fakeEquipmentRepo{items: map[uint64]*entities.Equipment{
		1: {ID: 1, SerialNumber: "EX-1"},
	}}
	cache := newFakeCache()
	cache.data["dashboard:full:2025-01-10"] = "{}"
	logger := zap.NewNop()
	svc := NewEquipmentImportService(NewBaseService(cache, logger), &fakeTxManager{}, repo, logger)

	file := buildImportFile(t, [][]interface{}{
		{"Equipment list"},
		{"Name", "Serial number", "Category", "Purchase date", "Model number", "Manufacturer", "Location", "Interval", "Notes"},
		{"Scale", "S-1", "Mass", "2024-05-01", "M1", "Acme", "Lab 1", "6 months", ""},
		{"Old scale", "EX-1", "Mass", "2020-01-01", "M0", "Acme", "Lab 1", "1 years"},
		{"Thermometer", "P-1", "Temperature", "not-a-date", "M2", "Acme", "Lab 2", "3 fortnights"},
		{},
		{"Caliper", "SER-9", "Length", 45658, "C-150", "Mitutoyo", "Workshop", "1 Year"},
		{"Total: 4"},
	})

	res, err := svc.Import(context.Background(), 9, file)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped, "существующий серийный номер пропускается")
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 5, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Fields, "purchase_date")
	assert.Contains(t, res.Errors[0].Fields, "calibration_interval_type")

	scale := findBySerial(repo, "S-1")
	require.NotNil(t, scale)
	assert.Equal(t, date(2024, 5, 1), scale.PurchaseDate)
	assert.Equal(t, constants.IntervalMonths, scale.CalibrationIntervalType)
	assert.Equal(t, 6, scale.CalibrationIntervalValue)
	assert.True(t, scale.IsActive)
	require.NotNil(t, scale.CreatedBy)
	assert.Equal(t, uint64(9), *scale.CreatedBy)
	assert.Nil(t, scale.NextCalibrationDate, "импорт не назначает калибровку")

	caliper := findBySerial(repo, "SER-9")
	require.NotNil(t, caliper)
	assert.Equal(t, date(2025, 1, 1), caliper.PurchaseDate, "серийная дата Excel")
	assert.Equal(t, constants.IntervalYears, caliper.CalibrationIntervalType)

	assert.NotContains(t, cache.data, "dashboard:full:2025-01-10")
}

func TestEquipmentImport_SeparateIntervalColumns(t *testing.T) {
	repo := &fakeEquipmentRepo{items: map[uint64]*entities.Equipment{}}
	svc := NewEquipmentImportService(NewBaseService(newFakeCache(), zap.NewNop()), &fakeTxManager{}, repo, zap.NewNop())

	file := buildImportFile(t, [][]interface{}{
		{"name", "serial_number", "category", "purchase_date", "model_number", "manufacturer", "location", "calibration_interval_type", "calibration_interval_value", "is_active"},
		{"Gauge", "G-1", "Pressure", "2023-02-28", "PG", "Wika", "Line 3", "weeks", 12, "false"},
	})

	res, err := svc.Import(context.Background(), 0, file)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	gauge := findBySerial(repo, "G-1")
	require.NotNil(t, gauge)
	assert.Equal(t, constants.IntervalWeeks, gauge.CalibrationIntervalType)
	assert.Equal(t, 12, gauge.CalibrationIntervalValue)
	assert.False(t, gauge.IsActive)
	assert.Nil(t, gauge.CreatedBy)
}

func TestEquipmentImport_BadFiles(t *testing.T) {
	svc := NewEquipmentImportService(NewBaseService(newFakeCache(), zap.NewNop()), &fakeTxManager{}, &fakeEquipmentRepo{}, zap.NewNop())

	tests := []struct {
		name string
		file func(t *testing.T) *bytes.Buffer
	}{
		{"not an xlsx", func(t *testing.T) *bytes.Buffer { return bytes.NewBufferString(strings.Repeat("x", 64)) }},
		{"no header", func(t *testing.T) *bytes.Buffer {
			return buildImportFile(t, [][]interface{}{{"Foo", "Bar"}, {"1", "2"}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), 1, tt.file(t))
			var httpErr *apperrors.HttpError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Code)
			assert.Contains(t, httpErr.Details, "file")
		})
	}
}
