package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"calibrify/internal/dto"
	"calibrify/internal/repositories"
	"calibrify/pkg/constants"
	"calibrify/pkg/utils"
)

const (
	ScheduleStatusOverdue = "Overdue"
	ScheduleStatusDue     = "Due"
	ScheduleStatusOK      = "OK"
	ScheduleStatusNever   = "Never calibrated"
)

type ReportServiceInterface interface {
	GetCalibrationSchedule(ctx context.Context, filter repositories.ScheduleReportFilter) ([]dto.ScheduleReportItemDTO, error)
	BuildCalibrationScheduleXLSX(items []dto.ScheduleReportItemDTO) (*excelize.File, error)
}

type reportService struct {
	reportRepo repositories.ReportRepositoryInterface
	clock      Clock
	logger     *zap.Logger
}

func NewReportService(reportRepo repositories.ReportRepositoryInterface, clock Clock, logger *zap.Logger) ReportServiceInterface {
	return &reportService{reportRepo: reportRepo, clock: clock, logger: logger}
}

// ScheduleStatus - состояние калибровки оборудования на дату today.
func ScheduleStatus(next *time.Time, today time.Time) string {
	switch {
	case next == nil:
		return ScheduleStatusNever
	case next.Before(today):
		return ScheduleStatusOverdue
	case !next.After(utils.AddDays(today, constants.DueWindowDays)):
		return ScheduleStatusDue
	}
	return ScheduleStatusOK
}

func (s *reportService) GetCalibrationSchedule(ctx context.Context, filter repositories.ScheduleReportFilter) ([]dto.ScheduleReportItemDTO, error) {
	rows, err := s.reportRepo.GetCalibrationSchedule(ctx, filter)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	items := make([]dto.ScheduleReportItemDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.ScheduleReportItemDTO{
			ID:                  r.ID,
			Name:                r.Name,
			SerialNumber:        r.SerialNumber,
			Category:            r.Category,
			Location:            r.Location,
			Interval:            fmt.Sprintf("%d %s", r.CalibrationIntervalValue, r.CalibrationIntervalType),
			LastCalibrationDate: utils.FormatDatePtr(r.LastCalibrationDate),
			NextCalibrationDate: utils.FormatDatePtr(r.NextCalibrationDate),
			Status:              ScheduleStatus(r.NextCalibrationDate, today),
		})
	}
	return items, nil
}

var scheduleReportHeaders = []interface{}{
	"ID", "Name", "Serial number", "Category", "Location", "Interval",
	"Last calibration", "Next calibration", "Status",
}

func (s *reportService) BuildCalibrationScheduleXLSX(items []dto.ScheduleReportItemDTO) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Calibration schedule"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &scheduleReportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return nil, err
	}

	for i, item := range items {
		row := []interface{}{
			item.ID, item.Name, item.SerialNumber, item.Category, item.Location, item.Interval,
			utils.SafeDeref(item.LastCalibrationDate), utils.SafeDeref(item.NextCalibrationDate), item.Status,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(sheet, "B", "B", 30)
	_ = f.SetColWidth(sheet, "C", "F", 20)
	_ = f.SetColWidth(sheet, "G", "I", 18)
	return f, nil
}
