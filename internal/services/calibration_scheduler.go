package services

import (
	"fmt"
	"time"

	"calibrify/internal/entities"
	"calibrify/pkg/constants"
	"calibrify/pkg/utils"
)

// IntervalDays переводит интервал калибровки в дни по номинальной таблице:
// days x1, weeks x7, months x30, years x365. Календарь не учитывается.
func IntervalDays(intervalType constants.IntervalType, value int) (int, error) {
	perUnit, ok := constants.DaysPerUnit[intervalType]
	if !ok {
		return 0, fmt.Errorf("неизвестный тип интервала калибровки: %q", intervalType)
	}
	if value < 1 {
		return 0, fmt.Errorf("значение интервала калибровки должно быть положительным: %d", value)
	}
	return value * perUnit, nil
}

// ScheduleCalibration записывает в оборудование дату последней калибровки
// и рассчитывает следующую. calibrationDay - календарная дата (полночь UTC).
// Каждая новая калибровка перезаписывает обе даты, даже если она старше текущей.
func ScheduleCalibration(e *entities.Equipment, calibrationDay time.Time) error {
	days, err := IntervalDays(e.CalibrationIntervalType, e.CalibrationIntervalValue)
	if err != nil {
		return err
	}

	last := utils.DateOnly(calibrationDay, time.UTC)
	next := utils.AddDays(last, days)

	e.LastCalibrationDate = &last
	e.NextCalibrationDate = &next
	return nil
}
