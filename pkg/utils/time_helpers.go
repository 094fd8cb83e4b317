package utils

import (
	"time"

	"calibrify/pkg/constants"
)

// DateOnly - календарная дата момента t в поясе loc, как полночь UTC.
// Все DATE-значения (last/next_calibration_date) хранятся в этом виде.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthStart - первое число месяца даты d.
func MonthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AddDays прибавляет n календарных дней к дате.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(constants.DateLayout, s)
}

func FormatDatePtr(d *time.Time) *string {
	if d == nil {
		return nil
	}
	s := d.Format(constants.DateLayout)
	return &s
}
