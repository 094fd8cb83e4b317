package services

import (
	"time"

	"calibrify/pkg/utils"
)

// Clock - текущее время и "сегодня" в часовом поясе приложения.
type Clock struct {
	now func() time.Time
	loc *time.Location
}

func NewClock(loc *time.Location) Clock {
	return Clock{now: time.Now, loc: loc}
}

// FixedClock используется в тестах и сидерах.
func FixedClock(t time.Time, loc *time.Location) Clock {
	return Clock{now: func() time.Time { return t }, loc: loc}
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Today - сегодняшняя календарная дата как полночь UTC.
func (c Clock) Today() time.Time {
	return utils.DateOnly(c.Now(), c.Location())
}

// DayStart - начало календарного дня d в часовом поясе приложения.
func (c Clock) DayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.Location())
}
