package siga

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const page_schedule = "schedule"

// NextOccurrence returns the next time a class given on `weekday` from `start` to
// `end` ("HH:MM") happens, at or after `now` truncated to the minute. A class that
// already started today is moved to next week.
func NextOccurrence(now time.Time, weekday time.Weekday, start, end string) (time.Time, time.Time, error) {
	startHour, startMinute, err := parseClock(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endHour, endMinute, err := parseClock(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	loc := now.Location()
	now = time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, loc)

	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	startAt := time.Date(now.Year(), now.Month(), now.Day()+days, startHour, startMinute, 0, 0, loc)
	if startAt.Before(now) {
		startAt = startAt.AddDate(0, 0, 7)
	}

	endAt := time.Date(startAt.Year(), startAt.Month(), startAt.Day(), endHour, endMinute, 0, 0, loc)
	if endAt.Before(startAt) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return startAt, endAt, nil
}

// schedule rows are [_, "HH:MM-HH:MM", code, classroom]
func parsePeriodRow(row gridRow, weekday time.Weekday, now time.Time) (Period, error) {
	span, err := row.field(1)
	if err != nil {
		return Period{}, err
	}
	start, end, ok := strings.Cut(span, "-")
	if !ok {
		return Period{}, fmt.Errorf("invalid period %q", span)
	}
	startAt, endAt, err := NextOccurrence(now, weekday, start, end)
	if err != nil {
		return Period{}, err
	}

	code, err := row.field(2)
	if err != nil {
		return Period{}, err
	}
	classroom, err := row.field(3)
	if err != nil {
		return Period{}, err
	}

	discipline := newDiscipline(strings.TrimSpace(code), "")
	discipline.ClassroomCode = strings.TrimSpace(classroom)

	return Period{StartAt: startAt, EndAt: endAt, Discipline: discipline}, nil
}

// extractSchedules reads the six weekday grids, Grid2 (monday) to Grid7 (saturday).
func extractSchedules(doc *goquery.Document, now time.Time) ([]Schedule, error) {
	schedules := make([]Schedule, 0, 6)
	for weekday := time.Monday; weekday <= time.Saturday; weekday++ {
		name := fmt.Sprintf("Grid%dContainerDataV", int(weekday)+1)
		rows, err := findGrid(doc, page_schedule, name)
		if err != nil {
			return nil, err
		}

		periods := make([]Period, 0, len(rows))
		for _, row := range rows {
			period, err := parsePeriodRow(row, weekday, now)
			if err != nil {
				return nil, malformed(page_schedule, name, err)
			}
			periods = append(periods, period)
		}
		schedules = append(schedules, Schedule{Weekday: weekday, Periods: periods})
	}
	return schedules, nil
}
