package siga

import (
	"fatec-api/pkg/htmlutil"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	page_exam_calendar     = "exam-calendar"
	page_academic_calendar = "academic-calendar"
)

var calendarMonthIds = [12]string{
	"W0002JANEIRO",
	"W0002FEVEREIRO",
	"W0002MARCO",
	"W0002ABRIL",
	"W0002MAIO",
	"W0002JUNHO",
	"W0002JULHO",
	"W0002AGOSTO",
	"W0002SETEMBRO",
	"W0002OUTUBRO",
	"W0002NOVEMBRO",
	"W0002DEZEMBRO",
}

// extractCalendarFrame returns the source of the iframe that holds the actual calendar.
func extractCalendarFrame(doc *goquery.Document) (string, error) {
	src := strings.TrimSpace(doc.Find(`[name="Embpage1"]`).AttrOr("src", ""))
	if src == "" {
		return "", missing(page_academic_calendar, "Embpage1")
	}
	return src, nil
}

// extractAcademicCalendar reads the events of every month, `year` is the year
// the events are dated in.
func extractAcademicCalendar(doc *goquery.Document, year int, loc *time.Location) (Calendar, error) {
	var calendar Calendar
	for i, id := range calendarMonthIds {
		month := time.Month(i + 1)
		fonts := doc.Find(fmt.Sprintf(`#%s tr > td:not([bgcolor="#FFFF00"]) > font[color="#FF0000"]`, id))

		events := []Event{}
		for _, text := range htmlutil.TextNodes(fonts) {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			event, err := parseCalendarEvent(text, year, month, loc)
			if err != nil {
				return Calendar{}, malformed(page_academic_calendar, id, err)
			}
			events = append(events, event)
		}
		calendar.Months[i] = Month{Events: events}
	}
	return calendar, nil
}

// parseCalendarEvent parses "day - name - reason", the reason is optional and may
// contain dashes itself.
func parseCalendarEvent(text string, year int, month time.Month, loc *time.Location) (Event, error) {
	parts := strings.Split(text, "-")
	if len(parts) < 2 {
		return Event{}, fmt.Errorf("event %q has no name", text)
	}
	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || day < 1 || day > 31 {
		return Event{}, fmt.Errorf("event %q has an invalid day", text)
	}

	date := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if date.Month() != month {
		return Event{}, fmt.Errorf("event %q has a day %s does not have", text, month)
	}

	var reason string
	if len(parts) > 2 {
		reason = strings.TrimSpace(strings.Join(parts[2:], "-"))
	}
	return Event{
		Date:   date,
		Name:   strings.TrimSpace(parts[1]),
		Reason: reason,
	}, nil
}

// extractExamCalendar zips the discipline grid with the exam grid of each discipline,
// both are in the same order.
func extractExamCalendar(doc *goquery.Document, loc *time.Location) ([]ExamCalendarEntry, error) {
	raw, ok := doc.Find(`input[name="Grid1ContainerDataV"]`).First().Attr("value")
	if !ok {
		return nil, missing(page_exam_calendar, "Grid1ContainerDataV")
	}
	disciplines, err := decodeGrid(strings.ReplaceAll(raw, `"",`, ""))
	if err != nil {
		return nil, malformed(page_exam_calendar, "Grid1ContainerDataV", err)
	}

	var examLists [][]Exam
	var failed error
	doc.Find(`input[name^="Grid2ContainerDataV_"]`).EachWithBreak(func(_ int, input *goquery.Selection) bool {
		name := input.AttrOr("name", "")
		rows, err := decodeGrid(input.AttrOr("value", ""))
		if err != nil {
			failed = malformed(page_exam_calendar, name, err)
			return false
		}

		exams := make([]Exam, 0, len(rows))
		for _, row := range rows {
			exam, err := parseExamRow(row, loc)
			if err != nil {
				failed = malformed(page_exam_calendar, name, err)
				return false
			}
			exams = append(exams, exam)
		}
		examLists = append(examLists, exams)
		return true
	})
	if failed != nil {
		return nil, failed
	}

	if len(examLists) < len(disciplines) {
		return nil, malformed(
			page_exam_calendar,
			"Grid2ContainerDataV",
			fmt.Errorf("%d disciplines but %d exam lists", len(disciplines), len(examLists)),
		)
	}

	entries := make([]ExamCalendarEntry, len(disciplines))
	for i, row := range disciplines {
		code, err := row.field(0)
		if err != nil {
			return nil, malformed(page_exam_calendar, "Grid1ContainerDataV", err)
		}
		name, err := row.field(1)
		if err != nil {
			return nil, malformed(page_exam_calendar, "Grid1ContainerDataV", err)
		}
		entries[i] = ExamCalendarEntry{
			Code:  strings.TrimSpace(code),
			Name:  strings.TrimSpace(name),
			Exams: examLists[i],
		}
	}
	return entries, nil
}

func parseExamRow(row gridRow, loc *time.Location) (Exam, error) {
	name, err := row.field(1)
	if err != nil {
		return Exam{}, err
	}
	rawDate, err := row.field(2)
	if err != nil {
		return Exam{}, err
	}
	date, err := ParseDate(strings.Replace(rawDate, "  /  /   ", "", 1), loc)
	if err != nil {
		return Exam{}, err
	}
	return Exam{Name: strings.TrimSpace(name), Date: date}, nil
}
