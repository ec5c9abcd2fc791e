package siga

import (
	"context"
	"fmt"
	"strings"
)

const (
	report_account_name                 = "account.name"
	report_account_profile              = "account.profile"
	report_account_avisos               = "account.avisos"
	report_account_exam_calendar        = "account.exam-calendar"
	report_account_academic_calendar    = "account.academic-calendar"
	report_account_school_grade         = "account.school-grade"
	report_account_history              = "account.history"
	report_account_schedules            = "account.schedules"
	report_account_registered_emails    = "account.registered-emails"
	report_account_partial_grades       = "account.partial-grades"
	report_account_enrolled_disciplines = "account.enrolled-disciplines"
)

// retrieve runs the shared shape of every operation: make sure there is a session,
// then run `fn` with the cookie. Failures are reported under `reportId`.
func retrieve[T any](ctx context.Context, a *Account, reportId string, category Category, fn func(cookie string) (T, error)) (T, error) {
	var zero T

	cookie, err := a.ensureSession(ctx)
	if err != nil {
		return zero, err
	}

	result, err := fn(cookie)
	if err != nil {
		a.tel.ReportBroken(reportId, err)
		return zero, fmt.Errorf("%s: %w", reportId, err)
	}

	a.student.Set(category, result)
	return result, nil
}

func (a *Account) Name(ctx context.Context) (string, error) {
	return retrieve(ctx, a, report_account_name, CATEGORY_NAME, func(cookie string) (string, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.Home, cookie)
		if err != nil {
			return "", err
		}
		return extractName(doc)
	})
}

// Profile reads the home page, downloads the student's picture and then completes
// the profile with the exchange programs page.
func (a *Account) Profile(ctx context.Context) (Profile, error) {
	return retrieve(ctx, a, report_account_profile, CATEGORY_PROFILE, func(cookie string) (Profile, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.Home, cookie)
		if err != nil {
			return Profile{}, err
		}
		profile, picture, err := extractProfileHome(doc)
		if err != nil {
			return Profile{}, err
		}

		if picture != "" {
			image, err := a.client.fetchBytes(ctx, picture, cookie)
			if err != nil {
				return Profile{}, err
			}
			profile.Picture = EncodeImage(image)
		} else {
			a.tel.ReportWarning(report_account_profile, "student has no picture")
		}

		exchange, err := a.client.fetchPage(ctx, a.client.routes.ExchangePrograms, cookie)
		if err != nil {
			return Profile{}, err
		}
		err = extractProfileExchange(exchange, &profile, a.time.Location())
		if err != nil {
			return Profile{}, err
		}
		return profile, nil
	})
}

// Avisos returns the announcements shown on the home page as html.
func (a *Account) Avisos(ctx context.Context) (string, error) {
	return retrieve(ctx, a, report_account_avisos, CATEGORY_AVISOS, func(cookie string) (string, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.Home, cookie)
		if err != nil {
			return "", err
		}
		return extractAvisos(doc, a.client.baseUrl)
	})
}

func (a *Account) ExamCalendar(ctx context.Context) ([]ExamCalendarEntry, error) {
	return retrieve(ctx, a, report_account_exam_calendar, CATEGORY_EXAM_CALENDAR, func(cookie string) ([]ExamCalendarEntry, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.ExamCalendar, cookie)
		if err != nil {
			return nil, err
		}
		return extractExamCalendar(doc, a.time.Location())
	})
}

// AcademicCalendar follows the calendar page's embedded frame, events are dated
// in the current year.
func (a *Account) AcademicCalendar(ctx context.Context) (Calendar, error) {
	return retrieve(ctx, a, report_account_academic_calendar, CATEGORY_ACADEMIC_CALENDAR, func(cookie string) (Calendar, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.AcademicCalendar, cookie)
		if err != nil {
			return Calendar{}, err
		}
		frame, err := extractCalendarFrame(doc)
		if err != nil {
			return Calendar{}, err
		}

		calendarDoc, err := a.client.fetchPage(ctx, frame, cookie)
		if err != nil {
			return Calendar{}, err
		}
		now := a.time.Now()
		return extractAcademicCalendar(calendarDoc, now.Year(), now.Location())
	})
}

func (a *Account) SchoolGrade(ctx context.Context) (SchoolGrade, error) {
	return retrieve(ctx, a, report_account_school_grade, CATEGORY_SCHOOL_GRADE, func(cookie string) (SchoolGrade, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.SchoolGrade, cookie)
		if err != nil {
			return SchoolGrade{}, err
		}
		return extractSchoolGrade(doc)
	})
}

func (a *Account) History(ctx context.Context) (History, error) {
	return retrieve(ctx, a, report_account_history, CATEGORY_HISTORY, func(cookie string) (History, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.History, cookie)
		if err != nil {
			return History{}, err
		}
		return extractHistory(doc)
	})
}

// Schedules returns one schedule per weekday, monday to saturday, with every period
// dated at its next occurrence.
func (a *Account) Schedules(ctx context.Context) ([]Schedule, error) {
	return retrieve(ctx, a, report_account_schedules, CATEGORY_SCHEDULES, func(cookie string) ([]Schedule, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.Schedule, cookie)
		if err != nil {
			return nil, err
		}
		return extractSchedules(doc, a.time.Now())
	})
}

func (a *Account) RegisteredEmails(ctx context.Context) ([]RegisteredEmail, error) {
	return retrieve(ctx, a, report_account_registered_emails, CATEGORY_REGISTERED_EMAILS, func(cookie string) ([]RegisteredEmail, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.Home, cookie)
		if err != nil {
			return nil, err
		}
		emails := extractRegisteredEmails(doc)
		for _, e := range emails {
			if e.Email == "" {
				a.tel.ReportDebug(report_account_registered_emails, "empty email", string(e.Integration))
			}
		}
		return emails, nil
	})
}

func (a *Account) PartialGrades(ctx context.Context) ([]PartialGrade, error) {
	return retrieve(ctx, a, report_account_partial_grades, CATEGORY_PARTIAL_GRADES, func(cookie string) ([]PartialGrade, error) {
		doc, err := a.client.fetchPage(ctx, a.client.routes.PartialGrades, cookie)
		if err != nil {
			return nil, err
		}
		return extractPartialGrades(doc, a.time.Location())
	})
}

// EnrolledDisciplines joins the attendance totals page with the schedule page by
// discipline code, the schedule page is fetched after the attendance page.
func (a *Account) EnrolledDisciplines(ctx context.Context) ([]Discipline, error) {
	return retrieve(ctx, a, report_account_enrolled_disciplines, CATEGORY_ENROLLED_DISCIPLINES, func(cookie string) ([]Discipline, error) {
		absencesDoc, err := a.client.fetchPage(ctx, a.client.routes.PartialAbsences, cookie)
		if err != nil {
			return nil, err
		}
		absences, err := extractAbsences(absencesDoc)
		if err != nil {
			return nil, err
		}

		scheduleDoc, err := a.client.fetchPage(ctx, a.client.routes.Schedule, cookie)
		if err != nil {
			return nil, err
		}
		schedule, err := extractScheduleDisciplines(scheduleDoc)
		if err != nil {
			return nil, err
		}

		disciplines, err := joinEnrolledDisciplines(absences, schedule)
		if err != nil {
			return nil, err
		}
		return disciplines, nil
	})
}

// Categories lists every category in the order operations are usually presented.
var Categories = []Category{
	CATEGORY_NAME,
	CATEGORY_PROFILE,
	CATEGORY_AVISOS,
	CATEGORY_EXAM_CALENDAR,
	CATEGORY_ACADEMIC_CALENDAR,
	CATEGORY_SCHOOL_GRADE,
	CATEGORY_HISTORY,
	CATEGORY_SCHEDULES,
	CATEGORY_REGISTERED_EMAILS,
	CATEGORY_PARTIAL_GRADES,
	CATEGORY_ENROLLED_DISCIPLINES,
}

// ParseCategory looks up a category by its name (ex. "school-grade").
func ParseCategory(name string) (Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", name)
}

// Fetch runs the retrieval operation of a category and returns its result untyped,
// it lets callers (the cli, the http server) address operations by name.
func (a *Account) Fetch(ctx context.Context, category Category) (any, error) {
	switch category {
	case CATEGORY_NAME:
		return a.Name(ctx)
	case CATEGORY_PROFILE:
		return a.Profile(ctx)
	case CATEGORY_AVISOS:
		return a.Avisos(ctx)
	case CATEGORY_EXAM_CALENDAR:
		return a.ExamCalendar(ctx)
	case CATEGORY_ACADEMIC_CALENDAR:
		return a.AcademicCalendar(ctx)
	case CATEGORY_SCHOOL_GRADE:
		return a.SchoolGrade(ctx)
	case CATEGORY_HISTORY:
		return a.History(ctx)
	case CATEGORY_SCHEDULES:
		return a.Schedules(ctx)
	case CATEGORY_REGISTERED_EMAILS:
		return a.RegisteredEmails(ctx)
	case CATEGORY_PARTIAL_GRADES:
		return a.PartialGrades(ctx)
	case CATEGORY_ENROLLED_DISCIPLINES:
		return a.EnrolledDisciplines(ctx)
	}
	return nil, fmt.Errorf("unknown category %q", string(category))
}
