package siga

import (
	"time"
)

type DisciplineState string

const (
	DISCIPLINE_APPROVED     DisciplineState = "approved"
	DISCIPLINE_ATTENDING    DisciplineState = "attending"
	DISCIPLINE_NOT_ATTENDED DisciplineState = "not-attended"
	DISCIPLINE_DISMISSED    DisciplineState = "dismissed"
	DISCIPLINE_DISMISSED_AE DisciplineState = "dismissed-ae"
)

// Discipline is a course subject, most fields are only filled by some of the pages.
// Numeric fields that were not served are NaN.
type Discipline struct {
	Code          string          `json:"code"`
	Name          string          `json:"name,omitempty"`
	ClassHours    Number          `json:"classHours"`
	Grade         Number          `json:"grade"`
	Frequency     Number          `json:"frequency"`
	Absences      Number          `json:"absences"`
	Presences     Number          `json:"presences"`
	Period        string          `json:"period,omitempty"`
	ClassroomCode string          `json:"classroomCode,omitempty"`
	ClassroomId   int64           `json:"classroomId,omitempty"`
	CourseId      int64           `json:"courseId,omitempty"`
	PeriodId      int64           `json:"periodId,omitempty"`
	TeacherId     int64           `json:"teacherId,omitempty"`
	TeacherName   string          `json:"teacherName,omitempty"`
	State         DisciplineState `json:"state,omitempty"`
}

func newDiscipline(code, name string) Discipline {
	return Discipline{
		Code:       code,
		Name:       name,
		ClassHours: NaN(),
		Grade:      NaN(),
		Frequency:  NaN(),
		Absences:   NaN(),
		Presences:  NaN(),
	}
}

func (d Discipline) IsApproved() bool {
	return d.State == DISCIPLINE_APPROVED
}

// UNGRADED is the grade of an evaluation that has no sub-evaluation recorded yet.
const UNGRADED Number = -1

type ApplyDates struct {
	Predicted time.Time `json:"predicted"`
	Applied   time.Time `json:"applied"`
	Published time.Time `json:"published"`
}

type Evaluation struct {
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Weight      Number      `json:"weight"`
	Grade       Number      `json:"grade"`
	ReleaseDate string      `json:"releaseDate"`
	ApplyDates  *ApplyDates `json:"applyDates,omitempty"`
}

func (e Evaluation) IsGraded() bool {
	return e.Grade != UNGRADED
}

type PartialGrade struct {
	Discipline  Discipline   `json:"discipline"`
	Evaluations []Evaluation `json:"evaluations"`
}

type Period struct {
	StartAt    time.Time  `json:"startAt"`
	EndAt      time.Time  `json:"endAt"`
	Discipline Discipline `json:"discipline"`
}

// Schedule holds the periods of one weekday, Monday (1) through Saturday (6).
type Schedule struct {
	Weekday time.Weekday `json:"weekday"`
	Periods []Period     `json:"periods"`
}

type HistoryEntry struct {
	Discipline  Discipline `json:"discipline"`
	Observation string     `json:"observation"`
}

type History struct {
	Entries []HistoryEntry `json:"entries"`
}

type Semester struct {
	Number      int          `json:"number"`
	Disciplines []Discipline `json:"disciplines"`
}

type SchoolGrade struct {
	Semesters []Semester `json:"semesters"`
}

type Event struct {
	Date   time.Time `json:"date"`
	Name   string    `json:"name"`
	Reason string    `json:"reason"`
}

type Month struct {
	Events []Event `json:"events"`
}

// Calendar is the academic calendar of the current year, January first.
type Calendar struct {
	Months [12]Month `json:"months"`
}

type Exam struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

type ExamCalendarEntry struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Exams []Exam `json:"exams"`
}

type EmailIntegration string

const (
	INTEGRATION_PREFERENTIAL EmailIntegration = "preferential"
	INTEGRATION_FATEC        EmailIntegration = "fatec"
	INTEGRATION_ETEC         EmailIntegration = "etec"
	INTEGRATION_WEBSAI       EmailIntegration = "websai"
)

type RegisteredEmail struct {
	Email       string           `json:"email"`
	Integration EmailIntegration `json:"integration"`
}

type Profile struct {
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Course       string    `json:"course"`
	Period       string    `json:"period"`
	Unit         string    `json:"unit"`
	AverageGrade Number    `json:"averageGrade"`
	Progress     Number    `json:"progress"`
	Picture      string    `json:"picture"`
	Email        string    `json:"email"`
	Cpf          string    `json:"cpf"`
	Birthday     time.Time `json:"birthday"`
}
