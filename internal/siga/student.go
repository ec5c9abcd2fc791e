package siga

import "sync"

// Category names one kind of data kept by a Student.
type Category string

const (
	CATEGORY_NAME                 Category = "name"
	CATEGORY_PROFILE              Category = "profile"
	CATEGORY_AVISOS               Category = "avisos"
	CATEGORY_EXAM_CALENDAR        Category = "exam-calendar"
	CATEGORY_ACADEMIC_CALENDAR    Category = "academic-calendar"
	CATEGORY_SCHOOL_GRADE         Category = "school-grade"
	CATEGORY_HISTORY              Category = "history"
	CATEGORY_SCHEDULES            Category = "schedules"
	CATEGORY_REGISTERED_EMAILS    Category = "registered-emails"
	CATEGORY_PARTIAL_GRADES       Category = "partial-grades"
	CATEGORY_ENROLLED_DISCIPLINES Category = "enrolled-disciplines"
)

// Student keeps the last value fetched for each category of one account.
// There is no invalidation, a value is replaced the next time it is fetched.
type Student struct {
	mutex  sync.RWMutex
	values map[Category]any
}

func NewStudent() *Student {
	return &Student{values: map[Category]any{}}
}

func (s *Student) Get(category Category) (any, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	value, ok := s.values[category]
	return value, ok
}

func (s *Student) Set(category Category, value any) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[category] = value
}

func load[T any](s *Student, category Category) (T, bool) {
	value, ok := s.Get(category)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := value.(T)
	return typed, ok
}

func (s *Student) Name() (string, bool) {
	return load[string](s, CATEGORY_NAME)
}

func (s *Student) Profile() (Profile, bool) {
	return load[Profile](s, CATEGORY_PROFILE)
}

func (s *Student) Avisos() (string, bool) {
	return load[string](s, CATEGORY_AVISOS)
}

func (s *Student) ExamCalendar() ([]ExamCalendarEntry, bool) {
	return load[[]ExamCalendarEntry](s, CATEGORY_EXAM_CALENDAR)
}

func (s *Student) AcademicCalendar() (Calendar, bool) {
	return load[Calendar](s, CATEGORY_ACADEMIC_CALENDAR)
}

func (s *Student) SchoolGrade() (SchoolGrade, bool) {
	return load[SchoolGrade](s, CATEGORY_SCHOOL_GRADE)
}

func (s *Student) History() (History, bool) {
	return load[History](s, CATEGORY_HISTORY)
}

func (s *Student) Schedules() ([]Schedule, bool) {
	return load[[]Schedule](s, CATEGORY_SCHEDULES)
}

func (s *Student) RegisteredEmails() ([]RegisteredEmail, bool) {
	return load[[]RegisteredEmail](s, CATEGORY_REGISTERED_EMAILS)
}

func (s *Student) PartialGrades() ([]PartialGrade, bool) {
	return load[[]PartialGrade](s, CATEGORY_PARTIAL_GRADES)
}

func (s *Student) EnrolledDisciplines() ([]Discipline, bool) {
	return load[[]Discipline](s, CATEGORY_ENROLLED_DISCIPLINES)
}
