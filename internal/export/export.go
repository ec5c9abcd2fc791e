// Package export writes what was fetched from the portal to an excel workbook,
// one sheet per category.
package export

import (
	"fatec-api/internal/siga"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	SHEET_PROFILE           = "Perfil"
	SHEET_HISTORY           = "Histórico"
	SHEET_SCHOOL_GRADE      = "Grade"
	SHEET_SCHEDULES         = "Horários"
	SHEET_PARTIAL_GRADES    = "Notas Parciais"
	SHEET_ENROLLED          = "Disciplinas"
	SHEET_EXAM_CALENDAR     = "Provas"
	SHEET_ACADEMIC_CALENDAR = "Calendário"
	SHEET_EMAILS            = "E-mails"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Segunda",
	time.Tuesday:   "Terça",
	time.Wednesday: "Quarta",
	time.Thursday:  "Quinta",
	time.Friday:    "Sexta",
	time.Saturday:  "Sábado",
}

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

func number(n siga.Number) any {
	if !n.Valid() {
		return ""
	}
	return n.Float64()
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func clock(t time.Time) string {
	return t.Format("15:04")
}

func profileSheet(p siga.Profile) sheet {
	return sheet{
		name:   SHEET_PROFILE,
		header: []any{"Campo", "Valor"},
		rows: [][]any{
			{"Nome", p.Name},
			{"RA", p.Code},
			{"Curso", p.Course},
			{"Período", p.Period},
			{"Unidade", p.Unit},
			{"PR", number(p.AverageGrade)},
			{"PP", number(p.Progress)},
			{"E-mail", p.Email},
			{"CPF", p.Cpf},
			{"Nascimento", date(p.Birthday)},
		},
	}
}

func historySheet(h siga.History) sheet {
	s := sheet{
		name:   SHEET_HISTORY,
		header: []any{"Sigla", "Disciplina", "Período", "Nota", "Frequência", "Faltas", "Situação", "Observação"},
	}
	for _, e := range h.Entries {
		d := e.Discipline
		s.rows = append(s.rows, []any{
			d.Code, d.Name, d.Period,
			number(d.Grade), number(d.Frequency), number(d.Absences),
			string(d.State), e.Observation,
		})
	}
	return s
}

func schoolGradeSheet(g siga.SchoolGrade) sheet {
	s := sheet{
		name:   SHEET_SCHOOL_GRADE,
		header: []any{"Semestre", "Sigla", "Disciplina", "Aulas", "Nota", "Frequência", "Período", "Situação"},
	}
	for _, semester := range g.Semesters {
		for _, d := range semester.Disciplines {
			s.rows = append(s.rows, []any{
				semester.Number, d.Code, d.Name,
				number(d.ClassHours), number(d.Grade), number(d.Frequency),
				d.Period, string(d.State),
			})
		}
	}
	return s
}

func schedulesSheet(schedules []siga.Schedule) sheet {
	s := sheet{
		name:   SHEET_SCHEDULES,
		header: []any{"Dia", "Início", "Fim", "Sigla", "Turma", "Próxima aula"},
	}
	for _, schedule := range schedules {
		for _, p := range schedule.Periods {
			s.rows = append(s.rows, []any{
				weekdayNames[schedule.Weekday],
				clock(p.StartAt), clock(p.EndAt),
				p.Discipline.Code, p.Discipline.ClassroomCode,
				date(p.StartAt),
			})
		}
	}
	return s
}

func partialGradesSheet(grades []siga.PartialGrade) sheet {
	s := sheet{
		name:   SHEET_PARTIAL_GRADES,
		header: []any{"Sigla", "Disciplina", "Avaliação", "Título", "Peso", "Nota", "Lançamento"},
	}
	for _, g := range grades {
		for _, e := range g.Evaluations {
			grade := number(e.Grade)
			if !e.IsGraded() {
				grade = ""
			}
			s.rows = append(s.rows, []any{
				g.Discipline.Code, g.Discipline.Name,
				e.Code, e.Title, number(e.Weight), grade, e.ReleaseDate,
			})
		}
	}
	return s
}

func enrolledSheet(disciplines []siga.Discipline) sheet {
	s := sheet{
		name:   SHEET_ENROLLED,
		header: []any{"Sigla", "Disciplina", "Turma", "Professor", "Faltas", "Presenças"},
	}
	for _, d := range disciplines {
		s.rows = append(s.rows, []any{
			d.Code, d.Name, d.ClassroomCode, d.TeacherName,
			number(d.Absences), number(d.Presences),
		})
	}
	return s
}

func examCalendarSheet(entries []siga.ExamCalendarEntry) sheet {
	s := sheet{
		name:   SHEET_EXAM_CALENDAR,
		header: []any{"Sigla", "Disciplina", "Avaliação", "Data"},
	}
	for _, entry := range entries {
		for _, exam := range entry.Exams {
			s.rows = append(s.rows, []any{entry.Code, entry.Name, exam.Name, date(exam.Date)})
		}
	}
	return s
}

func academicCalendarSheet(calendar siga.Calendar) sheet {
	s := sheet{
		name:   SHEET_ACADEMIC_CALENDAR,
		header: []any{"Data", "Evento", "Motivo"},
	}
	for _, month := range calendar.Months {
		for _, event := range month.Events {
			s.rows = append(s.rows, []any{date(event.Date), event.Name, event.Reason})
		}
	}
	return s
}

func emailsSheet(emails []siga.RegisteredEmail) sheet {
	s := sheet{
		name:   SHEET_EMAILS,
		header: []any{"Integração", "E-mail"},
	}
	for _, e := range emails {
		s.rows = append(s.rows, []any{string(e.Integration), e.Email})
	}
	return s
}

// sheets collects a sheet for every category the student has, categories
// that were never fetched are skipped.
func sheets(student *siga.Student) []sheet {
	var out []sheet
	if v, ok := student.Profile(); ok {
		out = append(out, profileSheet(v))
	}
	if v, ok := student.History(); ok {
		out = append(out, historySheet(v))
	}
	if v, ok := student.SchoolGrade(); ok {
		out = append(out, schoolGradeSheet(v))
	}
	if v, ok := student.Schedules(); ok {
		out = append(out, schedulesSheet(v))
	}
	if v, ok := student.PartialGrades(); ok {
		out = append(out, partialGradesSheet(v))
	}
	if v, ok := student.EnrolledDisciplines(); ok {
		out = append(out, enrolledSheet(v))
	}
	if v, ok := student.ExamCalendar(); ok {
		out = append(out, examCalendarSheet(v))
	}
	if v, ok := student.AcademicCalendar(); ok {
		out = append(out, academicCalendarSheet(v))
	}
	if v, ok := student.RegisteredEmails(); ok {
		out = append(out, emailsSheet(v))
	}
	return out
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	err := f.SetSheetRow(s.name, "A1", &s.header)
	if err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	err = f.SetCellStyle(s.name, "A1", lastHeader, headerStyle)
	if err != nil {
		return err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		err = f.SetSheetRow(s.name, cell, &row)
		if err != nil {
			return err
		}
	}
	return nil
}

// Workbook builds a workbook out of the student's data, the caller must close it.
func Workbook(student *siga.Student) (*excelize.File, error) {
	all := sheets(student)
	if len(all) == 0 {
		return nil, fmt.Errorf("nothing to export, no category was fetched")
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, s := range all {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), s.name)
		} else {
			_, err = f.NewSheet(s.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}

		err = writeSheet(f, s, headerStyle)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// WriteFile exports the student's data as xlsx to `path`. The workbook is built
// before the file is created, so a failed export leaves no file behind.
func WriteFile(path string, student *siga.Student) error {
	workbook, err := Workbook(student)
	if err != nil {
		return err
	}
	defer workbook.Close()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	_, err = workbook.WriteTo(f)
	if err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
