package commands

import (
	"fatec-api/internal/siga"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Segunda",
	time.Tuesday:   "Terça",
	time.Wednesday: "Quarta",
	time.Thursday:  "Quinta",
	time.Friday:    "Sexta",
	time.Saturday:  "Sábado",
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006")
}

func renderProfile(p siga.Profile) {
	t := newTable()
	t.AppendRows([]table.Row{
		{"Nome", p.Name},
		{"RA", p.Code},
		{"Curso", p.Course},
		{"Período", p.Period},
		{"Unidade", p.Unit},
		{"PR", p.AverageGrade},
		{"PP", p.Progress},
		{"E-mail", p.Email},
		{"CPF", p.Cpf},
		{"Nascimento", date(p.Birthday)},
	})
	t.Render()
}

func renderExamCalendar(entries []siga.ExamCalendarEntry) {
	t := newTable()
	t.AppendHeader(table.Row{"Sigla", "Disciplina", "Avaliação", "Data"})
	for _, entry := range entries {
		for _, exam := range entry.Exams {
			t.AppendRow(table.Row{entry.Code, entry.Name, exam.Name, date(exam.Date)})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 2, AutoMerge: true}})
	t.Render()
}

func renderCalendar(calendar siga.Calendar) {
	t := newTable()
	t.AppendHeader(table.Row{"Data", "Evento", "Motivo"})
	for _, month := range calendar.Months {
		for _, event := range month.Events {
			t.AppendRow(table.Row{date(event.Date), event.Name, event.Reason})
		}
	}
	t.Render()
}

func renderSchoolGrade(grade siga.SchoolGrade) {
	t := newTable()
	t.AppendHeader(table.Row{"Semestre", "Sigla", "Disciplina", "Aulas", "Nota", "Frequência", "Situação"})
	for _, semester := range grade.Semesters {
		for _, d := range semester.Disciplines {
			t.AppendRow(table.Row{semester.Number, d.Code, d.Name, d.ClassHours, d.Grade, d.Frequency, d.State})
		}
		t.AppendSeparator()
	}
	t.Render()
}

func renderHistory(history siga.History) {
	t := newTable()
	t.AppendHeader(table.Row{"Sigla", "Disciplina", "Período", "Nota", "Frequência", "Faltas", "Observação"})
	for _, e := range history.Entries {
		d := e.Discipline
		t.AppendRow(table.Row{d.Code, d.Name, d.Period, d.Grade, d.Frequency, d.Absences, e.Observation})
	}
	t.Render()
}

func renderSchedules(schedules []siga.Schedule) {
	t := newTable()
	t.AppendHeader(table.Row{"Dia", "Horário", "Sigla", "Turma", "Próxima aula"})
	for _, schedule := range schedules {
		for _, p := range schedule.Periods {
			t.AppendRow(table.Row{
				weekdayNames[schedule.Weekday],
				p.StartAt.Format("15:04") + " - " + p.EndAt.Format("15:04"),
				p.Discipline.Code,
				p.Discipline.ClassroomCode,
				date(p.StartAt),
			})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	t.Render()
}

func renderEmails(emails []siga.RegisteredEmail) {
	t := newTable()
	t.AppendHeader(table.Row{"Integração", "E-mail"})
	for _, e := range emails {
		t.AppendRow(table.Row{e.Integration, e.Email})
	}
	t.Render()
}

func renderPartialGrades(grades []siga.PartialGrade) {
	t := newTable()
	t.AppendHeader(table.Row{"Sigla", "Avaliação", "Título", "Peso", "Nota", "Lançamento"})
	for _, g := range grades {
		for _, e := range g.Evaluations {
			grade := "-"
			if e.IsGraded() {
				grade = e.Grade.String()
			}
			t.AppendRow(table.Row{g.Discipline.Code, e.Code, e.Title, e.Weight, grade, e.ReleaseDate})
		}
		t.AppendSeparator()
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	t.Render()
}

func renderDisciplines(disciplines []siga.Discipline) {
	t := newTable()
	t.AppendHeader(table.Row{"Sigla", "Disciplina", "Turma", "Professor", "Faltas", "Presenças"})
	for _, d := range disciplines {
		t.AppendRow(table.Row{d.Code, d.Name, d.ClassroomCode, d.TeacherName, d.Absences, d.Presences})
	}
	t.Render()
}
