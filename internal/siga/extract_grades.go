package siga

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	page_partial_grades   = "partial-grades"
	page_partial_absences = "partial-absences"
)

type partialGradeSdt struct {
	Code      string    `json:"ACD_DisciplinaSigla"`
	Name      string    `json:"ACD_DisciplinaNome"`
	Frequency Number    `json:"ACD_AlunoHistoricoItemFrequencia"`
	Grade     Number    `json:"ACD_AlunoHistoricoItemMediaFinal"`
	Dates     []dateSdt `json:"Datas"`
}

type dateSdt struct {
	Code          string          `json:"ACD_PlanoEnsinoAvaliacaoSufixo"`
	Title         string          `json:"ACD_PlanoEnsinoAvaliacaoTitulo"`
	Description   string          `json:"ACD_PlanoEnsinoAvaliacaoDescricao"`
	Weight        Number          `json:"ACD_PlanoEnsinoAvaliacaoPeso"`
	PredictedDate string          `json:"ACD_PlanoEnsinoAvaliacaoDataPrevista"`
	AppliedDate   string          `json:"ACD_PlanoEnsinoAvaliacaoDataProva"`
	PublishedDate string          `json:"ACD_PlanoEnsinoAvaliacaoDataPublicacao"`
	Evaluations   []evaluationSdt `json:"Avaliacoes"`
}

type evaluationSdt struct {
	Grade       Number `json:"ACD_PlanoEnsinoAvaliacaoParcialNota"`
	ReleaseDate string `json:"ACD_PlanoEnsinoAvaliacaoParcialDataLancamento"`
}

// lenientDate is used for the optional apply dates, which the portal fills with
// whatever placeholder it likes.
func lenientDate(str string, loc *time.Location) time.Time {
	date, err := ParseDate(str, loc)
	if err != nil {
		return time.Time{}
	}
	return date
}

func (d dateSdt) evaluation(loc *time.Location) Evaluation {
	evaluation := Evaluation{
		Code:        strings.TrimSpace(d.Code),
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Weight:      d.Weight,
		Grade:       UNGRADED,
	}
	if len(d.Evaluations) > 0 {
		evaluation.Grade = d.Evaluations[0].Grade
		evaluation.ReleaseDate = d.Evaluations[0].ReleaseDate
	}
	if d.PredictedDate != "" || d.AppliedDate != "" || d.PublishedDate != "" {
		evaluation.ApplyDates = &ApplyDates{
			Predicted: lenientDate(d.PredictedDate, loc),
			Applied:   lenientDate(d.AppliedDate, loc),
			Published: lenientDate(d.PublishedDate, loc),
		}
	}
	return evaluation
}

func extractPartialGrades(doc *goquery.Document, loc *time.Location) ([]PartialGrade, error) {
	state, err := findGXState(doc, page_partial_grades)
	if err != nil {
		return nil, err
	}

	var sdts []partialGradeSdt
	err = state.Decode("vACD_ALUNONOTASPARCIAISRESUMO_SDT", &sdts)
	if err != nil {
		return nil, malformed(page_partial_grades, "vACD_ALUNONOTASPARCIAISRESUMO_SDT", err)
	}

	grades := make([]PartialGrade, 0, len(sdts))
	for _, sdt := range sdts {
		discipline := newDiscipline(strings.TrimSpace(sdt.Code), strings.TrimSpace(sdt.Name))
		discipline.Frequency = sdt.Frequency
		discipline.Grade = sdt.Grade

		evaluations := make([]Evaluation, 0, len(sdt.Dates))
		for _, date := range sdt.Dates {
			evaluations = append(evaluations, date.evaluation(loc))
		}
		grades = append(grades, PartialGrade{Discipline: discipline, Evaluations: evaluations})
	}
	return grades, nil
}

type absenceSdt struct {
	Code        string  `json:"ACD_DisciplinaSigla"`
	Name        string  `json:"ACD_DisciplinaNome"`
	Absences    Number  `json:"TotalAusencias"`
	Presences   Number  `json:"TotalPresencas"`
	ClassroomId flexInt `json:"ACD_AlunoHistoricoItemTurmaId"`
	CourseId    flexInt `json:"ACD_AlunoHistoricoItemCursoId"`
	TeacherId   flexInt `json:"ACD_AlunoHistoricoItemProfessorId"`
	PeriodId    flexInt `json:"ACD_Periodoid"`
}

type scheduleDisciplineSdt struct {
	Code          string `json:"ACD_DisciplinaSigla"`
	ClassroomCode string `json:"ACD_TurmaLetra"`
	TeacherName   string `json:"Pro_PessoalNome"`
}

func extractAbsences(doc *goquery.Document) ([]absenceSdt, error) {
	state, err := findGXState(doc, page_partial_absences)
	if err != nil {
		return nil, err
	}
	var absences []absenceSdt
	err = state.Decode("vFALTAS", &absences)
	if err != nil {
		return nil, malformed(page_partial_absences, "vFALTAS", err)
	}
	return absences, nil
}

func extractScheduleDisciplines(doc *goquery.Document) ([]scheduleDisciplineSdt, error) {
	state, err := findGXState(doc, page_schedule)
	if err != nil {
		return nil, err
	}
	var disciplines []scheduleDisciplineSdt
	err = state.Decode("vALU_ALUNOHISTORICOITEM_SDT", &disciplines)
	if err != nil {
		return nil, malformed(page_schedule, "vALU_ALUNOHISTORICOITEM_SDT", err)
	}
	return disciplines, nil
}

// joinEnrolledDisciplines merges the attendance totals with the classroom and teacher
// of the schedule page. Every attendance record must have a schedule record.
func joinEnrolledDisciplines(absences []absenceSdt, schedule []scheduleDisciplineSdt) ([]Discipline, error) {
	byCode := make(map[string]scheduleDisciplineSdt, len(schedule))
	for _, s := range schedule {
		code := strings.TrimSpace(s.Code)
		if _, ok := byCode[code]; !ok {
			byCode[code] = s
		}
	}

	disciplines := make([]Discipline, 0, len(absences))
	for _, a := range absences {
		code := strings.TrimSpace(a.Code)
		match, ok := byCode[code]
		if !ok {
			return nil, malformed(
				page_schedule,
				"vALU_ALUNOHISTORICOITEM_SDT",
				fmt.Errorf("no schedule entry for discipline %q", code),
			)
		}

		discipline := newDiscipline(code, strings.TrimSpace(a.Name))
		discipline.Absences = a.Absences
		discipline.Presences = a.Presences
		discipline.ClassroomId = int64(a.ClassroomId)
		discipline.CourseId = int64(a.CourseId)
		discipline.PeriodId = int64(a.PeriodId)
		discipline.TeacherId = int64(a.TeacherId)
		discipline.ClassroomCode = strings.TrimSpace(match.ClassroomCode)
		discipline.TeacherName = strings.TrimSpace(match.TeacherName)
		disciplines = append(disciplines, discipline)
	}
	return disciplines, nil
}
