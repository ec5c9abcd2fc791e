package siga

import (
	"fatec-api/pkg/htmlutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	page_school_grade = "school-grade"
	page_history      = "history"
)

var disciplineStateColors = map[string]DisciplineState{
	"#418a58": DISCIPLINE_DISMISSED,
	"#75fa9f": DISCIPLINE_APPROVED,
	"#96ffd2": DISCIPLINE_DISMISSED_AE,
	"#b2d4fd": DISCIPLINE_ATTENDING,
	"#ffffff": DISCIPLINE_NOT_ATTENDED,
}

// styleProperty returns the value of a property in an inline style attribute.
func styleProperty(style, property string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), property) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func schoolGradeCells(div *goquery.Selection) []string {
	var cells []string
	div.Find("tr td").Each(func(_ int, td *goquery.Selection) {
		text := htmlutil.Normalize(td.Text())
		if !strings.Contains(text, "NF:") {
			cells = append(cells, text)
			return
		}
		cells = append(cells, htmlutil.Normalize(htmlutil.OwnText(td)))
		td.Find("b").Each(func(_ int, b *goquery.Selection) {
			cells = append(cells, htmlutil.Normalize(b.Text()))
		})
	})
	return cells
}

func extractSchoolGrade(doc *goquery.Document) (SchoolGrade, error) {
	if doc.Find("#TABLE1").Length() == 0 {
		return SchoolGrade{}, missing(page_school_grade, "TABLE1")
	}

	grade := SchoolGrade{Semesters: []Semester{}}
	doc.Find("#TABLE1 table [valign=TOP]").Each(func(i int, column *goquery.Selection) {
		semester := Semester{Number: i + 1, Disciplines: []Discipline{}}

		column.Find("div").Each(func(_ int, div *goquery.Selection) {
			cells := schoolGradeCells(div)
			at := func(i int) string {
				if i < len(cells) {
					return cells[i]
				}
				return ""
			}

			discipline := newDiscipline(at(0), at(2))
			discipline.ClassHours = ParseNumber(strings.Replace(at(1), "AS:", "", 1))
			color := strings.ToLower(styleProperty(div.AttrOr("style", ""), "background-color"))
			discipline.State = disciplineStateColors[color]

			if len(cells) > 3 {
				discipline.Grade = ParseNumber(at(4))
				discipline.Frequency = ParseNumber(at(5))
				discipline.Period = at(6)
			}
			semester.Disciplines = append(semester.Disciplines, discipline)
		})

		grade.Semesters = append(grade.Semesters, semester)
	})
	return grade, nil
}

const approvedIcon = "Resources/checkTrue.png"

// history rows are [code, name, period, icon, grade, frequency, absences, observation]
func parseHistoryRow(row gridRow) (HistoryEntry, error) {
	fields := make([]string, 8)
	for i := range fields {
		value, err := row.field(i)
		if err != nil {
			return HistoryEntry{}, err
		}
		fields[i] = value
	}

	discipline := newDiscipline(strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]))
	discipline.Period = strings.TrimSpace(fields[2])
	discipline.Grade = ParseNumber(fields[4])
	discipline.Frequency = ParseNumber(fields[5])
	discipline.Absences = ParseNumber(fields[6])

	observation := strings.TrimSpace(fields[7])
	switch {
	case fields[3] == approvedIcon:
		discipline.State = DISCIPLINE_APPROVED
	case observation == "Em Curso":
		discipline.State = DISCIPLINE_ATTENDING
	default:
		discipline.State = DISCIPLINE_NOT_ATTENDED
	}

	return HistoryEntry{Discipline: discipline, Observation: observation}, nil
}

func extractHistory(doc *goquery.Document) (History, error) {
	rows, err := findGrid(doc, page_history, "Grid1ContainerDataV")
	if err != nil {
		return History{}, err
	}
	history := History{Entries: make([]HistoryEntry, 0, len(rows))}
	for _, row := range rows {
		entry, err := parseHistoryRow(row)
		if err != nil {
			return History{}, malformed(page_history, "Grid1ContainerDataV", err)
		}
		history.Entries = append(history.Entries, entry)
	}
	return history, nil
}
