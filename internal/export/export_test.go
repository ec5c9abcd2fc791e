package export

import (
	"fatec-api/internal/siga"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testStudent() *siga.Student {
	student := siga.NewStudent()
	loc := time.FixedZone("BRT", -3*60*60)

	student.Set(siga.CATEGORY_PROFILE, siga.Profile{
		Name:         "JOÃO DA SILVA",
		Code:         "1680481911001",
		AverageGrade: 8.52,
		Progress:     siga.NaN(),
		Birthday:     time.Date(2000, 3, 15, 0, 0, 0, 0, loc),
	})
	student.Set(siga.CATEGORY_HISTORY, siga.History{Entries: []siga.HistoryEntry{
		{
			Discipline: siga.Discipline{
				Code:      "IAL002",
				Name:      "Algoritmos",
				Period:    "2023-1",
				Grade:     8.5,
				Frequency: 92.5,
				Absences:  6,
				State:     siga.DISCIPLINE_APPROVED,
			},
			Observation: "Aprovado",
		},
	}})
	student.Set(siga.CATEGORY_SCHEDULES, []siga.Schedule{
		{
			Weekday: time.Monday,
			Periods: []siga.Period{{
				StartAt:    time.Date(2024, 3, 11, 19, 20, 0, 0, loc),
				EndAt:      time.Date(2024, 3, 11, 20, 10, 0, 0, loc),
				Discipline: siga.Discipline{Code: "IES100", ClassroomCode: "A"},
			}},
		},
	})
	student.Set(siga.CATEGORY_PARTIAL_GRADES, []siga.PartialGrade{
		{
			Discipline: siga.Discipline{Code: "IES100", Name: "Engenharia de Software I"},
			Evaluations: []siga.Evaluation{
				{Code: "P1", Title: "Prova 1", Weight: 0.5, Grade: 8.5, ReleaseDate: "2024-04-20"},
				{Code: "P2", Title: "Prova 2", Weight: 0.5, Grade: siga.UNGRADED},
			},
		},
	})
	return student
}

func TestWorkbook(t *testing.T) {
	f, err := Workbook(testStudent())
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SHEET_PROFILE, SHEET_HISTORY, SHEET_SCHEDULES, SHEET_PARTIAL_GRADES}, f.GetSheetList())

	profile, err := f.GetRows(SHEET_PROFILE)
	require.NoError(t, err)
	require.Equal(t, []string{"Campo", "Valor"}, profile[0])
	require.Equal(t, []string{"Nome", "JOÃO DA SILVA"}, profile[1])
	require.Equal(t, []string{"PR", "8.52"}, profile[6])
	// NaN is written as an empty cell
	require.Equal(t, []string{"PP"}, profile[7])
	require.Equal(t, []string{"Nascimento", "15/03/2000"}, profile[10])

	history, err := f.GetRows(SHEET_HISTORY)
	require.NoError(t, err)
	expected := [][]string{
		{"Sigla", "Disciplina", "Período", "Nota", "Frequência", "Faltas", "Situação", "Observação"},
		{"IAL002", "Algoritmos", "2023-1", "8.5", "92.5", "6", "approved", "Aprovado"},
	}
	if diff := cmp.Diff(expected, history); diff != "" {
		t.Fatal(diff)
	}

	schedules, err := f.GetRows(SHEET_SCHEDULES)
	require.NoError(t, err)
	require.Equal(t, []string{"Segunda", "19:20", "20:10", "IES100", "A", "11/03/2024"}, schedules[1])

	grades, err := f.GetRows(SHEET_PARTIAL_GRADES)
	require.NoError(t, err)
	require.Len(t, grades, 3)
	require.Equal(t, "8.5", grades[1][5])
	require.Equal(t, []string{"IES100", "Engenharia de Software I", "P2", "Prova 2", "0.5"}, grades[2])
}

func TestWriteFileEmptyStudent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siga.xlsx")
	err := WriteFile(path, siga.NewStudent())
	require.Error(t, err)

	_, err = os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siga.xlsx")
	err := WriteFile(path, testStudent())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	value, err := f.GetCellValue(SHEET_HISTORY, "A2")
	require.NoError(t, err)
	require.Equal(t, "IAL002", value)
}
