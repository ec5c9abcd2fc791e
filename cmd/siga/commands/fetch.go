package commands

import (
	"encoding/json"
	"fatec-api/internal/siga"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchShort = map[siga.Category]string{
	siga.CATEGORY_NAME:                 "Prints the student's name.",
	siga.CATEGORY_PROFILE:              "Prints the student's profile.",
	siga.CATEGORY_AVISOS:               "Prints the announcements of the home page as html.",
	siga.CATEGORY_EXAM_CALENDAR:        "Lists the exams of every enrolled discipline.",
	siga.CATEGORY_ACADEMIC_CALENDAR:    "Lists the events of this year's academic calendar.",
	siga.CATEGORY_SCHOOL_GRADE:         "Lists the disciplines of every semester of the course.",
	siga.CATEGORY_HISTORY:              "Lists every discipline the student has taken.",
	siga.CATEGORY_SCHEDULES:            "Lists the classes of the week.",
	siga.CATEGORY_REGISTERED_EMAILS:    "Lists the student's registered e-mails.",
	siga.CATEGORY_PARTIAL_GRADES:       "Lists the partial grades of the enrolled disciplines.",
	siga.CATEGORY_ENROLLED_DISCIPLINES: "Lists the enrolled disciplines with attendance totals.",
}

func init() {
	for _, category := range siga.Categories {
		rootCmd.AddCommand(fetchCommand(category))
	}
}

func fetchCommand(category siga.Category) *cobra.Command {
	return &cobra.Command{
		Use:   string(category),
		Short: fetchShort[category],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := login(cmd.Context())
			if err != nil {
				return err
			}
			result, err := account.Fetch(cmd.Context(), category)
			if err != nil {
				return err
			}
			return output(result)
		},
	}
}

func output(result any) error {
	if *jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.SetEscapeHTML(false)
		return encoder.Encode(result)
	}
	return render(result)
}

// render prints a result as tables.
func render(result any) error {
	switch v := result.(type) {
	case string:
		fmt.Println(v)
	case siga.Profile:
		renderProfile(v)
	case []siga.ExamCalendarEntry:
		renderExamCalendar(v)
	case siga.Calendar:
		renderCalendar(v)
	case siga.SchoolGrade:
		renderSchoolGrade(v)
	case siga.History:
		renderHistory(v)
	case []siga.Schedule:
		renderSchedules(v)
	case []siga.RegisteredEmail:
		renderEmails(v)
	case []siga.PartialGrade:
		renderPartialGrades(v)
	case []siga.Discipline:
		renderDisciplines(v)
	default:
		return fmt.Errorf("no table layout for %T, use --json", result)
	}
	return nil
}
