package siga

import (
	"fatec-api/pkg/htmlutil"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	page_home              = "home"
	page_exchange_programs = "exchange-programs"
)

func extractName(doc *goquery.Document) (string, error) {
	sel := doc.Find("#span_MPW0041vPRO_PESSOALNOME")
	if sel.Length() == 0 {
		return "", missing(page_home, "span_MPW0041vPRO_PESSOALNOME")
	}
	return htmlutil.Normalize(strings.Replace(sel.Text(), "-", "", 1)), nil
}

// extractAvisos returns the announcements html, with relative image paths made absolute.
func extractAvisos(doc *goquery.Document, base *url.URL) (string, error) {
	sel := doc.Find("#TABLE100_MPAGE").First()
	if sel.Length() == 0 {
		return "", missing(page_home, "TABLE100_MPAGE")
	}
	htmlutil.ResolveAttr(sel.Find("img"), "src", base)
	html, err := sel.Html()
	if err != nil {
		return "", malformed(page_home, "TABLE100_MPAGE", err)
	}
	return html, nil
}

func extractRegisteredEmails(doc *goquery.Document) []RegisteredEmail {
	fields := []struct {
		selector    string
		integration EmailIntegration
	}{
		{selector: "#span_vPRO_PESSOALEMAIL", integration: INTEGRATION_PREFERENTIAL},
		{selector: "#span_MPW0041vINSTITUCIONALFATEC", integration: INTEGRATION_FATEC},
		{selector: "#span_MPW0041vINSTITUCIONALETEC", integration: INTEGRATION_ETEC},
		{selector: "#span_vEMAILWEBSAI", integration: INTEGRATION_WEBSAI},
	}

	emails := make([]RegisteredEmail, len(fields))
	for i, f := range fields {
		emails[i] = RegisteredEmail{
			Email:       htmlutil.Normalize(doc.Find(f.selector).Text()),
			Integration: f.integration,
		}
	}
	return emails
}

// extractProfileHome reads the profile fields found on the home page, it also returns
// the source of the student's picture (empty if there is none).
func extractProfileHome(doc *goquery.Document) (Profile, string, error) {
	state, err := findGXState(doc, page_home)
	if err != nil {
		return Profile{}, "", err
	}
	prefix, err := ResolvePrefix(state)
	if err != nil {
		return Profile{}, "", malformed(page_home, "GXState prefix", err)
	}

	required := func(key string) (string, error) {
		value, ok := state.String(key)
		if !ok {
			return "", missing(page_home, key)
		}
		return value, nil
	}

	var profile Profile
	name, err := required(prefix + "vPRO_PESSOALNOME")
	if err != nil {
		return Profile{}, "", err
	}
	profile.Name = strings.TrimSpace(strings.Replace(name, " -", "", 1))

	profile.Code, err = required(prefix + "vACD_ALUNOCURSOREGISTROACADEMICOCURSO")
	if err != nil {
		return Profile{}, "", err
	}
	average, err := required(prefix + "vACD_ALUNOCURSOINDICEPR")
	if err != nil {
		return Profile{}, "", err
	}
	profile.AverageGrade = ParseNumber(average)
	progress, err := required(prefix + "vACD_ALUNOCURSOINDICEPP")
	if err != nil {
		return Profile{}, "", err
	}
	profile.Progress = ParseNumber(progress)

	// these live in the master page so they are never prefixed
	profile.Course, _ = state.String("vACD_CURSONOME_MPAGE")
	profile.Period, _ = state.String("vACD_PERIODODESCRICAO_MPAGE")
	profile.Unit, _ = state.String("vUNI_UNIDADENOME_MPAGE")

	picture := doc.Find(fmt.Sprintf("#%sFOTO > img", prefix)).AttrOr("src", "")

	return profile, strings.TrimSpace(picture), nil
}

// extractProfileExchange completes the profile with the personal data shown on
// the exchange programs page.
func extractProfileExchange(doc *goquery.Document, profile *Profile, loc *time.Location) error {
	profile.Email = htmlutil.Normalize(doc.Find("#span_vPRO_PESSOALEMAIL").Text())
	profile.Cpf = htmlutil.Normalize(doc.Find("#span_vPRO_PESSOALDOCSCPF").Text())

	birthday, err := ParseDate(htmlutil.Normalize(doc.Find("#span_vPRO_PESSOALDATANASCIMENTO").Text()), loc)
	if err != nil {
		return malformed(page_exchange_programs, "span_vPRO_PESSOALDATANASCIMENTO", err)
	}
	profile.Birthday = birthday
	return nil
}
