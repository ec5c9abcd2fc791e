package siga

import (
	"context"
	"errors"
	"fatec-api/internal/components/chrono"
	"fatec-api/internal/components/telemetry"
	"fatec-api/internal/siga/sigatest"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupAccount(t testing.TB, username, password string) (*Account, *sigatest.Portal, *telemetry.MemoryAPI) {
	portal := sigatest.New(t)
	tel := &telemetry.MemoryAPI{}
	clock := chrono.Fixed{Time: time.Date(2024, time.March, 6, 20, 0, 30, 0, brt)}

	account, err := NewAccount(username, password, ClientOptions{
		BaseUrl: portal.BaseUrl(),
		Timeout: 5 * time.Second,
	}, clock, tel)
	if err != nil {
		t.Fatal(err)
	}
	return account, portal, tel
}

func TestLogin(t *testing.T) {
	account, portal, _ := setupAccount(t, sigatest.USERNAME, sigatest.PASSWORD)
	require.True(t, account.IsIdle())
	require.Equal(t, "", account.Cookie())

	err := account.Login(context.Background())
	require.NoError(t, err)
	require.True(t, account.IsLogged())
	require.Equal(t, STATE_LOGGED, account.State())
	require.Equal(t, "ASP.NET_SessionId="+sigatest.SESSION_ID, account.Cookie())
	require.Equal(t, int64(1), portal.Logins())
}

func TestLoginDenied(t *testing.T) {
	account, portal, tel := setupAccount(t, sigatest.USERNAME, "wrong")

	err := account.Login(context.Background())
	require.NoError(t, err)
	require.True(t, account.IsDenied())
	require.Equal(t, "", account.Cookie())
	require.Equal(t, sigatest.DENIED_REASON, account.DeniedReason())
	require.NotEmpty(t, tel.Reports(telemetry.REPORT_WARNING))

	// a denied account is not retried by retrieval operations
	_, err = account.Name(context.Background())
	require.ErrorIs(t, err, ErrAuthenticationDenied)
	require.Equal(t, int64(1), portal.Logins())

	// until the caller logs in again with other credentials
	account.SetCredentials(sigatest.USERNAME, sigatest.PASSWORD)
	require.True(t, account.IsDenied())
	require.NoError(t, account.Login(context.Background()))
	require.True(t, account.IsLogged())
	require.Equal(t, "", account.DeniedReason())

	name, err := account.Name(context.Background())
	require.NoError(t, err)
	require.Equal(t, "JOÃO DA SILVA", name)
}

func TestRetrievalLogsInWhenIdle(t *testing.T) {
	account, portal, _ := setupAccount(t, sigatest.USERNAME, sigatest.PASSWORD)

	_, err := account.Name(context.Background())
	require.NoError(t, err)
	require.True(t, account.IsLogged())
	require.Equal(t, int64(1), portal.Logins())

	_, err = account.Avisos(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), portal.Logins())
}

func TestRetrievalDeniedOnFirstLogin(t *testing.T) {
	account, _, _ := setupAccount(t, "nobody", "nothing")

	_, err := account.History(context.Background())
	require.ErrorIs(t, err, ErrAuthenticationDenied)
	require.True(t, account.IsDenied())

	_, ok := account.Student().History()
	require.False(t, ok)
}

func TestConcurrentRetrievalLogsInOnce(t *testing.T) {
	account, portal, _ := setupAccount(t, sigatest.USERNAME, sigatest.PASSWORD)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = account.Name(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), portal.Logins())
}

func TestCanceledCallerDoesNotFailSharedLogin(t *testing.T) {
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	var logins atomic.Int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "login.aspx") {
			logins.Add(1)
			select {
			case entered <- struct{}{}:
			default:
			}
			<-release
			http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "abc"})
			http.Redirect(w, r, "/aluno/home.aspx", http.StatusSeeOther)
			return
		}
		w.Write([]byte(`<html><body><span id="span_MPW0041vPRO_PESSOALNOME">JOÃO DA SILVA -</span></body></html>`))
	}))
	defer server.Close()
	unblock := sync.OnceFunc(func() { close(release) })
	defer unblock()

	account, err := NewAccount("user", "pass", ClientOptions{BaseUrl: server.URL + "/aluno/", Timeout: 5 * time.Second}, chrono.Fixed{Time: time.Now()}, &telemetry.MemoryAPI{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := account.Name(ctx)
		first <- err
	}()
	<-entered

	second := make(chan error, 1)
	go func() {
		_, err := account.Name(context.Background())
		second <- err
	}()

	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	unblock()
	require.NoError(t, <-second)
	require.True(t, account.IsLogged())
	require.Equal(t, "ASP.NET_SessionId=abc", account.Cookie())
	require.Equal(t, int64(1), logins.Load())
}

func TestOperations(t *testing.T) {
	account, _, _ := setupAccount(t, sigatest.USERNAME, sigatest.PASSWORD)
	ctx := context.Background()
	student := account.Student()

	name, err := account.Name(ctx)
	require.NoError(t, err)
	require.Equal(t, "JOÃO DA SILVA", name)
	cachedName, ok := student.Name()
	require.True(t, ok)
	require.Equal(t, name, cachedName)

	profile, err := account.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "JOÃO DA SILVA", profile.Name)
	require.True(t, strings.HasPrefix(profile.Picture, "data:image/png;base64,"))
	require.Equal(t, "123.456.789-00", profile.Cpf)
	cached, ok := student.Profile()
	require.True(t, ok)
	require.Equal(t, profile, cached)

	avisos, err := account.Avisos(ctx)
	require.NoError(t, err)
	require.Contains(t, avisos, baseUrl(account)+"imagens/aviso1.png")

	exams, err := account.ExamCalendar(ctx)
	require.NoError(t, err)
	require.Len(t, exams, 2)

	calendar, err := account.AcademicCalendar(ctx)
	require.NoError(t, err)
	require.Len(t, calendar.Months, 12)
	require.Equal(t, 2024, calendar.Months[1].Events[0].Date.Year())

	grade, err := account.SchoolGrade(ctx)
	require.NoError(t, err)
	require.Equal(t, DISCIPLINE_APPROVED, grade.Semesters[0].Disciplines[0].State)

	history, err := account.History(ctx)
	require.NoError(t, err)
	require.Len(t, history.Entries, 3)

	schedules, err := account.Schedules(ctx)
	require.NoError(t, err)
	require.Len(t, schedules, 6)

	emails, err := account.RegisteredEmails(ctx)
	require.NoError(t, err)
	require.Len(t, emails, 4)

	partial, err := account.PartialGrades(ctx)
	require.NoError(t, err)
	require.Equal(t, UNGRADED, partial[0].Evaluations[1].Grade)

	enrolled, err := account.EnrolledDisciplines(ctx)
	require.NoError(t, err)
	require.Len(t, enrolled, 2)

	for _, category := range Categories {
		_, ok := student.Get(category)
		require.True(t, ok, category)
	}
}

func baseUrl(account *Account) string {
	return account.client.baseUrl.String()
}

func TestEnrolledDisciplinesWithoutScheduleMatch(t *testing.T) {
	account, portal, tel := setupAccount(t, sigatest.USERNAME, sigatest.PASSWORD)
	portal.SetPage("horario.aspx", `<input name="GXState" value='{"vALU_ALUNOHISTORICOITEM_SDT":[{"ACD_DisciplinaSigla":"IES100","ACD_TurmaLetra":"A","Pro_PessoalNome":"Maria Souza"}]}'/>`)

	_, err := account.EnrolledDisciplines(context.Background())
	requireExtractionError(t, err)
	require.NotEmpty(t, tel.Reports(telemetry.REPORT_BROKEN))

	_, ok := account.Student().EnrolledDisciplines()
	require.False(t, ok)
}

func TestFetch(t *testing.T) {
	account, _, _ := setupAccount(t, sigatest.USERNAME, sigatest.PASSWORD)

	category, err := ParseCategory(" School-Grade ")
	require.NoError(t, err)
	require.Equal(t, CATEGORY_SCHOOL_GRADE, category)

	result, err := account.Fetch(context.Background(), category)
	require.NoError(t, err)
	require.IsType(t, SchoolGrade{}, result)

	_, err = ParseCategory("grades")
	require.Error(t, err)
	_, err = account.Fetch(context.Background(), Category("grades"))
	require.Error(t, err)
}

func TestSessionExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "login.aspx") {
			http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "abc"})
			http.Redirect(w, r, "/aluno/home.aspx", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/aluno/login.aspx", http.StatusFound)
	}))
	defer server.Close()

	account, err := NewAccount("user", "pass", ClientOptions{BaseUrl: server.URL + "/aluno"}, chrono.Fixed{Time: time.Now()}, &telemetry.MemoryAPI{})
	require.NoError(t, err)

	_, err = account.Name(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	require.True(t, account.IsLogged())
	require.Equal(t, "ASP.NET_SessionId=abc", account.Cookie())
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "login.aspx") {
			http.SetCookie(w, &http.Cookie{Name: "ASP.NET_SessionId", Value: "abc"})
			http.Redirect(w, r, "/aluno/home.aspx", http.StatusSeeOther)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	account, err := NewAccount("user", "pass", ClientOptions{BaseUrl: server.URL + "/aluno/"}, chrono.Fixed{Time: time.Now()}, &telemetry.MemoryAPI{})
	require.NoError(t, err)

	_, err = account.History(context.Background())
	var networkErr *NetworkError
	require.True(t, errors.As(err, &networkErr))
	require.Equal(t, http.StatusInternalServerError, networkErr.StatusCode)

	// the portal going away during login leaves the account idle
	server.Close()
	idle, err := NewAccount("user", "pass", ClientOptions{BaseUrl: server.URL + "/aluno/"}, chrono.Fixed{Time: time.Now()}, &telemetry.MemoryAPI{})
	require.NoError(t, err)
	err = idle.Login(context.Background())
	require.True(t, errors.As(err, &networkErr))
	require.True(t, idle.IsIdle())
}
