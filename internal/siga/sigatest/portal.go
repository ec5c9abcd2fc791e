// Package sigatest serves a fake student portal for tests, it answers the same
// routes as the real one with the pages in testdata/.
package sigatest

import (
	"embed"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

//go:embed testdata/*.html testdata/*.png
var fixtures embed.FS

const (
	USERNAME = "12345678900"
	PASSWORD = "hunter2"
	// SESSION_ID is the value of the session cookie handed out on login.
	SESSION_ID = "fakesession0123456789"
	// DENIED_REASON is the message shown by the login page on bad credentials.
	DENIED_REASON = "Não confere Login e Senha"
)

// pages maps each route under /aluno/ to its fixture.
var pages = map[string]string{
	"home.aspx":               "testdata/home.html",
	"intercambio.aspx":        "testdata/intercambio.html",
	"calendarioprovas.aspx":   "testdata/calendarioprovas.html",
	"calendario.aspx":         "testdata/calendario.html",
	"calendario_eventos.aspx": "testdata/calendario_eventos.html",
	"historicograde.aspx":     "testdata/historicograde.html",
	"historico.aspx":          "testdata/historico.html",
	"horario.aspx":            "testdata/horario.html",
	"notasparciais.aspx":      "testdata/notasparciais.html",
	"faltasparciais.aspx":     "testdata/faltasparciais.html",
	"imagens/fotos/aluno.png": "testdata/aluno.png",
	"login.aspx":              "testdata/login.html",
}

type Portal struct {
	Server *httptest.Server

	logins    atomic.Int64
	mutex     sync.Mutex
	overrides map[string][]byte
}

// New starts a portal, it is closed when the test ends.
func New(t testing.TB) *Portal {
	p := &Portal{overrides: map[string][]byte{}}
	p.Server = httptest.NewServer(http.HandlerFunc(p.handle))
	t.Cleanup(p.Server.Close)
	return p
}

// BaseUrl is the url to give to the client, it ends with a slash.
func (p *Portal) BaseUrl() string {
	return p.Server.URL + "/aluno/"
}

// Logins counts the login attempts received so far, denied ones included.
func (p *Portal) Logins() int64 {
	return p.logins.Load()
}

// SetPage replaces the contents served at `route` (ex. "horario.aspx").
func (p *Portal) SetPage(route, contents string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.overrides[route] = []byte(contents)
}

// Page returns the default contents of a route.
func Page(route string) string {
	path, ok := pages[route]
	if !ok {
		panic(fmt.Sprintf("no fixture for %s", route))
	}
	contents, err := fixtures.ReadFile(path)
	if err != nil {
		panic(err)
	}
	return string(contents)
}

func (p *Portal) page(route string) ([]byte, bool) {
	p.mutex.Lock()
	contents, ok := p.overrides[route]
	p.mutex.Unlock()
	if ok {
		return contents, true
	}

	path, ok := pages[route]
	if !ok {
		return nil, false
	}
	contents, err := fixtures.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return contents, true
}

func (p *Portal) handle(w http.ResponseWriter, r *http.Request) {
	route, ok := strings.CutPrefix(r.URL.Path, "/aluno/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	if route == "login.aspx" && r.Method == http.MethodPost {
		p.login(w, r)
		return
	}

	cookie, err := r.Cookie("ASP.NET_SessionId")
	if err != nil || cookie.Value != SESSION_ID {
		http.Redirect(w, r, "/aluno/login.aspx", http.StatusFound)
		return
	}

	contents, ok := p.page(route)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if strings.HasSuffix(route, ".png") {
		w.Header().Set("content-type", "image/png")
	} else {
		w.Header().Set("content-type", "text/html; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(contents)
}

func (p *Portal) login(w http.ResponseWriter, r *http.Request) {
	p.logins.Add(1)

	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	valid := r.PostForm.Get("vSIS_USUARIOID") == USERNAME &&
		r.PostForm.Get("vSIS_USUARIOSENHA") == PASSWORD &&
		r.PostForm.Get("BTCONFIRMA") != "" &&
		r.PostForm.Get("GXState") != ""
	if !valid {
		contents, _ := p.page("login.aspx")
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(contents)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "ASP.NET_SessionId",
		Value:    SESSION_ID,
		Path:     "/",
		HttpOnly: true,
	})
	http.Redirect(w, r, "/aluno/home.aspx", http.StatusSeeOther)
}
