package siga

import (
	"bytes"
	"context"
	"fatec-api/internal/components/assert"
	"fatec-api/internal/components/chrono"
	"fatec-api/internal/components/telemetry"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/singleflight"
)

const (
	report_account_login = "account.login"
)

type SessionState int

const (
	STATE_IDLE SessionState = iota
	STATE_DENIED
	STATE_LOGGED
)

func (s SessionState) String() string {
	switch s {
	case STATE_IDLE:
		return "idle"
	case STATE_DENIED:
		return "denied"
	case STATE_LOGGED:
		return "logged"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// the GeneXus state the login form is submitted with, the portal only accepts
// the confirm event when these hidden fields are present.
const loginGXState = `{"_EventName":"E'EVT_CONFIRMAR'.","_EventGridId":"","_EventRowId":"",` +
	`"MPW0005_CMPPGM":"login_top.aspx","MPW0005GX_FocusControl":"","vSAIDA` +
	`":"","vREC_SIS_USUARIOID":"","GX_FocusControl":"vSIS_USUARIOID","GX_A` +
	`JAX_KEY":"8E52B5B99D70A87D9EE89570291ACC86","AJAX_SECURITY_TOKEN":"A8` +
	`B9DECE0E27179FF4F5F08F98769E720CB87ABB4460CC4A68C467A81BF554BB","GX_C` +
	`MP_OBJS":{"MPW0005":"login_top"},"sCallerURL":"","GX_RES_PROVIDER":"G` +
	`XResourceProvider.aspx","GX_THEME":"GeneXusX","_MODE":"","Mode":"","I` +
	`sModified":"1"}`

// DEFAULT_DENIED_REASON is used when a denied login page carries no message.
const DEFAULT_DENIED_REASON = "Login invalido"

// Account is one set of credentials and its session with the portal.
//
// Every retrieval method makes sure there is a session before fetching its page(s)
// and stores what it extracted in Student().
type Account struct {
	client  *client
	student *Student
	time    chrono.API
	tel     telemetry.API

	loginGroup singleflight.Group

	mutex        sync.RWMutex
	username     string
	password     string
	cookie       string
	state        SessionState
	deniedReason string
}

func NewAccount(
	username, password string,
	opts ClientOptions,
	time chrono.API,
	tel telemetry.API,
) (*Account, error) {
	assert.NotNil(time)
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("siga", tel)

	client, err := newClient(opts, tel)
	if err != nil {
		return nil, err
	}

	return &Account{
		client:   client,
		student:  NewStudent(),
		time:     time,
		tel:      tel,
		username: username,
		password: password,
	}, nil
}

func (a *Account) Student() *Student {
	return a.student
}

func (a *Account) Username() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.username
}

// SetCredentials replaces the credentials used by the next Login, it does not
// change the session state.
func (a *Account) SetCredentials(username, password string) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.username = username
	a.password = password
}

func (a *Account) State() SessionState {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.state
}

func (a *Account) IsLogged() bool {
	return a.State() == STATE_LOGGED
}

func (a *Account) IsDenied() bool {
	return a.State() == STATE_DENIED
}

func (a *Account) IsIdle() bool {
	return a.State() == STATE_IDLE
}

func (a *Account) Cookie() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.cookie
}

// DeniedReason is the message the portal gave for the last denied login.
func (a *Account) DeniedReason() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.deniedReason
}

// Login submits the credentials. A redirect response means success and carries
// the session cookie, anything else denies the account. A denied login is not an
// error, check IsDenied(). Only transport failures are returned.
//
// Concurrent calls share a single request.
func (a *Account) Login(ctx context.Context) error {
	return a.sharedLogin(ctx, false)
}

// sharedLogin joins the login in flight (or starts one). The request outlives the
// cancellation of whichever caller started it, it is still bounded by the client
// timeout, and each caller stops waiting when its own ctx is done.
func (a *Account) sharedLogin(ctx context.Context, onlyIfIdle bool) error {
	detached := context.WithoutCancel(ctx)
	result := a.loginGroup.DoChan("login", func() (any, error) {
		if onlyIfIdle && !a.IsIdle() {
			return nil, nil
		}
		return nil, a.login(detached)
	})

	select {
	case res := <-result:
		return res.Err
	case <-ctx.Done():
		return fmt.Errorf("login: %w", ctx.Err())
	}
}

func (a *Account) login(ctx context.Context) error {
	a.mutex.RLock()
	username := a.username
	password := a.password
	a.mutex.RUnlock()

	a.tel.ReportDebug(report_account_login, username)

	res, err := a.client.postForm(ctx, a.client.routes.Login, map[string]string{
		"BTCONFIRMA":        "Confirmar",
		"GXState":           loginGXState,
		"vSIS_USUARIOID":    username,
		"vSIS_USUARIOSENHA": password,
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if res.StatusCode() >= 300 && res.StatusCode() < 400 {
		cookie := cookieFromResponse(res.Cookies())
		if cookie == "" {
			a.tel.ReportWarning(report_account_login, fmt.Errorf("redirect without a session cookie"), username)
		}

		a.mutex.Lock()
		a.state = STATE_LOGGED
		a.cookie = cookie
		a.deniedReason = ""
		a.mutex.Unlock()
		return nil
	}

	reason := deniedReason(res.Body())
	a.tel.ReportWarning(report_account_login, ErrAuthenticationDenied, username, res.StatusCode(), reason)

	a.mutex.Lock()
	a.state = STATE_DENIED
	a.deniedReason = reason
	a.mutex.Unlock()
	return nil
}

// ensureSession logs in when the account has not tried yet, it returns the
// cookie to use for the next request. A denied account is not retried.
func (a *Account) ensureSession(ctx context.Context) (string, error) {
	switch a.State() {
	case STATE_LOGGED:
		return a.Cookie(), nil
	case STATE_DENIED:
		return "", ErrAuthenticationDenied
	}

	// callers that saw an idle account may arrive after another caller's login
	// has finished, only the first of them posts the credentials.
	err := a.sharedLogin(ctx, true)
	if err != nil {
		return "", err
	}
	if !a.IsLogged() {
		return "", ErrAuthenticationDenied
	}
	return a.Cookie(), nil
}

func deniedReason(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return DEFAULT_DENIED_REASON
	}
	reason := strings.TrimSpace(doc.Find("#span_vSAIDA").Text())
	if reason == "" {
		return DEFAULT_DENIED_REASON
	}
	return reason
}
