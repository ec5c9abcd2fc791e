package siga

import (
	"bytes"
	"context"
	"fatec-api/internal/components/telemetry"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const DEFAULT_BASE_URL = "https://siga.cps.sp.gov.br/aluno/"

const (
	report_client_fetch_page  = "client.fetch-page"
	report_client_fetch_bytes = "client.fetch-bytes"
	report_client_post_form   = "client.post-form"
)

// Routes are the portal pages, relative to the base url.
type Routes struct {
	Login            string `json:"login"`
	Home             string `json:"home"`
	ExchangePrograms string `json:"exchange_programs"`
	ExamCalendar     string `json:"exam_calendar"`
	AcademicCalendar string `json:"academic_calendar"`
	SchoolGrade      string `json:"school_grade"`
	History          string `json:"history"`
	Schedule         string `json:"schedule"`
	PartialGrades    string `json:"partial_grades"`
	PartialAbsences  string `json:"partial_absences"`
}

func DefaultRoutes() Routes {
	return Routes{
		Login:            "login.aspx",
		Home:             "home.aspx",
		ExchangePrograms: "intercambio.aspx",
		ExamCalendar:     "calendarioprovas.aspx",
		AcademicCalendar: "calendario.aspx",
		SchoolGrade:      "historicograde.aspx",
		History:          "historico.aspx",
		Schedule:         "horario.aspx",
		PartialGrades:    "notasparciais.aspx",
		PartialAbsences:  "faltasparciais.aspx",
	}
}

type ClientOptions struct {
	// BaseUrl defaults to DEFAULT_BASE_URL, it should end with a slash.
	BaseUrl string
	// Timeout applies to each request, defaults to 30 seconds.
	Timeout time.Duration
	// UserAgent overrides the default browser user agent.
	UserAgent string
	// BrowserTransport wraps the transport to mimic a browser's TLS handshake and headers.
	BrowserTransport bool
	// Routes left empty fall back to DefaultRoutes.
	Routes Routes
	// Output receives every http exchange when set.
	Output telemetry.MessageOutput
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = DEFAULT_BASE_URL
	}
	if !strings.HasSuffix(o.BaseUrl, "/") {
		o.BaseUrl += "/"
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Second * 30
	}
	if o.UserAgent == "" {
		o.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	}

	defaults := DefaultRoutes()
	fill := func(value *string, fallback string) {
		if *value == "" {
			*value = fallback
		}
	}
	fill(&o.Routes.Login, defaults.Login)
	fill(&o.Routes.Home, defaults.Home)
	fill(&o.Routes.ExchangePrograms, defaults.ExchangePrograms)
	fill(&o.Routes.ExamCalendar, defaults.ExamCalendar)
	fill(&o.Routes.AcademicCalendar, defaults.AcademicCalendar)
	fill(&o.Routes.SchoolGrade, defaults.SchoolGrade)
	fill(&o.Routes.History, defaults.History)
	fill(&o.Routes.Schedule, defaults.Schedule)
	fill(&o.Routes.PartialGrades, defaults.PartialGrades)
	fill(&o.Routes.PartialAbsences, defaults.PartialAbsences)
	return o
}

// client is the network adapter, it knows nothing about sessions except
// for attaching the cookie it is given.
type client struct {
	baseUrl *url.URL
	http    *resty.Client
	routes  Routes
	tel     telemetry.API
}

func newClient(opts ClientOptions, tel telemetry.API) (*client, error) {
	opts = opts.withDefaults()

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetTimeout(opts.Timeout)
	httpClient.SetHeader("user-agent", opts.UserAgent)
	// the session cookie is owned by Account and attached explicitly
	httpClient.SetCookieJar(nil)
	// the login response is a redirect that carries the session cookie, so redirects
	// are never followed, a redirect anywhere else means the session is gone.
	httpClient.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	if opts.BrowserTransport {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &client{
		baseUrl: baseUrl,
		http:    httpClient,
		routes:  opts.Routes,
		tel:     tel,
	}, nil
}

// resolve turns a route (relative to the base url, or absolute) into a full url.
func (c *client) resolve(route string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(route))
	if err != nil {
		return "", err
	}
	return c.baseUrl.ResolveReference(ref).String(), nil
}

func (c *client) get(ctx context.Context, route, cookie, reportId string) (*resty.Response, string, error) {
	endpoint, err := c.resolve(route)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("resolve route: %w", err), route)
		return nil, route, &NetworkError{Op: "GET", Url: route, Err: err}
	}

	req := c.http.R().SetContext(ctx)
	if cookie != "" {
		req.SetHeader("Cookie", cookie)
	}
	res, err := req.Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err), endpoint)
		return nil, endpoint, &NetworkError{Op: "GET", Url: endpoint, Err: err}
	}

	switch {
	case res.StatusCode() >= 300 && res.StatusCode() < 400:
		c.tel.ReportWarning(reportId, ErrSessionExpired, endpoint, res.Header().Get("Location"))
		return nil, endpoint, fmt.Errorf("GET %s: %w", endpoint, ErrSessionExpired)
	case res.StatusCode() >= 400:
		err := &NetworkError{Op: "GET", Url: endpoint, StatusCode: res.StatusCode()}
		c.tel.ReportBroken(reportId, err)
		return nil, endpoint, err
	}

	return res, endpoint, nil
}

// fetchPage requests a page with the session cookie and parses it.
func (c *client) fetchPage(ctx context.Context, route, cookie string) (*goquery.Document, error) {
	res, endpoint, err := c.get(ctx, route, cookie, report_client_fetch_page)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_page, fmt.Errorf("parse: %w", err), endpoint)
		return nil, &ExtractionError{Page: endpoint, Field: "document", Err: err}
	}
	return doc, nil
}

// fetchBytes requests a binary resource, like the student's picture.
func (c *client) fetchBytes(ctx context.Context, route, cookie string) ([]byte, error) {
	res, _, err := c.get(ctx, route, cookie, report_client_fetch_bytes)
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// postForm submits a url encoded form and returns the raw response, the caller
// is responsible for interpreting the status code.
func (c *client) postForm(ctx context.Context, route string, form map[string]string) (*resty.Response, error) {
	endpoint, err := c.resolve(route)
	if err != nil {
		c.tel.ReportBroken(report_client_post_form, fmt.Errorf("resolve route: %w", err), route)
		return nil, &NetworkError{Op: "POST", Url: route, Err: err}
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetFormData(form).
		Post(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_post_form, fmt.Errorf("fetch: %w", err), endpoint)
		return nil, &NetworkError{Op: "POST", Url: endpoint, Err: err}
	}
	return res, nil
}

// cookieFromResponse joins the name=value pairs of every Set-Cookie header.
func cookieFromResponse(cookies []*http.Cookie) string {
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", c.Name, c.Value))
	}
	return strings.Join(pairs, "; ")
}
