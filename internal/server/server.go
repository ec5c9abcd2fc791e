// Package server exposes accounts over http, each successful login gets a bearer
// token that addresses its account in later requests.
package server

import (
	"context"
	"errors"
	"fatec-api/internal/components/assert"
	"fatec-api/internal/components/chrono"
	"fatec-api/internal/components/telemetry"
	"fatec-api/internal/siga"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	report_server_login   = "server.login"
	report_server_fetch   = "server.fetch"
	report_server_session = "server.sessions"
	report_server_sweep   = "server.sweep"
)

// SWEEP_SCHEDULE is the cron spec of the idle session sweep.
const SWEEP_SCHEDULE = "*/5 * * * *"

const accountKey = "account"

type Options struct {
	Client       siga.ClientOptions
	AllowOrigins []string
	// SessionTtl is how long a token may go unused before it is dropped,
	// zero keeps sessions until logout.
	SessionTtl time.Duration
}

type session struct {
	account  *siga.Account
	lastUsed time.Time
}

type Server struct {
	opts Options
	time chrono.API
	tel  telemetry.API

	mutex    sync.Mutex
	sessions map[string]*session
}

func New(opts Options, time chrono.API, tel telemetry.API) *Server {
	assert.NotNil(time)
	assert.NotNil(tel)
	return &Server{
		opts:     opts,
		time:     time,
		tel:      telemetry.NewScopedAPI("server", tel),
		sessions: map[string]*session{},
	}
}

// routes maps each path to the retrieval operation it serves.
var routes = map[string]siga.Category{
	"/name":           siga.CATEGORY_NAME,
	"/profile":        siga.CATEGORY_PROFILE,
	"/avisos":         siga.CATEGORY_AVISOS,
	"/exams":          siga.CATEGORY_EXAM_CALENDAR,
	"/calendar":       siga.CATEGORY_ACADEMIC_CALENDAR,
	"/school-grade":   siga.CATEGORY_SCHOOL_GRADE,
	"/history":        siga.CATEGORY_HISTORY,
	"/schedules":      siga.CATEGORY_SCHEDULES,
	"/emails":         siga.CATEGORY_REGISTERED_EMAILS,
	"/partial-grades": siga.CATEGORY_PARTIAL_GRADES,
	"/disciplines":    siga.CATEGORY_ENROLLED_DISCIPLINES,
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	if len(s.opts.AllowOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  s.opts.AllowOrigins,
			AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.POST("/login", s.handleLogin)

	api := router.Group("/")
	api.Use(s.authMiddleware())
	{
		api.DELETE("/logout", s.handleLogout)
		for path, category := range routes {
			api.GET(path, s.handleFetch(category))
		}
	}

	return router
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	account, err := siga.NewAccount(req.Username, req.Password, s.opts.Client, s.time, s.tel)
	if err != nil {
		s.tel.ReportBroken(report_server_login, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	err = account.Login(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if account.IsDenied() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": account.DeniedReason()})
		return
	}

	token := uuid.NewString()
	s.mutex.Lock()
	s.sessions[token] = &session{account: account, lastUsed: s.time.Now()}
	count := len(s.sessions)
	s.mutex.Unlock()
	s.tel.ReportCount(report_server_session, int64(count))

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) drop(token string) {
	s.mutex.Lock()
	delete(s.sessions, token)
	count := len(s.sessions)
	s.mutex.Unlock()
	s.tel.ReportCount(report_server_session, int64(count))
}

func (s *Server) handleLogout(c *gin.Context) {
	s.drop(c.GetString("token"))
	c.Status(http.StatusNoContent)
}

// Sweep drops every session unused for longer than the configured ttl.
func (s *Server) Sweep() {
	if s.opts.SessionTtl <= 0 {
		return
	}
	cutoff := s.time.Now().Add(-s.opts.SessionTtl)

	s.mutex.Lock()
	evicted := 0
	for token, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, token)
			evicted++
		}
	}
	count := len(s.sessions)
	s.mutex.Unlock()

	if evicted > 0 {
		s.tel.ReportDebug(report_server_sweep, evicted)
	}
	s.tel.ReportCount(report_server_session, int64(count))
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token = strings.TrimSpace(token)
		if _, err := uuid.Parse(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed bearer token"})
			return
		}

		s.mutex.Lock()
		sess, ok := s.sessions[token]
		if ok {
			sess.lastUsed = s.time.Now()
		}
		s.mutex.Unlock()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown or expired token"})
			return
		}

		c.Set("token", token)
		c.Set(accountKey, sess.account)
		c.Next()
	}
}

// status picks the response status of a failed retrieval.
func status(err error) int {
	var networkErr *siga.NetworkError
	var extractionErr *siga.ExtractionError
	switch {
	case errors.Is(err, siga.ErrAuthenticationDenied), errors.Is(err, siga.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &networkErr):
		return http.StatusBadGateway
	case errors.As(err, &extractionErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) handleFetch(category siga.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.MustGet(accountKey).(*siga.Account)

		result, err := account.Fetch(c.Request.Context(), category)
		if err != nil {
			code := status(err)
			if errors.Is(err, siga.ErrSessionExpired) {
				// the portal dropped the session, the client has to log in again
				s.drop(c.GetString("token"))
			}
			s.tel.ReportWarning(report_server_fetch, err, string(category), code)
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// Run serves on `addr` until ctx is canceled, idle sessions are swept in the
// background while it runs.
func (s *Server) Run(ctx context.Context, addr string) error {
	scheduler := chrono.NewStandardCron(s.time, s.tel)
	defer scheduler.Stop()
	if err := scheduler.Cron(SWEEP_SCHEDULE, s.Sweep); err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
