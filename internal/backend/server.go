// Package backend is a local reference implementation of the interrupt
// service. An interrupt type stays required for a browser context until an
// "agree" agreement is recorded for it. It also exposes the cookie marker so
// a browser front end can read and clear its own suppression.
package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dotcommander/interstitial/internal/marker"
	"github.com/dotcommander/interstitial/internal/models"
	"github.com/dotcommander/interstitial/internal/remote"
	"github.com/dotcommander/interstitial/internal/store"
)

// MarkerPath serves the cookie marker (GET, PUT, DELETE).
const MarkerPath = "/interrupt/marker"

const shutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	// Required lists the interrupt types the service tracks. Other types are never required.
	Required []string
	// UpdatePaths maps interrupt types to record sub-paths, on top of remote.DefaultUpdatePaths.
	UpdatePaths map[string]string
	Clock       marker.Clock
	Logger      *slog.Logger
}

// Server is the reference interrupt service.
type Server struct {
	db        *sql.DB
	required  map[string]bool
	bySubpath map[string]string
	clock     marker.Clock
	logger    *slog.Logger
	echo      *echo.Echo
}

type recordRequest struct {
	Status string `json:"status"`
}

type markerResponse struct {
	Suppressed bool       `json:"suppressed"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// New builds the server and its routes.
func New(db *sql.DB, cfg Config) *Server {
	s := &Server{
		db:        db,
		required:  make(map[string]bool, len(cfg.Required)),
		bySubpath: make(map[string]string),
		clock:     cfg.Clock,
		logger:    cfg.Logger,
	}
	if s.clock == nil {
		s.clock = marker.SystemClock
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	for _, t := range cfg.Required {
		if t = strings.TrimSpace(t); t != "" {
			s.required[t] = true
		}
	}
	for t, p := range remote.DefaultUpdatePaths {
		s.bySubpath[p] = t
	}
	for t, p := range cfg.UpdatePaths {
		if p = strings.Trim(strings.TrimSpace(p), "/"); p != "" {
			s.bySubpath[p] = t
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/healthz", s.healthHandler)
	e.GET(remote.RequiredPath, s.requiredHandler)
	e.POST(remote.RequiredPath+"/:update", s.recordHandler)
	e.GET("/wsapi/rest/agreements", s.agreementsHandler)
	e.GET(MarkerPath, s.getMarkerHandler)
	e.PUT(MarkerPath, s.putMarkerHandler)
	e.DELETE(MarkerPath, s.deleteMarkerHandler)

	s.echo = e
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("interrupt service listening", "addr", addr, "required", s.requiredList())
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("interrupt service stopped")
	return nil
}

func (s *Server) requiredList() []string {
	out := make([]string, 0, len(s.required))
	for t := range s.required {
		out = append(out, t)
	}
	return out
}

func browserContext(c echo.Context) string {
	if v := strings.TrimSpace(c.Request().Header.Get(remote.ContextHeader)); v != "" {
		return v
	}
	return models.DefaultBrowserContext
}

func errorJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

func (s *Server) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// requiredHandler answers with a bare JSON boolean.
func (s *Server) requiredHandler(c echo.Context) error {
	popupType := strings.TrimSpace(c.QueryParam("popuptype"))
	if popupType == "" {
		return errorJSON(c, http.StatusBadRequest, "popuptype is required")
	}
	if !s.required[popupType] {
		return c.JSON(http.StatusOK, false)
	}

	latest, err := store.LatestAgreement(c.Request().Context(), s.db, popupType, browserContext(c))
	if err != nil {
		s.logger.Error("agreement lookup failed", "type", popupType, "error", err.Error())
		return errorJSON(c, http.StatusInternalServerError, "agreement lookup failed")
	}
	required := latest == nil || latest.Status != models.AgreementAgree
	return c.JSON(http.StatusOK, required)
}

func (s *Server) recordHandler(c echo.Context) error {
	interruptType, ok := s.bySubpath[c.Param("update")]
	if !ok {
		return errorJSON(c, http.StatusBadRequest, remote.ErrBadInterruptType.Error())
	}

	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		return errorJSON(c, http.StatusBadRequest, "status is required")
	}

	agreement, err := store.RecordAgreement(c.Request().Context(), s.db, interruptType,
		browserContext(c), models.AgreementStatus(status), s.clock.Now())
	if err != nil {
		var ike *store.InvalidKeyError
		if errors.As(err, &ike) {
			return errorJSON(c, http.StatusBadRequest, err.Error())
		}
		s.logger.Error("record agreement failed", "type", interruptType, "error", err.Error())
		return errorJSON(c, http.StatusInternalServerError, "record agreement failed")
	}
	s.logger.Info("agreement recorded", "type", interruptType,
		"browser_context", agreement.BrowserContext, "status", status)
	return c.JSON(http.StatusOK, agreement)
}

func (s *Server) agreementsHandler(c echo.Context) error {
	agreements, err := store.ListAgreements(c.Request().Context(), s.db, c.QueryParam("context"), 0)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "list agreements failed")
	}
	if agreements == nil {
		agreements = []models.Agreement{}
	}
	return c.JSON(http.StatusOK, agreements)
}

func (s *Server) cookieStore(c echo.Context) *marker.Cookie {
	return marker.NewCookie(c.Response(), c.Request(), s.clock)
}

func (s *Server) getMarkerHandler(c echo.Context) error {
	ck := s.cookieStore(c)
	return c.JSON(http.StatusOK, markerResponse{Suppressed: ck.IsSuppressed(c.Request().Context())})
}

func (s *Server) putMarkerHandler(c echo.Context) error {
	ck := s.cookieStore(c)
	ck.SetSuppressed(c.Request().Context())
	exp := marker.ExpiryFrom(s.clock.Now()).UTC()
	return c.JSON(http.StatusOK, markerResponse{Suppressed: true, ExpiresAt: &exp})
}

func (s *Server) deleteMarkerHandler(c echo.Context) error {
	s.cookieStore(c).Clear(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
