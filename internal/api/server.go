package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"carcare/internal/catalog"
	"carcare/internal/config"
	"carcare/internal/domain"
	"carcare/internal/service"
	"carcare/internal/worker"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Deps are the collaborators the HTTP layer calls into.
type Deps struct {
	Bookings *service.BookingService
	Users    *service.UserService
	Prices   *service.PriceService
	Catalog  *catalog.Catalog
	Feed     domain.ChangeFeed
	// Resync is the retry policy a stream uses to resubscribe after a drop.
	Resync    worker.RetryPolicy
	Heartbeat time.Duration
}

// HTTPServer exposes the customer and admin JSON API and the booking stream.
type HTTPServer struct {
	cfg        config.APIConfig
	deps       Deps
	server     *http.Server
	auth       *HTTPAuth
	userHeader string
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewHTTPServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if deps.Heartbeat <= 0 {
		deps.Heartbeat = 25 * time.Second
	}
	userHeader := strings.TrimSpace(cfg.HTTP.UserHeader)
	if userHeader == "" {
		userHeader = userHeaderDefault
	}

	srv := &HTTPServer{
		cfg:        cfg,
		deps:       deps,
		auth:       NewHTTPAuth(cfg),
		userHeader: userHeader,
		logger:     logger,
		now:        time.Now,
	}

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusNotFound, "not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	srv.routes(router)

	// Order: Recovery -> Logging -> Auth -> Router
	var handler http.Handler = router
	handler = srv.auth.Wrap(handler)
	handler = loggingMiddleware(logger, handler)
	handler = recoveryMiddleware(logger, handler)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Non-stream handlers stay well under this; the stream clears its own deadline.
		WriteTimeout: 15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes(router *httprouter.Router) {
	s.handle(router, http.MethodGet, "/health", s.health)

	s.handle(router, http.MethodGet, "/api/v1/services", s.listServices)
	s.handle(router, http.MethodGet, "/api/v1/prices", s.listPrices)
	s.handle(router, http.MethodPost, "/api/v1/quote", s.quote)

	s.handle(router, http.MethodGet, "/api/v1/profile", s.requireUser(s.getProfile))
	s.handle(router, http.MethodPut, "/api/v1/profile", s.requireUser(s.putProfile))

	s.handle(router, http.MethodGet, "/api/v1/bookings", s.requireUser(s.listBookings))
	s.handle(router, http.MethodPost, "/api/v1/bookings", s.requireUser(s.createBooking))
	s.handle(router, http.MethodGet, "/api/v1/bookings/:id", s.requireUser(s.getBooking))
	s.handle(router, http.MethodPost, "/api/v1/bookings/:id/reschedule", s.requireUser(s.rescheduleBooking))
	s.handle(router, http.MethodPost, "/api/v1/bookings/:id/cancel", s.requireUser(s.cancelBooking))
	s.handle(router, http.MethodDelete, "/api/v1/bookings/:id", s.requireUser(s.cancelBooking))
	s.handle(router, http.MethodGet, "/api/v1/stream/bookings", s.requireUser(s.streamBookings))

	s.handle(router, http.MethodGet, "/api/v1/admin/bookings", s.requireAdmin(s.adminListBookings))
	s.handle(router, http.MethodGet, "/api/v1/admin/bookings/:id/share", s.requireAdmin(s.adminShareText))
	s.handle(router, http.MethodPost, "/api/v1/admin/bookings/:id/confirm", s.requireAdmin(s.adminConfirm))
	s.handle(router, http.MethodPost, "/api/v1/admin/bookings/:id/complete", s.requireAdmin(s.adminComplete))
	s.handle(router, http.MethodPost, "/api/v1/admin/bookings/:id/reschedule", s.requireAdmin(s.adminReschedule))
	s.handle(router, http.MethodGet, "/api/v1/admin/export", s.requireAdmin(s.adminExport))
	s.handle(router, http.MethodGet, "/api/v1/admin/users", s.requireAdmin(s.adminListUsers))
	s.handle(router, http.MethodGet, "/api/v1/admin/users/:id/bookings", s.requireAdmin(s.adminUserBookings))
	s.handle(router, http.MethodPost, "/api/v1/admin/users/:id/:action", s.requireAdmin(s.adminUserAction))
	s.handle(router, http.MethodPut, "/api/v1/admin/prices/:service_id", s.requireAdmin(s.adminUpdatePrice))
}

// handle records the matched pattern for metrics before running h.
func (s *HTTPServer) handle(router *httprouter.Router, method, path string, h httprouter.Handle) {
	router.Handle(method, path, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if rec, ok := w.(*statusRecorder); ok {
			rec.route = path
		}
		h(w, r, ps)
	})
}

// userHandle is a handler for an identified caller.
type userHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string)

// requireUser reads the caller id the auth gateway put in the user header.
func (s *HTTPServer) requireUser(h userHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		userID := strings.TrimSpace(r.Header.Get(s.userHeader))
		if userID == "" {
			writeFailure(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		h(w, r, ps, userID)
	}
}

func (s *HTTPServer) requireAdmin(h userHandle) httprouter.Handle {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, userID string) {
		admin, err := s.deps.Bookings.IsAdmin(r.Context(), userID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if !admin {
			writeError(w, domain.ErrForbidden)
			return
		}
		h(w, r, ps, userID)
	})
}

// fail writes err and logs it when it is not the caller's fault.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	if domain.KindOf(err) == domain.KindTransient {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeError(w, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return domain.Invalid("invalid JSON body")
	}
	return nil
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
