// Package httpserver exposes the account and authentication services over
// HTTP using chi.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

// AccountService is the account lifecycle as seen by the HTTP layer.
type AccountService interface {
	Create(ctx context.Context, candidate *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	ListPage(ctx context.Context, pageNumber, pageSize int) (*models.Page, error)
	Update(ctx context.Context, candidate *models.Account) (*models.Account, error)
	SoftDelete(ctx context.Context, id int64) (*models.Account, error)
	HardDelete(ctx context.Context, id int64) (*models.Account, error)
}

// AuthService checks credentials and access tokens.
type AuthService interface {
	Login(ctx context.Context, login, secret string) (string, *models.Account, error)
	ValidateToken(token string) (int64, error)
}

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address       string
	accounts      AccountService
	auth          AuthService
	logger        logging.Logger
	authRateLimit int
	router        chi.Router
}

// NewHTTPServer wires routes and middleware. authRateLimit caps
// authentication attempts per client IP per minute; zero disables the cap.
func NewHTTPServer(a string, l logging.Logger, as AccountService, auth AuthService, authRateLimit int) *HTTPServer {
	s := &HTTPServer{
		address:       a,
		accounts:      as,
		auth:          auth,
		logger:        l.With("module", "http_server"),
		authRateLimit: authRateLimit,
	}
	s.setupRouter()
	return s
}

func (s *HTTPServer) setupRouter() {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.authRateLimit > 0 {
				r.Use(httprate.LimitByIP(s.authRateLimit, time.Minute))
			}
			r.Post("/auth/authenticate", s.Authenticate)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.accessTokenMiddleware)

			r.Post("/", s.CreateUser)
			r.Get("/", s.ListUsers)
			r.Put("/", s.UpdateUser)
			r.Delete("/", s.DeleteUser)
			r.Get("/{id}", s.GetUser)
			r.Post("/RealDeleteUser", s.RealDeleteUser)
		})
	})

	s.router = r
}

// ServeHTTP delegates to the router.
func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is done, then drains
// in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
