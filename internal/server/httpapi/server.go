package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/picshare/internal/logging"
	"github.com/gin-gonic/gin"
)

type HTTPServer struct {
	address  string
	logger   logging.Logger
	sessions SessionManager
}

func NewHTTPServer(a string, l logging.Logger, sm SessionManager) (*HTTPServer, error) {
	return &HTTPServer{
		address:  a,
		logger:   l.With("module", "http_server"),
		sessions: sm,
	}, nil
}

// Routes builds the gin engine with all routes attached. Split out from Run
// so tests can drive the full router through httptest.
func (s *HTTPServer) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.POST("/refresh", s.refresh)
		auth.POST("/logout", s.RequireAuth(), s.logout)
	}

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
