package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"docs-server/core/loader"
	"docs-server/core/logger"
	"docs-server/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// AppName is reported by the fiber application.
const AppName = "docs-server"

// Server owns the fiber application and its listen socket.
type Server struct {
	cfg    Config
	app    *fiber.App
	logger *zap.Logger
}

// New creates a server for an already normalized configuration.
func New(cfg Config, logger *zap.Logger) *Server {
	s := &Server{cfg: cfg, logger: logger}

	s.app = fiber.New(fiber.Config{
		AppName:               AppName,
		DisableStartupMessage: true, // We log our own startup lines
		CaseSensitive:         true,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           cfg.IdleTimeout,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(rayid.New())

	s.app.Hooks().OnListen(func(fiber.ListenData) error {
		s.logger.Info("Listening on port " + strconv.Itoa(s.cfg.Port))
		return nil
	})

	return s
}

// App exposes the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Config returns the configuration the server was built with.
func (s *Server) Config() Config {
	return s.cfg
}

// Mount loads every enabled feature of the manager onto the application.
func (s *Server) Mount(mgr *loader.Manager) error {
	return mgr.LoadAll(s.app)
}

// Listen binds the TCP socket for the configured port.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBindFailure, s.cfg.Addr(), err)
	}
	return ln, nil
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for at most ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}

// Run announces the mount, binds the socket and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(fmt.Sprintf("Starting static asset server, serving static asset directory %q on %s", s.cfg.AssetDir, s.cfg.MountPath),
		zap.String("dir", s.cfg.AssetDir),
		zap.String("mount_path", s.cfg.MountPath),
	)
	s.logger.Info(fmt.Sprintf("Navigate to %s ... eg %s", s.cfg.NavigationURL("<OPENAPI SPEC NAME>"), s.cfg.NavigationURL("creditrisk")))

	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := utils.StatusMessage(code)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		logger.WithRayID(s.logger, c).Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}
