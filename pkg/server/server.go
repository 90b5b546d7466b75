// Package server exposes profile extraction over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeGROOVE-dev/linkscout/pkg/profile"
)

// invalidURLDetail is returned for any request that does not carry a usable profile URL.
const invalidURLDetail = "Invalid LinkedIn URL"

// Extractor is the pipeline the server delegates to.
type Extractor interface {
	Extract(ctx context.Context, profileURL string) (*profile.Response, error)
}

// Request is the POST /extract body.
type Request struct {
	LinkedInURL string `json:"linkedin_url"`
}

// Server wraps the Fiber app.
type Server struct {
	App       *fiber.App
	extractor Extractor
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer sets the registry served on /metrics. Defaults to prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates a server with routes and middleware configured.
func New(ex Extractor, opts ...Option) *Server {
	s := &Server{
		extractor: ex,
		gatherer:  prometheus.DefaultGatherer,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	app := fiber.New(fiber.Config{
		AppName: "linkscout",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				message = e.Message
			} else {
				s.logger.ErrorContext(c.Context(), "request failed", "path", c.Path(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{"detail": message})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	app.Post("/extract", s.handleExtract)
	app.Get("/healthz", handleHealth)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	s.App = app
	return s
}

func (s *Server) handleExtract(c fiber.Ctx) error {
	var req Request
	if err := c.Bind().JSON(&req); err != nil {
		s.logger.DebugContext(c.Context(), "malformed extract request", "error", err)
		return fiber.NewError(fiber.StatusBadRequest, invalidURLDetail)
	}

	resp, err := s.extractor.Extract(c.Context(), req.LinkedInURL)
	if errors.Is(err, profile.ErrInvalidIdentifier) {
		return fiber.NewError(fiber.StatusBadRequest, invalidURLDetail)
	}
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("server listening", "addr", addr)
	return s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}
