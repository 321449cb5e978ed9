package main

import (
	"time"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/config"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/coordinator"
	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/infrastructure"
)

// Server wires infrastructure, modules, the discovery scheduler and the
// HTTP listener into one lifecycle.
type Server struct {
	infra     *infrastructure.Infrastructure
	modules   *Modules
	scheduler *coordinator.Scheduler
	http      *httpServer
}

// NewServer builds every subsystem without starting any of them.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg, infrastructure.Options{})
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, &cfg.Server)
	modules.Mount(router)

	scheduler := coordinator.NewScheduler(
		modules.Domain.Coordinator,
		cfg.Discovery.IntervalDuration(),
		cfg.Discovery.RunOnStartup,
		infra.Logger,
	)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"modules", router.Prefixes(),
		"archive", infra.Archive != nil,
	)

	return &Server{
		infra:     infra,
		modules:   modules,
		scheduler: scheduler,
		http:      newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Start starts infrastructure, the HTTP listener and the scheduler.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")

		if err := s.scheduler.Start(s.infra.Lifecycle); err != nil {
			s.infra.Logger.Error("scheduler start failed", "error", err)
		}
	}()

	return nil
}

// Shutdown cancels the lifecycle context and waits for shutdown hooks.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
