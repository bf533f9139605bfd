package daemon

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/tracectl/internal/config"
	"github.com/danmuck/tracectl/internal/observability"
	"github.com/danmuck/tracectl/internal/protocol/record"
	"github.com/danmuck/tracectl/internal/protocol/rule"
	"github.com/danmuck/tracectl/internal/protocol/session"
	"github.com/danmuck/tracectl/internal/protocol/snapshot"
	"github.com/danmuck/tracectl/internal/registry"
)

// Service is the traced control daemon: a TCP control socket receiving
// configuration records from clients, a registry holding the active
// configuration, and an HTTP admin surface.
type Service struct {
	cfg      config.DaemonConfig
	registry *registry.Registry
	router   *gin.Engine
	started  time.Time
}

func NewService(cfg config.DaemonConfig) *Service {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Service{
		cfg:      cfg,
		registry: registry.New(),
		router:   r,
		started:  time.Now(),
	}
	s.registerRoutes()
	return s
}

// Registry exposes the active configuration store.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Run seeds the registry from the config file, starts the admin server,
// and serves the control socket until the listener fails.
func (s *Service) Run() error {
	if err := s.seedFromConfig(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.cfg.ControlAddr)
	if err != nil {
		return fmt.Errorf("control listen on %s: %w", s.cfg.ControlAddr, err)
	}
	defer ln.Close()

	go func() {
		if err := s.router.Run(s.cfg.AdminAddr); err != nil {
			log.Error().Err(err).Str("addr", s.cfg.AdminAddr).Msg("admin server stopped")
		}
	}()

	log.Info().
		Str("name", s.cfg.Name).
		Str("control", s.cfg.ControlAddr).
		Str("admin", s.cfg.AdminAddr).
		Msg("traced listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("control accept: %w", err)
		}
		observability.RecordControlSession()
		go s.serveConn(conn)
	}
}

// serveConn decodes records off one client connection until the stream
// ends or a record is malformed. Malformed input abandons the whole
// connection; the wire format has no safe resynchronization point.
func (s *Service) serveConn(conn net.Conn) {
	defer conn.Close()
	peer := conn.RemoteAddr().String()
	c := session.NewConn(conn, session.DefaultConfig())

	for {
		rec, head, err := c.ReadRecord()
		if err != nil {
			if errors.Is(err, record.ErrMalformedRecord) || errors.Is(err, record.ErrUnknownEnumValue) {
				observability.RecordDecodeFailure(head.Kind, err)
				log.Warn().Err(err).Str("peer", peer).Msg("rejecting control stream")
			}
			return
		}
		observability.RecordDecoded(rec.Kind())
		s.install(rec, peer)
	}
}

func (s *Service) install(rec record.Record, peer string) {
	begin := time.Now()
	var err error
	switch r := rec.(type) {
	case *rule.Syscall:
		err = s.registry.InstallRule(r)
	case *snapshot.Output:
		err = s.registry.InstallOutput(r)
	default:
		err = fmt.Errorf("no installer for kind %s", rec.Kind())
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
		log.Warn().Err(err).Str("peer", peer).Stringer("kind", rec.Kind()).Msg("install rejected")
	} else {
		log.Info().Str("peer", peer).Stringer("kind", rec.Kind()).Msg("installed")
	}
	observability.RecordInstall(rec.Kind(), outcome, time.Since(begin))
}

func (s *Service) seedFromConfig() error {
	for _, oc := range s.cfg.Outputs {
		if err := s.registry.InstallOutput(oc.ToOutput()); err != nil {
			return fmt.Errorf("seed output %q: %w", oc.Name, err)
		}
	}
	for _, rc := range s.cfg.Rules {
		r, err := rc.ToRule()
		if err != nil {
			return fmt.Errorf("seed rule %q: %w", rc.Pattern, err)
		}
		if err := s.registry.InstallRule(r); err != nil {
			return fmt.Errorf("seed rule %q: %w", rc.Pattern, err)
		}
	}
	return nil
}

func (s *Service) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": s.cfg.Name,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/rules", func(c *gin.Context) {
		rules := s.registry.Rules()
		out := make([]gin.H, 0, len(rules))
		for _, r := range rules {
			out = append(out, gin.H{
				"site":    r.Site.String(),
				"pattern": r.Pattern,
				"filter":  r.FilterExpression,
			})
		}
		c.JSON(http.StatusOK, gin.H{"rules": out})
	})

	s.router.GET("/outputs", func(c *gin.Context) {
		outputs := s.registry.Outputs()
		out := make([]gin.H, 0, len(outputs))
		for _, o := range outputs {
			out = append(out, gin.H{
				"id":       o.ID,
				"name":     o.Name,
				"data_url": o.DataURL,
				"ctrl_url": o.CtrlURL,
				"max_size": o.MaxSize,
			})
		}
		c.JSON(http.StatusOK, gin.H{"outputs": out})
	})
}

func normalizeOrigins(in []string) []string {
	if len(in) == 0 {
		return []string{"http://localhost:3000"}
	}
	return in
}
