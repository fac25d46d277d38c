// Package web serves the portfolio site: one page per tool, each backed by
// a domain package, plus chart, image and download endpoints.
package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/npillmayer/schuko/tracing"

	"github.com/user/portfolio_go/internal/downloader"
	"github.com/user/portfolio_go/internal/games"
	"github.com/user/portfolio_go/internal/lyrics"
	"github.com/user/portfolio_go/internal/menu"
	"github.com/user/portfolio_go/internal/molecule"
)

// tracer writes to trace with key 'web'
func tracer() tracing.Trace {
	return tracing.Select("web")
}

// Server owns the state shared between requests. Everything else is
// computed from the request parameters.
type Server struct {
	Config    Config
	Echo      *echo.Echo
	Downloads *downloader.Downloader
	Menu      *menu.Client
	Molecules *molecule.Client
	Sandbox   *games.Sandbox
	// Tokenizer annotates lyrics; nil loads the kagome dictionary on the
	// first request.
	Tokenizer lyrics.Tokenizer

	tokOnce sync.Once
	tokErr  error
}

// New wires the collaborators and the routes.
func New(cfg Config) (*Server, error) {
	dl, err := downloader.New(cfg.DownloadDir, cfg.YtDlp)
	if err != nil {
		return nil, err
	}
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Config:    cfg,
		Echo:      echo.New(),
		Downloads: dl,
		Menu:      menu.NewClient(cfg.MenuURL),
		Molecules: molecule.NewClient(cfg.PubChemURL),
		Sandbox:   games.NewSandbox(nil, nil),
	}
	s.Echo.HideBanner = true
	s.Echo.Debug = cfg.Debug
	s.Echo.Renderer = r
	s.Echo.Use(middleware.Logger(), middleware.Recover())
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	e := s.Echo
	e.GET("/", s.index)

	e.GET("/mccabe", s.mccabePage)
	e.POST("/mccabe", s.mccabeCustom)
	e.GET("/mccabe/chart", s.mccabeChart)
	e.GET("/mccabe/plot.png", s.mccabePlot)
	e.GET("/mccabe/report.pdf", s.mccabeReport)

	e.GET("/kinetics", s.kineticsPage)
	e.GET("/kinetics/chart", s.kineticsChart)

	e.GET("/PIDTuning", s.pidPage)
	e.GET("/PIDTuning/chart", s.pidChart)
	e.GET("/processdynamics", s.dynamicsPage)
	e.GET("/processdynamics/chart", s.dynamicsChart)

	e.GET("/chemtools", s.chemToolsPage)
	e.GET("/chemeecon", s.econPage)
	e.GET("/chemeecon/chart", s.econChart)

	e.GET("/latex-converter", s.latexPage)
	e.POST("/latex-converter", s.latexPage)
	e.GET("/dropchance", s.dropChancePage)
	e.GET("/menu", s.menuPage)
	e.GET("/jplyrics", s.lyricsPage)
	e.POST("/jplyrics", s.lyricsPage)

	e.GET("/sandbox", s.sandboxPage)
	e.POST("/sandbox/reaction", s.reactionStart)
	e.POST("/sandbox/reaction/:id", s.reactionClick)
	e.POST("/sandbox/accuracy", s.accuracyStart)
	e.POST("/sandbox/accuracy/:id", s.accuracyHit)

	e.GET("/youtube-downloader", s.downloaderPage)
	e.POST("/youtube-downloader", s.downloaderPage)
	e.GET("/youtube-downloader/file/:id", s.downloadFile)
}

// ServeHTTP makes the server usable as a plain handler, e.g. behind the
// desktop shell.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Echo.ServeHTTP(w, r)
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	tracer().Infof("listening on %s", s.Config.Addr)
	if err := s.Echo.Start(s.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for running ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}

// Janitor removes stale downloads and idle game sessions until ctx is done.
func (s *Server) Janitor(ctx context.Context) {
	interval := s.Config.CleanupInterval
	if interval <= 0 {
		interval = DefaultConfig().CleanupInterval
	}
	maxAge := s.Config.MaxDownloadAge
	if maxAge <= 0 {
		maxAge = DefaultConfig().MaxDownloadAge
	}
	go s.Downloads.Janitor(ctx, interval, maxAge)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sandbox.Prune(); n > 0 {
				tracer().Debugf("pruned %d idle game sessions", n)
			}
		}
	}
}

func (s *Server) tokenizer() (lyrics.Tokenizer, error) {
	s.tokOnce.Do(func() {
		if s.Tokenizer != nil {
			return
		}
		k, err := lyrics.NewKagome()
		if err != nil {
			s.tokErr = err
			return
		}
		s.Tokenizer = k
	})
	return s.Tokenizer, s.tokErr
}
