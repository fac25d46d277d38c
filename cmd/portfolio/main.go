// Command portfolio serves the portfolio site.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/npillmayer/schuko/tracing"

	"github.com/user/portfolio_go/internal/web"
)

// traceKeys are the tracers of the packages behind the pages.
var traceKeys = []string{
	"web", "mccabe", "thermo", "analysis", "report", "numeric", "kinetics", "control", "econ",
	"latex", "downloader", "menu", "molecule", "games", "lyrics",
}

func main() {
	cfg := web.DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.DownloadDir, "download-dir", cfg.DownloadDir, "directory for yt-dlp downloads")
	flag.StringVar(&cfg.YtDlp, "ytdlp", cfg.YtDlp, "yt-dlp executable")
	flag.StringVar(&cfg.MenuURL, "menu-url", cfg.MenuURL, "dining commons week page")
	flag.StringVar(&cfg.PubChemURL, "pubchem-url", cfg.PubChemURL, "PubChem PUG REST base URL")
	flag.DurationVar(&cfg.CleanupInterval, "cleanup-interval", cfg.CleanupInterval, "period of the download and session janitor")
	flag.DurationVar(&cfg.MaxDownloadAge, "max-download-age", cfg.MaxDownloadAge, "downloads older than this are removed")
	flag.BoolVar(&cfg.Debug, "debug", false, "verbose tracing and echo debug mode")
	flag.Parse()

	if cfg.Debug {
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(tracing.LevelDebug)
		}
	}

	s, err := web.New(cfg)
	if err != nil {
		log.Fatal("Error setting up server: ", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go s.Janitor(ctx)

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()
	log.Println("Portfolio listening on", cfg.Addr)

	select {
	case err := <-errc:
		if err != nil {
			log.Fatal("Error running server: ", err.Error())
		}
	case <-ctx.Done():
		log.Println("Shutting down")
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdown); err != nil {
			log.Println("Shutdown:", err)
		}
	}
}
