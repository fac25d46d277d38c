package web

import (
	"os"
	"path/filepath"
	"time"

	"github.com/user/portfolio_go/internal/menu"
	"github.com/user/portfolio_go/internal/molecule"
)

// Config holds the settings of the site.
type Config struct {
	Addr            string        // listen address
	DownloadDir     string        // root of the per-request download directories
	YtDlp           string        // yt-dlp executable
	MenuURL         string        // dining commons week page
	PubChemURL      string        // PUG REST base
	CleanupInterval time.Duration // janitor period
	MaxDownloadAge  time.Duration // downloads older than this are removed
	Debug           bool
}

// DefaultConfig returns the settings the site runs with when nothing is
// overridden.
func DefaultConfig() Config {
	return Config{
		Addr:            "0.0.0.0:8080",
		DownloadDir:     filepath.Join(os.TempDir(), "portfolio_downloader"),
		YtDlp:           "yt-dlp",
		MenuURL:         menu.DefaultURL,
		PubChemURL:      molecule.DefaultBaseURL,
		CleanupInterval: 10 * time.Minute,
		MaxDownloadAge:  time.Hour,
	}
}
