// Package downloader wraps the yt-dlp command line tool: it lists the
// formats of a media URL, reads title and thumbnail, and downloads a chosen
// format into a fresh directory per download.
//
// Only one download runs at a time; the directories of earlier downloads
// are removed when a new one completes.
package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'downloader'
func tracer() tracing.Trace {
	return tracing.Select("downloader")
}

// MaxFileSize is passed to yt-dlp as --max-filesize.
const MaxFileSize = "1G"

var (
	ErrInvalidURL = errors.New("invalid URL, supported sites are YouTube, Twitch, SoundCloud, Vimeo and Dailymotion")
	ErrBusy       = errors.New("another download is in progress")
	ErrTooLarge   = errors.New("file exceeds the 1GB size limit")
	ErrNoFile     = errors.New("download failed: no file was created")
	ErrNotFound   = errors.New("download not found")
)

var reMediaURL = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be|twitch\.tv|soundcloud\.com|vimeo\.com|dailymotion\.com)/.+`)

// ValidURL checks for one of the supported media sites.
func ValidURL(url string) bool {
	return reMediaURL.MatchString(strings.TrimSpace(url))
}

// CommandRunner executes an external program.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Downloader manages the download directory. It is safe for concurrent
// use.
type Downloader struct {
	Dir    string // one sub-directory per download
	Binary string // yt-dlp executable
	Runner CommandRunner

	mu   sync.Mutex
	busy bool
}

// New creates the download directory if needed.
func New(dir, binary string) (*Downloader, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "portfolio_downloader")
	}
	if binary == "" {
		binary = "yt-dlp"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	return &Downloader{Dir: dir, Binary: binary, Runner: ExecRunner{}}, nil
}

// Busy reports whether a download is running.
func (d *Downloader) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

func (d *Downloader) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	tracer().Debugf("%s %s", d.Binary, strings.Join(args, " "))
	return d.Runner.Run(ctx, d.Binary, args...)
}

// Analysis is the result of inspecting a URL.
type Analysis struct {
	URL     string
	Info    MediaInfo
	Formats []Format
	Options Options
	Raw     string
}

// Analyze lists the formats of url and reads its title and thumbnail. A
// failing info query is not fatal.
func (d *Downloader) Analyze(ctx context.Context, url string) (*Analysis, error) {
	url = strings.TrimSpace(url)
	if !ValidURL(url) {
		return nil, ErrInvalidURL
	}
	out, stderr, err := d.run(ctx, "--list-formats", "--no-check-certificate", url)
	if err != nil {
		return nil, fmt.Errorf("error fetching formats: %s", firstLine(stderr, err))
	}
	a := &Analysis{URL: url, Raw: string(out)}
	a.Formats = ParseFormats(a.Raw)
	a.Options = BuildOptions(a.Formats)
	if info, err := d.Info(ctx, url); err == nil {
		a.Info = *info
	} else {
		tracer().Infof("media info for %s: %v", url, err)
		a.Info.Title = "Unknown Title"
	}
	return a, nil
}

// MediaInfo is the part of `yt-dlp -J` the page shows.
type MediaInfo struct {
	Title     string
	Thumbnail string
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ParseInfo reads the JSON printed by `yt-dlp -J` and picks the largest
// thumbnail.
func ParseInfo(data []byte) (*MediaInfo, error) {
	var doc struct {
		Title      string      `json:"title"`
		Thumbnails []thumbnail `json:"thumbnails"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("reading media info: %w", err)
	}
	info := &MediaInfo{Title: doc.Title}
	if info.Title == "" {
		info.Title = "Unknown Title"
	}
	if len(doc.Thumbnails) > 0 {
		sort.SliceStable(doc.Thumbnails, func(i, j int) bool {
			a, b := doc.Thumbnails[i], doc.Thumbnails[j]
			return a.Width*a.Height > b.Width*b.Height
		})
		info.Thumbnail = doc.Thumbnails[0].URL
	}
	return info, nil
}

// Info queries title and thumbnail of url.
func (d *Downloader) Info(ctx context.Context, url string) (*MediaInfo, error) {
	out, stderr, err := d.run(ctx, "-J", "--no-playlist", "--skip-download", url)
	if err != nil {
		return nil, fmt.Errorf("media info: %s", firstLine(stderr, err))
	}
	return ParseInfo(out)
}

// Request selects what to download.
type Request struct {
	URL      string
	Media    Media
	FormatID string
}

// Args builds the yt-dlp command line writing into dir. Audio is
// converted to mp3, video is merged with m4a audio into mp4.
func (r Request) Args(dir string) []string {
	output := filepath.Join(dir, "%(title)s.%(ext)s")
	var args []string
	if r.Media == Audio {
		args = []string{
			"-f", r.FormatID,
			"-o", output,
			"--no-playlist",
			"--max-filesize", MaxFileSize,
			"--extract-audio",
			"--audio-format", "mp3",
			"--audio-quality", "0",
		}
	} else {
		args = []string{
			"-f", r.FormatID + "+bestaudio[ext=m4a]/best",
			"-o", output,
			"--no-playlist",
			"--max-filesize", MaxFileSize,
			"--merge-output-format", "mp4",
			"--audio-format", "aac",
			"--postprocessor-args", "-c:a aac -b:a 192k",
			"--prefer-ffmpeg",
		}
	}
	return append(args, r.URL)
}

// Result describes a finished download.
type Result struct {
	ID       string
	Path     string
	Filename string
	Size     int64
	Media    Media
}

// Label is the text of the download button.
func (r *Result) Label() string {
	kind := "Video"
	if r.Media == Audio {
		kind = "Audio"
	}
	return fmt.Sprintf("Download %s (%.2f MB)", kind, float64(r.Size)/(1024*1024))
}

// Download runs yt-dlp for req. It fails with ErrBusy while another
// download is running.
func (d *Downloader) Download(ctx context.Context, req Request) (*Result, error) {
	if !ValidURL(req.URL) {
		return nil, ErrInvalidURL
	}
	if req.FormatID == "" || (req.Media != Audio && req.Media != Video) {
		return nil, fmt.Errorf("missing required information, please complete all fields")
	}
	d.mu.Lock()
	if d.busy {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.busy = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	id := uuid.NewString()
	dir := filepath.Join(d.Dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	_, stderr, err := d.run(ctx, req.Args(dir)...)
	if err != nil {
		os.RemoveAll(dir)
		if bytes.Contains(stderr, []byte("File is larger than max-filesize")) {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("error downloading: %s", firstLine(stderr, err))
	}
	res, err := d.file(id)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	res.Media = req.Media
	if err := d.CleanOld(id); err != nil {
		tracer().Errorf("removing old downloads: %v", err)
	}
	tracer().Infof("download %s: %s (%d bytes)", id, res.Filename, res.Size)
	return res, nil
}

// File returns the downloaded file of download id.
func (d *Downloader) File(id string) (*Result, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return d.file(id)
}

func (d *Downloader) file(id string) (*Result, error) {
	dir := filepath.Join(d.Dir, id)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".part") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		return &Result{ID: id, Path: filepath.Join(dir, e.Name()), Filename: e.Name(), Size: fi.Size()}, nil
	}
	return nil, ErrNoFile
}

// CleanOld removes every download directory except the one of except.
func (d *Downloader) CleanOld(except string) error {
	return d.clean(func(name string, _ time.Time) bool { return name != except })
}

// Prune removes download directories last modified before cutoff. It does
// nothing while a download is running.
func (d *Downloader) Prune(cutoff time.Time) error {
	if d.Busy() {
		return nil
	}
	return d.clean(func(_ string, mod time.Time) bool { return mod.Before(cutoff) })
}

func (d *Downloader) clean(remove func(name string, mod time.Time) bool) error {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil || !remove(e.Name(), fi.ModTime()) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(d.Dir, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Janitor prunes downloads older than maxAge every interval until ctx is
// done.
func (d *Downloader) Janitor(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if err := d.Prune(now.Add(-maxAge)); err != nil {
				tracer().Errorf("janitor: %v", err)
			}
		}
	}
}

func firstLine(stderr []byte, err error) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return err.Error()
	}
	for _, l := range strings.Split(msg, "\n") {
		if strings.HasPrefix(l, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(l, "ERROR:"))
		}
	}
	return msg
}
