// Package browser finds, and if necessary provisions, the Chromium binary
// used for conversions.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/html2pdf/config"
	"github.com/ysmood/fetchup"
	"golang.org/x/sync/singleflight"
)

// ChromeVersion is the pinned Chrome-for-Testing release that gets downloaded.
const ChromeVersion = "131.0.6778.87"

// DownloadBase is the Chrome-for-Testing distribution root.
const DownloadBase = "https://storage.googleapis.com/chrome-for-testing-public"

// resolveTimeout bounds one full resolution, download included.
const resolveTimeout = 10 * time.Minute

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrDownloadDisabled    = errors.New("browser download disabled")
	ErrBinaryMissing       = errors.New("browser binary missing after extraction")
)

// Platform describes one Chrome-for-Testing build.
type Platform struct {
	// Name is the distribution's platform key, e.g. "linux64".
	Name string

	// Binary is the executable's path inside the extracted chrome-<Name> directory.
	Binary string
}

const macBinary = "Google Chrome for Testing.app/Contents/MacOS/Google Chrome for Testing"

var platforms = map[string]Platform{
	"linux/amd64":   {Name: "linux64", Binary: "chrome"},
	"darwin/amd64":  {Name: "mac-x64", Binary: macBinary},
	"darwin/arm64":  {Name: "mac-arm64", Binary: macBinary},
	"windows/amd64": {Name: "win64", Binary: "chrome.exe"},
}

// CurrentPlatform returns the build matching the running OS and architecture.
func CurrentPlatform() (Platform, bool) {
	p, ok := platforms[runtime.GOOS+"/"+runtime.GOARCH]
	return p, ok
}

// ArchiveURL returns the download URL of the pinned release for p.
func (p Platform) ArchiveURL() string {
	return fmt.Sprintf("%s/%s/%s/chrome-%s.zip", DownloadBase, ChromeVersion, p.Name, p.Name)
}

// BinaryPath returns where the executable lands when the archive is unpacked into dir.
func (p Platform) BinaryPath(dir string) string {
	return filepath.Join(dir, "chrome-"+p.Name, filepath.FromSlash(p.Binary))
}

// fetchFunc downloads url and unpacks it into dir.
type fetchFunc func(ctx context.Context, dir, url string) error

// Locator resolves the browser binary path. It is safe for concurrent use;
// the first successful resolution is cached for the life of the process.
type Locator struct {
	cfg      config.LocatorConfig
	platform Platform
	known    bool // platform is supported
	fetch    fetchFunc

	group singleflight.Group

	mu   sync.RWMutex
	path string
}

// NewLocator creates a Locator for the current platform.
func NewLocator(cfg config.LocatorConfig) *Locator {
	p, ok := CurrentPlatform()
	return &Locator{
		cfg:      cfg,
		platform: p,
		known:    ok,
		fetch:    fetchArchive,
	}
}

// Path returns the cached binary path, or "" if nothing has been resolved yet.
func (l *Locator) Path() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// Warm resolves the binary ahead of the first conversion.
func (l *Locator) Warm(ctx context.Context) error {
	start := time.Now()
	path, err := l.Locate(ctx)
	if err != nil {
		return err
	}
	slog.Info("browser binary ready", "path", path, "elapsed", time.Since(start).String())
	return nil
}

// Locate returns the path of a usable browser binary.
//
// Resolution order, first success wins:
//
//  1. Override path   – CHROME_PATH / HTML2PDF_BROWSER_BIN, used iff it exists
//  2. Install dir     – <dir>/chrome, then <dir>/chrome-<platform>/<binary>
//  3. Download        – fetch the pinned archive into the install dir
//
// Concurrent first calls share one resolution. Failures are not cached, so a
// later call retries.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	if p := l.Path(); p != "" {
		return p, nil
	}

	ch := l.group.DoChan("locate", func() (any, error) {
		if p := l.Path(); p != "" {
			return p, nil
		}

		// Detached so one caller going away does not fail the others.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()

		p, err := l.resolve(rctx)
		if err != nil {
			return "", err
		}

		l.mu.Lock()
		l.path = p
		l.mu.Unlock()
		return p, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (l *Locator) resolve(ctx context.Context) (string, error) {
	// ── 1. Explicit override ─────────────────────────────────────────
	if p := l.cfg.OverridePath; p != "" {
		if isFile(p) {
			slog.Debug("using browser override path", "path", p)
			return p, nil
		}
		slog.Warn("browser override path does not exist, ignoring", "path", p)
	}

	// ── 2. Well-known install locations ──────────────────────────────
	for _, p := range l.candidates() {
		if isFile(p) {
			slog.Debug("using installed browser", "path", p)
			return p, nil
		}
	}

	// ── 3. Download ──────────────────────────────────────────────────
	if !l.cfg.Download {
		return "", fmt.Errorf("no browser under %s: %w", l.cfg.InstallDir, ErrDownloadDisabled)
	}
	if !l.known {
		return "", fmt.Errorf("%s/%s: %w", runtime.GOOS, runtime.GOARCH, ErrUnsupportedPlatform)
	}
	return l.download(ctx)
}

// candidates lists the install-dir paths checked before downloading.
func (l *Locator) candidates() []string {
	flat := "chrome"
	if runtime.GOOS == "windows" {
		flat = "chrome.exe"
	}
	out := []string{filepath.Join(l.cfg.InstallDir, flat)}
	if l.known {
		out = append(out, l.platform.BinaryPath(l.cfg.InstallDir))
	}
	return out
}

func (l *Locator) download(ctx context.Context) (string, error) {
	dir := l.cfg.InstallDir
	u := l.platform.ArchiveURL()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create install dir: %w", err)
	}

	slog.Info("downloading browser", "version", ChromeVersion, "url", u, "dir", dir)
	start := time.Now()
	if err := l.fetch(ctx, dir, u); err != nil {
		return "", fmt.Errorf("download %s: %w", u, err)
	}

	bin := l.platform.BinaryPath(dir)
	if !isFile(bin) {
		return "", fmt.Errorf("%s: %w", bin, ErrBinaryMissing)
	}
	if err := os.Chmod(bin, 0o755); err != nil {
		return "", fmt.Errorf("chmod %s: %w", bin, err)
	}

	slog.Info("browser downloaded", "path", bin, "elapsed", time.Since(start).String())
	return bin, nil
}

// fetchArchive downloads and unpacks url into dir with fetchup.
func fetchArchive(ctx context.Context, dir, url string) error {
	fu := fetchup.New(dir, url)
	fu.Ctx = ctx
	fu.Logger = fetchup.Log(func(msg ...interface{}) {
		slog.Debug("browser download", "progress", strings.TrimSpace(fmt.Sprintln(msg...)))
	})
	return fu.Fetch()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
