// Package converter turns HTML documents into PDF bytes.
//
// Every conversion runs in its own browser session: a fresh browser process
// (or incognito context when attached to a remote browser), one tab, one
// print. Nothing is shared between conversions except the located binary.
package converter

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/use-agent/html2pdf/config"
	"github.com/use-agent/html2pdf/engine"
	"github.com/use-agent/html2pdf/models"
)

// Locator resolves the browser binary. Implemented by *browser.Locator.
type Locator interface {
	Locate(ctx context.Context) (string, error)
	Path() string
}

// Observer receives conversion telemetry. Implemented by *metrics.Collector.
type Observer interface {
	// ObserveConversion records one finished conversion; kind is "" on success.
	ObserveConversion(kind models.ErrorKind, d time.Duration)
	ObserveCleanupWarning()
	SetInFlight(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveConversion(models.ErrorKind, time.Duration) {}
func (nopObserver) ObserveCleanupWarning()                             {}
func (nopObserver) SetInFlight(int)                                    {}

// Result is a successful conversion.
type Result struct {
	PDF    []byte
	Title  string // document <title>, "" if none
	Timing Timing
}

// Filename returns the download filename derived from the document title.
func (r *Result) Filename() string {
	return filename(r.Title)
}

// Converter is the conversion entry point. It is safe for concurrent use.
type Converter struct {
	engine     engine.Engine
	locator    Locator
	browserCfg config.BrowserConfig
	cfg        config.ConverterConfig
	observer   Observer

	sem      chan struct{} // nil = unlimited
	inFlight atomic.Int32
}

// New creates a Converter. locator may be nil when browserCfg.ControlURL is set.
// Non-positive timeouts fall back to their defaults.
func New(eng engine.Engine, locator Locator, browserCfg config.BrowserConfig, cfg config.ConverterConfig) *Converter {
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}
	if cfg.PrintTimeout <= 0 {
		cfg.PrintTimeout = 60 * time.Second
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	c := &Converter{
		engine:     eng,
		locator:    locator,
		browserCfg: browserCfg,
		cfg:        cfg,
		observer:   nopObserver{},
	}
	if cfg.MaxConcurrent > 0 {
		c.sem = make(chan struct{}, cfg.MaxConcurrent)
	}
	return c
}

// SetObserver sets the telemetry sink.
func (c *Converter) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
}

// Remote reports whether conversions attach to an existing browser.
func (c *Converter) Remote() bool {
	return c.browserCfg.ControlURL != ""
}

// Stats returns a snapshot of browser usage.
func (c *Converter) Stats() models.BrowserStats {
	s := models.BrowserStats{
		InFlight:      int(c.inFlight.Load()),
		MaxConcurrent: c.cfg.MaxConcurrent,
		Mode:          "launch",
	}
	if c.Remote() {
		s.Mode = "remote"
	} else if c.locator != nil {
		s.BinaryPath = c.locator.Path()
	}
	return s
}

// Convert renders doc and prints it to PDF. A nil opts means all defaults.
//
// The returned error is always a *models.ConversionError. Cancelling ctx
// aborts the step in progress; the browser is torn down regardless.
func (c *Converter) Convert(ctx context.Context, doc string, opts *models.PdfOptions) (*Result, error) {
	start := time.Now()
	printOpts := Resolve(opts)

	// ── 1. Concurrency slot ──────────────────────────────────────────
	if c.sem != nil {
		select {
		case c.sem <- struct{}{}:
			defer func() { <-c.sem }()
		case <-ctx.Done():
			return nil, c.finish(start, models.NewConversionError(
				models.KindLaunch, "Failed to launch browser", ctx.Err()))
		}
	}

	c.observer.SetInFlight(int(c.inFlight.Add(1)))
	defer func() { c.observer.SetInFlight(int(c.inFlight.Add(-1))) }()

	// ── 2. Browser binary ────────────────────────────────────────────
	launch := engine.LaunchOptions{
		Headless:         c.browserCfg.Headless,
		NoSandbox:        c.browserCfg.NoSandbox,
		IgnoreCertErrors: c.browserCfg.IgnoreCertErrors,
	}
	if !c.Remote() {
		bin, err := c.locator.Locate(ctx)
		if err != nil {
			return nil, c.finish(start, models.NewConversionError(
				models.KindLocate, "Failed to locate browser binary", err))
		}
		launch.BinaryPath = bin
	}

	// ── 3. Session ───────────────────────────────────────────────────
	s := &session{
		engine:           c.engine,
		cfg:              c.cfg,
		launch:           launch,
		tabOpts:          engine.TabOptions{BlockRemote: c.browserCfg.BlockRemote},
		onCleanupWarning: func(error) { c.observer.ObserveCleanupWarning() },
	}
	pdf, err := s.run(ctx, dataURL(doc), printOpts)
	if err != nil {
		return nil, c.finish(start, err)
	}

	res := &Result{
		PDF:    pdf,
		Title:  documentTitle(doc),
		Timing: s.timing,
	}
	c.finish(start, nil)

	slog.Info("pdf conversion completed",
		"bytes", len(pdf),
		"title", res.Title,
		"launch", res.Timing.Launch.String(),
		"render", res.Timing.Render.String(),
		"total", res.Timing.Total.String(),
	)
	return res, nil
}

// finish records the outcome and passes err through.
func (c *Converter) finish(start time.Time, err error) error {
	var kind models.ErrorKind
	if err != nil {
		kind = models.KindOf(err)
	}
	c.observer.ObserveConversion(kind, time.Since(start))
	return err
}
