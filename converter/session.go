package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/html2pdf/config"
	"github.com/use-agent/html2pdf/engine"
	"github.com/use-agent/html2pdf/models"
)

// state is a session's position in the conversion lifecycle.
type state int

const (
	stateIdle state = iota
	stateLaunching
	stateTabOpen
	stateNavigating
	stateNavigated
	statePrinting
	statePrinted
	stateClosing
	stateClosed
	stateFailed
)

var stateNames = [...]string{
	stateIdle:       "idle",
	stateLaunching:  "launching",
	stateTabOpen:    "tab_open",
	stateNavigating: "navigating",
	stateNavigated:  "navigated",
	statePrinting:   "printing",
	statePrinted:    "printed",
	stateClosing:    "closing",
	stateClosed:     "closed",
	stateFailed:     "failed",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var errNotPDF = errors.New("engine output is not a PDF document")

// pdfMagic is the header every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// Timing records where a conversion spent its time.
type Timing struct {
	Launch time.Duration // launch + tab creation
	Render time.Duration // navigation start to print completion
	Total  time.Duration // including teardown
}

// session owns one browser instance and one tab for exactly one conversion.
// It is not safe for concurrent use.
type session struct {
	engine  engine.Engine
	cfg     config.ConverterConfig
	launch  engine.LaunchOptions
	tabOpts engine.TabOptions

	// onCleanupWarning is called for every teardown failure.
	onCleanupWarning func(error)

	state      state
	step       string // step being executed, for logs
	failedIn   state
	failedStep string
	instance engine.Instance
	tab      engine.Tab
	timing   Timing
}

// run converts the document behind url into PDF bytes.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Launch     – start (or attach to) a browser instance
//  2. Open tab   – one blank tab, remote-fetch blocking installed if enabled
//  3. Navigate   – load the data URL
//  4. Wait       – window load event, bounded by NavigationTimeout
//  5. Print      – Page.printToPDF, bounded by PrintTimeout
//  6. DEFER: close – tab close (unload handlers) then instance release
//
// Step 6 runs on every exit path, panics included, on a context detached from
// the request so a cancelled client still gets its browser reaped. Teardown
// failures are reported through onCleanupWarning and never change the result.
func (s *session) run(ctx context.Context, url string, opts PrintOptions) (pdf []byte, err error) {
	start := time.Now()

	// ── 6. CRITICAL DEFER: recover + teardown ────────────────────────
	defer func() {
		if r := recover(); r != nil {
			pdf = nil
			err = s.fail(models.KindInternal, "Internal error", fmt.Errorf("panic: %v", r))
		}
		s.teardown(ctx)
		s.timing.Total = time.Since(start)
	}()

	// ── 1. Launch ─────────────────────────────────────────────────────
	s.state = stateLaunching
	s.step = "launch"
	inst, err := s.engine.Launch(ctx, s.launch)
	if err != nil {
		return nil, s.fail(models.KindLaunch, "Failed to launch browser", err)
	}
	s.instance = inst

	// ── 2. Open tab ───────────────────────────────────────────────────
	s.step = "open_tab"
	tab, err := inst.OpenTab(ctx, s.tabOpts)
	if err != nil {
		return nil, s.fail(models.KindTab, "Failed to create new tab", err)
	}
	s.tab = tab
	s.state = stateTabOpen
	s.timing.Launch = time.Since(start)

	// ── 3. Navigate ───────────────────────────────────────────────────
	s.state = stateNavigating
	s.step = "navigate"
	renderStart := time.Now()
	if err := tab.Navigate(ctx, url); err != nil {
		return nil, s.fail(models.KindNavigation, "Failed to navigate", err)
	}

	// ── 4. Wait for load ──────────────────────────────────────────────
	s.step = "wait_load"
	waitCtx, waitCancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	err = tab.WaitLoad(waitCtx)
	waitCancel()
	if err != nil {
		return nil, s.fail(models.KindNavigationTimeout, "Navigation timeout", err)
	}
	s.state = stateNavigated

	// ── 5. Print ──────────────────────────────────────────────────────
	s.state = statePrinting
	s.step = "print"
	printCtx, printCancel := context.WithTimeout(ctx, s.cfg.PrintTimeout)
	pdf, err = tab.PrintPDF(printCtx, opts.Proto())
	printCancel()
	if err != nil {
		return nil, s.fail(models.KindPrint, "Failed to generate PDF", err)
	}
	if !bytes.HasPrefix(pdf, pdfMagic) {
		return nil, s.fail(models.KindPrint, "Failed to generate PDF", errNotPDF)
	}
	s.state = statePrinted
	s.timing.Render = time.Since(renderStart)

	return pdf, nil
}

// fail moves the session to the failed state and builds the returned error.
func (s *session) fail(kind models.ErrorKind, message string, cause error) error {
	s.failedIn = s.state
	s.failedStep = s.step
	s.state = stateFailed
	slog.Warn("pdf conversion step failed",
		"step", s.failedStep,
		"state", s.failedIn.String(),
		"kind", string(kind),
		"error", cause,
	)
	return models.NewConversionError(kind, message, cause)
}

// teardown closes the tab and releases the instance, whichever were acquired.
func (s *session) teardown(ctx context.Context) {
	failed := s.state == stateFailed
	if !failed {
		s.state = stateClosing
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CloseTimeout)
	defer cancel()

	if s.tab != nil {
		if err := s.tab.Close(closeCtx); err != nil {
			s.cleanupWarning("close tab", err)
		}
	}
	if s.instance != nil {
		if err := s.instance.Release(closeCtx); err != nil {
			s.cleanupWarning("release browser", err)
		}
	}

	if !failed {
		s.state = stateClosed
	}
}

func (s *session) cleanupWarning(step string, err error) {
	slog.Warn("pdf conversion cleanup failed",
		"kind", string(models.KindCleanup),
		"step", step,
		"error", err,
	)
	if s.onCleanupWarning != nil {
		s.onCleanupWarning(err)
	}
}
