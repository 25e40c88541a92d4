package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// RodEngine drives Chromium over the DevTools protocol with go-rod.
//
// Without a control URL every Launch starts a fresh browser process that is
// killed again on Release. With a control URL the engine keeps one connection
// to that browser and isolates every Launch in its own incognito context.
type RodEngine struct {
	controlURL string
	dial       func(ctx context.Context, u string) (rod.CDPClient, error)

	mu     sync.Mutex
	remote *rod.Browser // lazily connected, remote mode only
}

// NewRodEngine creates a RodEngine. An empty controlURL selects local launch mode.
func NewRodEngine(controlURL string) *RodEngine {
	return &RodEngine{controlURL: controlURL, dial: dialCDP}
}

func dialCDP(ctx context.Context, u string) (rod.CDPClient, error) {
	c, err := cdp.StartWithURL(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// connect dials the DevTools endpoint under ctx. The returned browser and its
// event hub live on context.Background, so subscriptions made by later calls
// are not closed when ctx ends.
func (e *RodEngine) connect(ctx context.Context, u string) (*rod.Browser, error) {
	client, err := e.dial(ctx, u)
	if err != nil {
		return nil, err
	}
	b := rod.New().Client(client)
	if err := b.Connect(); err != nil {
		return nil, err
	}
	return b, nil
}

func (e *RodEngine) Name() string {
	if e.controlURL != "" {
		return "rod-remote"
	}
	return "rod"
}

func (e *RodEngine) Launch(ctx context.Context, opts LaunchOptions) (Instance, error) {
	if e.controlURL != "" {
		return e.launchIncognito(ctx)
	}
	return e.launchLocal(ctx, opts)
}

// launchLocal starts a dedicated browser process.
func (e *RodEngine) launchLocal(ctx context.Context, opts LaunchOptions) (*rodInstance, error) {
	if opts.BinaryPath == "" {
		return nil, errors.New("no browser binary")
	}

	l := launcher.New().
		Context(ctx).
		Bin(opts.BinaryPath).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)

	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("log-level"), "3")
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	if opts.IgnoreCertErrors {
		l.Set(flags.Flag("ignore-certificate-errors"))
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", opts.BinaryPath, err)
	}
	slog.Debug("browser launched", "pid", l.PID(), "controlURL", controlURL)

	browser, err := e.connect(ctx, controlURL)
	if err != nil {
		go func() {
			l.Kill()
			l.Cleanup()
		}()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	return &rodInstance{browser: browser, proc: l}, nil
}

// launchIncognito creates a fresh browser context on the shared remote browser.
func (e *RodEngine) launchIncognito(ctx context.Context) (*rodInstance, error) {
	b, err := e.remoteBrowser(ctx)
	if err != nil {
		return nil, err
	}

	incognito, err := b.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}

	return &rodInstance{browser: incognito.Context(context.Background())}, nil
}

// remoteBrowser returns the shared connection, connecting on first use.
// A failed connect is retried on the next call.
func (e *RodEngine) remoteBrowser(ctx context.Context) (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.remote != nil {
		return e.remote, nil
	}

	b, err := e.connect(ctx, e.controlURL)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", e.controlURL, err)
	}
	slog.Info("connected to remote browser", "controlURL", e.controlURL)

	e.remote = b
	return e.remote, nil
}

// process is the part of *launcher.Launcher that teardown uses.
type process interface {
	PID() int
	Kill()
	Cleanup()
}

var _ process = (*launcher.Launcher)(nil)

// rodInstance is a launched process (proc != nil) or an incognito context.
type rodInstance struct {
	browser *rod.Browser
	proc    process
}

func (i *rodInstance) OpenTab(ctx context.Context, opts TabOptions) (Tab, error) {
	page, err := i.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}

	t := &rodTab{page: page.Context(context.Background())}
	if opts.BlockRemote {
		t.router = setupBlockRemote(t.page)
	}
	return t, nil
}

// Release closes the browser. For a launched process it then waits for the
// process to exit and removes the temporary profile directory.
func (i *rodInstance) Release(ctx context.Context) error {
	closeErr := i.browser.Context(ctx).Close()
	if i.proc == nil {
		return closeErr
	}
	if closeErr != nil {
		go i.proc.Kill()
	}
	return errors.Join(closeErr, reap(ctx, i.proc))
}

// reap waits for p to exit and its profile to be removed. Only a process
// still running when ctx is done gets its group killed.
func reap(ctx context.Context, p process) error {
	exited := make(chan struct{})
	go func() {
		p.Cleanup()
		close(exited)
	}()

	select {
	case <-exited:
		return nil
	case <-ctx.Done():
	}

	go p.Kill()
	return fmt.Errorf("browser pid %d did not exit: %w", p.PID(), ctx.Err())
}

type rodTab struct {
	page   *rod.Page
	router *rod.HijackRouter
}

func (t *rodTab) Navigate(ctx context.Context, url string) error {
	return t.page.Context(ctx).Navigate(url)
}

func (t *rodTab) WaitLoad(ctx context.Context) error {
	return t.page.Context(ctx).WaitLoad()
}

func (t *rodTab) PrintPDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error) {
	r, err := t.page.Context(ctx).PDF(req)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (t *rodTab) Close(ctx context.Context) error {
	if t.router != nil {
		if err := t.router.Stop(); err != nil {
			slog.Debug("hijack router stop failed", "error", err)
		}
	}
	return t.page.Context(ctx).Close()
}
