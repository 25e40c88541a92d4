package converter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/html2pdf/engine"
	"github.com/use-agent/html2pdf/models"
)

var errBoom = errors.New("boom")

// fakeEngine records every call and fails (or panics) on request.
type fakeEngine struct {
	failLaunch   error
	failOpenTab  error
	failNavigate error
	failWait     error
	failPrint    error
	failClose    error
	failRelease  error
	panicOnPrint bool
	blockWait    bool // WaitLoad blocks until ctx is done
	output       []byte

	launches atomic.Int32
	tabs     atomic.Int32
	closed   atomic.Int32
	released atomic.Int32

	mu       sync.Mutex
	launch   engine.LaunchOptions
	tabOpts  engine.TabOptions
	url      string
	printReq *proto.PagePrintToPDF
	closeErr error // ctx.Err() observed by Close
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Launch(_ context.Context, opts engine.LaunchOptions) (engine.Instance, error) {
	e.launches.Add(1)
	e.mu.Lock()
	e.launch = opts
	e.mu.Unlock()
	if e.failLaunch != nil {
		return nil, e.failLaunch
	}
	return &fakeInstance{e: e}, nil
}

type fakeInstance struct{ e *fakeEngine }

func (i *fakeInstance) OpenTab(_ context.Context, opts engine.TabOptions) (engine.Tab, error) {
	if i.e.failOpenTab != nil {
		return nil, i.e.failOpenTab
	}
	i.e.tabs.Add(1)
	i.e.mu.Lock()
	i.e.tabOpts = opts
	i.e.mu.Unlock()
	return &fakeTab{e: i.e}, nil
}

func (i *fakeInstance) Release(ctx context.Context) error {
	i.e.released.Add(1)
	return i.e.failRelease
}

type fakeTab struct{ e *fakeEngine }

func (t *fakeTab) Navigate(_ context.Context, url string) error {
	t.e.mu.Lock()
	t.e.url = url
	t.e.mu.Unlock()
	return t.e.failNavigate
}

func (t *fakeTab) WaitLoad(ctx context.Context) error {
	if t.e.blockWait {
		<-ctx.Done()
		return ctx.Err()
	}
	return t.e.failWait
}

func (t *fakeTab) PrintPDF(_ context.Context, req *proto.PagePrintToPDF) ([]byte, error) {
	if t.e.panicOnPrint {
		panic("renderer crashed")
	}
	t.e.mu.Lock()
	t.e.printReq = req
	t.e.mu.Unlock()
	if t.e.failPrint != nil {
		return nil, t.e.failPrint
	}
	if t.e.output != nil {
		return t.e.output, nil
	}
	return []byte("%PDF-1.7\n%fake\n%%EOF"), nil
}

func (t *fakeTab) Close(ctx context.Context) error {
	t.e.closed.Add(1)
	t.e.mu.Lock()
	t.e.closeErr = ctx.Err()
	t.e.mu.Unlock()
	return t.e.failClose
}

// fakeLocator returns a fixed path or error.
type fakeLocator struct {
	path  string
	err   error
	calls atomic.Int32
}

func (l *fakeLocator) Locate(context.Context) (string, error) {
	l.calls.Add(1)
	return l.path, l.err
}

func (l *fakeLocator) Path() string { return l.path }

// recordingObserver captures telemetry calls.
type recordingObserver struct {
	mu       sync.Mutex
	kinds    []models.ErrorKind
	warnings int
	maxIn    int
}

func (o *recordingObserver) ObserveConversion(kind models.ErrorKind, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.kinds = append(o.kinds, kind)
}

func (o *recordingObserver) ObserveCleanupWarning() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings++
}

func (o *recordingObserver) SetInFlight(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if n > o.maxIn {
		o.maxIn = n
	}
}
