// Package engine abstracts the browser used to render and print documents.
//
// The converter drives an Engine through a strict sequence: Launch an
// Instance, open one Tab, navigate, wait for load, print, close the tab and
// release the instance. Implementations must tolerate Close/Release being
// called after a failed step.
package engine

import (
	"context"

	"github.com/go-rod/rod/lib/proto"
)

// Engine launches (or attaches to) browser instances.
type Engine interface {
	// Name returns the engine identifier (e.g. "rod", "rod-remote").
	Name() string

	// Launch starts a browser instance for exactly one conversion.
	Launch(ctx context.Context, opts LaunchOptions) (Instance, error)
}

// Instance is one launched browser (or one isolated browser context).
type Instance interface {
	// OpenTab creates a new blank tab.
	OpenTab(ctx context.Context, opts TabOptions) (Tab, error)

	// Release shuts the instance down and frees its resources.
	Release(ctx context.Context) error
}

// Tab is a single browser page.
type Tab interface {
	// Navigate starts loading url. It does not wait for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitLoad blocks until the document's load event has fired.
	WaitLoad(ctx context.Context) error

	// PrintPDF prints the current document and returns the decoded PDF bytes.
	PrintPDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error)

	// Close closes the tab, running the document's unload handlers.
	Close(ctx context.Context) error
}

// LaunchOptions contains everything an engine needs to start a browser.
type LaunchOptions struct {
	// BinaryPath is the browser executable. Ignored by remote engines.
	BinaryPath string

	Headless         bool
	NoSandbox        bool
	IgnoreCertErrors bool
}

// TabOptions configures a new tab.
type TabOptions struct {
	// BlockRemote fails every http(s) and ws(s) request issued by the document.
	BlockRemote bool
}
