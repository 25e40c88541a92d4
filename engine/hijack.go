package engine

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// remoteSchemes are the URL schemes treated as network fetches.
var remoteSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ws":    {},
	"wss":   {},
}

// isRemoteURL reports whether raw would leave the machine when requested.
// data:, blob: and about: URLs are local to the document.
func isRemoteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		// Unparseable URLs are treated as remote so they are blocked.
		return true
	}
	_, ok := remoteSchemes[strings.ToLower(u.Scheme)]
	return ok
}

// setupBlockRemote installs a request interceptor on the page that fails
// every request leaving the document (images, stylesheets, scripts, XHR).
//
// Returns the running HijackRouter so the caller can stop it before closing
// the page.
func setupBlockRemote(page *rod.Page) *rod.HijackRouter {
	router := page.HijackRequests()

	// Pattern "*" + empty resourceType = intercept ALL requests, then
	// decide per-request whether to block or continue.
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		u := ctx.Request.URL().String()
		if isRemoteURL(u) {
			slog.Debug("blocked remote request", "url", u, "type", ctx.Request.Type())
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	// It will exit when router.Stop() is called.
	go router.Run()

	return router
}
