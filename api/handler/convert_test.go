package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/html2pdf/converter"
	"github.com/use-agent/html2pdf/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubConverter returns a canned result and records what it was called with.
type stubConverter struct {
	res    *converter.Result
	err    error
	called int
	html   string
	opts   *models.PdfOptions
}

func (s *stubConverter) Convert(_ context.Context, html string, opts *models.PdfOptions) (*converter.Result, error) {
	s.called++
	s.html = html
	s.opts = opts
	return s.res, s.err
}

func serveConvert(conv Converter, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/convert", Convert(conv))

	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestConvert_Success(t *testing.T) {
	pdf := []byte("%PDF-1.7\n...%%EOF")
	stub := &stubConverter{res: &converter.Result{PDF: pdf, Title: "Quarterly Report"}}

	rec := serveConvert(stub, `{"html":"<h1>Hi</h1>","pdf_options":{"landscape":true,"margin_top_mm":5}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `inline; filename="Quarterly Report.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.Equal(rec.Body.Bytes(), pdf) {
		t.Error("body is not the PDF bytes")
	}
	if stub.html != "<h1>Hi</h1>" {
		t.Errorf("html = %q", stub.html)
	}
	if stub.opts == nil || stub.opts.Landscape == nil || !*stub.opts.Landscape ||
		stub.opts.MarginTopMM == nil || *stub.opts.MarginTopMM != 5 {
		t.Errorf("pdf_options not forwarded: %+v", stub.opts)
	}
}

func TestConvert_NullOptions(t *testing.T) {
	stub := &stubConverter{res: &converter.Result{PDF: []byte("%PDF-1.4")}}

	rec := serveConvert(stub, `{"html":"<p>x</p>","pdf_options":null}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.opts != nil {
		t.Errorf("opts = %+v, want nil", stub.opts)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `inline; filename="document.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestConvert_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing html", `{"pdf_options":{}}`},
		{"null html", `{"html":null}`},
		{"malformed json", `{"html":`},
		{"wrong type", `{"html":42}`},
		{"empty body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubConverter{}
			rec := serveConvert(stub, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
				t.Errorf("Content-Type = %q, want text/plain", rec.Header().Get("Content-Type"))
			}
			if stub.called != 0 {
				t.Error("converter must not be invoked on a bad request")
			}
		})
	}
}

func TestConvert_EmptyHTMLAccepted(t *testing.T) {
	stub := &stubConverter{res: &converter.Result{PDF: []byte("%PDF-1.4")}}

	rec := serveConvert(stub, `{"html":""}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if stub.called != 1 || stub.html != "" {
		t.Errorf("called = %d, html = %q; want one call with an empty document", stub.called, stub.html)
	}
}

func TestConvert_Failure(t *testing.T) {
	cause := errors.New("net::ERR_ABORTED")
	stub := &stubConverter{err: models.NewConversionError(models.KindNavigation, "Failed to navigate", cause)}

	rec := serveConvert(stub, `{"html":"<p>x</p>"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	want := "Error while converting to PDF: Failed to navigate: net::ERR_ABORTED"
	if got := rec.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if got := rec.Header().Get(ErrorKindHeader); got != "NAVIGATION_ERROR" {
		t.Errorf("%s = %q", ErrorKindHeader, got)
	}
}

func TestConvert_FailureBodyWithPercent(t *testing.T) {
	stub := &stubConverter{err: models.NewConversionError(models.KindPrint, "Failed to generate PDF", errors.New("scale 250% out of range"))}

	rec := serveConvert(stub, `{"html":"<p>x</p>"}`)

	if !strings.HasSuffix(rec.Body.String(), "scale 250% out of range") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
