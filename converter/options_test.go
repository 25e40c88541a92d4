package converter

import (
	"math"
	"reflect"
	"testing"

	"github.com/use-agent/html2pdf/models"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }
func boolp(v bool) *bool     { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestResolve_Defaults(t *testing.T) {
	for name, raw := range map[string]*models.PdfOptions{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			got := Resolve(raw)

			if got.Landscape || !got.DisplayHeaderFooter || !got.PrintBackground || got.PreferCSSPageSize {
				t.Errorf("boolean defaults wrong: %+v", got)
			}
			if got.Scale != 1.0 {
				t.Errorf("Scale = %v, want 1.0", got.Scale)
			}
			if !approx(got.PaperWidth, 210/25.4) || !approx(got.PaperHeight, 297/25.4) {
				t.Errorf("paper = %vx%v in, want A4", got.PaperWidth, got.PaperHeight)
			}
			for _, m := range []float64{got.MarginTop, got.MarginBottom, got.MarginLeft, got.MarginRight} {
				if !approx(m, 10/25.4) {
					t.Errorf("margin = %v, want %v", m, 10/25.4)
				}
			}
			if got.PageRanges != nil || got.HeaderTemplate != nil {
				t.Errorf("PageRanges/HeaderTemplate should be unset, got %v/%v", got.PageRanges, got.HeaderTemplate)
			}
			if got.FooterTemplate != DefaultFooterTemplate {
				t.Errorf("FooterTemplate = %q, want default", got.FooterTemplate)
			}
			if got.IgnoreInvalidPageRanges || got.GenerateDocumentOutline || got.GenerateTaggedPDF {
				t.Error("engine extras must stay off")
			}
		})
	}
}

func TestResolve_UnitConversion(t *testing.T) {
	got := Resolve(&models.PdfOptions{
		PaperWidthMM: f64(25.4),
		MarginTopMM:  f64(0),
		MarginLeftMM: f64(-5), // forwarded unvalidated
	})

	if got.PaperWidth != 1.0 {
		t.Errorf("PaperWidth = %v, want exactly 1.0", got.PaperWidth)
	}
	if got.MarginTop != 0 {
		t.Errorf("MarginTop = %v, want 0", got.MarginTop)
	}
	if !approx(got.MarginLeft, -5/25.4) {
		t.Errorf("MarginLeft = %v, want %v", got.MarginLeft, -5/25.4)
	}
	// Untouched fields keep their defaults.
	if !approx(got.PaperHeight, 297/25.4) {
		t.Errorf("PaperHeight = %v, want A4 default", got.PaperHeight)
	}
}

func TestResolve_LegacyNames(t *testing.T) {
	got := Resolve(&models.PdfOptions{
		LegacyPaperWidth:  f64(254),
		LegacyMarginRight: f64(25.4),
		LegacyMarginTop:   f64(50.8),
		MarginTopMM:       f64(12.7),
	})

	if !approx(got.PaperWidth, 10) {
		t.Errorf("PaperWidth = %v, want 10 (legacy paper_width)", got.PaperWidth)
	}
	if !approx(got.MarginRight, 1) {
		t.Errorf("MarginRight = %v, want 1 (legacy margin_right)", got.MarginRight)
	}
	if !approx(got.MarginTop, 0.5) {
		t.Errorf("MarginTop = %v, want 0.5 (_mm wins over legacy)", got.MarginTop)
	}
}

func TestResolve_Footer(t *testing.T) {
	tests := []struct {
		name   string
		footer *string
		show   *bool
		want   string
	}{
		{"omitted", nil, nil, DefaultFooterTemplate},
		{"omitted, numbers off", nil, boolp(false), DefaultFooterTemplate},
		{"empty, numbers on", str(""), boolp(true), DefaultFooterTemplate},
		{"empty, numbers default", str(""), nil, DefaultFooterTemplate},
		{"empty, numbers off", str(""), boolp(false), EmptyFooterTemplate},
		{"custom, numbers on", str("Custom"), boolp(true), "Custom"},
		{"custom, numbers off", str("Custom"), boolp(false), "Custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(&models.PdfOptions{FooterTemplate: tt.footer, ShowPageNumbers: tt.show})
			if got.FooterTemplate != tt.want {
				t.Errorf("FooterTemplate = %q, want %q", got.FooterTemplate, tt.want)
			}
			if got.FooterTemplate == "" {
				t.Error("FooterTemplate must never be empty")
			}
		})
	}
}

func TestResolve_OptionalStrings(t *testing.T) {
	got := Resolve(&models.PdfOptions{PageRanges: str(""), HeaderTemplate: str("")})
	if got.PageRanges != nil || got.HeaderTemplate != nil {
		t.Error("empty strings must resolve to unset")
	}

	got = Resolve(&models.PdfOptions{PageRanges: str("1-5, 8"), HeaderTemplate: str("<span class=title></span>")})
	if got.PageRanges == nil || *got.PageRanges != "1-5, 8" {
		t.Errorf("PageRanges = %v, want 1-5, 8", got.PageRanges)
	}
	if got.HeaderTemplate == nil || *got.HeaderTemplate != "<span class=title></span>" {
		t.Errorf("HeaderTemplate = %v", got.HeaderTemplate)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	raw := &models.PdfOptions{
		Landscape:       boolp(true),
		Scale:           f64(0.8),
		PageRanges:      str("2"),
		FooterTemplate:  str(""),
		ShowPageNumbers: boolp(false),
	}

	a, b := Resolve(raw), Resolve(raw)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Resolve not idempotent:\n%+v\n%+v", a, b)
	}
	if a.PageRanges == raw.PageRanges {
		t.Error("resolved options must not alias the request")
	}
}

func TestPrintOptions_Proto(t *testing.T) {
	req := Resolve(&models.PdfOptions{
		Landscape:    boolp(true),
		PaperWidthMM: f64(25.4),
		PageRanges:   str("1-2"),
	}).Proto()

	if !req.Landscape || !req.DisplayHeaderFooter || !req.PrintBackground {
		t.Errorf("flags not mapped: %+v", req)
	}
	if req.PaperWidth == nil || *req.PaperWidth != 1.0 {
		t.Errorf("PaperWidth = %v, want 1.0", req.PaperWidth)
	}
	if req.Scale == nil || *req.Scale != 1.0 {
		t.Errorf("Scale = %v, want 1.0", req.Scale)
	}
	if req.PageRanges != "1-2" {
		t.Errorf("PageRanges = %q", req.PageRanges)
	}
	if req.HeaderTemplate != "" {
		t.Errorf("HeaderTemplate = %q, want unset", req.HeaderTemplate)
	}
	if req.FooterTemplate != DefaultFooterTemplate {
		t.Errorf("FooterTemplate = %q", req.FooterTemplate)
	}
	if req.GenerateTaggedPDF || req.GenerateDocumentOutline {
		t.Error("tagged PDF and outline must be off")
	}
}
