package converter

import (
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/html2pdf/models"
)

const mmPerInch = 25.4

// Defaults applied to omitted fields.
const (
	DefaultScale         = 1.0
	DefaultPaperWidthMM  = 210.0 // A4
	DefaultPaperHeightMM = 297.0 // A4
	DefaultMarginMM      = 10.0
)

// DefaultFooterTemplate is the built-in "Page X of Y" footer.
const DefaultFooterTemplate = `<div style="width:100%;font-size:10px;color:#555;text-align:center;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

// EmptyFooterTemplate replaces the engine's own footer when page numbers are off.
const EmptyFooterTemplate = "<div></div>"

// PrintOptions is the fully resolved, engine-ready print configuration.
// Distances are in inches.
type PrintOptions struct {
	Landscape           bool
	DisplayHeaderFooter bool
	PrintBackground     bool
	Scale               float64

	PaperWidth   float64
	PaperHeight  float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64

	// PageRanges and HeaderTemplate are nil when unset.
	PageRanges     *string
	HeaderTemplate *string

	// FooterTemplate is always concrete.
	FooterTemplate string

	PreferCSSPageSize       bool
	IgnoreInvalidPageRanges bool
	GenerateDocumentOutline bool
	GenerateTaggedPDF       bool
}

// Resolve turns user options into PrintOptions. A nil raw yields all defaults.
// Values are forwarded as given; the engine rejects what it cannot print.
func Resolve(raw *models.PdfOptions) PrintOptions {
	if raw == nil {
		raw = &models.PdfOptions{}
	}

	return PrintOptions{
		Landscape:           boolOr(raw.Landscape, false),
		DisplayHeaderFooter: boolOr(raw.DisplayHeaderFooter, true),
		PrintBackground:     boolOr(raw.PrintBackground, true),
		Scale:               floatOr(DefaultScale, raw.Scale),

		PaperWidth:   mmToInch(floatOr(DefaultPaperWidthMM, raw.PaperWidthMM, raw.LegacyPaperWidth)),
		PaperHeight:  mmToInch(floatOr(DefaultPaperHeightMM, raw.PaperHeightMM, raw.LegacyPaperHeight)),
		MarginTop:    mmToInch(floatOr(DefaultMarginMM, raw.MarginTopMM, raw.LegacyMarginTop)),
		MarginBottom: mmToInch(floatOr(DefaultMarginMM, raw.MarginBottomMM, raw.LegacyMarginBottom)),
		MarginLeft:   mmToInch(floatOr(DefaultMarginMM, raw.MarginLeftMM, raw.LegacyMarginLeft)),
		MarginRight:  mmToInch(floatOr(DefaultMarginMM, raw.MarginRightMM, raw.LegacyMarginRight)),

		PageRanges:     nonEmpty(raw.PageRanges),
		HeaderTemplate: nonEmpty(raw.HeaderTemplate),
		FooterTemplate: resolveFooter(raw.FooterTemplate, boolOr(raw.ShowPageNumbers, true)),

		PreferCSSPageSize: boolOr(raw.PreferCSSPageSize, false),
	}
}

// resolveFooter picks the concrete footer. An omitted footer takes the
// built-in template; an empty one follows showPageNumbers.
func resolveFooter(footer *string, showPageNumbers bool) string {
	switch {
	case footer == nil:
		return DefaultFooterTemplate
	case *footer != "":
		return *footer
	case showPageNumbers:
		return DefaultFooterTemplate
	default:
		return EmptyFooterTemplate
	}
}

// Proto maps the options onto the DevTools print request.
func (o PrintOptions) Proto() *proto.PagePrintToPDF {
	req := &proto.PagePrintToPDF{
		Landscape:               o.Landscape,
		DisplayHeaderFooter:     o.DisplayHeaderFooter,
		PrintBackground:         o.PrintBackground,
		Scale:                   ptr(o.Scale),
		PaperWidth:              ptr(o.PaperWidth),
		PaperHeight:             ptr(o.PaperHeight),
		MarginTop:               ptr(o.MarginTop),
		MarginBottom:            ptr(o.MarginBottom),
		MarginLeft:              ptr(o.MarginLeft),
		MarginRight:             ptr(o.MarginRight),
		FooterTemplate:          o.FooterTemplate,
		PreferCSSPageSize:       o.PreferCSSPageSize,
		GenerateTaggedPDF:       o.GenerateTaggedPDF,
		GenerateDocumentOutline: o.GenerateDocumentOutline,
	}
	if o.PageRanges != nil {
		req.PageRanges = *o.PageRanges
	}
	if o.HeaderTemplate != nil {
		req.HeaderTemplate = *o.HeaderTemplate
	}
	return req
}

// --- helper functions ---

func mmToInch(mm float64) float64 { return mm / mmPerInch }

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

// floatOr returns the first non-nil value, or fallback.
func floatOr(fallback float64, vs ...*float64) float64 {
	for _, v := range vs {
		if v != nil {
			return *v
		}
	}
	return fallback
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func ptr[T any](v T) *T { return &v }
