package models

// ConvertRequest is the payload for POST /convert.
type ConvertRequest struct {
	// HTML is the document to render. The field must be present; an empty
	// document is valid and prints a blank page.
	HTML *string `json:"html" binding:"required"`

	// PdfOptions controls page layout and header/footer templates.
	// Omitted or null means all defaults.
	PdfOptions *PdfOptions `json:"pdf_options,omitempty"`
}

// PdfOptions is the user-facing print configuration. Every field is optional;
// nil means "use the default" and is resolved field by field.
//
// Distances are in millimetres.
type PdfOptions struct {
	// Landscape prints in landscape orientation. Default: false.
	Landscape *bool `json:"landscape,omitempty"`

	// DisplayHeaderFooter renders the header and footer templates. Default: true.
	DisplayHeaderFooter *bool `json:"display_header_footer,omitempty"`

	// PrintBackground prints background graphics. Default: true.
	PrintBackground *bool `json:"print_background,omitempty"`

	// Scale of the page rendering. Default: 1.0.
	Scale *float64 `json:"scale,omitempty"`

	// PaperWidthMM is the paper width. Default: 210 (A4).
	PaperWidthMM *float64 `json:"paper_width_mm,omitempty"`

	// PaperHeightMM is the paper height. Default: 297 (A4).
	PaperHeightMM *float64 `json:"paper_height_mm,omitempty"`

	// Margins. Default: 10 each.
	MarginTopMM    *float64 `json:"margin_top_mm,omitempty"`
	MarginBottomMM *float64 `json:"margin_bottom_mm,omitempty"`
	MarginLeftMM   *float64 `json:"margin_left_mm,omitempty"`
	MarginRightMM  *float64 `json:"margin_right_mm,omitempty"`

	// PageRanges such as "1-5, 8". Empty means all pages.
	PageRanges *string `json:"page_ranges,omitempty"`

	// HeaderTemplate is the print header HTML. Empty means the engine default.
	HeaderTemplate *string `json:"header_template,omitempty"`

	// FooterTemplate is the print footer HTML. Omitted means the built-in
	// "Page X of Y" footer; an explicit empty string defers to ShowPageNumbers.
	FooterTemplate *string `json:"footer_template,omitempty"`

	// PreferCSSPageSize lets @page size in the document win. Default: false.
	PreferCSSPageSize *bool `json:"prefer_css_page_size,omitempty"`

	// ShowPageNumbers picks the footer used for an empty FooterTemplate. Default: true.
	ShowPageNumbers *bool `json:"show_page_numbers,omitempty"`

	// Legacy spellings accepted for older clients. The _mm fields win.
	LegacyPaperWidth   *float64 `json:"paper_width,omitempty"`
	LegacyPaperHeight  *float64 `json:"paper_height,omitempty"`
	LegacyMarginTop    *float64 `json:"margin_top,omitempty"`
	LegacyMarginBottom *float64 `json:"margin_bottom,omitempty"`
	LegacyMarginLeft   *float64 `json:"margin_left,omitempty"`
	LegacyMarginRight  *float64 `json:"margin_right,omitempty"`
}
