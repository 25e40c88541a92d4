package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/html2pdf/models"
)

// apiClient talks to a running html2pdf service.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

func convertTool() mcp.Tool {
	return mcp.NewTool("convert_html_to_pdf",
		mcp.WithDescription("Render an HTML document in a headless browser and print it to PDF. "+
			"Returns the PDF as an embedded resource, or writes it to output_path when given."),
		mcp.WithString("html",
			mcp.Description("The HTML document to convert. Either html or html_path is required."),
		),
		mcp.WithString("html_path",
			mcp.Description("Path of a local HTML file to convert instead of inline html"),
		),
		mcp.WithString("output_path",
			mcp.Description("Write the PDF to this path instead of returning it inline"),
		),
		mcp.WithBoolean("landscape",
			mcp.Description("Print in landscape orientation (default false)"),
		),
		mcp.WithBoolean("print_background",
			mcp.Description("Print background graphics (default true)"),
		),
		mcp.WithBoolean("show_page_numbers",
			mcp.Description("Show the 'Page X of Y' footer (default true)"),
		),
		mcp.WithNumber("scale",
			mcp.Description("Rendering scale (default 1.0)"),
		),
		mcp.WithNumber("paper_width_mm",
			mcp.Description("Paper width in millimetres (default 210, A4)"),
		),
		mcp.WithNumber("paper_height_mm",
			mcp.Description("Paper height in millimetres (default 297, A4)"),
		),
		mcp.WithNumber("margin_mm",
			mcp.Description("All four margins in millimetres (default 10)"),
		),
		mcp.WithString("page_ranges",
			mcp.Description("Pages to print, e.g. '1-5, 8' (default all)"),
		),
		mcp.WithString("header_template",
			mcp.Description("HTML template for the print header"),
		),
		mcp.WithString("footer_template",
			mcp.Description("HTML template for the print footer"),
		),
	)
}

func healthTool() mcp.Tool {
	return mcp.NewTool("html2pdf_health",
		mcp.WithDescription("Report the html2pdf service status and browser usage."),
	)
}

// requestFromArgs builds the API request from tool arguments. Only
// arguments that were actually supplied become options.
func requestFromArgs(request mcp.CallToolRequest) (*models.ConvertRequest, error) {
	doc := request.GetString("html", "")
	if path := request.GetString("html_path", ""); path != "" {
		if doc != "" {
			return nil, fmt.Errorf("html and html_path are mutually exclusive")
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read html_path: %w", err)
		}
		doc = string(b)
	}
	if doc == "" {
		return nil, fmt.Errorf("html or html_path is required")
	}

	args := request.GetArguments()
	opts := &models.PdfOptions{
		Landscape:       argBool(args, "landscape"),
		PrintBackground: argBool(args, "print_background"),
		ShowPageNumbers: argBool(args, "show_page_numbers"),
		Scale:           argFloat(args, "scale"),
		PaperWidthMM:    argFloat(args, "paper_width_mm"),
		PaperHeightMM:   argFloat(args, "paper_height_mm"),
		PageRanges:      argString(args, "page_ranges"),
		HeaderTemplate:  argString(args, "header_template"),
		FooterTemplate:  argString(args, "footer_template"),
	}
	if m := argFloat(args, "margin_mm"); m != nil {
		opts.MarginTopMM, opts.MarginBottomMM, opts.MarginLeftMM, opts.MarginRightMM = m, m, m, m
	}

	return &models.ConvertRequest{HTML: &doc, PdfOptions: opts}, nil
}

func handleConvert(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := requestFromArgs(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		pdf, name, err := c.convert(ctx, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if out := request.GetString("output_path", ""); out != "" {
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to create output directory: %v", err)), nil
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to write PDF: %v", err)), nil
			}
			return mcp.NewToolResultText(fmt.Sprintf("Wrote %d bytes to %s", len(pdf), out)), nil
		}

		return mcp.NewToolResultResource(
			fmt.Sprintf("Converted %s (%d bytes)", name, len(pdf)),
			mcp.BlobResourceContents{
				URI:      "file:///" + name,
				MIMEType: "application/pdf",
				Blob:     base64.StdEncoding.EncodeToString(pdf),
			},
		), nil
	}
}

func handleHealth(c *apiClient) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		h, err := c.health(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := fmt.Sprintf("Status: %s\nVersion: %s\nUptime: %s\nMode: %s\nIn flight: %d",
			h.Status, h.Version, h.Uptime, h.Browser.Mode, h.Browser.InFlight)
		if h.Browser.MaxConcurrent > 0 {
			result += fmt.Sprintf(" of %d", h.Browser.MaxConcurrent)
		}
		if h.Browser.BinaryPath != "" {
			result += "\nBrowser: " + h.Browser.BinaryPath
		}
		return mcp.NewToolResultText(result), nil
	}
}

// convert posts req and returns the PDF and its suggested filename.
func (c *apiClient) convert(ctx context.Context, req *models.ConvertRequest) ([]byte, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convert", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(respBody))
		if kind := resp.Header.Get("X-Error-Kind"); kind != "" {
			msg = fmt.Sprintf("[%s] %s", kind, msg)
		}
		return nil, "", fmt.Errorf("conversion failed (HTTP %d): %s", resp.StatusCode, msg)
	}

	return respBody, filenameFrom(resp.Header.Get("Content-Disposition")), nil
}

func (c *apiClient) health(ctx context.Context) (*models.HealthResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	var h models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &h, nil
}

// filenameFrom extracts the filename parameter, defaulting to document.pdf.
func filenameFrom(disposition string) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil && params["filename"] != "" {
		return params["filename"]
	}
	return "document.pdf"
}

// --- argument helpers ---

func argBool(args map[string]any, key string) *bool {
	if v, ok := args[key].(bool); ok {
		return &v
	}
	return nil
}

func argFloat(args map[string]any, key string) *float64 {
	switch v := args[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func argString(args map[string]any, key string) *string {
	if v, ok := args[key].(string); ok {
		return &v
	}
	return nil
}
