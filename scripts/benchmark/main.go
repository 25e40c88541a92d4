package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// CLI flags
var (
	apiURL      = flag.String("api-url", "http://localhost:3005", "html2pdf API base URL")
	runs        = flag.Int("runs", 3, "Number of runs per document")
	concurrency = flag.Int("concurrency", 1, "Concurrent requests per document")
	output      = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test documents covering typical workloads.
var testDocs = []struct {
	Label string
	HTML  string
}{
	{"Minimal", "<h1>Hello</h1>"},
	{"Styled", styledDoc()},
	{"Table", tableDoc(500)},
	{"SVG", svgDoc(40)},
	{"Long", longDoc(60)},
}

// --- Request types (mirrors models package) ---

type convertRequest struct {
	HTML       string      `json:"html"`
	PdfOptions *pdfOptions `json:"pdf_options,omitempty"`
}

type pdfOptions struct {
	PrintBackground bool `json:"print_background"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	TotalMs    int64  `json:"total_ms"`
	PDFBytes   int    `json:"pdf_bytes"`
	StatusCode int    `json:"status_code"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type docSummary struct {
	MeanMs   float64 `json:"mean_ms"`
	P50Ms    int64   `json:"p50_ms"`
	P95Ms    int64   `json:"p95_ms"`
	PDFBytes float64 `json:"pdf_bytes"`
	Failures int     `json:"failures"`
}

type docResult struct {
	Label     string      `json:"label"`
	HTMLBytes int         `json:"html_bytes"`
	Runs      []runResult `json:"runs"`
	Summary   *docSummary `json:"summary,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string      `json:"timestamp"`
	APIURL      string      `json:"api_url"`
	RunsPerDoc  int         `json:"runs_per_doc"`
	Concurrency int         `json:"concurrency"`
	Results     []docResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== html2pdf Benchmark Suite ===")
	fmt.Printf("API URL:      %s\n", *apiURL)
	fmt.Printf("Runs/doc:     %d\n", *runs)
	fmt.Printf("Concurrency:  %d\n", *concurrency)
	fmt.Printf("Output:       %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure html2pdf is running (e.g. go run ./cmd/html2pdf)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerDoc:  *runs,
		Concurrency: *concurrency,
	}

	client := &http.Client{Timeout: 120 * time.Second}
	for _, d := range testDocs {
		fmt.Printf("Benchmarking [%s] %s of HTML ...\n", d.Label, formatInt(len(d.HTML)))
		dr := docResult{Label: d.Label, HTMLBytes: len(d.HTML), Runs: make([]runResult, *runs)}

		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(max(*concurrency, 1))
		for i := 0; i < *runs; i++ {
			g.Go(func() error {
				dr.Runs[i] = benchmarkDoc(ctx, client, d.HTML, i+1)
				return nil
			})
		}
		_ = g.Wait()

		for _, rr := range dr.Runs {
			if rr.Success {
				fmt.Printf("  Run %d/%d  OK  %dms  %s bytes\n", rr.Run, *runs, rr.TotalMs, formatInt(rr.PDFBytes))
			} else {
				fmt.Printf("  Run %d/%d  FAILED: %s\n", rr.Run, *runs, rr.Error)
			}
		}

		dr.Summary = summarize(dr.Runs)
		report.Results = append(report.Results, dr)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkDoc(ctx context.Context, client *http.Client, doc string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(convertRequest{HTML: doc, PdfOptions: &pdfOptions{PrintBackground: true}})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *apiURL+"/convert", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	rr.TotalMs = time.Since(start).Milliseconds()
	rr.StatusCode = resp.StatusCode
	if err != nil {
		rr.Error = fmt.Sprintf("read error: %v", err)
		return rr
	}

	if resp.StatusCode != http.StatusOK {
		rr.ErrorKind = resp.Header.Get("X-Error-Kind")
		rr.Error = strings.TrimSpace(string(body))
		return rr
	}
	if !bytes.HasPrefix(body, []byte("%PDF-")) {
		rr.Error = "response is not a PDF"
		return rr
	}

	rr.Success = true
	rr.PDFBytes = len(body)
	return rr
}

func summarize(runs []runResult) *docSummary {
	var s docSummary
	var latencies []int64

	for _, r := range runs {
		if !r.Success {
			s.Failures++
			continue
		}
		latencies = append(latencies, r.TotalMs)
		s.MeanMs += float64(r.TotalMs)
		s.PDFBytes += float64(r.PDFBytes)
	}

	if len(latencies) == 0 {
		return nil
	}

	n := float64(len(latencies))
	s.MeanMs /= n
	s.PDFBytes /= n

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	s.P50Ms = percentile(latencies, 0.50)
	s.P95Ms = percentile(latencies, 0.95)
	return &s
}

// percentile returns the nearest-rank percentile of sorted values.
func percentile(sorted []int64, p float64) int64 {
	idx := int(float64(len(sorted))*p+0.5) - 1
	idx = min(max(idx, 0), len(sorted)-1)
	return sorted[idx]
}

func printTable(results []docResult) {
	fmt.Println(strings.Repeat("─", 75))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Document\tMean\tp50\tp95\tPDF Size\tFailures\n")
	fmt.Fprintf(w, "────────\t────\t───\t───\t────────\t────────\n")

	for _, r := range results {
		if r.Summary == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t%d\n", r.Label, len(r.Runs))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%dms\t%s\t%d\n",
			r.Label,
			int64(r.Summary.MeanMs),
			r.Summary.P50Ms,
			r.Summary.P95Ms,
			formatInt(int(r.Summary.PDFBytes)),
			r.Summary.Failures,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 75))
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// --- test documents ---

func styledDoc() string {
	return `<!doctype html><html><head><title>Styled</title><style>
body{font-family:Georgia,serif;margin:0}
header{background:linear-gradient(90deg,#1e3c72,#2a5298);color:#fff;padding:40px}
.card{border:1px solid #ddd;border-radius:8px;margin:20px;padding:20px;box-shadow:0 2px 6px rgba(0,0,0,.15)}
</style></head><body><header><h1>Quarterly Report</h1></header>` +
		strings.Repeat(`<div class="card"><h2>Section</h2><p>Lorem ipsum dolor sit amet, consectetur adipiscing elit.</p></div>`, 12) +
		`</body></html>`
}

func tableDoc(rows int) string {
	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><title>Table</title><style>td,th{border:1px solid #999;padding:4px}</style></head><body><table>`)
	b.WriteString("<tr><th>#</th><th>Item</th><th>Qty</th><th>Price</th></tr>")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>Item %d</td><td>%d</td><td>%.2f</td></tr>", i, i, i%7+1, float64(i)*1.25)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

func svgDoc(shapes int) string {
	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><title>SVG</title></head><body><svg width="700" height="900">`)
	for i := 0; i < shapes; i++ {
		fmt.Fprintf(&b, `<circle cx="%d" cy="%d" r="%d" fill="hsl(%d,70%%,50%%)"/>`, 50+(i*37)%600, 50+(i*53)%800, 10+i%30, i*9%360)
	}
	b.WriteString("</svg></body></html>")
	return b.String()
}

func longDoc(pages int) string {
	var b strings.Builder
	b.WriteString(`<!doctype html><html><head><title>Long</title></head><body>`)
	for i := 1; i <= pages; i++ {
		fmt.Fprintf(&b, `<h2 style="page-break-before:always">Chapter %d</h2>`, i)
		b.WriteString(strings.Repeat("<p>The quick brown fox jumps over the lazy dog. </p>", 20))
	}
	b.WriteString("</body></html>")
	return b.String()
}
