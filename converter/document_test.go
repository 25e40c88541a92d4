package converter

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestDataURL_RoundTrip(t *testing.T) {
	docs := []string{
		"",
		"<h1>Hello</h1>",
		"<p>日本語 – ünïcödé ✓</p>",
		"<a href='?a=1&b=2#x'>+/=%20</a>",
		strings.Repeat("<div>row</div>", 10000),
	}

	for _, doc := range docs {
		u := dataURL(doc)
		if !strings.HasPrefix(u, "data:text/html;base64,") {
			t.Fatalf("prefix missing: %.40q", u)
		}
		payload := strings.TrimPrefix(u, "data:text/html;base64,")
		if strings.ContainsAny(payload, "#?& ") {
			t.Errorf("payload contains URL-special characters: %.40q", payload)
		}
		got, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if string(got) != doc {
			t.Errorf("round trip mismatch for %.40q", doc)
		}
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"head title", "<html><head><title>Invoice 42</title></head><body></body></html>", "Invoice 42"},
		{"whitespace collapsed", "<title>\n  Q3   report \n</title>", "Q3 report"},
		{"entities decoded", "<title>Tom &amp; Jerry</title>", "Tom & Jerry"},
		{"no title", "<h1>Hello</h1>", ""},
		{"empty title", "<title></title><body>x</body>", ""},
		{"svg title in body ignored", "<body><svg><title>icon</title></svg></body>", ""},
		{"empty document", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documentTitle(tt.doc); got != tt.want {
				t.Errorf("documentTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"", "document.pdf"},
		{"Invoice 42", "Invoice 42.pdf"},
		{`a"b\c/d`, "a_b_c_d.pdf"},
		{"報告書", "document.pdf"},
		{"Q3: revenue & costs", "Q3_ revenue _ costs.pdf"},
		{"...", "document.pdf"},
		{strings.Repeat("x", 300), strings.Repeat("x", 100) + ".pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := filename(tt.title); got != tt.want {
				t.Errorf("filename(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}
