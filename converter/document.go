package converter

import (
	"encoding/base64"
	"strings"

	"golang.org/x/net/html"
)

// dataURLPrefix is the scheme and media type used to inject documents.
const dataURLPrefix = "data:text/html;base64,"

// maxFilenameLen caps the filename stem derived from the document title.
const maxFilenameLen = 100

// dataURL encodes doc as a self-contained navigable URL. Standard base64 with
// padding keeps the content free of URL-special characters.
func dataURL(doc string) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString([]byte(doc))
}

// documentTitle returns the text of the first <title> in the document head,
// or "" if there is none.
func documentTitle(doc string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(doc))
	inTitle := false
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			switch string(tn) {
			case "title":
				inTitle = true
			case "body":
				return ""
			}
		case html.TextToken:
			if inTitle {
				return strings.Join(strings.Fields(string(tokenizer.Text())), " ")
			}
		case html.EndTagToken:
			if inTitle {
				return ""
			}
		}
	}
}

// filename derives a header-safe "<stem>.pdf" from title.
func filename(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range title {
		if b.Len() >= maxFilenameLen {
			break
		}
		switch {
		case r < 0x80 && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'),
			r == '-', r == '.', r == ' ':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	stem := strings.Trim(b.String(), " ._")
	if stem == "" {
		stem = "document"
	}
	return stem + ".pdf"
}
