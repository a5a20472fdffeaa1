// Package trafilatura narrows rendered item pages to their main content.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/mangawatch"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements mangawatch.MainContentExtractor at compile time.
var _ mangawatch.MainContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to strip page boilerplate.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractMainContent returns the main content of rawHTML with the page
// title and cover image prepended from metadata. Chapter lists are
// link-dense and sometimes classified as boilerplate; when the extracted
// content has no links the original page is returned unchanged.
func (e *Extractor) ExtractMainContent(rawHTML string) (string, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return "", mangawatch.Errorf(mangawatch.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
		IncludeImages:  true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return rawHTML, nil
	}
	if result.ContentNode == nil {
		return rawHTML, nil
	}

	content, err := renderNode(result.ContentNode)
	if err != nil {
		return "", err
	}
	if !strings.Contains(content, "<a ") {
		return rawHTML, nil
	}

	var b strings.Builder
	if title := strings.TrimSpace(result.Metadata.Title); title != "" {
		b.WriteString("<h1>" + html.EscapeString(title) + "</h1>\n")
	}
	if img := strings.TrimSpace(result.Metadata.Image); img != "" {
		b.WriteString(`<img src="` + html.EscapeString(img) + `" alt="cover">` + "\n")
	}
	b.WriteString(content)
	return b.String(), nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
