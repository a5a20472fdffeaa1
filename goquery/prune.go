// Package goquery prepares raw item pages for the extraction model.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mangawatch"
)

// Ensure Pruner implements mangawatch.Pruner at compile time.
var _ mangawatch.Pruner = (*Pruner)(nil)

// NoiseSelector matches elements that never carry chapter data.
const NoiseSelector = "script, style, noscript, svg, iframe, template, link, canvas, video, audio"

// lazySrcAttrs hold the real image URL on lazily loaded images.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original"}

// Pruner shrinks HTML before extraction.
type Pruner struct{}

// NewPruner creates a new Pruner.
func NewPruner() *Pruner {
	return &Pruner{}
}

// Prune removes noise elements, inline styles and meta tags other than
// title and Open Graph metadata. Anchor and image URLs are resolved
// against baseURL and lazily loaded images get their real source.
func (p *Pruner) Prune(html, baseURL string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", mangawatch.Errorf(mangawatch.EINVALID, "failed to parse HTML: %v", err)
	}

	doc.Find(NoiseSelector).Remove()
	doc.Find("meta").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return !isUsefulMeta(s)
	}).Remove()
	doc.Find("[style]").RemoveAttr("style")

	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		base = nil
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range lazySrcAttrs {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				s.SetAttr("src", v)
				s.RemoveAttr(attr)
				break
			}
		}
		s.RemoveAttr("srcset")
		if base != nil {
			resolveAttr(s, base, "src")
		}
	})
	if base != nil {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			resolveAttr(s, base, "href")
		})
	}

	out, err := doc.Html()
	if err != nil {
		return "", err
	}
	return out, nil
}

func isUsefulMeta(s *goquery.Selection) bool {
	prop, _ := s.Attr("property")
	name, _ := s.Attr("name")
	key := strings.ToLower(prop + name)
	return strings.HasPrefix(key, "og:") || strings.HasPrefix(key, "twitter:") || key == "description"
}

func resolveAttr(s *goquery.Selection, base *url.URL, attr string) {
	v, ok := s.Attr(attr)
	if !ok || v == "" || isNonHTTPLink(v) {
		return
	}
	if resolved := resolveURL(base, v); resolved != "" {
		s.SetAttr(attr, resolved)
	}
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if href cannot be parsed.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be left alone.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") ||
		strings.HasPrefix(href, "#")
}
