package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
)

var _ mangawatch.SourceValidator = (*Validator)(nil)

// Validator runs one scrape and reports whether the result is usable.
type Validator struct {
	Scraper mangawatch.Scraper
	Links   mangawatch.LinkChecker
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Validate scrapes url and checks the title, cover, and chapter list.
func (v *Validator) Validate(ctx context.Context, url string) *mangawatch.ValidationReport {
	r := &mangawatch.ValidationReport{IsValid: true}

	start := v.now()
	item, err := v.Scraper.Scrape(ctx, url)
	if err != nil {
		r.IsValid = false
		r.Report = append(r.Report, "CRITICAL ERROR: Scrape failed - "+mangawatch.ErrorMessage(err))
		return r
	}
	r.Data = item
	r.Report = append(r.Report, fmt.Sprintf("Scrape successful in %dms", v.now().Sub(start).Milliseconds()))

	fail := func(line string) {
		r.IsValid = false
		r.Report = append(r.Report, line)
	}
	pass := func(line string) {
		r.Report = append(r.Report, line)
	}

	if strings.TrimSpace(item.Title) == "" {
		fail("ERROR: Title is missing")
	} else {
		pass(fmt.Sprintf("SUCCESS: Title found: %q", item.Title))
	}

	switch {
	case item.CoverURL == "":
		fail("ERROR: Cover URL is missing")
	case v.Links == nil:
		pass("WARNING: Cover URL not checked: " + item.CoverURL)
	case v.Links.CheckLink(ctx, item.CoverURL) != nil:
		fail("ERROR: Cover URL is not accessible (404/403): " + item.CoverURL)
	default:
		pass("SUCCESS: Cover URL is accessible: " + item.CoverURL)
	}

	if len(item.Chapters) == 0 {
		fail("ERROR: No chapters found")
	} else {
		pass(fmt.Sprintf("SUCCESS: Found %d chapters", len(item.Chapters)))

		var badURLs, unknown, undated int
		for _, c := range item.Chapters {
			if !strings.HasPrefix(c.URL, "http") {
				badURLs++
			}
			if c.Number == mangawatch.ChapterNumberUnknown {
				unknown++
			}
			if c.ReleaseDate == nil {
				undated++
			}
		}
		if badURLs > 0 {
			fail(fmt.Sprintf("ERROR: %d chapters have invalid URLs", badURLs))
		}
		if unknown > 0 {
			pass(fmt.Sprintf("WARNING: %d chapters have unknown numbers (-1)", unknown))
		}
		if undated > 0 {
			pass(fmt.Sprintf("WARNING: %d chapters have no release date", undated))
		}
	}

	for _, w := range item.Warnings {
		pass("WARNING: " + mangawatch.ErrorMessage(w))
	}

	return r
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}
