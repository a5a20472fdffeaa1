package gemini

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
)

type rawItem struct {
	Title    json.RawMessage `json:"title"`
	CoverURL json.RawMessage `json:"cover_url"`
	Chapters json.RawMessage `json:"chapters"`
}

type rawChapter struct {
	Number      json.RawMessage `json:"number"`
	Title       json.RawMessage `json:"title"`
	URL         json.RawMessage `json:"url"`
	ReleaseDate json.RawMessage `json:"release_date"`
}

// ParseResponse converts a model reply into a ScrapedItem. It never fails:
// a reply that is not JSON, or whose chapters field is missing or not a
// list, yields an empty chapter list and an EMALFORMED warning. Chapter
// numbers that are not numeric become -1 and release dates that cannot be
// interpreted relative to today are left absent. URLs are kept verbatim.
func ParseResponse(text string, today time.Time) *mangawatch.ScrapedItem {
	item := &mangawatch.ScrapedItem{Chapters: []mangawatch.ScrapedChapter{}}

	var raw rawItem
	if err := json.Unmarshal([]byte(stripFence(text)), &raw); err != nil {
		item.Warnings = append(item.Warnings, mangawatch.Errorf(mangawatch.EMALFORMED, "model reply is not a JSON object: %v", err))
		return item
	}

	item.Title = strings.TrimSpace(asString(raw.Title))
	item.CoverURL = strings.TrimSpace(asString(raw.CoverURL))

	var chapters []json.RawMessage
	if len(raw.Chapters) == 0 || isNull(raw.Chapters) {
		item.Warnings = append(item.Warnings, mangawatch.Errorf(mangawatch.EMALFORMED, "model reply has no chapters list"))
		return item
	}
	if err := json.Unmarshal(raw.Chapters, &chapters); err != nil {
		item.Warnings = append(item.Warnings, mangawatch.Errorf(mangawatch.EMALFORMED, "model reply chapters is not a list"))
		return item
	}

	skipped := 0
	for _, rc := range chapters {
		var c rawChapter
		if err := json.Unmarshal(rc, &c); err != nil {
			skipped++
			continue
		}
		ch := mangawatch.ScrapedChapter{
			Number: parseNumber(c.Number),
			Title:  strings.TrimSpace(asString(c.Title)),
			URL:    strings.TrimSpace(asString(c.URL)),
		}
		if d, ok := mangawatch.ParseReleaseDate(asString(c.ReleaseDate), today); ok {
			ch.ReleaseDate = &d
		}
		item.Chapters = append(item.Chapters, ch)
	}
	if skipped > 0 {
		item.Warnings = append(item.Warnings, mangawatch.Errorf(mangawatch.EMALFORMED, "%d chapter entries are not objects", skipped))
	}

	return item
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// asString decodes a JSON string, or formats a JSON number. Anything else
// is the empty string.
func asString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// parseNumber accepts a JSON number or a numeric string such as "10.5" or
// "Chapter 10.5". Anything else is mangawatch.ChapterNumberUnknown.
func parseNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 || isNull(raw) {
		return mangawatch.ChapterNumberUnknown
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return mangawatch.ChapterNumberUnknown
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if m := numberRE.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return f
		}
	}
	return mangawatch.ChapterNumberUnknown
}

var numberRE = regexp.MustCompile(`\d+(?:\.\d+)?`)
