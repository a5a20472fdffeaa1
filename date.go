package mangawatch

import (
	"regexp"
	"strings"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
)

// ReleaseDateLayout is the textual form of release dates exchanged with the
// extraction model.
const ReleaseDateLayout = "2006-01-02"

// ReleaseDateLanguages are the languages release dates are read in.
var ReleaseDateLanguages = []string{"es", "en"}

// numericDateRE matches strings that can only be a numeric absolute date.
// Those are parsed strictly so that an invalid month is never reordered
// into a valid day.
var numericDateRE = regexp.MustCompile(`^\d{4}[-/]\d{1,2}[-/]\d{1,2}`)

var numericLayouts = []string{
	ReleaseDateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseReleaseDate interprets a release date relative to today. Absolute
// dates, relative phrases in Spanish and English ("hace 2 días",
// "3 weeks ago", "ayer") and month-day forms are accepted; month-day forms
// take today's year. The result is midnight UTC. ok is false when raw is
// empty, a placeholder or cannot be interpreted; callers must then leave
// the date absent.
func ParseReleaseDate(raw string, today time.Time) (t time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "null", "yyyy-mm-dd":
		return time.Time{}, false
	}

	if numericDateRE.MatchString(s) {
		for _, layout := range numericLayouts {
			if v, err := time.Parse(layout, s); err == nil {
				return midnight(v), true
			}
		}
		return time.Time{}, false
	}

	cfg := &dateparser.Configuration{
		Languages:       ReleaseDateLanguages,
		CurrentTime:     today.UTC(),
		DefaultTimezone: time.UTC,
	}
	dt, err := dateparser.Parse(cfg, s)
	if err != nil || dt.Time.IsZero() {
		return time.Time{}, false
	}
	return midnight(dt.Time), true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
