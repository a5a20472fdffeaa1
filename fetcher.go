package mangawatch

import "context"

// Fetcher retrieves raw HTML from a URL with a single plain HTTP request.
// It does not execute JavaScript.
type Fetcher interface {
	// Fetch returns the page body. EBLOCKED is returned when the page is an
	// anti-bot challenge, EFETCH for any other unusable response.
	Fetch(ctx context.Context, url string) (html string, err error)
}

// ProviderFetcher retrieves a page as markdown through a renderer that can
// execute page interactions before extraction.
type ProviderFetcher interface {
	// Fetch renders the URL, runs opts.Actions and returns markdown.
	// Returns EPROVIDER if the renderer reports failure.
	Fetch(ctx context.Context, url string, opts ScrapeOptions) (markdown string, err error)
}

// ActionType identifies a page interaction.
type ActionType string

// Page interactions supported by provider fetchers.
const (
	ActionClick ActionType = "click"
	ActionWait  ActionType = "wait"
)

// Action is a single page interaction executed before extraction.
type Action struct {
	Type         ActionType `json:"type" yaml:"type"`
	Selector     string     `json:"selector,omitempty" yaml:"selector,omitempty"`
	Milliseconds int        `json:"milliseconds,omitempty" yaml:"milliseconds,omitempty"`
}

// ClickAction returns an action clicking the first element matching selector.
func ClickAction(selector string) Action {
	return Action{Type: ActionClick, Selector: selector}
}

// WaitAction returns an action pausing for ms milliseconds.
func WaitAction(ms int) Action {
	return Action{Type: ActionWait, Milliseconds: ms}
}

// ScrapeOptions configures a ProviderFetcher call.
type ScrapeOptions struct {
	OnlyMainContent bool     `json:"onlyMainContent"`
	Actions         []Action `json:"actions,omitempty"`
}
