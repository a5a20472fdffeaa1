package mangawatch

import (
	"fmt"
	"strings"
)

// DomainRule overrides provider scrape options for domains containing Match.
type DomainRule struct {
	Match           string   `yaml:"match"`
	OnlyMainContent *bool    `yaml:"only_main_content"`
	Actions         []Action `yaml:"actions"`
}

// DomainRules resolves per-domain scrape options. The first matching rule wins.
type DomainRules []DomainRule

// DefaultDomainRules returns the built-in rules.
func DefaultDomainRules() DomainRules {
	onlyMain := false
	return DomainRules{
		{
			// The chapter list is oldest-first until the order toggle is clicked.
			Match:           "manhwaweb.com",
			OnlyMainContent: &onlyMain,
			Actions: []Action{
				ClickAction("button.bg-blue-700"),
				WaitAction(3000),
			},
		},
	}
}

// Resolve returns the scrape options for domain. Unmatched domains get no
// actions and main-content-only extraction.
func (r DomainRules) Resolve(domain string) ScrapeOptions {
	domain = strings.ToLower(domain)
	for _, rule := range r {
		if rule.Match == "" || !strings.Contains(domain, strings.ToLower(rule.Match)) {
			continue
		}
		opts := ScrapeOptions{OnlyMainContent: true}
		if rule.OnlyMainContent != nil {
			opts.OnlyMainContent = *rule.OnlyMainContent
		}
		opts.Actions = append([]Action(nil), rule.Actions...)
		return opts
	}
	return ScrapeOptions{OnlyMainContent: true}
}

// Validate returns an error if any rule is malformed.
func (r DomainRules) Validate() error {
	for i, rule := range r {
		if strings.TrimSpace(rule.Match) == "" {
			return Errorf(EINVALID, "domain rule %d: match required", i)
		}
		for j, a := range rule.Actions {
			if err := validateAction(a); err != nil {
				return Errorf(EINVALID, "domain rule %q action %d: %v", rule.Match, j, err)
			}
		}
	}
	return nil
}

func validateAction(a Action) error {
	switch a.Type {
	case ActionClick:
		if a.Selector == "" {
			return fmt.Errorf("click requires a selector")
		}
	case ActionWait:
		if a.Milliseconds <= 0 {
			return fmt.Errorf("wait requires positive milliseconds")
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}
