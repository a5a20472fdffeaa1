package mangawatch

import (
	"context"
	"time"
)

// Strategy is the fetch method known to work for a domain.
type Strategy string

// Fetch strategies.
const (
	StrategyUnknown     Strategy = ""
	StrategyDirectFetch Strategy = "DIRECT_FETCH"
	StrategyFirecrawl   Strategy = "FIRECRAWL"
)

// DomainStrategy records the last strategy that produced chapters for a domain.
type DomainStrategy struct {
	Domain        string    `json:"domain"`
	Strategy      Strategy  `json:"strategy"`
	LastSuccessAt time.Time `json:"lastSuccessAt"`
}

// StrategyStore persists the last successful strategy per domain.
// Callers treat any error as StrategyUnknown; a stale entry corrects itself
// the next time the stored strategy fails.
type StrategyStore interface {
	// GetStrategy returns StrategyUnknown when nothing is stored for the domain.
	GetStrategy(ctx context.Context, domain string) (Strategy, error)

	// SetStrategy stores the strategy with the current time as last success.
	SetStrategy(ctx context.Context, domain string, strategy Strategy) error
}
