package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/mangawatch"
)

// Compile-time interface verification.
var _ mangawatch.StrategyStore = (*StrategyStore)(nil)

// StrategyStore implements mangawatch.StrategyStore using SQLite.
type StrategyStore struct {
	db *DB
}

// NewStrategyStore creates a new StrategyStore.
func NewStrategyStore(db *DB) *StrategyStore {
	return &StrategyStore{db: db}
}

// GetStrategy returns the stored strategy for domain, or StrategyUnknown.
func (s *StrategyStore) GetStrategy(ctx context.Context, domain string) (mangawatch.Strategy, error) {
	var strategy string
	err := s.db.QueryRowContext(ctx, "SELECT strategy FROM domain_strategies WHERE domain = ?",
		strings.ToLower(domain)).Scan(&strategy)
	if err == sql.ErrNoRows {
		return mangawatch.StrategyUnknown, nil
	}
	if err != nil {
		return mangawatch.StrategyUnknown, err
	}
	return mangawatch.Strategy(strategy), nil
}

// SetStrategy records strategy as the last success for domain.
func (s *StrategyStore) SetStrategy(ctx context.Context, domain string, strategy mangawatch.Strategy) error {
	if domain == "" {
		return mangawatch.Errorf(mangawatch.EINVALID, "strategy domain required")
	}
	if strategy != mangawatch.StrategyDirectFetch && strategy != mangawatch.StrategyFirecrawl {
		return mangawatch.Errorf(mangawatch.EINVALID, "invalid strategy %q", strategy)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_strategies (domain, strategy, last_success_at) VALUES (?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			strategy = excluded.strategy,
			last_success_at = excluded.last_success_at
	`, strings.ToLower(domain), string(strategy), s.db.now().Format(time.RFC3339))
	if err != nil {
		return mangawatch.WrapError(mangawatch.EPERSIST, err, "set strategy for %q", domain)
	}
	return nil
}

// FindDomainStrategies lists every stored domain strategy.
func (s *StrategyStore) FindDomainStrategies(ctx context.Context) ([]*mangawatch.DomainStrategy, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT domain, strategy, last_success_at FROM domain_strategies ORDER BY domain")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*mangawatch.DomainStrategy
	for rows.Next() {
		var ds mangawatch.DomainStrategy
		var strategy, lastSuccess string
		if err := rows.Scan(&ds.Domain, &strategy, &lastSuccess); err != nil {
			return nil, err
		}
		ds.Strategy = mangawatch.Strategy(strategy)
		if ds.LastSuccessAt, err = parseRFC3339(lastSuccess, "last_success_at"); err != nil {
			return nil, err
		}
		out = append(out, &ds)
	}
	return out, rows.Err()
}
