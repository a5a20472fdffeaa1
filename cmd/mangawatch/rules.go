package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/mangawatch"
	"gopkg.in/yaml.v3"
)

// rulesFile is the layout of the domain rules YAML file.
type rulesFile struct {
	Domains mangawatch.DomainRules `yaml:"domains"`
}

// loadDomainRules reads per-domain scrape rules from path. The built-in
// rules apply to domains the file does not mention.
func loadDomainRules(path string) (mangawatch.DomainRules, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain rules: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, mangawatch.WrapError(mangawatch.ECONFIG, err, "invalid domain rules file %q", path)
	}
	if err := f.Domains.Validate(); err != nil {
		return nil, mangawatch.WrapError(mangawatch.ECONFIG, err, "invalid domain rules file %q", path)
	}

	return append(f.Domains, mangawatch.DefaultDomainRules()...), nil
}
