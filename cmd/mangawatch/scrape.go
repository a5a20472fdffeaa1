package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/mangawatch"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	item, err := deps.Scraper.Scrape(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangawatch.ErrorMessage(err))
		return err
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(item)
}

// Run executes the validate command.
func (c *ValidateCmd) Run(deps *Dependencies) error {
	report := deps.Validator.Validate(deps.Ctx, c.URL)
	for _, line := range report.Report {
		fmt.Fprintln(deps.Stdout, line)
	}
	if !report.IsValid {
		return errors.New("source is not valid")
	}
	fmt.Fprintln(deps.Stdout, "Source is valid.")
	return nil
}

// Run executes the track command.
func (c *TrackCmd) Run(deps *Dependencies) error {
	item, err := deps.Tracker.Track(deps.Ctx, c.URL, c.User)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangawatch.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Tracking %q (%s)\n", item.Title, item.ID)
	return nil
}

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Searcher.Search(deps.Ctx, c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangawatch.ErrorMessage(err))
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No results found.")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(deps.Stdout, "%s\n  %s\n", r.Title, r.URL)
	}
	return nil
}
