package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/chi"
	"github.com/fwojciec/mangawatch/schedule"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Scraper   mangawatch.Scraper
	Validator mangawatch.SourceValidator
	Tracker   mangawatch.Tracker
	Searcher  mangawatch.Searcher
	Runner    mangawatch.Runner
	Scheduler *schedule.Scheduler
	Server    *chi.Server
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB          string        `name:"db" env:"MANGAWATCH_DB" help:"SQLite database path (default ~/.mangawatch/mangawatch.db)"`
	LogLevel    string        `env:"LOG_LEVEL" enum:"debug,info,warn,error" default:"info" help:"Log level (debug, info, warn, error)"`
	LogFormat   string        `env:"LOG_FORMAT" enum:"text,json" default:"text" help:"Log format (text, json)"`
	Provider    string        `env:"MANGAWATCH_PROVIDER" enum:"firecrawl,browser" default:"firecrawl" help:"Scrape provider for pages the direct fetch cannot read (firecrawl, browser)"`
	DomainRules string        `name:"domain-rules" env:"MANGAWATCH_DOMAIN_RULES" type:"path" help:"YAML file with per-domain scrape rules"`
	Delay       time.Duration `env:"MANGAWATCH_DELAY" default:"5s" help:"Pause between scraped items during an update check"`

	GeminiAPIKey    string `name:"gemini-api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	GeminiModel     string `name:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.0-flash" help:"Gemini model used for extraction"`
	FirecrawlAPIKey string `name:"firecrawl-api-key" env:"FIRECRAWL_API_KEY" help:"Firecrawl API key"`
	FirecrawlURL    string `name:"firecrawl-url" env:"FIRECRAWL_URL" help:"Firecrawl API base URL"`

	VAPIDPublicKey  string `name:"vapid-public-key" env:"VAPID_PUBLIC_KEY" help:"VAPID public key for web push"`
	VAPIDPrivateKey string `name:"vapid-private-key" env:"VAPID_PRIVATE_KEY" help:"VAPID private key for web push"`
	VAPIDSubject    string `name:"vapid-subject" env:"VAPID_SUBJECT" default:"mailto:admin@mangawatch.local" help:"Contact announced to push services"`

	Serve    ServeCmd    `cmd:"" help:"Run the scheduler and HTTP API"`
	Check    CheckCmd    `cmd:"" help:"Check all tracked items for new chapters once"`
	Scrape   ScrapeCmd   `cmd:"" help:"Scrape a page and print the extracted chapters"`
	Validate ValidateCmd `cmd:"" help:"Check whether a source page yields usable data"`
	Track    TrackCmd    `cmd:"" help:"Start tracking a new item"`
	Search   SearchCmd   `cmd:"" help:"Search the web for an item to track"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr       string        `env:"MANGAWATCH_ADDR" default:":8080" help:"HTTP listen address"`
	Interval   time.Duration `env:"MANGAWATCH_INTERVAL" default:"6h" help:"Time between scheduled update checks"`
	Cooldown   time.Duration `env:"MANGAWATCH_COOLDOWN" default:"5m" help:"Minimum time between manual update checks"`
	CronSecret string        `name:"cron-secret" env:"CRON_SECRET" help:"Bearer token required by /cron/run"`
}

// CheckCmd is the "check" subcommand.
type CheckCmd struct{}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL string `arg:"" help:"Item page URL"`
}

// ValidateCmd is the "validate" subcommand.
type ValidateCmd struct {
	URL string `arg:"" help:"Item page URL"`
}

// TrackCmd is the "track" subcommand.
type TrackCmd struct {
	URL  string `arg:"" help:"Item page URL"`
	User string `short:"u" help:"Subscribe this user to notifications"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"Title to search for"`
}
