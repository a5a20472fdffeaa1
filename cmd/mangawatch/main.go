package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/chi"
	"github.com/fwojciec/mangawatch/firecrawl"
	"github.com/fwojciec/mangawatch/gemini"
	"github.com/fwojciec/mangawatch/goquery"
	"github.com/fwojciec/mangawatch/htmltomarkdown"
	mwhttp "github.com/fwojciec/mangawatch/http"
	"github.com/fwojciec/mangawatch/notify"
	mwprom "github.com/fwojciec/mangawatch/prometheus"
	"github.com/fwojciec/mangawatch/rod"
	"github.com/fwojciec/mangawatch/schedule"
	"github.com/fwojciec/mangawatch/scrape"
	mwslog "github.com/fwojciec/mangawatch/slog"
	"github.com/fwojciec/mangawatch/sqlite"
	"github.com/fwojciec/mangawatch/trafilatura"
	"github.com/fwojciec/mangawatch/webpush"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if cerr := m.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// closers release external resources such as the browser.
	closers []func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("mangawatch"),
		kong.Description("Track manga chapter lists on arbitrary sites and get notified about new chapters."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'mangawatch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd = strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.LogLevel, cli.LogFormat)

	if cmd == "search" {
		client, err := m.firecrawlClient(cli, stderr)
		if err != nil {
			return err
		}
		deps.Searcher = client
		return kongCtx.Run(deps)
	}

	if err := m.wire(ctx, cli, cmd, deps); err != nil {
		return err
	}
	return kongCtx.Run(deps)
}

// wire builds the scrape pipeline, storage and scheduler for cmd.
func (m *Main) wire(ctx context.Context, cli *CLI, cmd string, deps *Dependencies) error {
	logger := deps.Logger

	dbPath := cli.DB
	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set MANGAWATCH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}

	items := sqlite.NewTrackedItemService(m.DB)
	chapters := sqlite.NewChapterService(m.DB)
	subscriptions := sqlite.NewSubscriptionService(m.DB)
	subscribers := sqlite.NewPushSubscriberService(m.DB)

	rules := mangawatch.DefaultDomainRules()
	if cli.DomainRules != "" {
		loaded, err := loadDomainRules(cli.DomainRules)
		if err != nil {
			return err
		}
		rules = loaded
	}

	provider, err := m.provider(cli, deps.Stderr)
	if err != nil {
		return err
	}

	extractor, err := newExtractor(ctx, cli, deps.Stderr)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := mwprom.NewMetrics(registry)

	links := mwslog.NewLoggingLinkChecker(mwhttp.NewLinkChecker(nil), logger)

	scraper := mwslog.NewLoggingScraper(&scrape.Scraper{
		Fetcher:    mwslog.NewLoggingFetcher(mwhttp.NewFetcher(), logger),
		Provider:   mwslog.NewLoggingProviderFetcher(provider, logger),
		Extractor:  mwslog.NewLoggingExtractor(extractor, logger),
		Strategies: sqlite.NewStrategyStore(m.DB),
		Pruner:     goquery.NewPruner(),
		Rules:      rules,
		Metrics:    metrics,
		Logger:     logger,
	}, logger)

	deps.Scraper = scraper
	deps.Validator = &scrape.Validator{Scraper: scraper, Links: links}
	deps.Tracker = &scrape.Tracker{
		Scraper:       scraper,
		Items:         items,
		Chapters:      chapters,
		Subscriptions: subscriptions,
	}

	if cmd != "serve" && cmd != "check" {
		return nil
	}

	var notifier mangawatch.Notifier
	if cli.VAPIDPublicKey != "" && cli.VAPIDPrivateKey != "" {
		sender, err := webpush.NewSender(cli.VAPIDPublicKey, cli.VAPIDPrivateKey, cli.VAPIDSubject)
		if err != nil {
			return err
		}
		notifier = mwslog.NewLoggingNotifier(&notify.Dispatcher{
			Subscriptions: subscriptions,
			Subscribers:   subscribers,
			Sender:        sender,
			Metrics:       metrics,
			Logger:        logger,
		}, logger)
	} else {
		logger.Warn("VAPID keys not set, push notifications disabled")
	}

	deps.Scheduler = &schedule.Scheduler{
		Items:         items,
		Chapters:      chapters,
		Subscriptions: subscriptions,
		Scraper:       scraper,
		Notifier:      notifier,
		Metrics:       metrics,
		Logger:        logger,
		Interval:      cli.Serve.Interval,
		Delay:         cli.Delay,
	}
	deps.Runner = deps.Scheduler

	if cmd == "serve" {
		s := chi.NewServer()
		s.Runner = deps.Scheduler
		s.Trigger = schedule.NewTrigger(deps.Scheduler, cli.Serve.Cooldown)
		s.Scraper = scraper
		s.Validator = deps.Validator
		s.Tracker = deps.Tracker
		s.Subscribers = subscribers
		s.Metrics = metrics
		s.CronSecret = cli.Serve.CronSecret
		s.Logger = logger
		if cli.FirecrawlAPIKey != "" {
			if client, err := m.firecrawlClient(cli, deps.Stderr); err == nil {
				s.Searcher = client
			}
		}
		deps.Server = s
	}

	return nil
}

// provider returns the fetcher used when the direct fetch cannot read a page.
func (m *Main) provider(cli *CLI, stderr io.Writer) (mangawatch.ProviderFetcher, error) {
	if cli.Provider == "browser" {
		manager, err := rod.NewBrowserManager()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, manager.Close)
		return rod.NewFetcher(
			rod.NewBrowserRenderer(manager),
			trafilatura.NewExtractor(),
			htmltomarkdown.NewConverter(),
		), nil
	}
	return m.firecrawlClient(cli, stderr)
}

func (m *Main) firecrawlClient(cli *CLI, stderr io.Writer) (*firecrawl.Client, error) {
	var opts []firecrawl.Option
	if cli.FirecrawlURL != "" {
		opts = append(opts, firecrawl.WithBaseURL(cli.FirecrawlURL))
	}
	client, err := firecrawl.NewClient(cli.FirecrawlAPIKey, opts...)
	if err != nil {
		fmt.Fprintln(stderr, "FIRECRAWL_API_KEY environment variable not set. Use --provider=browser to render pages locally instead.")
		return nil, err
	}
	return client, nil
}

func newExtractor(ctx context.Context, cli *CLI, stderr io.Writer) (mangawatch.Extractor, error) {
	if cli.GeminiAPIKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, mangawatch.Errorf(mangawatch.ECONFIG, "GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cli.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	return gemini.NewExtractor(client, gemini.WithModel(cli.GeminiModel)), nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mangawatch.db"
	}
	dir := filepath.Join(home, ".mangawatch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "mangawatch.db")
}
