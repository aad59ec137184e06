package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alvmarrod/sidebar-weaver/internal/config"
	"github.com/alvmarrod/sidebar-weaver/internal/crawler"
	"github.com/alvmarrod/sidebar-weaver/internal/memory"
	"github.com/alvmarrod/sidebar-weaver/internal/metrics"
	"github.com/alvmarrod/sidebar-weaver/internal/reddit"
	"github.com/alvmarrod/sidebar-weaver/internal/storage"
	"github.com/alvmarrod/sidebar-weaver/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Termination reasons written to the metrics file besides those of crawler.Run
const (
	reasonInterrupted = "interrupted"
	reasonError       = "error"
)

type rootOptions struct {
	configPath     string
	envFile        string
	crawled        string
	toVisit        string
	seed           string
	maxIter        int
	checkpointIter int
	dbPath         string
	metricsPath    string
}

// NewRootCmd creates the root command, which runs a crawl
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "crawler",
		Short: "Crawl the subreddit graph through sidebar references",
		Long: `Crawler walks the subreddit graph breadth-first. Starting from a seed
community it reads each community's description, follows every /r/<name>
reference it finds, and records who references whom.

Progress is checkpointed to crawler_checkpoint.json and to_visit_checkpoint.json.
To resume an interrupted crawl, move them aside and pass the copies back with
--crawled and --to_visit; inputs may not share a path with any output file.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			configureLogging(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, opts)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	flags := cmd.Flags()
	flags.StringVar(&opts.crawled, "crawled", "", "existing crawler.json to resume from")
	flags.StringVar(&opts.toVisit, "to_visit", "", "existing to_visit.json to resume from")
	flags.IntVar(&opts.maxIter, "max_iter", 0, "maximum number of communities to fetch (0 = unbounded)")
	flags.IntVar(&opts.checkpointIter, "checkpoint_iter", config.DefaultCheckpointInterval, "fetches between checkpoints")
	flags.StringVar(&opts.seed, "seed", config.DefaultSeed, "community to start from when --to_visit is not given")
	flags.StringVar(&opts.configPath, "config", "", "optional JSON or YAML config file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "file with REDDIT_* credentials")
	flags.StringVar(&opts.dbPath, "db", "", "also export the final graph to this SQLite database")
	flags.StringVar(&opts.metricsPath, "metrics", config.DefaultMetricsPath, "where to write crawl metrics")

	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// buildConfig merges the config file, if any, with explicitly set flags
func buildConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("crawled") {
		cfg.CrawledPath = opts.crawled
	}
	if flags.Changed("to_visit") {
		cfg.ToVisitPath = opts.toVisit
	}
	if flags.Changed("max_iter") {
		cfg.MaxIterations = opts.maxIter
	}
	if flags.Changed("checkpoint_iter") {
		cfg.CheckpointInterval = opts.checkpointIter
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if flags.Changed("metrics") {
		cfg.MetricsPath = opts.metricsPath
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if !crawler.IsCommunityName(cfg.Seed) {
		return nil, fmt.Errorf("invalid configuration: %q is not a community name", cfg.Seed)
	}

	return cfg, nil
}

// loadState restores crawl state from prior snapshots, or seeds a fresh crawl
func loadState(cfg *config.Config) (*crawler.State, error) {
	visited := memory.NewGraph()
	if cfg.CrawledPath != "" {
		adjacency, err := storage.LoadVisited(cfg.CrawledPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load crawled snapshot: %w", err)
		}
		visited = memory.FromAdjacency(adjacency)
		logrus.Infof("Loaded %d visited communities from %s", visited.Len(), cfg.CrawledPath)
	}

	var frontier *crawler.Frontier
	if cfg.ToVisitPath != "" {
		names, err := storage.LoadFrontier(cfg.ToVisitPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load to-visit snapshot: %w", err)
		}
		frontier = crawler.NewFrontier(names...)
		logrus.Infof("Loaded %d pending communities from %s", frontier.Len(), cfg.ToVisitPath)
	} else {
		frontier = crawler.NewFrontier(cfg.Seed)
		logrus.Infof("Starting fresh crawl with seed %s", cfg.Seed)
	}

	return crawler.NewState(visited, frontier), nil
}

// newClient builds the platform client, authenticated when credentials exist
func newClient(cfg *config.Config, envFile string) (*reddit.Client, error) {
	creds, err := config.LoadCredentials(envFile)
	if err != nil {
		return nil, err
	}

	userAgent := cfg.UserAgent
	if creds.UserAgent != "" {
		userAgent = creds.UserAgent
	}
	timeout := time.Duration(cfg.RequestTimeoutMs) * time.Millisecond

	var tokens *reddit.TokenSource
	account := reddit.Credentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Username:     creds.Username,
		Password:     creds.Password,
	}
	if account.Complete() {
		tokens = reddit.NewTokenSource(account, cfg.TokenURL, userAgent, timeout)
		logrus.Infof("Using authenticated access as %s", account.Username)
	} else {
		logrus.Info("No credentials configured, using anonymous access")
	}

	return reddit.NewClient(reddit.Options{
		BaseURL:        cfg.BaseURL,
		UserAgent:      userAgent,
		RequestTimeout: timeout,
		RequestDelay:   time.Duration(cfg.RequestDelayMs) * time.Millisecond,
		Tokens:         tokens,
	})
}

// runCrawl loads state, runs the crawl and writes metrics
func runCrawl(cmd *cobra.Command, opts *rootOptions) error {
	logrus.Infof("Sidebar Weaver v%s starting...", version.Version)

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	logrus.Infof("Configuration loaded: seed=%s, max_iter=%d, checkpoint_iter=%d",
		cfg.Seed, cfg.MaxIterations, cfg.CheckpointInterval)

	state, err := loadState(cfg)
	if err != nil {
		return err
	}

	client, err := newClient(cfg, opts.envFile)
	if err != nil {
		return err
	}

	tracker := metrics.NewTracker()
	c := crawler.NewCrawler(
		crawler.Options{
			MaxIterations:      cfg.MaxIterations,
			CheckpointInterval: cfg.CheckpointInterval,
		},
		crawler.NewFetcher(client),
		storage.NewSnapshotStore(cfg.SnapshotPaths()),
		tracker,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reason, runErr := c.Run(ctx, state)
	if runErr != nil {
		reason = reasonError
		if errors.Is(runErr, context.Canceled) {
			reason = reasonInterrupted
			logrus.Warnf("Crawl interrupted after %d iterations; resume from %s and %s",
				state.Iteration, cfg.CheckpointVisitedPath, cfg.CheckpointFrontierPath)
		}
	}

	logrus.Info("Final stats: " + tracker.LogProgress())
	if err := tracker.WriteToFile(cfg.MetricsPath, reason); err != nil {
		logrus.Errorf("Failed to write metrics: %v", err)
	} else {
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	if runErr != nil {
		return runErr
	}

	if cfg.DBPath != "" {
		if err := exportGraph(cfg.DBPath, state.Visited); err != nil {
			return err
		}
	}

	logrus.Infof("Crawl complete: %s and %s written", cfg.FinalVisitedPath, cfg.FinalFrontierPath)
	return nil
}
