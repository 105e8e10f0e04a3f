package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsentry/jobsentry/internal/adapter"
	"github.com/jobsentry/jobsentry/internal/config"
	"github.com/jobsentry/jobsentry/internal/filter"
	"github.com/jobsentry/jobsentry/internal/model"
	"github.com/jobsentry/jobsentry/internal/notifier"
	"github.com/jobsentry/jobsentry/internal/poller"
	"github.com/jobsentry/jobsentry/internal/ratelimit"
	"github.com/jobsentry/jobsentry/internal/retry"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobsentry",
	Short: "Job feed sentry — watch listings, post only what's new",
	Long:  "JobSentry polls curated job lists and board searches, filters out junk, and posts each opening to its Discord channel exactly once.",
	// Default to `start` so that `jobsentry` with no args runs the daemon.
	// This preserves compatibility with systemd unit files that invoke the binary directly.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSENTRY_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSENTRY_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSENTRY_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	if len(cfg.Channels) == 0 {
		logger.Info("no channels configured, logging matches instead")
		return notifier.NewLogNotifier(logger)
	}

	channels := make(map[model.Category]notifier.Channel, len(cfg.Channels))
	for cat, ch := range cfg.Channels {
		channels[cat] = notifier.Channel{
			WebhookURL: ch.WebhookURL,
			ImagePath:  ch.Image,
		}
	}
	logger.Info("using discord notifier", "channels", len(channels))
	return notifier.NewDiscordNotifier(channels, cfg.SendDelay, httpClient, logger)
}

func buildFilterChain(cfg *config.Config) (*filter.Chain, error) {
	return filter.NewChain(
		cfg.Filters.BlacklistCompanies,
		cfg.Filters.BadRoles,
		cfg.Filters.TechTerms,
		cfg.Filters.QuarantineTerms,
	)
}

// channelAvailable reports whether delivery for a category can succeed. With
// no channels configured everything goes to the log notifier, which always can.
func channelAvailable(cfg *config.Config, cat model.Category) bool {
	if len(cfg.Channels) == 0 {
		return true
	}
	_, ok := cfg.Channels[cat]
	return ok
}

func buildPollers(cfg *config.Config, chain *filter.Chain, posted model.PostedStore, n model.Notifier, httpClient *http.Client, logger *slog.Logger) ([]*poller.SourcePoller, error) {
	gate, err := filter.NewVocabulary(cfg.Filters.GateTerms)
	if err != nil {
		return nil, err
	}

	// All fetchers targeting the same host share this limiter.
	limiter := ratelimit.NewHostRateLimiter(cfg.FetchDelay)

	var pollers []*poller.SourcePoller
	for _, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}
		if src.URL == "" {
			logger.Warn("source has no url, skipping", "source", src.Key)
			continue
		}
		cat := src.ParsedCategory()
		if !channelAvailable(cfg, cat) {
			logger.Warn("no channel for source category, skipping",
				"source", src.Key, "category", cat)
			continue
		}

		var srcGate *filter.Vocabulary
		if src.KeywordGated {
			srcGate = gate
		}

		var fetcher model.RecordFetcher = adapter.NewListSource(src.Label, src.URL, cat, src.OffSeason, srcGate, httpClient)
		fetcher = retry.NewRetryFetcher(fetcher, 2, 5*time.Second, logger)
		fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter, ratelimit.HostFor(src.URL))

		pollers = append(pollers, poller.NewSourcePoller(src.Label, fetcher, chain, posted, n, src.DedupByLink, logger))
		logger.Info("registered source", "key", src.Key, "label", src.Label, "category", cat)
	}

	if cfg.Search.Enabled {
		board := adapter.NewLinkedInBoard(httpClient)
		buckets := []struct {
			name  string
			terms []string
			cat   model.Category
		}{
			{"search-intern", cfg.Search.InternTerms, model.CategoryIntern},
			{"search-fulltime", cfg.Search.FullTimeTerms, model.CategoryFullTime},
		}
		for _, b := range buckets {
			if !channelAvailable(cfg, b.cat) {
				logger.Warn("no channel for search bucket, skipping", "bucket", b.name)
				continue
			}
			var fetcher model.RecordFetcher = adapter.NewSearchSource(
				"JS", board, b.terms, cfg.Search.Location,
				cfg.Search.ResultsWanted, cfg.Search.MaxAge, b.cat, logger,
			)
			fetcher = retry.NewRetryFetcher(fetcher, 2, 5*time.Second, logger)
			fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter, "www.linkedin.com")

			// Search result links identify postings, so dedup on them too.
			pollers = append(pollers, poller.NewSourcePoller(b.name, fetcher, chain, posted, n, true, logger))
			logger.Info("registered search bucket", "bucket", b.name, "terms", len(b.terms))
		}
	}

	return pollers, nil
}
