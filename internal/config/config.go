package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jobsentry/jobsentry/internal/model"
)

// Config is the root configuration for the jobsentry pipeline.
type Config struct {
	Interval   time.Duration
	RunOnce    bool
	DataDir    string
	SendDelay  time.Duration // minimum gap between deliveries to one channel
	FetchDelay time.Duration // minimum gap between fetches to one host
	Sources    []SourceConfig
	Search     SearchConfig
	Filters    FilterConfig
	Channels   map[model.Category]ChannelConfig
}

// SourceConfig describes one tabular README list source. All per-source
// behavior is declared here and consumed uniformly by the adapter; nothing
// branches on source identity elsewhere.
type SourceConfig struct {
	Key          string `yaml:"key"`           // short identifier, e.g. "swe"
	Label        string `yaml:"label"`         // provenance label, e.g. "J-SWE"
	URL          string `yaml:"url"`           // raw document URL
	Category     string `yaml:"category"`      // "intern" or "newgrad"
	OffSeason    bool   `yaml:"off_season"`    // tag companies with the off-season suffix
	KeywordGated bool   `yaml:"keyword_gated"` // admit only gate-vocabulary records
	DedupByLink  bool   `yaml:"dedup_by_link"` // also dedup on the posting link
	Enabled      bool   `yaml:"enabled"`
}

// SearchConfig describes the query-based board search buckets.
type SearchConfig struct {
	Enabled       bool
	Location      string
	ResultsWanted int
	MaxAge        time.Duration
	InternTerms   []string
	FullTimeTerms []string
}

// ChannelConfig is one audience destination.
type ChannelConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Image      string `yaml:"image"` // optional embed attachment
}

// FilterConfig holds the filter-chain vocabularies. Empty lists fall back
// to the built-in defaults below.
type FilterConfig struct {
	BlacklistCompanies []string `yaml:"blacklist_companies"`
	BadRoles           []string `yaml:"bad_roles"` // substring containment, lowercased titles
	TechTerms          []string `yaml:"tech_terms"`
	GateTerms          []string `yaml:"gate_terms"` // keyword-gated source vocabulary
	QuarantineTerms    []string `yaml:"quarantine_terms"`
}

// Built-in vocabularies, overridable per deployment.
var (
	defaultBlacklist = []string{
		"Team Remotely Inc", "HireMeFast LLC", "Get It Recruit - Information Technology",
		"Offered.ai", "4 Staffing Corp", "myGwork - LGBTQ+ Business Community",
		"Patterned Learning AI", "Mindpal", "Phoenix Recruiting", "SkyRecruitment",
		"Phoenix Recruitment", "Patterned Learning Career", "SysMind", "SysMind LLC",
		"Motion Recruitment", "Lensa",
	}
	defaultBadRoles = []string{
		"unpaid", "senior", "lead", "manager", "director", "principal", "vp", "staff",
		"sr.", "sr", "snr", "ii", "iii",
	}
	defaultTechTerms = []string{
		"software", "engineer", "developer", "data", "ai", "machine learning", "ml",
		"product", "cloud", "devops", "security", "cyber", "frontend", "backend",
		"full[- ]?stack", "ios", "android",
	}
	defaultGateTerms = []string{
		"ai", "machine learning", "cybersecurity", "quant", "quantum",
	}
	defaultInternTerms = []string{
		"software engineer intern", "software engineering intern", "software developer intern",
		"ai intern", "machine learning intern", "product management intern",
		"product manager intern", "project management intern", "data science intern",
	}
	defaultFullTimeTerms = []string{
		"software engineer", "software developer", "ai engineer",
		"data scientist", "product manager", "project manager",
	}
)

// rawConfig mirrors the YAML document (snake_case, durations as strings).
type rawConfig struct {
	Interval   string                   `yaml:"interval"`
	RunOnce    bool                     `yaml:"run_once"`
	DataDir    string                   `yaml:"data_dir"`
	SendDelay  string                   `yaml:"send_delay"`
	FetchDelay string                   `yaml:"fetch_delay"`
	Sources    []SourceConfig           `yaml:"sources"`
	Search     rawSearchConfig          `yaml:"search"`
	Filters    FilterConfig             `yaml:"filters"`
	Channels   map[string]ChannelConfig `yaml:"channels"`
}

type rawSearchConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Location      string   `yaml:"location"`
	ResultsWanted int      `yaml:"results_wanted"`
	MaxAge        string   `yaml:"max_age"`
	InternTerms   []string `yaml:"intern_terms"`
	FullTimeTerms []string `yaml:"fulltime_terms"`
}

// Load reads and parses the YAML config at path, expands environment
// variables, applies defaults, validates, and returns the Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables (webhook URLs, source paths).
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 30 * time.Minute
	if raw.Interval != "" {
		interval, err = time.ParseDuration(raw.Interval)
		if err != nil {
			return nil, fmt.Errorf("parse interval %q: %w", raw.Interval, err)
		}
	}

	sendDelay := 1 * time.Second
	if raw.SendDelay != "" {
		sendDelay, err = time.ParseDuration(raw.SendDelay)
		if err != nil {
			return nil, fmt.Errorf("parse send_delay %q: %w", raw.SendDelay, err)
		}
	}

	fetchDelay := 2 * time.Second
	if raw.FetchDelay != "" {
		fetchDelay, err = time.ParseDuration(raw.FetchDelay)
		if err != nil {
			return nil, fmt.Errorf("parse fetch_delay %q: %w", raw.FetchDelay, err)
		}
	}

	searchMaxAge := 12 * time.Hour
	if raw.Search.MaxAge != "" {
		searchMaxAge, err = time.ParseDuration(raw.Search.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("parse search.max_age %q: %w", raw.Search.MaxAge, err)
		}
	}

	resultsWanted := raw.Search.ResultsWanted
	if resultsWanted <= 0 {
		resultsWanted = 10
	}

	channels := make(map[model.Category]ChannelConfig)
	for name, ch := range raw.Channels {
		cat, ok := parseCategory(name)
		if !ok {
			return nil, fmt.Errorf("unknown channel %q (want intern, newgrad, or fulltime)", name)
		}
		channels[cat] = ch
	}

	cfg := &Config{
		Interval:   interval,
		RunOnce:    raw.RunOnce,
		DataDir:    raw.DataDir,
		SendDelay:  sendDelay,
		FetchDelay: fetchDelay,
		Sources:    raw.Sources,
		Search: SearchConfig{
			Enabled:       raw.Search.Enabled,
			Location:      orDefault(raw.Search.Location, "United States"),
			ResultsWanted: resultsWanted,
			MaxAge:        searchMaxAge,
			InternTerms:   orDefaultList(raw.Search.InternTerms, defaultInternTerms),
			FullTimeTerms: orDefaultList(raw.Search.FullTimeTerms, defaultFullTimeTerms),
		},
		Filters: FilterConfig{
			BlacklistCompanies: orDefaultList(raw.Filters.BlacklistCompanies, defaultBlacklist),
			BadRoles:           orDefaultList(raw.Filters.BadRoles, defaultBadRoles),
			TechTerms:          orDefaultList(raw.Filters.TechTerms, defaultTechTerms),
			GateTerms:          orDefaultList(raw.Filters.GateTerms, defaultGateTerms),
			QuarantineTerms:    raw.Filters.QuarantineTerms,
		},
		Channels: channels,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParsedCategory returns the source's category, defaulting to intern.
func (s SourceConfig) ParsedCategory() model.Category {
	if cat, ok := parseCategory(s.Category); ok {
		return cat
	}
	return model.CategoryIntern
}

func parseCategory(s string) (model.Category, bool) {
	switch s {
	case "intern":
		return model.CategoryIntern, true
	case "newgrad":
		return model.CategoryNewGrad, true
	case "fulltime":
		return model.CategoryFullTime, true
	}
	return "", false
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultList(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// validate enforces only what must hold before any cycle starts. Per-source
// problems (missing URL, missing channel) are handled by disabling the
// source at wiring time, not here.
func validate(cfg *Config) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	enabled := 0
	for _, s := range cfg.Sources {
		if s.Enabled {
			enabled++
		}
		if s.Category != "" {
			if _, ok := parseCategory(s.Category); !ok {
				return fmt.Errorf("source %q: unknown category %q", s.Key, s.Category)
			}
		}
	}
	if enabled == 0 && !cfg.Search.Enabled {
		return fmt.Errorf("no enabled sources and search is disabled; nothing to do")
	}

	for cat, ch := range cfg.Channels {
		if ch.WebhookURL == "" {
			return fmt.Errorf("channel %q: webhook_url is empty", cat)
		}
	}
	return nil
}
