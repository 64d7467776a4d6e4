package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Extraction strategy names.
const (
	StrategyRegex   = "regex"
	StrategyGemini  = "gemini"
	StrategyOllama  = "ollama"
	StrategyArchive = "archive"
)

// Operator confirmation modes.
const (
	OperatorConsole = "console"
	OperatorHTTP    = "http"
	OperatorSkip    = "skip"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// Every returns the spacing between two consecutive requests.
func (r RateLimitConfig) Every() time.Duration {
	if r.Requests <= 0 || r.Interval <= 0 {
		return 0
	}
	return r.Interval / time.Duration(r.Requests)
}

// PanelConfig holds the hosting panel endpoints and credentials.
type PanelConfig struct {
	Email       string
	Password    string
	LoginURL    string
	WebsitesURL string
	ToolsURL    string
}

// BrowserConfig tunes the automated browser.
type BrowserConfig struct {
	Headless    bool
	SlowMo      time.Duration
	PageTimeout time.Duration
	UserAgent   string
	Locale      string
}

// CRMConfig holds the downstream CRM API endpoint and credentials.
type CRMConfig struct {
	BaseURL    string
	Email      string
	Password   string
	Timeout    time.Duration
	MaxRetries int
}

// AIConfig selects and configures the completion backends.
type AIConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	OllamaURL    string
	OllamaModel  string
	Timeout      time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Panel             PanelConfig
	Browser           BrowserConfig
	CRM               CRMConfig
	AI                AIConfig
	Strategy          string
	ArchiveURL        string
	PhoneRegion       string
	ScrapeRate        RateLimitConfig
	ContactPaths      []string
	AboutPaths        []string
	OperatorMode      string
	OperatorTimeout   time.Duration
	ControlAddr       string
	ControlSecret     string
	ControlTokenTTL   time.Duration
	ReportDir         string
	ReportDatabaseURL string
	LogLevel          string
	LogFormat         string
}

var (
	defaultContactPaths = []string{"/iletisim", "/contact", "/contact-us", "/iletisim.html", "/contact.html", "/bize-ulasin", "/bize-ulasin.html"}
	defaultAboutPaths   = []string{"/hakkimizda", "/about", "/about-us", "/hakkimizda.html", "/about.html", "/kurumsal", "/kurumsal.html"}
)

// Load reads configuration from environment variables, applies sane defaults
// and validates the result.
func Load() (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration like Load but leaves validation to the caller,
// so overrides can be applied first.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Panel: PanelConfig{
			Email:       os.Getenv("SITEGROUND_EMAIL"),
			Password:    os.Getenv("SITEGROUND_PASSWORD"),
			LoginURL:    getEnv("PANEL_LOGIN_URL", "https://login.siteground.com/"),
			WebsitesURL: getEnv("PANEL_WEBSITES_URL", "https://my.siteground.com/websites/list"),
			ToolsURL:    getEnv("PANEL_TOOLS_URL", "https://tools.siteground.com/dashboard"),
		},
		Browser: BrowserConfig{
			Headless:    parseBool(getEnv("HEADLESS", "false")),
			SlowMo:      parseDurationOr(getEnv("SLOW_MO", "100ms"), 100*time.Millisecond),
			PageTimeout: parseDurationOr(getEnv("PAGE_TIMEOUT", "30s"), 30*time.Second),
			UserAgent:   getEnv("BROWSER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
			Locale:      getEnv("BROWSER_LOCALE", "tr-TR"),
		},
		CRM: CRMConfig{
			BaseURL:    strings.TrimRight(getEnv("CRM_API_URL", "http://localhost:8000/api/v1"), "/"),
			Email:      os.Getenv("CRM_EMAIL"),
			Password:   os.Getenv("CRM_PASSWORD"),
			Timeout:    parseDurationOr(getEnv("CRM_TIMEOUT", "30s"), 30*time.Second),
			MaxRetries: parseIntOr(getEnv("CRM_MAX_RETRIES", "2"), 2),
		},
		AI: AIConfig{
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			OllamaURL:    strings.TrimRight(getEnv("OLLAMA_URL", "http://localhost:11434"), "/"),
			OllamaModel:  getEnv("OLLAMA_MODEL", "llama3.2"),
			Timeout:      parseDurationOr(getEnv("AI_TIMEOUT", "120s"), 120*time.Second),
		},
		Strategy:          strings.ToLower(getEnv("EXTRACTION_STRATEGY", StrategyRegex)),
		ArchiveURL:        strings.TrimRight(getEnv("ARCHIVE_API_URL", "https://archive.org"), "/"),
		PhoneRegion:       strings.ToUpper(getEnv("PHONE_REGION", "TR")),
		ContactPaths:      parseList(os.Getenv("CONTACT_PAGE_PATHS"), defaultContactPaths),
		AboutPaths:        parseList(os.Getenv("ABOUT_PAGE_PATHS"), defaultAboutPaths),
		OperatorMode:      strings.ToLower(getEnv("OPERATOR_MODE", OperatorConsole)),
		OperatorTimeout:   parseDurationOr(getEnv("OPERATOR_TIMEOUT", "10m"), 10*time.Minute),
		ControlAddr:       os.Getenv("CONTROL_ADDR"),
		ControlSecret:     os.Getenv("CONTROL_SECRET"),
		ControlTokenTTL:   parseDurationOr(getEnv("CONTROL_TOKEN_TTL", "12h"), 12*time.Hour),
		ReportDir:         getEnv("REPORT_DIR", "."),
		ReportDatabaseURL: os.Getenv("REPORT_DATABASE_URL"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	rl, err := parseRateLimit(getEnv("SCRAPE_RATE", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPE_RATE value: %w", err)
	}
	cfg.ScrapeRate = rl
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Strategy {
	case StrategyRegex, StrategyGemini, StrategyOllama, StrategyArchive:
	default:
		return fmt.Errorf("unsupported extraction strategy %q", c.Strategy)
	}
	switch c.OperatorMode {
	case OperatorConsole, OperatorHTTP, OperatorSkip:
	default:
		return fmt.Errorf("unsupported operator mode %q", c.OperatorMode)
	}
	if c.OperatorMode == OperatorHTTP && c.ControlAddr == "" {
		return fmt.Errorf("operator mode %q requires CONTROL_ADDR", OperatorHTTP)
	}
	return nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDurationOr(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func parseIntOr(input string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseBool(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseList(input string, fallback []string) []string {
	if strings.TrimSpace(input) == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, item := range strings.Split(input, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
