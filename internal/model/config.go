package model

import "time"

// Config is the single configuration object handed to the pipeline at construction.
// It is treated as read-only once the pipeline is built.
type Config struct {
	Analysis     AnalysisConfig     `yaml:"analysis"`
	HTTP         HTTPConfig         `yaml:"http"`
	Gateway      GatewayConfig      `yaml:"gateway"`
	Cache        CacheConfig        `yaml:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	LLM          LLMConfig          `yaml:"llm"`
	Output       OutputConfig       `yaml:"output"`
	Log          LogConfig          `yaml:"log"`
	Server       ServerConfig       `yaml:"server"`
	Collect      CollectConfig      `yaml:"collect"`
}

// AnalysisConfig holds the defaults and thresholds used by parser, analyzer and synthesizer
type AnalysisConfig struct {
	DefaultCountries     []CountryCode   `yaml:"default_countries"`
	DefaultIndicators    []IndicatorCode `yaml:"default_indicators"`
	DefaultWindowYears   int             `yaml:"default_window_years"`
	SignificantChangePct float64         `yaml:"significant_change_pct"` // |recent change| above this is "significant"
	StrongTrendR2        float64         `yaml:"strong_trend_r2"`        // R² above this is a "strong trend"
	MinTrendPoints       int             `yaml:"min_trend_points"`
	RecentWindow         int             `yaml:"recent_window"`
	CAGRMarker           string          `yaml:"cagr_marker"`          // Indicator name marker enabling CAGR
	UnboundedChangePct   float64         `yaml:"unbounded_change_pct"` // Clamp for change from a zero baseline
}

// HTTPConfig configures outbound HTTP used by remote gateways
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty"`
	RespectRobots bool          `yaml:"respect_robots"`
}

// GatewayConfig selects where series are read from
type GatewayConfig struct {
	// Sources are tried in order until one returns data: "store", "worldbank", "imf"
	Sources      []string `yaml:"sources"`
	Driver       string   `yaml:"driver"` // sqlite, postgres, mysql
	DSN          string   `yaml:"dsn"`
	WorldBankURL string   `yaml:"worldbank_url"`
	IMFURL       string   `yaml:"imf_url"`
}

// CacheConfig configures the gateway result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
	Dir       string        `yaml:"dir"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	FetchWorkers int `yaml:"fetch_workers"` // Parallel gateway lookups per request
	Workers      int `yaml:"workers"`       // Parallel questions in batch mode
}

// RateLimitingConfig throttles remote gateways per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// LLMConfig configures the optional narrative summarizer
type LLMConfig struct {
	Provider      string `yaml:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model         string `yaml:"model"`
	APIKey        string `yaml:"api_key,omitempty"`
	BaseURL       string `yaml:"base_url,omitempty"`
	Timeout       int    `yaml:"timeout"` // seconds
	StrictNumbers bool   `yaml:"strict_numbers"`
	MaxTokens     int    `yaml:"max_tokens"`
	Recognizer    bool   `yaml:"recognizer"` // Use the provider as the parser's location recognizer
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CollectConfig configures ingestion jobs
type CollectConfig struct {
	Countries     []CountryCode   `yaml:"countries"`
	Indicators    []IndicatorCode `yaml:"indicators"`
	IMFIndicators []IndicatorCode `yaml:"imf_indicators"`
	FromYear      int             `yaml:"from_year"`
	WorldBankAt   string          `yaml:"worldbank_at"` // Daily run time, HH:MM
	IMFAt         string          `yaml:"imf_at"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			DefaultCountries:     []CountryCode{"CHN", "USA"},
			DefaultIndicators:    []IndicatorCode{"NY.GDP.MKTP.CD"},
			DefaultWindowYears:   10,
			SignificantChangePct: 10,
			StrongTrendR2:        0.7,
			MinTrendPoints:       3,
			RecentWindow:         6,
			CAGRMarker:           "gdp",
			UnboundedChangePct:   1e6,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "macrolens/0.1 (+https://github.com/ppiankov/macrolens)",
			MaxBodyBytes: 5_000_000,
		},
		Gateway: GatewayConfig{
			Sources:      []string{"store", "worldbank"},
			Driver:       "sqlite",
			DSN:          "macrolens.db",
			WorldBankURL: "https://api.worldbank.org/v2",
			IMFURL:       "https://www.imf.org/external/datamapper/api/v1",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
			Dir:       ".macrolens-cache",
		},
		Concurrency: ConcurrencyConfig{
			FetchWorkers: 4,
			Workers:      2,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		LLM: LLMConfig{
			Timeout:       30,
			StrictNumbers: true,
			MaxTokens:     800,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Collect: CollectConfig{
			Countries:     []CountryCode{"CHN", "USA", "JPN", "DEU", "GBR", "FRA", "IND", "CAN", "AUS", "SGP"},
			Indicators:    []IndicatorCode{"NY.GDP.MKTP.CD", "NY.GDP.PCAP.CD", "FP.CPI.TOTL.ZG", "SL.UEM.TOTL.ZS", "NE.EXP.GNFS.ZS"},
			IMFIndicators: []IndicatorCode{"NGDP_RPCH", "PCPIPCH", "LUR", "GGXWDG_NGDP"},
			FromYear:      2000,
			WorldBankAt:   "02:00",
			IMFAt:         "03:00",
		},
	}
}
