package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// outbound requests.
type HTTPConfig struct {
	// Timeout is the transport-level request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with provider requests
	// (e.g. "ScholarSync/1.0 (academic research app)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Credentials holds the optional provider keys. An empty value disables
// the provider that needs it.
type Credentials struct {
	TavilyAPIKey          string `json:"-" yaml:"-"`
	WolframAppID          string `json:"-" yaml:"-"`
	SemanticScholarAPIKey string `json:"-" yaml:"-"`
}

// SearchConfig holds settings for the search aggregator and its adapters.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// ProviderTimeout bounds each adapter invocation. A provider that
	// exceeds it contributes no results (default 15s).
	ProviderTimeout time.Duration `json:"provider_timeout" yaml:"provider_timeout"`

	// MaxResults is the default result cap for CLI searches (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxRetries bounds 429 retries against rate-limited providers (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	Credentials Credentials `json:"-" yaml:"-"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`

	// ShutdownTimeout bounds graceful shutdown (default 10s).
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LibraryConfig holds settings for the saved-paper and history store.
type LibraryConfig struct {
	// Path is the SQLite database file (default "data/scholarsync.db").
	Path string `json:"path" yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`

	// Output is "console", "file", or "both".
	Output string `json:"output" yaml:"output"`

	// File is the rotating log file used when Output includes "file".
	File LogFileConfig `json:"file" yaml:"file"`
}

// LogFileConfig configures lumberjack rotation.
type LogFileConfig struct {
	Filename   string `json:"filename" yaml:"filename"`
	MaxSize    int    `json:"max_size" yaml:"max_size"` // megabytes
	MaxAge     int    `json:"max_age" yaml:"max_age"`   // days
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	Library LibraryConfig `json:"library" yaml:"library"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
