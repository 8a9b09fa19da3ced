package config

import (
	"path/filepath"
	"time"

	"github.com/ipfeeds/listgen/src/internal/blocklist"
	"github.com/ipfeeds/listgen/src/internal/cidr"
	"github.com/ipfeeds/listgen/src/internal/feeds"
	"github.com/ipfeeds/listgen/src/internal/output"
	"github.com/ipfeeds/listgen/src/internal/parser"
)

const (
	DefaultFetchTimeoutSeconds = 60
	DefaultFetchRetries        = 2
	DefaultMaxParallelFetches  = 4
	DefaultUserAgent           = "listgen"
)

type Config struct {
	// Settings holds run-wide fetch settings (optional).
	Settings *Settings `toml:"settings" yaml:"settings"`
	// Lists are the output lists to generate. Every list produces <name>.txt.
	Lists []*ListSpec `toml:"lists" yaml:"lists"`

	_absConfigFilePath string
}

type Settings struct {
	// FetchTimeoutSeconds bounds a single fetch attempt (default: 60).
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds" yaml:"fetch_timeout_seconds" validate:"gte=0"`
	// FetchRetries is the number of extra attempts after a transient failure (default: 2).
	FetchRetries *int `toml:"fetch_retries" yaml:"fetch_retries" validate:"omitempty,gte=0,lte=10"`
	// MaxParallelFetches caps simultaneous fetches across all lists (default: 4).
	MaxParallelFetches int `toml:"max_parallel_fetches" yaml:"max_parallel_fetches" validate:"gte=0"`
	// MaxParallelLists caps lists processed at once (0 = unbounded).
	MaxParallelLists int `toml:"max_parallel_lists" yaml:"max_parallel_lists" validate:"gte=0"`
	// UserAgent is sent with HTTP requests (default: listgen).
	UserAgent string `toml:"user_agent" yaml:"user_agent"`
}

type ListSpec struct {
	// Name identifies the list and names its output file.
	Name string `toml:"name" yaml:"name" validate:"required,list_name"`
	// Description is informational only.
	Description string `toml:"description" yaml:"description"`
	// Sources are fetched and merged into the list.
	Sources []*SourceSpec `toml:"sources" yaml:"sources" validate:"required,min=1,dive,required"`
	// Exclude holds CIDRs or IPs removed from the merged list.
	Exclude []string `toml:"exclude" yaml:"exclude" validate:"dive,cidr_or_ip"`
	// Dedupe is "exact" (default) or "covered".
	Dedupe blocklist.DedupeMode `toml:"dedupe" yaml:"dedupe" validate:"omitempty,oneof=exact covered"`
	// Output is "single" (default) or "per_family".
	Output output.Mode `toml:"output" yaml:"output" validate:"omitempty,oneof=single per_family"`
}

type SourceSpec struct {
	// URL of the feed: http(s):// or file://. May contain {{option}} placeholders.
	URL string `toml:"url" yaml:"url" validate:"required,feed_url"`
	// Format is one of hostlist, spamhaus-json, inet-ip-info-geo, maxmind-country.
	Format parser.Format `toml:"format" yaml:"format" validate:"required,feed_format"`
	// FormatOptions are passed to the parser and used for URL placeholders.
	FormatOptions map[string]string `toml:"format_options" yaml:"format_options"`
	// Compression is "none" (default) or "gzip".
	Compression feeds.Compression `toml:"compression" yaml:"compression" validate:"omitempty,compression"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

func (c *Config) GetConfigPath() string {
	return c._absConfigFilePath
}

// ApplyDefaults fills unset settings and list options.
func (c *Config) ApplyDefaults() {
	if c.Settings == nil {
		c.Settings = &Settings{}
	}
	s := c.Settings
	if s.FetchTimeoutSeconds == 0 {
		s.FetchTimeoutSeconds = DefaultFetchTimeoutSeconds
	}
	if s.FetchRetries == nil {
		retries := DefaultFetchRetries
		s.FetchRetries = &retries
	}
	if s.MaxParallelFetches == 0 {
		s.MaxParallelFetches = DefaultMaxParallelFetches
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}

	for _, list := range c.Lists {
		if list == nil {
			continue
		}
		if list.Dedupe == "" {
			list.Dedupe = blocklist.DedupeExact
		}
		if list.Output == "" {
			list.Output = output.ModeSingle
		}
		for _, src := range list.Sources {
			if src != nil && src.Compression == "" {
				src.Compression = feeds.CompressionNone
			}
		}
	}
}

func (s *Settings) FetchTimeout() time.Duration {
	return time.Duration(s.FetchTimeoutSeconds) * time.Second
}

func (s *Settings) Retries() int {
	if s.FetchRetries == nil {
		return DefaultFetchRetries
	}
	return *s.FetchRetries
}

// ExcludeRanges parses the exclusion entries. Config validation guarantees
// they parse, so an error here means the list was not validated.
func (l *ListSpec) ExcludeRanges() ([]cidr.NetworkRange, error) {
	out := make([]cidr.NetworkRange, 0, len(l.Exclude))
	for _, e := range l.Exclude {
		r, _, err := cidr.ParseRange(e)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ExpandedURL returns the URL with {{name}} placeholders replaced from FormatOptions.
func (s *SourceSpec) ExpandedURL() (string, error) {
	return ExpandURL(s.URL, s.FormatOptions)
}

// Options converts FormatOptions into parser options.
func (s *SourceSpec) Options() parser.Options {
	return parser.Options(s.FormatOptions)
}
