package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/ipfeeds/listgen/src/internal/parser"
)

func validConfig() *Config {
	cfg := &Config{
		Lists: []*ListSpec{
			{
				Name: "drop",
				Sources: []*SourceSpec{
					{URL: "https://www.spamhaus.org/drop/drop_v4.json", Format: parser.FormatSpamhausJSON},
				},
				Exclude: []string{"10.0.0.0/8", "192.0.2.1"},
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

func validationErrorsOf(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationErrors, got %T: %v", err, err)
	}
	return ve
}

func hasError(ve ValidationErrors, fieldPath, contains string) bool {
	for _, e := range ve {
		if e.FieldPath == fieldPath && strings.Contains(e.Message, contains) {
			return true
		}
	}
	return false
}

func TestValidateConfig_Success(t *testing.T) {
	if err := validConfig().ValidateConfig(); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
}

func TestValidateConfig_NoLists(t *testing.T) {
	ve := validationErrorsOf(t, (&Config{}).ValidateConfig())
	if !hasError(ve, "lists", "at least one list") {
		t.Errorf("Expected missing lists error, got: %v", ve)
	}
}

func TestValidateConfig_ListErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		fieldPath string
		contains  string
	}{
		{
			name:      "bad name",
			mutate:    func(c *Config) { c.Lists[0].Name = "../etc" },
			fieldPath: "name",
			contains:  "letters, digits",
		},
		{
			name:      "missing name",
			mutate:    func(c *Config) { c.Lists[0].Name = "" },
			fieldPath: "name",
			contains:  "required",
		},
		{
			name:      "no sources",
			mutate:    func(c *Config) { c.Lists[0].Sources = nil },
			fieldPath: "sources",
			contains:  "required",
		},
		{
			name:      "unknown format",
			mutate:    func(c *Config) { c.Lists[0].Sources[0].Format = "csv" },
			fieldPath: "sources.0.format",
			contains:  "unknown format",
		},
		{
			name:      "bad compression",
			mutate:    func(c *Config) { c.Lists[0].Sources[0].Compression = "zstd" },
			fieldPath: "sources.0.compression",
			contains:  "gzip",
		},
		{
			name:      "bad url scheme",
			mutate:    func(c *Config) { c.Lists[0].Sources[0].URL = "ftp://example.org/x" },
			fieldPath: "sources.0.url",
			contains:  "file://",
		},
		{
			name:      "bad exclusion",
			mutate:    func(c *Config) { c.Lists[0].Exclude = append(c.Lists[0].Exclude, "10.0.0.0/33") },
			fieldPath: "exclude.2",
			contains:  "not a valid",
		},
		{
			name:      "bad dedupe",
			mutate:    func(c *Config) { c.Lists[0].Dedupe = "aggregate" },
			fieldPath: "dedupe",
			contains:  "exact covered",
		},
		{
			name:      "bad output",
			mutate:    func(c *Config) { c.Lists[0].Output = "split" },
			fieldPath: "output",
			contains:  "per_family",
		},
		{
			name: "geo without country",
			mutate: func(c *Config) {
				c.Lists[0].Sources[0].Format = parser.FormatInetIPInfoGeo
			},
			fieldPath: "sources.0.format_options.country",
			contains:  "country code",
		},
		{
			name: "unresolved placeholder",
			mutate: func(c *Config) {
				c.Lists[0].Sources[0].URL = "https://example.org/{{region}}.txt"
			},
			fieldPath: "sources.0.url",
			contains:  "region",
		},
		{
			name: "duplicate name",
			mutate: func(c *Config) {
				dup := *c.Lists[0]
				dup.Name = "DROP"
				c.Lists = append(c.Lists, &dup)
			},
			fieldPath: "name",
			contains:  "duplicate list name",
		},
		{
			name: "negative retries",
			mutate: func(c *Config) {
				retries := -1
				c.Settings.FetchRetries = &retries
			},
			fieldPath: "settings.fetch_retries",
			contains:  ">= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			ve := validationErrorsOf(t, cfg.ValidateConfig())
			if !hasError(ve, tt.fieldPath, tt.contains) {
				t.Errorf("Expected error on %s containing %q, got:\n%v", tt.fieldPath, tt.contains, ve)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	ve := ValidationErrors{
		{ItemName: "drop", FieldPath: "sources.0.url", Message: "must be an http://, https:// or file:// URL"},
		{FieldPath: "lists", Message: "configuration must contain at least one list"},
	}

	want := "validation failed with 2 error(s):\n" +
		"  1. [drop] sources.0.url: must be an http://, https:// or file:// URL\n" +
		"  2. lists: configuration must contain at least one list\n"
	if ve.Error() != want {
		t.Errorf("Unexpected error text:\n%s", ve.Error())
	}
}

func TestFieldPathOf(t *testing.T) {
	if got := fieldPathOf("ListSpec.sources[0].url"); got != "sources.0.url" {
		t.Errorf("Unexpected field path %q", got)
	}
	if got := fieldPathOf("Settings.fetch_retries"); got != "fetch_retries" {
		t.Errorf("Unexpected field path %q", got)
	}
}
