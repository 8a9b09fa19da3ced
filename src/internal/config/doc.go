// Package config loads and validates the list definitions file.
//
// The file is YAML by default and TOML when its name ends in ".toml"; both
// decode into the same Config. It has an optional settings section with
// fetch limits and a list of named output lists, each with its sources,
// exclusions and output options:
//
//	settings:
//	  fetch_timeout_seconds: 60
//	  max_parallel_fetches: 4
//	lists:
//	  - name: drop
//	    sources:
//	      - url: https://www.spamhaus.org/drop/drop_v4.json
//	        format: spamhaus-json
//	    exclude: [10.0.0.0/8]
//
// Source URLs may contain {{name}} placeholders filled from format_options,
// and relative file:// URLs are resolved against the config file directory.
//
// LoadConfig decodes the file and applies defaults; ValidateConfig reports
// every problem at once as ValidationErrors.
package config
