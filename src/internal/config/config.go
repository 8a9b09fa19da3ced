package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/valyala/fasttemplate"
	"gopkg.in/yaml.v3"

	apperrors "github.com/ipfeeds/listgen/src/internal/errors"
	"github.com/ipfeeds/listgen/src/internal/log"
	"github.com/ipfeeds/listgen/src/internal/utils"
)

// LoadConfig reads the file at configPath, decodes it as TOML or YAML based on
// its extension and applies defaults. Unknown keys are rejected.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, apperrors.NewConfigError("failed to get absolute path", err)
		} else {
			configFile = path
		}
	}

	content, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewConfigError(fmt.Sprintf("configuration file not found: %s", configFile), nil)
	}
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read config file", err)
	}

	var config Config
	if isTOML(configFile) {
		err = decodeTOML(content, &config)
	} else {
		err = decodeYAML(content, &config)
	}
	if err != nil {
		return nil, err
	}

	config._absConfigFilePath = configFile
	config.ApplyDefaults()

	for _, list := range config.Lists {
		if list == nil {
			continue
		}
		for _, src := range list.Sources {
			if src != nil {
				src.URL = utils.ResolveFileURL(src.URL, config.GetConfigDir())
			}
		}
	}

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Loaded %d list definition(s)", len(config.Lists))

	return &config, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decodeTOML(content []byte, config *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(content)).DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			return apperrors.NewConfigError(fmt.Sprintf("failed to parse config file at line %d, column %d", row, col), err)
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			log.Errorf("%s", serr.String())
			return apperrors.NewConfigError("config file contains unknown keys", err)
		}
		return apperrors.NewConfigError("failed to parse config file", err)
	}
	return nil
}

func decodeYAML(content []byte, config *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewConfigError("config file is empty", nil)
		}
		var terr *yaml.TypeError
		if errors.As(err, &terr) {
			for _, msg := range terr.Errors {
				log.Errorf("%s", msg)
			}
		}
		return apperrors.NewConfigError("failed to parse config file", err)
	}
	return nil
}

// ExpandURL replaces {{name}} placeholders in rawURL with values from vars.
// Placeholders without a value are reported as an error.
func ExpandURL(rawURL string, vars map[string]string) (string, error) {
	if !strings.Contains(rawURL, "{{") {
		return rawURL, nil
	}

	t, err := fasttemplate.NewTemplate(rawURL, "{{", "}}")
	if err != nil {
		return "", fmt.Errorf("invalid placeholder in %q: %w", rawURL, err)
	}

	var missing []string
	expanded := t.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		name := strings.TrimSpace(tag)
		if v, ok := vars[name]; ok {
			return w.Write([]byte(v))
		}
		missing = append(missing, name)
		return 0, nil
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("no format option for placeholder(s): %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}
