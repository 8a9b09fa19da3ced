package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/ipfeeds/listgen/src/internal/config"
	"github.com/ipfeeds/listgen/src/internal/errors"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	Verbose bool
	Quiet   bool
	// Color is "auto", "yes" or "no" and applies to summary tables.
	Color string
	// Stdout receives command reports; os.Stdout when nil.
	Stdout io.Writer
}

func (c *AppContext) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

const (
	ExitOK         = 0
	ExitError      = 1
	ExitListFailed = 2
)

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.HasCode(err, errors.ErrCodeListFailed):
		return ExitListFailed
	default:
		return ExitError
	}
}

// loadAndValidateConfig loads the configuration file and validates it.
func loadAndValidateConfig(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("configuration %s is invalid", cfg.GetConfigPath()), err)
	}

	return cfg, nil
}
