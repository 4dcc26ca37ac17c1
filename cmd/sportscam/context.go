package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/swdee/go-sportscam/config"
	"github.com/swdee/go-sportscam/store"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	// logOutput receives log records, stderr keeps stdout free for tables
	logOutput io.Writer

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		logOutput:    os.Stderr,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return newLogger(loggerOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}, c.logOutput)
}

// openStore opens the session database given by the flag value falling back
// to the configured path.  A nil store is returned when neither is set
func (c *commandContext) openStore(flagPath string) (*store.Store, error) {
	path := strings.TrimSpace(flagPath)
	if path == "" {
		cfg, err := c.ensureConfig()
		if err != nil {
			return nil, err
		}
		path = strings.TrimSpace(cfg.Store.Path)
	}
	if path == "" {
		return nil, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return st, nil
}

// requireStore is openStore for commands that cannot run without a database
func (c *commandContext) requireStore(flagPath string) (*store.Store, error) {
	st, err := c.openStore(flagPath)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("no session database: pass --db or set store.path in the configuration")
	}
	return st, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
