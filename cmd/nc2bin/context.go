package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"nc2bin/internal/config"
	"nc2bin/internal/logging"
	"nc2bin/internal/manifest"
	"nc2bin/internal/source"
)

var errMissingArgument = errors.New("missing argument")

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	opener       source.Opener

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
}

func newCommandContext(configFlag, logLevelFlag *string, opener source.Opener) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		opener:       opener,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) resolvedLogLevel(cfg *config.Config) string {
	if c.logLevelFlag != nil {
		if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
			return level
		}
	}
	if cfg != nil {
		return cfg.Logging.Level
	}
	return "info"
}

// newLogger builds the invocation logger; every record carries a session_id
// and the name of the running subcommand.
func (c *commandContext) newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	effective := config.Default()
	if cfg != nil {
		effective = *cfg
	}
	effective.Logging.Level = strings.ToLower(c.resolvedLogLevel(cfg))
	if err := effective.Validate(); err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return logging.NewFromConfig(&effective, logging.Invocation{
		SessionID: uuid.NewString(),
		Command:   cmd.Name(),
	})
}

// openManifest returns nil when the manifest is disabled.
func (c *commandContext) openManifest(cfg *config.Config) (*manifest.Store, error) {
	if cfg == nil || !cfg.Manifest.Enabled {
		return nil, nil
	}
	store, err := manifest.Open(cfg.Manifest.Path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	return store, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// requireInput rejects an invocation without the input file, printing usage.
func requireInput(maxArgs int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
			return fmt.Errorf("%w: input file (usage: %s)", errMissingArgument, cmd.UseLine())
		}
		return cobra.MaximumNArgs(maxArgs)(cmd, args)
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
