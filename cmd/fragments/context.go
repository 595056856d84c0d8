package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"fragments/internal/actions"
	"fragments/internal/auth"
	"fragments/internal/config"
	"fragments/internal/fragments"
	"fragments/internal/logging"
	"fragments/internal/services"
)

type commandContext struct {
	configFlag *string
	apiURLFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	wireOnce sync.Once
	logger   *slog.Logger
	provider *auth.FileProvider
	actions  *actions.Actions
	wireErr  error
}

func newCommandContext(configFlag, apiURLFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiURLFlag: apiURLFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "load config", "", err)
			return
		}
		if c.apiURLFlag != nil && strings.TrimSpace(*c.apiURLFlag) != "" {
			cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(*c.apiURLFlag), "/")
			if err := cfg.Validate(); err != nil {
				c.configErr = services.Wrap(services.ErrConfiguration, "load config", "--api-url", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "load config", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// wire builds the logger, identity provider and actions from config.
func (c *commandContext) wire() error {
	c.wireOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.wireErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.wireErr = services.Wrap(services.ErrConfiguration, "init logging", "", err)
			return
		}
		mode, err := auth.ParseMode(cfg.Auth.Mode)
		if err != nil {
			c.wireErr = services.Wrap(services.ErrConfiguration, "auth.mode", "", err)
			return
		}
		provider := auth.NewFileProvider(cfg.Auth.StateDir, mode,
			auth.WithLogger(logging.NewComponentLogger(logger, "auth")))
		client, err := fragments.New(cfg.API.BaseURL,
			fragments.WithTimeout(cfg.Timeout()),
			fragments.WithLogger(logger),
		)
		if err != nil {
			c.wireErr = services.Wrap(services.ErrConfiguration, "api.base_url", "", err)
			return
		}
		logger.Debug("cli wired",
			slog.String("base_url", client.BaseURL()),
			slog.String("auth_mode", string(mode)),
		)
		c.logger = logger
		c.provider = provider
		c.actions = actions.New(client, provider, actions.WithLogger(logger))
	})
	return c.wireErr
}

func (c *commandContext) withActions(fn func(*actions.Actions) error) error {
	if err := c.wire(); err != nil {
		return err
	}
	return fn(c.actions)
}

func (c *commandContext) withProvider(fn func(*auth.FileProvider) error) error {
	if err := c.wire(); err != nil {
		return err
	}
	return fn(c.provider)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func usageError(operation, message string) error {
	return services.Wrap(services.ErrValidation, operation, message, nil)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
