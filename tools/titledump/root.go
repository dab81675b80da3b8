package main

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"movieflex/config"
	"movieflex/services/metadata"
)

type commandContext struct {
	configFlag *string
	language   *string

	once     sync.Once
	settings config.Settings
	service  *metadata.Service
	err      error
}

func (c *commandContext) metadata() (*metadata.Service, error) {
	c.once.Do(func() {
		path := strings.TrimSpace(*c.configFlag)
		if path == "" {
			path = filepath.Join("cache", "settings.json")
		}
		settings, err := config.NewManager(path).Load()
		if err != nil {
			c.err = err
			return
		}
		if lang := strings.TrimSpace(*c.language); lang != "" {
			settings.Metadata.Language = lang
		}
		c.settings = settings
		c.service = metadata.NewService(metadata.Config{
			APIKey:         settings.Metadata.TMDBAPIKey,
			Language:       settings.Metadata.Language,
			ImageBaseURL:   settings.Images.BaseURL,
			PlaceholderURL: settings.Images.PlaceholderURL,
			Timeout:        settings.Metadata.Timeout(),
		}, nil)
		if !c.service.Configured() {
			c.err = metadata.ErrNotConfigured
		}
	})
	return c.service, c.err
}

func newRootCommand() *cobra.Command {
	var configFlag, languageFlag string
	ctx := &commandContext{configFlag: &configFlag, language: &languageFlag}

	rootCmd := &cobra.Command{
		Use:           "titledump",
		Short:         "Inspect what MovieFlex pages would show for a title",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Settings file path")
	rootCmd.PersistentFlags().StringVarP(&languageFlag, "language", "l", "", "Override the metadata language")

	rootCmd.AddCommand(newTitleCommand(ctx))
	rootCmd.AddCommand(newSeasonCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newFeedCommand(ctx))

	return rootCmd
}
