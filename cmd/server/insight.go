package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/mydevjourney/internal/config"
	"github.com/sakif/mydevjourney/internal/gateway"
	"github.com/sakif/mydevjourney/internal/service"
)

const monthLayout = "2006-01"

var errNoToken = errors.New("GITHUB_TOKEN environment variable is not set")

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the GitHub activity stats of the trailing window as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			insights, err := newCLIInsights(cmd)
			if err != nil {
				return err
			}
			stats, err := insights.Stats(cmd.Context(), "")
			if err != nil {
				return fmt.Errorf("aggregating stats: %w", err)
			}
			return printJSON(cmd, stats)
		},
	}
}

func newRecapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recap",
		Short: "Print the recap of one month as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			monthRef := time.Now().UTC()
			if month, _ := cmd.Flags().GetString("month"); month != "" {
				parsed, err := time.Parse(monthLayout, month)
				if err != nil {
					return fmt.Errorf("invalid --month %q, use YYYY-MM: %w", month, err)
				}
				monthRef = parsed
			}

			insights, err := newCLIInsights(cmd)
			if err != nil {
				return err
			}
			recap, err := insights.Recap(cmd.Context(), "", monthRef)
			if err != nil {
				return fmt.Errorf("building recap: %w", err)
			}
			return printJSON(cmd, recap)
		},
	}
	cmd.Flags().StringP("month", "m", "", "month to recap (YYYY-MM, default current)")
	return cmd
}

// newCLIInsights builds an InsightService for the terminal: the token comes
// from GITHUB_TOKEN, there are no goals, and GitHub failures are errors
// rather than empty results.
func newCLIInsights(cmd *cobra.Command) (*service.InsightService, error) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return nil, errNoToken
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg, cmd.ErrOrStderr())

	fetcher, err := gateway.NewGitHubGateway(cfg.GitHubAPIURL, logger)
	if err != nil {
		return nil, fmt.Errorf("creating GitHub gateway: %w", err)
	}

	return service.NewInsightService(fetcher, service.StaticToken(token), nil, nil, time.Now,
		insightConfig(cfg), logger), nil
}

func insightConfig(cfg *config.Config) service.InsightConfig {
	return service.InsightConfig{
		WindowDays:     cfg.StatsWindowDays,
		PageSize:       cfg.EventsPageSize,
		FailOnUpstream: true,
	}
}

// printJSON writes v pretty-printed to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
