package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/userkv/pkg/core"
)

func newScoresCmd(a *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "scores <file>",
		Short: "Load a leaderboard",
		Long:  `Load "<member> <score>" lines into the leaderboard sorted set. Malformed lines are logged and skipped.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			svc = withLeaderboard(svc, key)

			report, err := svc.LoadScores(cmd.Context(), args[0])
			if err != nil {
				return fail("loading scores", err)
			}
			return a.render(report, func(w io.Writer) error {
				return printReport(w, report)
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Leaderboard key (default from config)")
	return cmd
}

func withLeaderboard(svc *core.Service, key string) *core.Service {
	if key == "" {
		return svc
	}
	settings := svc.Settings()
	settings.Leaderboard = key
	return svc.WithSettings(settings)
}
