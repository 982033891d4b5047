package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newTopCmd(a *app) *cobra.Command {
	var (
		limit int
		key   string
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the best players with their emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			svc = withLeaderboard(svc, key)

			standings, err := svc.TopPlayers(cmd.Context(), limit)
			if err != nil {
				return fail("reading leaderboard", err)
			}
			return a.render(standings, func(w io.Writer) error {
				for _, s := range standings {
					if _, err := fmt.Fprintf(w, "%d. %s %g %s\n", s.Rank, s.Member, s.Score, s.Email); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Number of players (default from config)")
	cmd.Flags().StringVar(&key, "key", "", "Leaderboard key (default from config)")
	return cmd
}
