package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/userkv/pkg/core"
)

func newSearchCmd(a *app) *cobra.Command {
	q := core.DefaultUserQuery()
	var anyLatitude bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search users through the secondary index",
		Long: `Search users by gender, country and latitude range. The index is created
on first use and reused afterwards. Requires a server with the search module.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			if anyLatitude {
				q.ByLatitude = false
			}
			res, err := svc.SearchUsers(cmd.Context(), q)
			if err != nil {
				return fail("searching users", err)
			}
			return a.render(res, func(w io.Writer) error {
				if _, err := fmt.Fprintf(w, "%d result(s)\n", res.Total); err != nil {
					return err
				}
				for _, d := range res.Docs {
					pairs := make([]string, 0, len(d.Fields))
					for _, name := range slices.Sorted(maps.Keys(d.Fields)) {
						pairs = append(pairs, name+"="+d.Fields[name])
					}
					if _, err := fmt.Fprintf(w, "%s %s\n", d.ID, strings.Join(pairs, " ")); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.Gender, "gender", q.Gender, "Gender to match")
	f.StringSliceVar(&q.Countries, "country", q.Countries, "Countries to match (repeatable)")
	f.Float64Var(&q.MinLat, "lat-min", q.MinLat, "Minimum latitude")
	f.Float64Var(&q.MaxLat, "lat-max", q.MaxLat, "Maximum latitude")
	f.BoolVar(&anyLatitude, "any-latitude", false, "Drop the latitude range")
	f.IntVar(&q.Limit, "limit", q.Limit, "Maximum number of results (0 uses the server default)")
	return cmd
}
