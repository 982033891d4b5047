package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/userkv/pkg/core"
)

func newEvenCmd(a *app) *cobra.Command {
	var opts core.ScanOptions

	cmd := &cobra.Command{
		Use:   "even",
		Short: "List users with an even id",
		Long: `Scan the keyspace with a cursor and print every user key ending in an even
number, with one of its fields. Keys without a numeric suffix are skipped.
The scan starts from the beginning unless --cursor resumes an earlier one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			res, err := svc.EvenUsers(cmd.Context(), opts)
			if err != nil {
				return fail("scanning users", err)
			}
			return a.render(res, func(w io.Writer) error {
				for i, key := range res.Keys {
					if _, err := fmt.Fprintf(w, "%s %s\n", key, res.Values[i]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.Count, "count", 0, "Scan batch size hint (default from config)")
	f.Uint64Var(&opts.Cursor, "cursor", 0, "Resume from this cursor")
	f.StringVar(&opts.Match, "match", "", "Key pattern (default from config)")
	f.StringVar(&opts.Field, "field", "", "Field to print for each key (default from config)")
	return cmd
}
