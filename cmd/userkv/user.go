package main

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <usr>",
		Short: "Print all attributes of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			fields, err := svc.User(cmd.Context(), args[0])
			if err != nil {
				return fail("reading user", err)
			}
			return a.render(fields, func(w io.Writer) error {
				for _, name := range slices.Sorted(maps.Keys(fields)) {
					if _, err := fmt.Fprintf(w, "%s: %s\n", name, fields[name]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newCoordsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "coords <usr>",
		Short: "Print the longitude and latitude of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			c, err := svc.Coordinates(cmd.Context(), args[0])
			if err != nil {
				return fail("reading coordinates", err)
			}
			return a.render(c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "longitude: %s\nlatitude: %s\n", c.Longitude, c.Latitude)
				return err
			})
		},
	}
}
