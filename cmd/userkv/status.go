package main

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of the service and its store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}

			state := svc.State()
			return a.render(state, func(w io.Writer) error {
				encoder := yaml.NewEncoder(w)
				encoder.SetIndent(2)
				if err := encoder.Encode(state); err != nil {
					return err
				}
				return encoder.Close()
			})
		},
	}
}
