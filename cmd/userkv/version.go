package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/userkv"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of userkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "userkv version %s\n", userkv.Version)
		},
	}
}
