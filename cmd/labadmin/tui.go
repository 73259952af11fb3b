package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-labadmin/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and edit tables from the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := tui.NewSession(registry, client, validators())
		if err != nil {
			return err
		}
		err = session.Run(cmd.Context())
		if errors.Is(err, tui.ErrAborted) {
			return nil
		}
		return err
	},
}
