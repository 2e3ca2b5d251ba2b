package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the actions the API accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv(cfg)
		if err != nil {
			return err
		}
		for _, a := range env.Dispatcher.Actions() {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), a); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
