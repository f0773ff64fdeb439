package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headwaterdb/headwater"
)

// newPingCmd creates the ping subcommand: resolve a handle and confirm
// the database answers.
func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Resolve a connection and verify the database answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			handle, err := headwater.Resolve(ctx, resolverOptions()...)
			if err != nil {
				return err
			}
			defer handle.Close()

			fmt.Printf("OK: %s (%s)\n", handle.Kind(), handle.Locator())
			return nil
		},
	}
}
