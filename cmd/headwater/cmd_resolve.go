package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/headwaterdb/headwater"
)

// newResolveCmd creates the resolve subcommand: run the detection chain
// and report the resolved settings without keeping the connection.
func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve",
		Short: "Detect configuration and report the resolved connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			settings, err := headwater.ResolveSettings(ctx, resolverOptions()...)
			if err != nil {
				return err
			}

			fmt.Printf("Backend:  %s\n", settings.Kind())
			for _, key := range settings.Keys() {
				value := settings.Get(key)
				if key == headwater.KeyPassword {
					value = "****"
				}
				fmt.Printf("  %s = %s\n", key, value)
			}

			if settings.Err != "" {
				fmt.Printf("Status:   connection failed: %s\n", settings.Err)
				return nil
			}
			fmt.Printf("Status:   connected (%s)\n", settings.Handle.Locator())
			return settings.Handle.Close()
		},
	}
}
