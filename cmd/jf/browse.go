package main

import (
	"context"

	"github.com/spf13/cobra"
)

func browseCommand() *cobra.Command {
	var browserSel string

	cmd := &cobra.Command{
		Use:   "browse [node-id]",
		Short: "List children of a browse node",
		Long:  "List children of a browse node. With no node id the root listing is returned.",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			nodeID := ""
			if len(args) == 1 {
				nodeID = args[0]
			}
			result, err := app.service.BrowseChildren(ctx, browserSel, nodeID)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().StringVar(&browserSel, "on", "", "browser node selector")

	return cmd
}
