package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lantian699/jellyfin-android/pkg/jf"
)

func playCommand() *cobra.Command {
	var browserSel string
	var shuffle bool

	cmd := &cobra.Command{
		Use:   "play <node-id>",
		Short: "Play a node from the last browsed listing",
		Long:  "Play a node from the last browsed listing. With --shuffle the node id must address a container; its captured playables are played in random order.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			nodeID := args[0]
			if shuffle {
				id, err := jf.DecodeNodeID(nodeID)
				if err != nil {
					return err
				}
				nodeID = jf.ShuffleID(id.Kind, id.Primary).String()
			}
			result, err := app.service.Play(ctx, browserSel, nodeID)
			if err != nil {
				return err
			}
			if app.quiet {
				return nil
			}
			return app.printer.Print(result)
		},
	}

	cmd.Flags().StringVar(&browserSel, "on", "", "browser node selector")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "shuffle the container's playables")

	return cmd
}
