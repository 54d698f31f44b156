package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func playerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Manage playback backends",
	}
	cmd.AddCommand(playerSwitchCommand())
	cmd.AddCommand(statusCommand())
	return cmd
}

func playerSwitchCommand() *cobra.Command {
	var browserSel string

	cmd := &cobra.Command{
		Use:   "switch <local|cast>",
		Short: "Switch the active playback backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			result, err := app.service.SwitchPlayer(ctx, browserSel, args[0])
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

	return cmd
}

func statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [browser]",
		Short: "Show browser playback status",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := withTimeout(context.Background(), app.timeout)
			defer cancel()

			selector := ""
			if len(args) == 1 {
				selector = args[0]
			}
			result, err := app.service.Status(ctx, selector)
			if err != nil {
				return err
			}
			return app.printer.Print(result)
		},
	}

	return cmd
}

func watchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [browser]",
		Short: "Stream browser state and events",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx := cmd.Context()

			selector := ""
			if len(args) == 1 {
				selector = args[0]
			}
			states, events, errs, err := app.service.WatchStatus(ctx, selector)
			if err != nil {
				return err
			}
			for {
				select {
				case state, ok := <-states:
					if !ok {
						return nil
					}
					playback := "stopped"
					if state.Playback != nil {
						playback = state.Playback.Status
					}
					fmt.Fprintf(os.Stdout, "state: %s on %s (v%d)\n", playback, state.Player, state.StateVersion)
				case event, ok := <-events:
					if !ok {
						return nil
					}
					fmt.Fprintf(os.Stdout, "event: %s %s %s\n", event.Type, event.Player, event.Detail)
				case err, ok := <-errs:
					if !ok {
						return nil
					}
					if err != nil {
						return err
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	return cmd
}
