package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lightbox/internal/ipc"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <sessionID>",
		Short: "Start publishing a draft session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseSessionID(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Publish(id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !resp.Started {
					if resp.Message != "" {
						fmt.Fprintln(out, resp.Message)
					} else {
						fmt.Fprintln(out, "Publish not started")
					}
					return nil
				}
				fmt.Fprintf(out, "Publishing session %d; track progress with `lightbox sessions show %d`\n", id, id)
				return nil
			})
		},
	}
}
