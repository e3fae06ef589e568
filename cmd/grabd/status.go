package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grabd/internal/ipc"
	"grabd/internal/message"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !ipc.IsRunning() {
				return fmt.Errorf("no running grabd daemon on %s", ipc.SocketPath())
			}
			reply, err := request(&message.Message{Type: message.TypeStatus})
			if err != nil {
				return err
			}
			fmt.Printf("backend:  %s\n", reply.Backend)
			fmt.Printf("entries:  %d\n", reply.Total)
			fmt.Printf("watchers: %d\n", len(reply.Subscribers))
			for _, s := range reply.Subscribers {
				fmt.Printf("  %-12s connected %s\n", s.ID, humanAge(s.ConnectedAt))
			}
			return nil
		},
	}
}
