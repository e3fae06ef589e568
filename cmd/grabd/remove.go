package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grabd/internal/message"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeRemove, ID: args[0]})
			if err != nil {
				return err
			}
			fmt.Println("removed")
			return nil
		},
	}
}
