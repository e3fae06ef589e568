package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"grabd/internal/message"
)

func newRecopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recopy <id>",
		Short: "Copy a history entry back to the system clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := request(&message.Message{Type: message.TypeRecopy, ID: args[0]})
			if err != nil {
				return err
			}
			fmt.Println("copied")
			return nil
		},
	}
}
