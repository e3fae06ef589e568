package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grabd/internal/message"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		offset int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List captured clipboard entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			reply, err := request(&message.Message{
				Type:   message.TypeList,
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(reply.Entries)
			}
			if len(reply.Entries) == 0 {
				fmt.Println("history is empty")
				return nil
			}
			printEntries(reply.Entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "entries to skip from the newest")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}
