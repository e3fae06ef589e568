package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grabd/internal/message"
)

func newQuickCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Show the categorized quick-access buckets",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			reply, err := request(&message.Message{Type: message.TypeQuick})
			if err != nil {
				return err
			}
			if reply.Snapshot == nil {
				return fmt.Errorf("malformed snapshot reply")
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(reply.Snapshot)
			}
			printBucket("logs", reply.Snapshot.Logs)
			printBucket("prompts", reply.Snapshot.Prompts)
			printBucket("images", reply.Snapshot.Images)
			printBucket("other", reply.Snapshot.Other)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

func printBucket(name string, entries []message.Entry) {
	fmt.Printf("%s (%d)\n", name, len(entries))
	printEntries(entries)
	fmt.Println()
}
