// grabd: clipboard capture daemon. Watches the system clipboard, decides
// which changes are deliberate copies, classifies them and keeps a
// categorized history for instant quick-access retrieval.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grabd/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "grabd",
		Short: "Clipboard capture & classification daemon",
		Long: `grabd watches the system clipboard, filters out selection noise and
multi-step write transients, classifies each deliberate copy (text, url,
code, log, prompt, image, file), suppresses near-duplicates and keeps a
bounded, pre-categorized history.

Run "grabd run" once per session. The other sub-commands talk to the
running daemon over a local Unix socket:

  grabd history   list captured entries
  grabd quick     show the categorized quick-access buckets
  grabd recopy    copy a history entry back to the clipboard
  grabd remove    delete a history entry
  grabd status    daemon status

Config file search order (first found wins):
  /etc/grabd/grabd.toml
  $HOME/.config/grabd/grabd.toml
  path supplied via --config

All flags can be set via GRABD_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newRunCmd(),
		newHistoryCmd(),
		newQuickCmd(),
		newRecopyCmd(),
		newRemoveCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("grabd %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
