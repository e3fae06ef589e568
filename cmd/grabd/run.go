package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"grabd/internal/clip"
	"grabd/internal/engine"
	"grabd/internal/history"
	"grabd/internal/hub"
	"grabd/internal/ipc"
	"grabd/internal/ipcpeer"
	"grabd/internal/persist"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the capture daemon",
		Long: `Starts the capture daemon: polls the clipboard, classifies deliberate
copies into history, and serves the IPC socket for the other sub-commands
and quick-access UI surfaces.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runDaemon(v) },
	}

	f := cmd.Flags()
	f.String("data-dir", defaultDataDir(), "history database and captures directory")
	f.Duration("poll-interval", engine.DefaultPollInterval, "clipboard change-counter poll interval")
	f.Duration("settle-delay", engine.DefaultSettleDelay, "wait before reading a mutated clipboard, lets multi-step writes finish")
	f.Duration("guard-window", engine.DefaultGuardWindow, "window in which the engine's own clipboard writes are ignored")
	f.Float64("similarity-threshold", engine.DefaultSimilarityThreshold, "near-duplicate rejection threshold (0..1)")
	f.Int("bucket-capacity", history.DefaultBucketCapacity, "entries kept per quick-access bucket")
	f.Bool("no-clipboard", false, "run without a clipboard backend (serve existing history only)")
	f.Bool("no-persist", false, "keep history in memory only")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(v *viper.Viper) error {
	setupLogging(v)

	slog.Info("grabd starting", "version", Version, "data_dir", v.GetString("data-dir"))

	store := history.NewStore()
	cache := history.NewCache(v.GetInt("bucket-capacity"))
	h := hub.New()

	var durable engine.DurableStore
	var restored []history.Entry
	if !v.GetBool("no-persist") {
		ps, err := persist.Open(v.GetString("data-dir"))
		if err != nil {
			return fmt.Errorf("open history store: %w", err)
		}
		defer ps.Close()

		restored, err = ps.LoadAll()
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		durable = ps
	}

	var backend clip.Backend
	if v.GetBool("no-clipboard") {
		backend = clip.NewHeadless()
	} else {
		backend = clip.New()
	}
	defer backend.Close()

	eng := engine.New(engine.Config{
		PollInterval:        v.GetDuration("poll-interval"),
		SettleDelay:         v.GetDuration("settle-delay"),
		GuardWindow:         v.GetDuration("guard-window"),
		SimilarityThreshold: v.GetFloat64("similarity-threshold"),
	}, backend, store, cache, durable, h)

	eng.Restore(restored)
	if len(restored) > 0 {
		slog.Info("history restored", "entries", len(restored))
	}

	ln, err := ipc.Listen()
	if err != nil {
		return fmt.Errorf("ipc listen: %w", err)
	}
	slog.Info("IPC socket listening", "path", ipc.SocketPath())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := eng.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		// Unblock the accept loop.
		_ = ln.Close()
		return nil
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("ipc accept failed", "err", err)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			go ipcpeer.New(conn, eng, h).Serve()
		}
	})

	err = g.Wait()
	slog.Info("grabd stopped")
	return err
}
