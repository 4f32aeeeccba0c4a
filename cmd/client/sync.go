package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const defaultPingInterval = 5 * time.Second

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Flush the pending queue against the server once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := e.api.Ping(ctx); err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}

		res, err := e.syncer.Flush(ctx, e.sess.UserID)
		if err != nil {
			return err
		}

		fmt.Printf("confirmed %d, dropped %d, failed %d, deferred %d\n",
			res.Confirmed, res.Dropped, res.Failed, res.Deferred)
		if res.Drained() {
			fmt.Println("queue empty, cache refreshed")
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch connectivity and sync automatically",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Println("watching connectivity, Ctrl-C to stop")
		e.reconcer.Run(ctx, e.sess.UserID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd, watchCmd)
}
