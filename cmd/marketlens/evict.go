package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var evictOlderThan time.Duration

var evictCmd = &cobra.Command{
	Use:   "evict",
	Short: "Delete cached bars fetched longer ago than the retention",
	RunE: func(cmd *cobra.Command, args []string) error {
		retention := evictOlderThan
		if retention == 0 {
			retention = cfg.Cache.Retention
		}
		if retention <= 0 {
			return errors.New("nothing to do: set --older-than or cache.retention")
		}

		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}
		defer d.Close()

		n, err := d.cache.Evict(cmd.Context(), retention)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "evicted %d cache entries older than %s\n", n, retention)
		return err
	},
}

func init() {
	evictCmd.Flags().DurationVar(&evictOlderThan, "older-than", 0, "retention window, e.g. 720h (default cache.retention)")
}
