package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"question-index/internal/cache"
)

func newCacheCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			if cfg.CacheDir == "" {
				return fmt.Errorf("no cache directory configured")
			}
			c, err := cache.Open(cfg.CacheDir)
			if err != nil {
				return err
			}
			if err := c.Purge(); err != nil {
				return fmt.Errorf("clear %s: %w", cfg.CacheDir, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", cfg.CacheDir)
			return nil
		},
	})
	return cmd
}
