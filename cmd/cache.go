package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/idea-research/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the content cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		c, closeCache, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer closeCache()

		n, err := purge(ctx, c)
		if err != nil {
			return err
		}
		zap.L().Info("cache purged", zap.String("driver", cfg.Cache.Driver), zap.Int("removed", n))
		fmt.Fprintf(os.Stdout, "Removed %d expired entries.\n", n)
		return nil
	},
}

// purge drops expired entries from c when its backend supports it.
func purge(ctx context.Context, c cache.Cache) (int, error) {
	if c == nil {
		return 0, nil
	}
	p, ok := c.(cache.Purger)
	if !ok {
		return 0, eris.New("cache backend does not support purging")
	}
	n, err := p.PurgeExpired(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "cache purge")
	}
	return n, nil
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}
