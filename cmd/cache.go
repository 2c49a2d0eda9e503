package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadclean/internal/resolve"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent mail-provider cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report how many domains the persistent cache holds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := requirePersistentCache()
		if err != nil {
			return err
		}
		defer cache.Close() //nolint:errcheck

		n, err := cache.PersistedCount()
		if err != nil {
			return eris.Wrap(err, "cache: stats")
		}
		zap.L().Info("cache: stats",
			zap.String("path", cfg.Resolver.CachePath),
			zap.Int("domains", n),
		)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached provider resolutions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := requirePersistentCache()
		if err != nil {
			return err
		}
		defer cache.Close() //nolint:errcheck

		if err := cache.Clear(); err != nil {
			return eris.Wrap(err, "cache: clear")
		}
		zap.L().Info("cache: cleared", zap.String("path", cfg.Resolver.CachePath))
		return nil
	},
}

func requirePersistentCache() (*resolve.Cache, error) {
	if cfg.Resolver.CachePath == "" {
		return nil, eris.New("cache: no cache path configured (LEADCLEAN_RESOLVER_CACHE_PATH)")
	}
	cache, err := resolve.NewPersistentCache(cfg.Resolver.CachePath)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	return cache, nil
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
