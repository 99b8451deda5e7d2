package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/cache"
)

var cacheClearCmd = &cobra.Command{
	Use:   "cache-clear",
	Short: "Drop every cached enrichment from Redis",
	Long:  "Deletes all enrichment entries stored under the cache key prefix. Requires redis_addr or REDIS_ADDR.",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if appConfig.RedisAddr == "" {
		return errors.New("no cache configured: set redis_addr or REDIS_ADDR")
	}

	store := cache.NewRedis(ctx, redisOptions(appConfig))
	defer func() { _ = store.Close() }()

	if !store.Available() {
		return fmt.Errorf("redis unavailable at %s", appConfig.RedisAddr)
	}
	if err := store.Invalidate(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
	return nil
}
