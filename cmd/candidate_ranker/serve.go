package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-ranker/internal/server"
	"github.com/jonathan/candidate-ranker/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the candidate search API.

Endpoints:
  GET  /health           - Health check
  GET  /candidates       - Ranked candidates, filtered by query parameters
  GET  /candidates/{id}  - Single enriched candidate
  POST /search           - Ranked candidates, filtered by a JSON body
  GET  /stats            - Summary counters and analytics
  GET  /export           - Download results as JSON or XLSX`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	src, releaseSource, err := openSource(ctx, cfg, "")
	if err != nil {
		return err
	}

	engine, closeEngine, err := newEngine(ctx, cfg, "")
	if err != nil {
		releaseSource()
		return err
	}

	srv, err := server.New(server.Config{
		Port:       cfg.Port,
		Source:     src,
		Engine:     engine,
		RateLimit:  ratelimit.LoadConfig(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logger:     logger,
		OnShutdown: []func(){closeEngine, releaseSource},
	})
	if err != nil {
		closeEngine()
		releaseSource()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx)
}
