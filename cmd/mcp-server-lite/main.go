// Package main provides the lightweight MCP entry point for the lab report extraction server.
// This version requires no external databases: results are cached in memory and entities
// are stored in SQLite under the data directory.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/labextract-server/internal/config"
	"github.com/labextract-server/internal/mcp"
)

func main() {
	cfg := config.LoadLiteConfig()

	log.Printf("Starting lab report extraction MCP server (lite), data directory: %s", cfg.DataDir)

	server, err := mcp.NewLiteServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	defer server.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("MCP server failed: %v", err)
	}

	log.Println("MCP server (lite) stopped")
}
