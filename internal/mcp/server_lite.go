// Package mcp exposes the extraction engine to MCP clients over stdio.
// This file contains the lightweight server that requires no external databases.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/labextract-server/internal/cache"
	litecfg "github.com/labextract-server/internal/config"
	"github.com/labextract-server/internal/domain"
	"github.com/labextract-server/internal/extraction"
	"github.com/labextract-server/internal/logging"
	"github.com/labextract-server/internal/service"
	"github.com/labextract-server/internal/store"
	"github.com/labextract-server/internal/textract"
)

// ServerName and ServerVersion identify the server to MCP clients.
const (
	ServerName    = "labextract-mcp-server-lite"
	ServerVersion = "v0.1.0"
)

// LiteServer is a lightweight MCP server that requires no external databases.
// It uses an in-memory result cache and SQLite for persistence.
type LiteServer struct {
	config    *litecfg.LiteConfig
	mcpServer *mcp.Server
	reports   *service.ReportService
	store     store.Store
	ownsStore bool
	logger    *logrus.Logger
}

// LiteServerOption is a functional option for LiteServer.
type LiteServerOption func(*LiteServer) error

// WithStore sets a custom entity store. The caller keeps ownership.
func WithStore(s store.Store) LiteServerOption {
	return func(srv *LiteServer) error {
		srv.store = s
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) LiteServerOption {
	return func(s *LiteServer) error {
		s.logger = logger
		return nil
	}
}

// NewLiteServer creates a new lightweight MCP server instance.
func NewLiteServer(cfg *litecfg.LiteConfig, opts ...LiteServerOption) (*LiteServer, error) {
	server := &LiteServer{config: cfg}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	if server.logger == nil {
		server.logger = logging.NewLogger(cfg.LoggingConfig())
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	engine, err := extraction.NewEngine(cfg.ExtractionConfig(), extraction.WithLogger(server.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction engine: %w", err)
	}

	if server.store == nil {
		s, err := store.NewSQLiteStore(cfg.StoreDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create entity store: %w", err)
		}
		server.store = s
		server.ownsStore = true
	}

	results := cache.NewWithClient(domain.CacheConfig{
		MaxItems:  cfg.CacheMaxItems,
		MemoryTTL: cfg.CacheTTL,
	}, nil, server.logger)

	var remote textract.Extractor
	if te := cfg.TextExtractionConfig(); te.BaseURL != "" {
		remote = textract.NewClient(te, server.logger)
	}

	server.reports = service.NewReportService(engine, cfg.ServiceConfig(),
		service.WithStore(server.store),
		service.WithCache(results),
		service.WithTextExtractor(textract.NewChain(remote)),
		service.WithLogger(server.logger),
	)

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	server.registerTools()

	server.logger.Info("Lite server initialized successfully")
	return server, nil
}

// Server returns the underlying MCP server, for in-process transports.
func (s *LiteServer) Server() *mcp.Server {
	return s.mcpServer
}

// Start serves MCP over stdio until ctx is cancelled or the client disconnects.
func (s *LiteServer) Start(ctx context.Context) error {
	s.logger.Info("Starting lab report extraction MCP server (lite)...")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close cleans up server resources.
func (s *LiteServer) Close() error {
	if s.ownsStore && s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close entity store")
			return err
		}
	}
	return nil
}
