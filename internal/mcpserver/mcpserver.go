// Package mcpserver exposes reachability analysis over the Model Context
// Protocol.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/reachable/internal/cache"
	"github.com/panbanda/reachable/pkg/config"
)

// Server wraps the MCP server and the configuration its tools run with.
type Server struct {
	server *mcp.Server
	config *config.Config
	cache  *cache.Cache
	logger *slog.Logger
}

// NewServer creates a server with every tool and prompt registered. A nil
// cfg selects the defaults; a nil logger discards.
func NewServer(version string, cfg *config.Config, logger *slog.Logger) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, cfg.Cache.Enabled)
	if err != nil {
		logger.Warn("cache disabled", "dir", cfg.Cache.Dir, "err", err)
		c = nil
	}

	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: "reachable", Version: version}, nil),
		config: cfg,
		cache:  c,
		logger: logger,
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_reachable",
		Description: describeFind(),
	}, s.handleFindReachable)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "explain_reachable",
		Description: describeExplain(),
	}, s.handleExplainReachable)
}
