package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reachable/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start an MCP (Model Context Protocol) server over stdio",
		Description: `Exposes the reachability pass as tools an LLM client can invoke.

To use with a desktop client, add to its config:
  {
    "mcpServers": {
      "reachable": {
        "command": "reachable",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - find_reachable      Reachable node sets of IR documents
  - explain_reachable   Why a node is reachable, and recursion cycles`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the server manifest as JSON",
				Action: runMCPManifest,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	// stdout carries the protocol; logs go to stderr
	logger, err := newLogger(c, cfg)
	if err != nil {
		return err
	}
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return mcpserver.NewServer(version, cfg, logger).Run(ctx)
}

func runMCPManifest(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(append(data, '\n'))
	return err
}
