package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/reachable/internal/fileproc"
	"github.com/panbanda/reachable/internal/output"
	"github.com/panbanda/reachable/internal/scanner"
	"github.com/panbanda/reachable/pkg/analyzer/reachability"
	"github.com/panbanda/reachable/pkg/ast"
)

// FindInput is the input of find_reachable.
type FindInput struct {
	Paths       []string `json:"paths,omitempty" jsonschema:"Documents or directories to analyze. Defaults to the current directory."`
	Format      string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
	Parallelism int      `json:"parallelism,omitempty" jsonschema:"Shard each traversal over this many goroutines. Defaults to the configured value."`
	IDsOnly     bool     `json:"ids_only,omitempty" jsonschema:"Return only the reachable node ids per document."`
}

// ExplainInput is the input of explain_reachable.
type ExplainInput struct {
	Document string `json:"document" jsonschema:"Path of the IR document to analyze."`
	Node     uint32 `json:"node,omitempty" jsonschema:"Node id to explain."`
	Cycles   bool   `json:"cycles,omitempty" jsonschema:"List groups of reachable nodes that reach each other."`
	Format   string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func getFormat(s string) output.Format {
	switch s {
	case "json":
		return output.FormatJSON
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := output.FormatData(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) analyzer(parallelism int) *reachability.Analyzer {
	if parallelism <= 0 {
		parallelism = s.config.Analysis.Parallelism
	}
	return reachability.New(
		reachability.WithParallelism(parallelism),
		reachability.WithCache(s.cache),
		reachability.WithLogger(s.logger),
		reachability.WithMaxFileSize(s.config.Analysis.MaxDocumentSize),
		reachability.WithSchemaValidation(s.config.Analysis.ValidateSchema),
	)
}

type findResult struct {
	Units   []*reachability.Unit `json:"units" toon:"units"`
	Summary reachability.Summary `json:"summary" toon:"summary"`
	Errors  []string             `json:"errors,omitempty" toon:"errors,omitempty"`
}

type unitIDs struct {
	File string       `json:"file" toon:"file"`
	IDs  []ast.NodeID `json:"ids" toon:"ids"`
}

func (s *Server) handleFindReachable(ctx context.Context, req *mcp.CallToolRequest, input FindInput) (*mcp.CallToolResult, any, error) {
	files, err := scanner.NewScanner(s.config).ScanPaths(getPaths(input.Paths))
	if err != nil {
		return toolError(err.Error())
	}
	if len(files) == 0 {
		return toolError("no documents found")
	}

	a := s.analyzer(input.Parallelism)
	defer a.Close()

	analysis, err := a.Analyze(ctx, files)
	var failures []string
	if err != nil {
		var perrs *fileproc.ProcessingErrors
		if !errors.As(err, &perrs) {
			return toolError(err.Error())
		}
		for _, pe := range perrs.Errors {
			failures = append(failures, pe.Error())
		}
		if len(analysis.Units) == 0 {
			return toolError(perrs.Error())
		}
	}

	if input.IDsOnly {
		ids := make([]unitIDs, 0, len(analysis.Units))
		for _, u := range analysis.Units {
			entry := unitIDs{File: u.File}
			if u.Set != nil {
				entry.IDs = u.Set.IDs()
			}
			ids = append(ids, entry)
		}
		return toolResult(ids, getFormat(input.Format))
	}
	return toolResult(findResult{
		Units:   analysis.Units,
		Summary: analysis.Summary,
		Errors:  failures,
	}, getFormat(input.Format))
}

type explainResult struct {
	Explanation *reachability.Explanation `json:"explanation,omitempty" toon:"explanation,omitempty"`
	Cycles      [][]reachability.Entry    `json:"cycles,omitempty" toon:"cycles,omitempty"`
}

func (s *Server) handleExplainReachable(ctx context.Context, req *mcp.CallToolRequest, input ExplainInput) (*mcp.CallToolResult, any, error) {
	if input.Document == "" {
		return toolError("document is required")
	}
	if input.Node == 0 && !input.Cycles {
		return toolError("set node, cycles, or both")
	}

	a := s.analyzer(0)
	defer a.Close()

	trace, err := a.Trace(ctx, input.Document)
	if err != nil {
		return toolError(err.Error())
	}

	var result explainResult
	if input.Node != 0 {
		id := ast.NodeID(input.Node)
		if _, ok := trace.Unit.Map.Find(id); !ok {
			return toolError(fmt.Sprintf("node %d does not exist in %s", id, input.Document))
		}
		result.Explanation = trace.Explain(id)
	}
	if input.Cycles {
		result.Cycles = trace.Cycles()
	}
	return toolResult(result, getFormat(input.Format))
}
