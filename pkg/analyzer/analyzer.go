// Package analyzer defines the contract shared by batch document analyzers
// and the progress plumbing they report through.
package analyzer

import "context"

// FileAnalyzer processes a batch of documents into a single result.
type FileAnalyzer[T any] interface {
	// Analyze processes files and returns the combined result. Cancelling ctx
	// stops documents that have not started yet.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
