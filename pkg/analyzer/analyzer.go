// Package analyzer defines the contract shared by the file-based analyzers.
package analyzer

import "context"

// FileAnalyzer is the interface that all file-based analyzers implement.
type FileAnalyzer[T any] interface {
	// Analyze processes a collection of files and returns the analysis result.
	// The context is used for cancellation and per-file deadlines.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
