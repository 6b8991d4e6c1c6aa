//go:build tools
// +build tools

// Package tools pins development tool dependencies so `go run` resolves
// them from go.mod.
package tools

import (
	// mockgen regenerates internal/mocks (go generate ./internal/mocks).
	_ "go.uber.org/mock/mockgen"
)
