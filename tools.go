//go:build tools

// Package tools pins the versions of lint and vulnerability tooling.
package tools

import (
	_ "github.com/golangci/golangci-lint/cmd/golangci-lint"
	_ "golang.org/x/vuln/cmd/govulncheck"
)
