// Package mcp provides an MCP (Model Context Protocol) server adapter
// for policykb. It enables AI assistants like Claude to query the
// loaded policy knowledge base.
package mcp

import "errors"

// ErrMissingKBService is returned when the KB service is not provided.
var ErrMissingKBService = errors.New("mcp: kb service is required")
