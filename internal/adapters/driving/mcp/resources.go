package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for policykb resources.
	uriScheme = "policykb://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource describing the loaded knowledge base.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "kb",
		Name:        "kb",
		Description: "Summary of the loaded knowledge base",
		MIMEType:    "application/json",
	}, s.handleKBResource)

	// Template for chunk content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "kb/chunks/{chunkId}",
		Name:        "kb-chunk",
		Description: "Text of a specific knowledge-base chunk",
		MIMEType:    "text/plain",
	}, s.handleChunkResource)
}

// handleKBResource returns a summary of the loaded bundle.
func (s *Server) handleKBResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	bundle := s.ports.KB.Bundle()

	type chunkInfo struct {
		ID    int    `json:"id"`
		Kind  string `json:"kind"`
		Label string `json:"label"`
	}
	type kbInfo struct {
		KBName      string      `json:"kb_name"`
		KBHash      string      `json:"kb_hash,omitempty"`
		KBUpdatedAt string      `json:"kb_updated_at,omitempty"`
		ChunksTotal int         `json:"chunks_total"`
		Mode        string      `json:"mode"`
		Chunks      []chunkInfo `json:"chunks"`
	}

	info := kbInfo{Mode: string(s.ports.KB.Mode()), Chunks: []chunkInfo{}}
	if bundle != nil {
		info.KBName = bundle.KBName
		info.KBHash = bundle.KBHash
		info.KBUpdatedAt = bundle.KBUpdatedAt
		info.ChunksTotal = bundle.ChunksTotal
		for _, chunk := range bundle.Chunks {
			info.Chunks = append(info.Chunks, chunkInfo{
				ID:    chunk.ID,
				Kind:  string(chunk.Kind),
				Label: chunk.Label,
			})
		}
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling kb summary: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleChunkResource returns the text of a specific chunk.
func (s *Server) handleChunkResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	chunkID, ok := extractChunkID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	bundle := s.ports.KB.Bundle()
	if bundle == nil || chunkID < 0 || chunkID >= len(bundle.Chunks) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunk := bundle.Chunks[chunkID]
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     chunk.Label + "\n\n" + chunk.Text,
		}},
	}, nil
}

// extractChunkID extracts the chunk ID from a URI like policykb://kb/chunks/{chunkId}.
func extractChunkID(uri string) (int, bool) {
	const prefix = uriScheme + "kb/chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return 0, false
	}
	return id, true
}
