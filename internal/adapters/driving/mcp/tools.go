package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question to find policy evidence for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 4)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []RetrieveResultOutput `json:"results"`
	Count   int                    `json:"count"`
	Sources string                 `json:"sources,omitempty"`
	Reason  string                 `json:"reason"`
}

// RetrieveResultOutput represents a single retrieved chunk.
type RetrieveResultOutput struct {
	ChunkID      int      `json:"chunk_id"`
	Label        string   `json:"label"`
	Text         string   `json:"text"`
	Score        float64  `json:"score"`
	Overlap      int      `json:"overlap"`
	MatchType    string   `json:"match_type"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// LoadKBInput is the input schema for the load_kb tool.
type LoadKBInput struct {
	Text      string `json:"text" jsonschema:"the raw policy document text"`
	Name      string `json:"name,omitempty" jsonschema:"display name for the knowledge base"`
	UpdatedAt string `json:"updated_at,omitempty" jsonschema:"opaque freshness marker echoed back"`
}

// LoadKBOutput is the output schema for the load_kb tool.
type LoadKBOutput struct {
	KBName      string `json:"kb_name"`
	KBHash      string `json:"kb_hash"`
	KBUpdatedAt string `json:"kb_updated_at,omitempty"`
	ChunksTotal int    `json:"chunks_total"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the policy chunks most relevant to a question",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_kb",
		Description: "Load raw policy text as the active knowledge base",
	}, s.handleLoadKB)
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	results, err := s.ports.KB.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]RetrieveResultOutput, len(results)),
		Count:   len(results),
		Reason:  s.ports.KB.LastDebug().Reason,
	}
	for i := range results {
		output.Results[i] = RetrieveResultOutput{
			ChunkID:      results[i].Chunk.ID,
			Label:        results[i].Chunk.Label,
			Text:         results[i].Chunk.Text,
			Score:        results[i].Score,
			Overlap:      results[i].Overlap,
			MatchType:    string(results[i].MatchType),
			MatchedTerms: results[i].MatchedTerms,
		}
	}
	if view, err := s.ports.KB.CompactSources(results, 0); err == nil && view.Line != "" {
		output.Sources = view.Line
	}

	return nil, output, nil
}

// handleLoadKB handles the load_kb tool invocation.
func (s *Server) handleLoadKB(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadKBInput,
) (*mcp.CallToolResult, LoadKBOutput, error) {
	bundle, err := s.ports.KB.LoadKB(ctx, input.Text, input.Name, input.UpdatedAt)
	if err != nil {
		return nil, LoadKBOutput{}, err
	}

	return nil, LoadKBOutput{
		KBName:      bundle.KBName,
		KBHash:      bundle.KBHash,
		KBUpdatedAt: bundle.KBUpdatedAt,
		ChunksTotal: bundle.ChunksTotal,
	}, nil
}
