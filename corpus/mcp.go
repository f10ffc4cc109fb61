package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/dlm/dataset"
	"github.com/hazyhaar/dlm/trainer"
)

// RegisterMCP registers the service tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerIngestTool(srv)
	s.registerDatasetTool(srv)
	s.registerTrainTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// addTool wires a typed handler with the shared decode/marshal/error plumbing.
func addTool[T any](srv *mcp.Server, tool *mcp.Tool, handler func(ctx context.Context, req *T) (any, error)) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r T
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				var res mcp.CallToolResult
				res.SetError(fmt.Errorf("invalid arguments: %w", err))
				return &res, nil
			}
		}

		resp, err := handler(ctx, &r)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(errors.New(err.Error()))
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

// --- ingest ---

type mcpIngestReq struct {
	Pairs     []Pair `json:"pairs"`
	PairsFile string `json:"pairs_file"`
}

func (s *Service) registerIngestTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "dlm_ingest",
		Description: "Ingest labeled documents into the catalog. Provide pairs inline or a csv/xlsx listing file.",
		InputSchema: inputSchema(map[string]any{
			"pairs": map[string]any{
				"type":        "array",
				"description": "Inline path/label pairs",
				"items": inputSchema(map[string]any{
					"path":  map[string]any{"type": "string"},
					"label": map[string]any{"type": "string"},
				}, []string{"path", "label"}),
			},
			"pairs_file": map[string]any{"type": "string", "description": "Path to a csv or xlsx listing of path,label rows"},
		}, nil),
	}

	addTool(srv, tool, func(ctx context.Context, req *mcpIngestReq) (any, error) {
		pairs := req.Pairs
		if req.PairsFile != "" {
			loaded, err := LoadPairs(req.PairsFile)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, loaded...)
		}
		if len(pairs) == 0 {
			return nil, errors.New("no pairs provided")
		}
		return s.Ingest(ctx, pairs)
	})
}

// --- dataset preview ---

type mcpDatasetReq struct {
	IncludeText bool `json:"include_text"`
	Limit       int  `json:"limit"`
}

func (s *Service) registerDatasetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "dlm_dataset_preview",
		Description: "Build the training dataset from the catalog and return its first rows.",
		InputSchema: inputSchema(map[string]any{
			"include_text": map[string]any{"type": "boolean", "description": "Include extracted text features"},
			"limit":        map[string]any{"type": "integer", "description": "Max rows to return (default 20)"},
		}, nil),
	}

	addTool(srv, tool, func(_ context.Context, req *mcpDatasetReq) (any, error) {
		rows, err := s.BuildDataset(dataset.FeatureConfig{IncludeText: req.IncludeText})
		if err != nil {
			return nil, err
		}
		limit := req.Limit
		if limit <= 0 {
			limit = 20
		}
		preview := rows
		if len(preview) > limit {
			preview = preview[:limit]
		}
		return map[string]any{"total": len(rows), "rows": preview}, nil
	})
}

// --- train ---

type mcpTrainReq struct {
	Seed         int64   `json:"seed"`
	TestFraction float64 `json:"test_fraction"`
	UseText      bool    `json:"use_text"`
}

func (s *Service) registerTrainTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "dlm_train",
		Description: "Train the baseline classifier on the current catalog and report accuracy and per-class metrics.",
		InputSchema: inputSchema(map[string]any{
			"seed":          map[string]any{"type": "integer", "description": "Split seed (default 0)"},
			"test_fraction": map[string]any{"type": "number", "description": "Held-out share (default 0.2)"},
			"use_text":      map[string]any{"type": "boolean", "description": "Use extracted text features"},
		}, nil),
	}

	addTool(srv, tool, func(_ context.Context, req *mcpTrainReq) (any, error) {
		res, err := s.Train(trainer.Config{
			Seed:         req.Seed,
			TestFraction: req.TestFraction,
			UseText:      req.UseText,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"model_id": res.ModelID,
			"classes":  res.Model.Classes,
			"features": len(res.Model.Vocab),
			"metrics":  res.Metrics,
		}, nil
	})
}
