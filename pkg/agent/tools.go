package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dogy-web/oracle-agent/pkg/llm"
	"github.com/dogy-web/oracle-agent/pkg/mos"
)

// Tool names. The set is fixed; the model cannot request anything else.
const (
	ToolSearchMOS        = "search_mos"
	ToolSearchMOSFromLog = "search_mos_from_log"
	ToolGetDocument      = "get_document"
)

// Retriever is the portal capability surface the dispatch loop drives.
// Implemented by mos.Pipeline; faked in tests.
type Retriever interface {
	Search(ctx context.Context, conversationID string, queries []string, maxPerQuery int) (*mos.SearchResponse, error)
	SearchFromLog(ctx context.Context, conversationID, logText string, maxQueries, maxPerQuery int) (*mos.SearchResponse, []string, error)
	GetDocument(ctx context.Context, conversationID, docID string) (*mos.Document, error)
}

// toolDefinitions returns the fixed tool schema submitted with every chat
// turn.
func toolDefinitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        ToolSearchMOS,
			Description: "Search My Oracle Support for specific error codes or phrases.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"queries": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"minItems":    1,
						"maxItems":    5,
						"description": "List of focused MOS search queries.",
					},
					"max_per_query": map[string]interface{}{
						"type":    "integer",
						"minimum": 1,
						"maximum": mos.ResultsPerQueryLimit,
						"default": 5,
					},
				},
				"required": []string{"queries"},
			},
		},
		{
			Name:        ToolSearchMOSFromLog,
			Description: "Derive MOS searches from a raw log snippet.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"log_text": map[string]interface{}{"type": "string"},
					"max_queries": map[string]interface{}{
						"type":    "integer",
						"minimum": 1,
						"maximum": 25,
						"default": 5,
					},
					"max_per_query": map[string]interface{}{
						"type":    "integer",
						"minimum": 1,
						"maximum": mos.ResultsPerQueryLimit,
						"default": 5,
					},
				},
				"required": []string{"log_text"},
			},
		},
		{
			Name:        ToolGetDocument,
			Description: "Retrieve the full content of a specific Oracle Support document by its Doc ID.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"doc_id": map[string]interface{}{
						"type":        "string",
						"description": "The Doc ID of the Oracle Support document to retrieve.",
					},
				},
				"required": []string{"doc_id"},
			},
		},
	}
}

type searchArgs struct {
	Queries     []string `json:"queries"`
	MaxPerQuery int      `json:"max_per_query"`
}

type logSearchArgs struct {
	LogText     string `json:"log_text"`
	MaxQueries  int    `json:"max_queries"`
	MaxPerQuery int    `json:"max_per_query"`
}

type documentArgs struct {
	DocID string `json:"doc_id"`
}

// executeTool runs one tool call and serializes its outcome as the tool
// message text. Failures never propagate as errors: a typed failure becomes
// the tool's result so the model can adapt (retry a narrower query, pick a
// different document) instead of the turn aborting.
func (a *Agent) executeTool(ctx context.Context, conversationID string, call llm.ToolCall) string {
	result, err := a.dispatch(ctx, conversationID, call)
	if err != nil {
		a.log.Warnf("tool %s failed: %v", call.Name, err)
		return serializeToolError(err)
	}
	return result
}

func (a *Agent) dispatch(ctx context.Context, conversationID string, call llm.ToolCall) (string, error) {
	switch call.Name {
	case ToolSearchMOS:
		var args searchArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid %s arguments: %w", call.Name, err)
		}
		if len(args.Queries) == 0 {
			return "", fmt.Errorf("%s requires at least one query", call.Name)
		}
		if args.MaxPerQuery <= 0 {
			args.MaxPerQuery = 5
		}
		resp, err := a.retriever.Search(ctx, conversationID, args.Queries, args.MaxPerQuery)
		if err != nil {
			return "", err
		}
		return marshalResult(resp)

	case ToolSearchMOSFromLog:
		var args logSearchArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid %s arguments: %w", call.Name, err)
		}
		if args.LogText == "" {
			return "", fmt.Errorf("%s requires log_text", call.Name)
		}
		if args.MaxQueries <= 0 {
			args.MaxQueries = 5
		}
		if args.MaxPerQuery <= 0 {
			args.MaxPerQuery = 5
		}
		resp, queries, err := a.retriever.SearchFromLog(ctx, conversationID, args.LogText, args.MaxQueries, args.MaxPerQuery)
		if err != nil {
			return "", err
		}
		return marshalResult(map[string]interface{}{
			"results":           resp.Results,
			"generated_queries": queries,
		})

	case ToolGetDocument:
		var args documentArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid %s arguments: %w", call.Name, err)
		}
		doc, err := a.retriever.GetDocument(ctx, conversationID, args.DocID)
		if err != nil {
			return "", err
		}
		return marshalResult(doc)

	default:
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
}

func marshalResult(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize tool result: %w", err)
	}
	return string(data), nil
}

// serializeToolError renders a failure as the tool's JSON result.
func serializeToolError(err error) string {
	data, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		return `{"error":"tool execution failed"}`
	}
	return string(data)
}
