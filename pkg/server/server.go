// Package server exposes the retrieval core over HTTP: direct search,
// log-derived search, and the tool-calling chat endpoint, plus the embedded
// single-page client.
//
// All request bounds are validated here, before the core is invoked;
// out-of-bounds values are rejected, never clamped.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dogy-web/oracle-agent/pkg/agent"
	"github.com/dogy-web/oracle-agent/pkg/browser"
	"github.com/dogy-web/oracle-agent/pkg/llm"
	"github.com/dogy-web/oracle-agent/pkg/logging"
	"github.com/dogy-web/oracle-agent/pkg/mos"
)

// Request bounds.
const (
	maxQueries     = 25
	maxPerQueryCap = 20
	defaultPerPage = 5
)

// Searcher is the search surface of the core.
type Searcher interface {
	Search(ctx context.Context, conversationID string, queries []string, maxPerQuery int) (*mos.SearchResponse, error)
	SearchFromLog(ctx context.Context, conversationID, logText string, maxQueries, maxPerQuery int) (*mos.SearchResponse, []string, error)
}

// Chatter runs one tool-dispatch chat turn.
type Chatter interface {
	Respond(ctx context.Context, conversationID string, messages []llm.Message) (*agent.Reply, error)
}

// Server wires the HTTP routes. chatter may be nil when no LLM is configured;
// the chat endpoint then reports the feature unavailable.
type Server struct {
	searcher Searcher
	chatter  Chatter
	log      *logging.Logger
	mux      *http.ServeMux
}

// New builds the server and its routes.
func New(searcher Searcher, chatter Chatter, log *logging.Logger) *Server {
	s := &Server{
		searcher: searcher,
		chatter:  chatter,
		log:      log,
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("POST /search", s.handleSearch)
	s.mux.HandleFunc("POST /search/log", s.handleLogSearch)
	s.mux.HandleFunc("POST /chat", s.handleChat)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Queries     []string `json:"queries"`
	MaxPerQuery *int     `json:"max_per_query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Queries) < 1 || len(req.Queries) > maxQueries {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("queries must contain 1..%d entries", maxQueries))
		return
	}
	for _, q := range req.Queries {
		if strings.TrimSpace(q) == "" {
			writeError(w, http.StatusUnprocessableEntity, "queries must not contain empty strings")
			return
		}
	}
	perQuery, ok := boundedDefault(req.MaxPerQuery, defaultPerPage, maxPerQueryCap)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("max_per_query must be 1..%d", maxPerQueryCap))
		return
	}

	resp, err := s.searcher.Search(r.Context(), mos.DefaultConversationID, req.Queries, perQuery)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	// The client consumes a bare result list for direct search.
	writeJSON(w, http.StatusOK, resp.Results)
}

type logSearchRequest struct {
	LogText     string `json:"log_text"`
	MaxQueries  *int   `json:"max_queries"`
	MaxPerQuery *int   `json:"max_per_query"`
}

func (s *Server) handleLogSearch(w http.ResponseWriter, r *http.Request) {
	var req logSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.LogText) == "" {
		writeError(w, http.StatusUnprocessableEntity, "log_text must not be empty")
		return
	}
	numQueries, ok := boundedDefault(req.MaxQueries, defaultPerPage, maxQueries)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("max_queries must be 1..%d", maxQueries))
		return
	}
	perQuery, ok := boundedDefault(req.MaxPerQuery, defaultPerPage, maxPerQueryCap)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("max_per_query must be 1..%d", maxPerQueryCap))
		return
	}

	resp, queries, err := s.searcher.SearchFromLog(r.Context(), mos.DefaultConversationID, req.LogText, numQueries, perQuery)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":           resp.Results,
		"generated_queries": queries,
	})
}

type chatMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.chatter == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured (missing OpenAI API key)")
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "messages must not be empty")
		return
	}

	messages := make([]llm.Message, 0, len(req.Messages))
	for i, m := range req.Messages {
		role := llm.Role(m.Role)
		switch role {
		case llm.RoleSystem, llm.RoleUser, llm.RoleAssistant, llm.RoleTool:
		default:
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("messages[%d] has invalid role %q", i, m.Role))
			return
		}
		if role == llm.RoleTool && m.ToolCallID == "" {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("messages[%d] with role tool requires tool_call_id", i))
			return
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content, ToolCallID: m.ToolCallID})
	}

	reply, err := s.chatter.Respond(r.Context(), mos.DefaultConversationID, messages)
	if err != nil {
		s.writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reply":     reply.Content,
		"exhausted": reply.Exhausted,
	})
}

// writeCoreError maps the core's typed failures to status codes. Only
// systemic failures reach this point; per-unit failures were already folded
// into result-shaped outcomes by the core.
func (s *Server) writeCoreError(w http.ResponseWriter, err error) {
	s.log.Errorf("request failed: %v", err)
	switch {
	case errors.Is(err, browser.ErrAuthenticationRequired),
		errors.Is(err, browser.ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, browser.ErrSessionUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; status is moot but 499-style close is unportable.
		writeError(w, http.StatusBadGateway, "request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// boundedDefault resolves an optional integer field: nil takes the default,
// values outside 1..max are rejected.
func boundedDefault(v *int, def, max int) (int, bool) {
	if v == nil {
		return def, true
	}
	if *v < 1 || *v > max {
		return 0, false
	}
	return *v, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
