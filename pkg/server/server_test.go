package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dogy-web/oracle-agent/pkg/agent"
	"github.com/dogy-web/oracle-agent/pkg/browser"
	"github.com/dogy-web/oracle-agent/pkg/llm"
	"github.com/dogy-web/oracle-agent/pkg/logging"
	"github.com/dogy-web/oracle-agent/pkg/mos"
)

type fakeSearcher struct {
	queries    []string
	perQuery   int
	maxQueries int
	logText    string
	searchErr  error
	derived    []string
	lastConvID string
}

func (f *fakeSearcher) Search(_ context.Context, conversationID string, queries []string, maxPerQuery int) (*mos.SearchResponse, error) {
	f.lastConvID = conversationID
	f.queries = queries
	f.perQuery = maxPerQuery
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &mos.SearchResponse{
		Results: []mos.SearchResult{{DocID: "1.1", Title: "Note", Query: queries[0]}},
		Queries: queries,
	}, nil
}

func (f *fakeSearcher) SearchFromLog(_ context.Context, conversationID, logText string, maxQueries, maxPerQuery int) (*mos.SearchResponse, []string, error) {
	f.lastConvID = conversationID
	f.logText = logText
	f.maxQueries = maxQueries
	f.perQuery = maxPerQuery
	if f.searchErr != nil {
		return nil, nil, f.searchErr
	}
	f.derived = []string{"ORA-00600"}
	return &mos.SearchResponse{Results: []mos.SearchResult{{DocID: "2.1"}}}, f.derived, nil
}

type fakeChatter struct {
	messages []llm.Message
	reply    *agent.Reply
	err      error
}

func (f *fakeChatter) Respond(_ context.Context, _ string, messages []llm.Message) (*agent.Reply, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTestServer(t *testing.T, searcher Searcher, chatter Chatter) http.Handler {
	t.Helper()
	log, _ := logging.NewLogger("test")
	return New(searcher, chatter, log).Handler()
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	handler := newTestServer(t, &fakeSearcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexServesClient(t *testing.T) {
	handler := newTestServer(t, &fakeSearcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<html")
}

func TestSearchReturnsBareResultList(t *testing.T) {
	searcher := &fakeSearcher{}
	handler := newTestServer(t, searcher, nil)

	rec := postJSON(t, handler, "/search", `{"queries":["ORA-00600"],"max_per_query":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ORA-00600"}, searcher.queries)
	assert.Equal(t, 3, searcher.perQuery)
	assert.Equal(t, mos.DefaultConversationID, searcher.lastConvID)

	// The response body is the result array itself, not a wrapper object.
	var results []mos.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "1.1", results[0].DocID)
}

func TestSearchDefaultsPerQuery(t *testing.T) {
	searcher := &fakeSearcher{}
	handler := newTestServer(t, searcher, nil)

	rec := postJSON(t, handler, "/search", `{"queries":["q"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, searcher.perQuery)
}

func TestSearchValidation(t *testing.T) {
	tooMany := make([]string, 26)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("q%d", i)
	}
	tooManyJSON, _ := json.Marshal(map[string]interface{}{"queries": tooMany})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"queries":`, want: http.StatusBadRequest},
		{name: "missing queries", body: `{}`, want: http.StatusUnprocessableEntity},
		{name: "empty queries", body: `{"queries":[]}`, want: http.StatusUnprocessableEntity},
		{name: "blank query string", body: `{"queries":["ok","  "]}`, want: http.StatusUnprocessableEntity},
		{name: "too many queries", body: string(tooManyJSON), want: http.StatusUnprocessableEntity},
		{name: "zero per query", body: `{"queries":["q"],"max_per_query":0}`, want: http.StatusUnprocessableEntity},
		{name: "per query above cap", body: `{"queries":["q"],"max_per_query":21}`, want: http.StatusUnprocessableEntity},
		{name: "per query at cap", body: `{"queries":["q"],"max_per_query":20}`, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			handler := newTestServer(t, searcher, nil)

			rec := postJSON(t, handler, "/search", tt.body)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.NotEmpty(t, body["detail"])
				assert.Empty(t, searcher.queries, "rejected requests never reach the core")
			}
		})
	}
}

func TestLogSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	handler := newTestServer(t, searcher, nil)

	rec := postJSON(t, handler, "/search/log", `{"log_text":"ORA-00600: internal error","max_queries":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ORA-00600: internal error", searcher.logText)
	assert.Equal(t, 2, searcher.maxQueries)
	assert.Equal(t, 5, searcher.perQuery)

	var body struct {
		Results          []mos.SearchResult `json:"results"`
		GeneratedQueries []string           `json:"generated_queries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"ORA-00600"}, body.GeneratedQueries)
	require.Len(t, body.Results, 1)
}

func TestLogSearchValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty log text", body: `{"log_text":"  "}`, want: http.StatusUnprocessableEntity},
		{name: "max queries above cap", body: `{"log_text":"x","max_queries":26}`, want: http.StatusUnprocessableEntity},
		{name: "max queries at cap", body: `{"log_text":"x","max_queries":25}`, want: http.StatusOK},
		{name: "negative per query", body: `{"log_text":"x","max_per_query":-1}`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestServer(t, &fakeSearcher{}, nil)
			rec := postJSON(t, handler, "/search/log", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestChat(t *testing.T) {
	chatter := &fakeChatter{reply: &agent.Reply{Content: "See Doc ID 1.1.", State: agent.StateAnswered}}
	handler := newTestServer(t, &fakeSearcher{}, chatter)

	rec := postJSON(t, handler, "/chat", `{"messages":[{"role":"user","content":"what is ORA-00600?"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"See Doc ID 1.1.","exhausted":false}`, rec.Body.String())
	require.Len(t, chatter.messages, 1)
	assert.Equal(t, llm.RoleUser, chatter.messages[0].Role)
}

func TestChatExhaustedFlag(t *testing.T) {
	chatter := &fakeChatter{reply: &agent.Reply{Content: "partial", Exhausted: true, State: agent.StateExhausted}}
	handler := newTestServer(t, &fakeSearcher{}, chatter)

	rec := postJSON(t, handler, "/chat", `{"messages":[{"role":"user","content":"go"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply":"partial","exhausted":true}`, rec.Body.String())
}

func TestChatUnavailableWithoutChatter(t *testing.T) {
	handler := newTestServer(t, &fakeSearcher{}, nil)

	rec := postJSON(t, handler, "/chat", `{"messages":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestChatValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no messages", body: `{"messages":[]}`},
		{name: "invalid role", body: `{"messages":[{"role":"wizard","content":"x"}]}`},
		{name: "tool without call id", body: `{"messages":[{"role":"tool","content":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatter := &fakeChatter{reply: &agent.Reply{}}
			handler := newTestServer(t, &fakeSearcher{}, chatter)

			rec := postJSON(t, handler, "/chat", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Nil(t, chatter.messages)
		})
	}
}

func TestChatToolMessageAccepted(t *testing.T) {
	chatter := &fakeChatter{reply: &agent.Reply{Content: "ok"}}
	handler := newTestServer(t, &fakeSearcher{}, chatter)

	body := `{"messages":[
		{"role":"user","content":"go"},
		{"role":"assistant","content":""},
		{"role":"tool","content":"{}","tool_call_id":"call_1"}
	]}`
	rec := postJSON(t, handler, "/chat", body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, chatter.messages, 3)
	assert.Equal(t, "call_1", chatter.messages[2].ToolCallID)
}

func TestCoreErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "authentication required", err: browser.ErrAuthenticationRequired, want: http.StatusUnauthorized},
		{name: "authentication failed", err: fmt.Errorf("wrapped: %w", browser.ErrAuthenticationFailed), want: http.StatusUnauthorized},
		{name: "session unavailable", err: browser.ErrSessionUnavailable, want: http.StatusBadGateway},
		{name: "cancelled", err: context.Canceled, want: http.StatusBadGateway},
		{name: "unexpected", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{searchErr: tt.err}
			handler := newTestServer(t, searcher, nil)

			rec := postJSON(t, handler, "/search", `{"queries":["q"]}`)

			assert.Equal(t, tt.want, rec.Code)
			assert.True(t, strings.Contains(rec.Header().Get("Content-Type"), "application/json"))
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestServer(t, &fakeSearcher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
