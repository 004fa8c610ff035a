package agent

import (
	"fmt"
	"strings"

	"github.com/dogy-web/oracle-agent/pkg/llm"
	"github.com/dogy-web/oracle-agent/pkg/mos"
)

// systemPrompt grounds the assistant: answers come from retrieved portal
// content, not from memory, and the tools are the only way to retrieve.
const systemPrompt = `You are a support-research assistant for My Oracle Support (MOS).

You answer questions about Oracle errors and issues using the provided tools:
- search_mos: search the MOS knowledge base with focused queries (error codes, short phrases).
- search_mos_from_log: derive searches from a raw log snippet the user pasted.
- get_document: fetch the full text of a specific document by its Doc ID.

Ground every answer in documents you actually retrieved during this conversation. Cite Doc IDs when you reference a document. If searches return nothing useful, say so instead of guessing. Keep answers concise and actionable.`

// withSystemPrompt prepends the system prompt unless the caller supplied one.
func withSystemPrompt(messages []llm.Message) []llm.Message {
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			return messages
		}
	}
	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	return append(out, messages...)
}

// withContext inserts the conversation's cached retrievals after the system
// prompt. HTTP chat history carries only user/assistant text, so without this
// a follow-up about "the last search" would have to re-drive the browser.
func (a *Agent) withContext(conversationID string, messages []llm.Message) []llm.Message {
	if a.cache == nil {
		return messages
	}
	search, doc := a.cache.Get(conversationID)
	if search == nil && doc == nil {
		return messages
	}

	ctxMsg := llm.Message{Role: llm.RoleSystem, Content: retrievalContext(search, doc)}
	at := 0
	if len(messages) > 0 && messages[0].Role == llm.RoleSystem {
		at = 1
	}
	out := make([]llm.Message, 0, len(messages)+1)
	out = append(out, messages[:at]...)
	out = append(out, ctxMsg)
	return append(out, messages[at:]...)
}

// retrievalContext renders the cached search and document as prompt text.
func retrievalContext(search *mos.SearchResponse, doc *mos.Document) string {
	var b strings.Builder
	b.WriteString("Already retrieved earlier in this conversation. Use this when the user refers back to it; only call tools again for new information.\n")

	if search != nil {
		fmt.Fprintf(&b, "\nLast search (queries: %s):\n", strings.Join(search.Queries, ", "))
		if len(search.Results) == 0 {
			b.WriteString("no results\n")
		}
		for _, r := range search.Results {
			fmt.Fprintf(&b, "- Doc ID %s: %s\n", r.DocID, r.Title)
		}
	}

	if doc != nil {
		fmt.Fprintf(&b, "\nLast fetched document (Doc ID %s): %s\n%s\n", doc.DocID, doc.Title, doc.Body)
	}

	return b.String()
}
