package llm

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// messageOverheadTokens approximates the per-message framing cost of the chat
// format.
const messageOverheadTokens = 4

// Tokenizer counts tokens for logging and round accounting in the dispatch
// loop. Counts are estimates; they are never used to truncate content.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer builds a tokenizer for the given model, falling back to the
// cl100k_base encoding for models tiktoken does not know.
func NewTokenizer(model string) (*Tokenizer, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer encoding: %w", err)
		}
	}
	return &Tokenizer{encoding: encoding}, nil
}

// CountTokens returns the token count of a single string.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// CountMessages estimates the prompt size of a conversation, including
// tool-call payloads.
func (t *Tokenizer) CountMessages(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += messageOverheadTokens
		total += t.CountTokens(m.Content)
		for _, call := range m.ToolCalls {
			total += t.CountTokens(call.Name)
			total += t.CountTokens(call.Arguments)
		}
	}
	return total
}
