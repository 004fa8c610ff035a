// Package agent implements the tool-dispatch loop: it drives the LLM
// conversation, executes requested portal tools, appends their results, and
// loops until the model answers or the round cap is hit.
package agent

import (
	"context"
	"fmt"

	"github.com/dogy-web/oracle-agent/pkg/llm"
	"github.com/dogy-web/oracle-agent/pkg/logging"
	"github.com/dogy-web/oracle-agent/pkg/mos"
)

// State of the dispatch loop. Transitions are
// planning -> executing_tools -> planning -> ... -> answered | exhausted.
type State string

const (
	StatePlanning       State = "planning"
	StateExecutingTools State = "executing_tools"
	StateAnswered       State = "answered"
	StateExhausted      State = "exhausted"
)

// DefaultMaxRounds caps submit/response cycles per chat turn. The cap is the
// system's cancellation mechanism for unbounded planning.
const DefaultMaxRounds = 6

// Reply is the outcome of one chat turn.
type Reply struct {
	// Content is the assistant's final text, or the best-available partial
	// answer when the round cap was hit.
	Content string

	// Rounds is the number of submit/response cycles consumed.
	Rounds int

	// State is the terminal state: StateAnswered or StateExhausted.
	State State

	// Exhausted is set when the round cap terminated the loop.
	Exhausted bool
}

// Agent runs the dispatch loop against an LLM provider and a retriever.
type Agent struct {
	provider  llm.Provider
	retriever Retriever
	tokenizer *llm.Tokenizer
	cache     *mos.ResultCache
	maxRounds int
	log       *logging.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithMaxRounds overrides the round cap.
func WithMaxRounds(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxRounds = n
		}
	}
}

// WithTokenizer enables per-round token accounting in the logs.
func WithTokenizer(t *llm.Tokenizer) Option {
	return func(a *Agent) {
		a.tokenizer = t
	}
}

// WithResultCache surfaces the conversation's most recent search and fetched
// document into each turn's context, so a follow-up question about "the last
// search" is answered from the cache instead of re-driving the browser.
func WithResultCache(cache *mos.ResultCache) Option {
	return func(a *Agent) {
		a.cache = cache
	}
}

// New creates an agent. log must be non-nil; provider and retriever are the
// two collaborators every turn exercises.
func New(provider llm.Provider, retriever Retriever, log *logging.Logger, opts ...Option) *Agent {
	a := &Agent{
		provider:  provider,
		retriever: retriever,
		maxRounds: DefaultMaxRounds,
		log:       log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Respond runs one chat turn to a terminal state.
//
// Each round submits the conversation plus the fixed tool schema. A response
// with zero tool calls is the final answer. Otherwise every tool call is
// executed in order, each result appended as exactly one tool message keyed by
// its call id, and the augmented conversation resubmitted. Hitting the round
// cap terminates with the best-available partial answer and Exhausted set;
// the loop can never run unbounded.
func (a *Agent) Respond(ctx context.Context, conversationID string, messages []llm.Message) (*Reply, error) {
	conversation := a.withContext(conversationID, withSystemPrompt(messages))
	var lastContent string

	for round := 1; round <= a.maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if a.tokenizer != nil {
			a.log.Debugf("round %d: state=%s prompt_tokens=%d", round, StatePlanning, a.tokenizer.CountMessages(conversation))
		}

		response, err := a.provider.Complete(ctx, conversation, toolDefinitions())
		if err != nil {
			return nil, fmt.Errorf("llm completion failed: %w", err)
		}
		if response.Content != "" {
			lastContent = response.Content
		}

		if len(response.ToolCalls) == 0 {
			a.log.Infof("turn answered in %d round(s)", round)
			return &Reply{Content: response.Content, Rounds: round, State: StateAnswered}, nil
		}

		a.log.Infof("round %d: state=%s, %d tool call(s)", round, StateExecutingTools, len(response.ToolCalls))
		conversation = append(conversation, *response)
		for _, call := range response.ToolCalls {
			result := a.executeTool(ctx, conversationID, call)
			conversation = append(conversation, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	a.log.Warnf("turn exhausted after %d rounds", a.maxRounds)
	if lastContent == "" {
		lastContent = "I could not finish researching this within the allowed number of tool rounds. The partial results gathered so far are in the search history above."
	}
	return &Reply{Content: lastContent, Rounds: a.maxRounds, State: StateExhausted, Exhausted: true}, nil
}
