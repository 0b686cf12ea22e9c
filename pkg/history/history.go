// Package history keeps the conversation sent to the model between questions.
package history

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tmc/langchaingo/llms"
)

// Mode selects how much of the earlier conversation a question sees.
type Mode string

const (
	// ModeHistory sends every earlier question and answer with each question.
	ModeHistory Mode = "history"
	// ModeIsolated sends each question with only the system prompt.
	ModeIsolated Mode = "isolated"
)

const fallbackEncoding = "cl100k_base"

// TokenCounter counts the tokens of a message text.
type TokenCounter interface {
	Count(text string) int
}

type turn struct {
	question string
	answer   string
	tokens   int
}

// Conversation holds the system prompt and the answered turns. It is not safe
// for concurrent use.
type Conversation struct {
	system    string
	mode      Mode
	maxTokens int
	counter   TokenCounter
	turns     []turn
	dropped   int
}

// New creates a Conversation. A maxTokens of 0 or a nil counter disables truncation.
func New(systemPrompt string, mode Mode, maxTokens int, counter TokenCounter) *Conversation {
	if mode == "" {
		mode = ModeHistory
	}
	return &Conversation{
		system:    systemPrompt,
		mode:      mode,
		maxTokens: maxTokens,
		counter:   counter,
	}
}

// Messages returns the messages to send for question. When a token budget is
// set, the oldest turns are dropped until the conversation fits; the system
// prompt and the question itself are always sent.
func (c *Conversation) Messages(question string) []llms.MessageContent {
	c.truncate(question)

	messages := make([]llms.MessageContent, 0, 2+2*len(c.turns))
	if c.system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, c.system))
	}
	for _, t := range c.turns {
		messages = append(messages,
			llms.TextParts(llms.ChatMessageTypeHuman, t.question),
			llms.TextParts(llms.ChatMessageTypeAI, t.answer),
		)
	}
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, question))
}

// Add records an answered question. It is a no-op in isolated mode.
func (c *Conversation) Add(question, answer string) {
	if c.mode == ModeIsolated {
		return
	}
	t := turn{question: question, answer: answer}
	if c.counter != nil {
		t.tokens = c.counter.Count(question) + c.counter.Count(answer)
	}
	c.turns = append(c.turns, t)
}

// Len returns the number of turns kept.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Dropped returns the number of turns removed to stay within the token budget.
func (c *Conversation) Dropped() int {
	return c.dropped
}

func (c *Conversation) truncate(question string) {
	if c.maxTokens <= 0 || c.counter == nil {
		return
	}
	total := c.counter.Count(c.system) + c.counter.Count(question)
	for _, t := range c.turns {
		total += t.tokens
	}
	n := 0
	for n < len(c.turns) && total > c.maxTokens {
		total -= c.turns[n].tokens
		n++
	}
	c.turns = c.turns[n:]
	c.dropped += n
}

// TiktokenCounter counts tokens with the BPE encoding of a model.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter returns a counter for model, falling back to cl100k_base
// for models tiktoken does not know (local models usually).
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s encoding: %w", fallbackEncoding, err)
		}
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}
