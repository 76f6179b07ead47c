package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/jaycli/jay/internal/model/contract"
)

// Conversation owns the ordered message log for one chat session. It is
// append-only during a turn; the orchestrator holds exclusive mutation
// rights while a turn runs, everyone else gets copies.
type Conversation struct {
	messages []contract.Message
	turnMark int
}

func New(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.messages = append(c.messages, contract.Message{
			Role:    contract.RoleSystem,
			Content: systemPrompt,
		})
	}
	c.turnMark = len(c.messages)
	return c
}

func (c *Conversation) AddUser(content string) {
	c.messages = append(c.messages, contract.Message{Role: contract.RoleUser, Content: content})
}

func (c *Conversation) AddAssistant(content string, toolCalls []*contract.ToolCall) {
	c.messages = append(c.messages, contract.Message{
		Role:      contract.RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
}

func (c *Conversation) AddToolResult(result contract.ToolResult) {
	c.messages = append(c.messages, contract.Message{
		Role:       contract.RoleTool,
		Content:    result.Output,
		ToolCallID: result.ToolCallID,
	})
}

// Messages returns a copy of the log; safe to hand to the model client or
// the transcript exporter while a turn is idle.
func (c *Conversation) Messages() []contract.Message {
	out := make([]contract.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// MarkTurn records the current length as the rollback point for the turn
// about to start.
func (c *Conversation) MarkTurn() {
	c.turnMark = len(c.messages)
}

// RewindTo truncates back to a length captured earlier in the turn. Used
// when an interrupted stream abandons uncommitted assistant text; fully
// committed tool-result rounds before that point stay.
func (c *Conversation) RewindTo(n int) {
	if n < c.turnMark {
		n = c.turnMark
	}
	if n < len(c.messages) {
		c.messages = c.messages[:n]
	}
}

// ExportJSONL renders one JSON object per message, one line per message,
// in conversation order — the transcript interchange format.
func (c *Conversation) ExportJSONL() ([]byte, error) {
	var out []byte
	for _, m := range c.messages {
		line, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("marshal message: %w", err)
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out, nil
}

// LoadJSONL replaces the log with messages parsed from transcript lines.
func LoadJSONL(lines []string) (*Conversation, error) {
	c := &Conversation{}
	for i, line := range lines {
		if line == "" {
			continue
		}
		var m contract.Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("parse transcript line %d: %w", i+1, err)
		}
		c.messages = append(c.messages, m)
	}
	c.turnMark = len(c.messages)
	return c, nil
}

// ValidateToolLinkage checks the protocol invariant: every tool-role
// message must reference a tool_call_id emitted by the immediately
// preceding assistant message.
func ValidateToolLinkage(messages []contract.Message) error {
	var pending map[string]bool
	for i, m := range messages {
		switch m.Role {
		case contract.RoleAssistant:
			pending = make(map[string]bool, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				pending[tc.ID] = true
			}
		case contract.RoleTool:
			if !pending[m.ToolCallID] {
				return fmt.Errorf("message %d: tool result %q has no matching tool call in the preceding assistant message", i, m.ToolCallID)
			}
		default:
			pending = nil
		}
	}
	return nil
}
