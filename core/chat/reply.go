package chat

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/trezcool/edutrack/core"
)

const replySource = "planner reply"

// PlannedTask is a task the assistant scheduled on a given date.
type PlannedTask struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	OriginalDeadline string `json:"original_deadline"`
}

// Reply is the structured answer of the planner.
type Reply struct {
	AssistantMessage string                   `json:"assistant_message"`
	Explain          string                   `json:"explain"`
	Dates            map[string][]PlannedTask `json:"DATES"`
}

type completion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseReply extracts the planner reply from a raw chat completion.
func ParseReply(raw json.RawMessage) (Reply, error) {
	var c completion
	if err := json.Unmarshal(raw, &c); err != nil {
		return Reply{}, core.NewParseError(replySource, "invalid completion", err)
	}
	if len(c.Choices) == 0 {
		return Reply{}, core.NewParseError(replySource, "no choices", nil)
	}

	content := c.Choices[0].Message.Content
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Reply{}, core.NewParseError(replySource, "no JSON object found", nil)
	}

	var reply Reply
	if err := json.Unmarshal([]byte(content[start:end+1]), &reply); err != nil {
		return Reply{}, core.NewParseError(replySource, "invalid JSON object", err)
	}
	return reply, nil
}

// Actions turns the planned tasks into add actions, ordered by date.
func (r Reply) Actions() []Action {
	dates := make([]string, 0, len(r.Dates))
	for d := range r.Dates {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	actions := make([]Action, 0)
	for _, d := range dates {
		for _, task := range r.Dates[d] {
			actions = append(actions, Action{
				Op:          OpAdd,
				Title:       task.Title,
				Description: task.Description,
				Date:        d,
			})
		}
	}
	return actions
}
