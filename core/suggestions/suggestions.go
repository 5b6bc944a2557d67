// Package suggestions asks a text generator to break a task into subtasks
// and turns its reply into a list.
package suggestions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
)

var (
	// ErrSuggestionFailed is the one error callers see for any failed request.
	// It is the store's sentinel.
	ErrSuggestionFailed = tasksrepo.ErrSuggestionFailed
	// ErrNoSuggestions means the reply held no usable subtasks.
	ErrNoSuggestions = errors.New("no subtasks in reply")
)

// ParseSubtasks splits a comma separated reply into trimmed, non-empty items.
func ParseSubtasks(raw string) ([]string, error) {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoSuggestions
	}
	return out, nil
}

// BuildPrompt is the instruction sent to the generator for one task.
func BuildPrompt(title, description string) string {
	return fmt.Sprintf(`Break the following task into 3 to 5 short and actionable subtasks.

Return the result as a single comma-separated list ONLY, with no numbers, no extra explanation, and no formatting.

Task Title: %q
Task Description: %q
`, title, description)
}

func failed(cause error) error {
	return fmt.Errorf("%w: %w", ErrSuggestionFailed, cause)
}
