package rules

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the format used for the {{time}} placeholder.
const TimeLayout = "2006-01-02 15:04:05"

// Vars holds the values substituted into reply templates.
type Vars struct {
	Sender  string
	Message string
	Now     time.Time
}

// Render replaces {{sender}}, {{message}} and {{time}} in template.
func Render(template string, vars Vars) string {
	replacements := map[string]string{
		"sender":  vars.Sender,
		"message": vars.Message,
		"time":    vars.Now.Format(TimeLayout),
	}

	// Substitute in a single pass so a message containing "{{sender}}" is not expanded again.
	pairs := make([]string, 0, len(replacements)*2)
	for key, value := range replacements {
		pairs = append(pairs, fmt.Sprintf("{{%s}}", key), value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Match returns the first rule, in table order, whose keyword occurs in message.
func (t *Table) Match(message string) (Rule, bool) {
	for _, r := range t.Rules {
		if strings.Contains(message, r.Keyword) {
			return r, true
		}
	}
	return Rule{}, false
}
