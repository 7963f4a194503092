package pipeline

import (
	"strings"

	"subtrack/internal"
)

// Match finds the first catalog rule the message satisfies, in catalog
// order. A rule matches when the sender contains any sender pattern or the
// subject contains any subject pattern. First match wins; there is no
// scoring and no message matches more than one rule.
func (c Catalog) Match(msg internal.DecodedMessage) *ServiceRule {
	for i := range c.rules {
		rule := &c.rules[i]
		if containsAny(msg.Sender, rule.SenderPatterns) || containsAny(msg.Subject, rule.SubjectPatterns) {
			return rule
		}
	}
	return nil
}

func containsAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
