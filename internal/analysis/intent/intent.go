package intent

import "strings"

// Topic is the subject a visitor message is about.
type Topic string

const (
	General  Topic = "general"
	Research Topic = "research"
	Projects Topic = "projects"
	Hiring   Topic = "hiring"
	Contact  Topic = "contact"
	Skills   Topic = "skills"
	Salary   Topic = "salary"
)

// Rule maps a keyword group to a topic. A rule matches when any keyword is a substring
// of the normalized message.
type Rule struct {
	Topic    Topic
	Keywords []string
}

// Matches reports whether normalized contains one of the rule keywords.
func (r Rule) Matches(normalized string) bool {
	return ContainsAny(normalized, r.Keywords)
}

// Rules is the priority-ordered keyword table. Earlier rules win.
var Rules = []Rule{
	{Topic: Research, Keywords: []string{"research", "mit", "cambridge"}},
	{Topic: Projects, Keywords: []string{"project", "aira", "production"}},
	{Topic: Hiring, Keywords: []string{"hire", "why", "different"}},
	{Topic: Contact, Keywords: []string{"contact", "email", "reach"}},
	{Topic: Skills, Keywords: []string{"skill", "technology", "technical"}},
	{Topic: Salary, Keywords: []string{"salary", "compensation", "rate"}},
}

// Decision is the classification result.
type Decision struct {
	Topic      Topic
	Normalized string
	// Rule is the index of the matching rule, -1 for the fallback.
	Rule int
}

// Normalize lower-cases and trims a visitor message.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Classify returns the first rule matching text, or General.
func Classify(text string) Decision {
	return ClassifyWith(Rules, text)
}

// ClassifyWith runs an arbitrary ordered rule table.
func ClassifyWith(rules []Rule, text string) Decision {
	normalized := Normalize(text)
	for i, rule := range rules {
		if rule.Matches(normalized) {
			return Decision{Topic: rule.Topic, Normalized: normalized, Rule: i}
		}
	}
	return Decision{Topic: General, Normalized: normalized, Rule: -1}
}

// ContainsAny reports whether s contains any of the needles.
func ContainsAny(s string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
