package question

import "strings"

const maxQuestionWords = 15

// SanitizeText normalizes a model-produced question candidate and reports
// whether it is acceptable. The transform is total: it either returns a
// cleaned single-line question ending in "?" or rejects the candidate so
// the caller can fall back to the curated pool.
func SanitizeText(raw string, avoidTopics []string) (string, bool) {
	text := strings.TrimSpace(raw)

	// Models sometimes return commentary after the question; keep only the
	// first line.
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(text)
	text = stripSurroundingQuotes(text)
	text = strings.TrimLeft(text, "-*0123456789. \t")
	text = strings.TrimSpace(text)

	if text == "" {
		return "", false
	}

	if !strings.HasSuffix(text, "?") {
		text = strings.TrimRight(text, ".!")
		text = strings.TrimSpace(text)
		if text == "" {
			return "", false
		}
		text += "?"
	}

	if len(strings.Fields(text)) > maxQuestionWords {
		return "", false
	}

	if touchesAvoidTopic(text, avoidTopics) {
		return "", false
	}

	return text, true
}

// stripSurroundingQuotes removes exactly one layer of matching quotes.
func stripSurroundingQuotes(text string) string {
	if len(text) < 2 {
		return text
	}
	first, last := text[0], text[len(text)-1]
	if first == last && (first == '"' || first == '\'') {
		return strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

// touchesAvoidTopic reports whether the text contains any avoid-topic as a
// case-insensitive substring.
func touchesAvoidTopic(text string, avoidTopics []string) bool {
	lower := strings.ToLower(text)
	for _, topic := range avoidTopics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			continue
		}
		if strings.Contains(lower, topic) {
			return true
		}
	}
	return false
}
