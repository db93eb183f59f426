package types

import "strings"

// MaxAvoidTopics caps the avoid-topic set size.
const MaxAvoidTopics = 24

const maxTopicWords = 4

// NormalizeTopic canonicalizes one avoid-topic entry: lowercase, collapsed
// whitespace, at most four words. Returns false for entries that cannot be
// normalized, which callers drop silently.
func NormalizeTopic(raw string) (string, bool) {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 || len(fields) > maxTopicWords {
		return "", false
	}
	return strings.Join(fields, " "), true
}

// NormalizeTopicSet normalizes and dedupes a topic list, preserving first
// occurrence order and capping the result at MaxAvoidTopics. Entries that
// fail normalization are dropped, not rejected wholesale.
func NormalizeTopicSet(raws []string) []string {
	seen := make(map[string]struct{}, len(raws))
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		topic, ok := NormalizeTopic(raw)
		if !ok {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		out = append(out, topic)
		if len(out) == MaxAvoidTopics {
			break
		}
	}
	return out
}

// ParseTopicList splits a comma-joined avoid-topic string into normalized
// entries.
func ParseTopicList(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	return NormalizeTopicSet(strings.Split(joined, ","))
}

// JoinTopicList serializes topics back to the comma-joined storage form.
func JoinTopicList(topics []string) string {
	return strings.Join(topics, ",")
}
