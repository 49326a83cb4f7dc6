package mqtt

import "strings"

// TopicLevel makes s safe to use as a single topic level: separators and
// wildcards are replaced with '-'.
func TopicLevel(s string) string {
	return strings.NewReplacer("/", "-", "+", "-", "#", "-", " ", "_").Replace(s)
}

// Join builds a topic from a prefix and levels.
func Join(prefix string, levels ...string) string {
	parts := make([]string, 0, len(levels)+1)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	for _, l := range levels {
		parts = append(parts, TopicLevel(l))
	}
	return strings.Join(parts, "/")
}
