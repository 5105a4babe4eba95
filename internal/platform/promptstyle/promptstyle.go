package promptstyle

import "strings"

// ComposeSystem joins an assistant's system prompt and its instructions into
// the single system message sent to a provider. Blank parts are dropped.
func ComposeSystem(system, instructions string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{system, instructions} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}
