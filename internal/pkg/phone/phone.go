package phone

import (
	"fmt"
	"strings"
)

// Normalize strips every non-digit rune, so "+7 (999) 123-45-67" and
// "79991234567" produce the same lookup key.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Display formats an 11-digit normalized number as +X (XXX) XXX-XX-XX.
// Other lengths are returned with a bare leading plus.
func Display(normalized string) string {
	if normalized == "" {
		return ""
	}
	if len(normalized) != 11 {
		return "+" + normalized
	}
	return fmt.Sprintf("+%s (%s) %s-%s-%s",
		normalized[:1], normalized[1:4], normalized[4:7], normalized[7:9], normalized[9:11])
}
