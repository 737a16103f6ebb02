// Package summarize implements C12: deriving a length and a truncated
// single-line "short" form from a raw commit message.
package summarize

import "strings"

// Config threads the configured maximum short-message length through to
// Summarize, following the teacher's convention of passing configuration
// explicitly into constructors/functions rather than reading a package
// singleton (spec.md §9 Design Note).
type Config struct {
	MessageMaxLength int
}

// Summary is the derived presentation of a commit message.
type Summary struct {
	Length int
	Short  string
}

// Summarize computes Length (len(message), including newlines) and Short
// (newlines collapsed to single spaces, runs of spaces collapsed, then
// trimmed; truncated to exactly MaxLen characters plus a literal "..."
// when it exceeds MaxLen) per spec.md §4.12.
func Summarize(cfg Config, message string) Summary {
	length := len(message)

	replacer := strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
	collapsed := replacer.Replace(message)
	collapsed = collapseSpaces(collapsed)
	short := strings.TrimSpace(collapsed)

	maxLen := cfg.MessageMaxLength
	if runes := []rune(short); maxLen > 0 && len(runes) > maxLen {
		short = string(runes[:maxLen]) + "..."
	}

	return Summary{Length: length, Short: short}
}

func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if r == ' ' {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
		} else {
			lastWasSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
