package ofx

import "strings"

const (
	maxDescriptionLen = 255

	// DefaultDescription is used when a transaction carries an empty
	// description after normalization.
	DefaultDescription = "Transação sem descrição"

	// MissingDescription is used by the scan path when neither MEMO
	// nor NAME is present in a transaction block.
	MissingDescription = "Sem descrição"
)

// NormalizeDescription trims the description, collapses internal
// whitespace runs into single spaces and truncates to 255 runes.
// An empty result becomes DefaultDescription.
func NormalizeDescription(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return DefaultDescription
	}
	out := strings.Join(fields, " ")
	if runes := []rune(out); len(runes) > maxDescriptionLen {
		out = string(runes[:maxDescriptionLen])
	}
	return out
}
