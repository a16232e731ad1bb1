package domain

import "strings"

// KBMode controls how the chat layer uses retrieval output.
type KBMode string

const (
	// KBModeGeneral permits fallback to an ungrounded model answer
	// when no evidence is retrieved.
	KBModeGeneral KBMode = "general"

	// KBModeStrict requires answers grounded only in retrieved
	// evidence, refusing to answer otherwise.
	KBModeStrict KBMode = "strict"
)

// Aliases accepted from configuration and admin input. The strict set
// matches the labels the admin dashboard historically exposed.
var (
	strictAliases = map[string]bool{
		"strict":            true,
		"estricto":          true,
		"solo kb":           true,
		"solo kb (estricto)": true,
		"solo_kb":           true,
		"solo-kb":           true,
	}
	generalAliases = map[string]bool{
		"general":      true,
		"modo general": true,
	}
)

// IsValid returns true if the mode is recognised.
func (m KBMode) IsValid() bool {
	return m == KBModeGeneral || m == KBModeStrict
}

// NormalizeKBMode maps a raw mode string to a canonical KBMode.
// Unknown values normalise to general, the permissive default.
func NormalizeKBMode(raw string) KBMode {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if strictAliases[cleaned] {
		return KBModeStrict
	}
	if generalAliases[cleaned] {
		return KBModeGeneral
	}
	return KBModeGeneral
}
