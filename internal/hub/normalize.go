package hub

import (
	"encoding/hex"
	"regexp"
	"strings"

	"apphub/internal/constants"

	"github.com/google/uuid"
)

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// NormalizeServerName maps an arbitrary display name to a hub-safe
// server name: lowercase, strip everything outside [a-z0-9\s-], collapse
// whitespace runs to single hyphens, cap the length. The steps run in
// exactly this order and the function is idempotent.
func NormalizeServerName(name string) string {
	text := strings.ToLower(name)
	text = invalidNameChars.ReplaceAllString(text, "")
	text = whitespaceRuns.ReplaceAllString(text, "-")
	if len(text) > constants.MaxServerNameLength {
		text = text[:constants.MaxServerNameLength]
	}
	return text
}

// randomSuffix returns the random hex fragment appended to normalized
// server names so repeated creations with the same desired name never
// collide.
func randomSuffix() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:constants.ServerNameSuffixLength]
}
