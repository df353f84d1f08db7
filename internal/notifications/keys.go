// internal/notifications/keys.go
package notifications

import (
	"fmt"
	"regexp"
)

// Channel is a delivery channel of a template bundle key.
type Channel string

const (
	ChannelEmail Channel = "Email"
	ChannelSMS   Channel = "SMS"
)

// templateKeyPattern matches persisted template bundle keys such as
// customerEmail_FR or agentSMS_NL-BE.
var templateKeyPattern = regexp.MustCompile(`^(customer|company|agent)(Email|SMS)_(.+)$`)

// TemplateKey is the parsed form of a persisted bundle key.
type TemplateKey struct {
	Role         Role
	Channel      Channel
	ExternalLang string
}

// ParseTemplateKey decomposes a persisted bundle key into role, channel and
// external language code. It owns the key regex: the rest of the decoder never
// touches raw key strings. ok=false means the key does not follow the pattern.
func ParseTemplateKey(key string) (TemplateKey, bool) {
	m := templateKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return TemplateKey{}, false
	}
	return TemplateKey{
		Role:         Role(m[1]),
		Channel:      Channel(m[2]),
		ExternalLang: m[3],
	}, true
}

// FormatTemplateKey builds the persisted bundle key for a role, channel and
// internal language tag.
func FormatTemplateKey(role Role, channel Channel, lang Language) string {
	return fmt.Sprintf("%s%s_%s", role, channel, ExternalCode(lang))
}
