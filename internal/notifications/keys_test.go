// internal/notifications/keys_test.go
package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTemplateKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected TemplateKey
		ok       bool
	}{
		{
			name:     "customer email",
			key:      "customerEmail_FR",
			expected: TemplateKey{Role: RoleCustomer, Channel: ChannelEmail, ExternalLang: "FR"},
			ok:       true,
		},
		{
			name:     "agent sms",
			key:      "agentSMS_EN",
			expected: TemplateKey{Role: RoleAgent, Channel: ChannelSMS, ExternalLang: "EN"},
			ok:       true,
		},
		{
			name:     "company email with hyphenated language",
			key:      "companyEmail_NL-BE",
			expected: TemplateKey{Role: RoleCompany, Channel: ChannelEmail, ExternalLang: "NL-BE"},
			ok:       true,
		},
		{
			name:     "language segment is captured verbatim even when unknown",
			key:      "customerEmail_XX",
			expected: TemplateKey{Role: RoleCustomer, Channel: ChannelEmail, ExternalLang: "XX"},
			ok:       true,
		},
		{name: "unknown role token", key: "managerEmail_FR", ok: false},
		{name: "unknown channel token", key: "customerPush_FR", ok: false},
		{name: "missing language segment", key: "customerEmail_", ok: false},
		{name: "missing underscore", key: "customerEmailFR", ok: false},
		{name: "lowercase channel", key: "customeremail_FR", ok: false},
		{name: "empty key", key: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseTemplateKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, parsed)
			}
		})
	}
}

func TestFormatTemplateKey(t *testing.T) {
	assert.Equal(t, "customerEmail_FR", FormatTemplateKey(RoleCustomer, ChannelEmail, LangFR))
	assert.Equal(t, "agentSMS_NL-BE", FormatTemplateKey(RoleAgent, ChannelSMS, LangNL))
}

func TestFormatTemplateKey_ParsesBack(t *testing.T) {
	for _, role := range Roles {
		for _, channel := range []Channel{ChannelEmail, ChannelSMS} {
			for _, lang := range Languages {
				key := FormatTemplateKey(role, channel, lang)
				parsed, ok := ParseTemplateKey(key)
				assert.True(t, ok, "key %s must parse", key)
				assert.Equal(t, role, parsed.Role)
				assert.Equal(t, channel, parsed.Channel)
				assert.Equal(t, ExternalCode(lang), parsed.ExternalLang)
			}
		}
	}
}
