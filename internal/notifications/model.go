// internal/notifications/model.go
package notifications

import "strings"

// SMSLengthLimit is the advisory per-message length for SMS content. Encode
// never truncates; the API layer surfaces a warning instead.
const SMSLengthLimit = 160

// Role identifies a recipient category. The persisted token is the string value.
type Role string

const (
	RoleAgent    Role = "agent"    // the user performing the inspection
	RoleCustomer Role = "customer" // the end customer of the inspection
	RoleCompany  Role = "company"  // a configured company email address
)

// Roles is the fixed recipient role set, in persistence order.
var Roles = []Role{RoleAgent, RoleCustomer, RoleCompany}

// KnownRole reports whether r is a member of the role set.
func KnownRole(r Role) bool {
	switch r {
	case RoleAgent, RoleCustomer, RoleCompany:
		return true
	}
	return false
}

// EmailContent is the editable email template for one (role, language) pair.
type EmailContent struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// Empty reports whether both subject and content are blank. Emptiness drives
// flag auto-derivation on decode and key omission on encode.
func (e EmailContent) Empty() bool {
	return strings.TrimSpace(e.Subject) == "" && strings.TrimSpace(e.Content) == ""
}

// SMSContent is the editable SMS template for one (role, language) pair.
type SMSContent struct {
	Content string `json:"content"`
}

func (s SMSContent) Empty() bool {
	return strings.TrimSpace(s.Content) == ""
}

// OverLimit reports whether the content exceeds the advisory SMS length.
func (s SMSContent) OverLimit() bool {
	return len(s.Content) > SMSLengthLimit
}

// TemplateBundle is the atomic editable unit: the per-language content of one
// recipient role across both channels.
type TemplateBundle struct {
	Email EmailContent `json:"email"`
	SMS   SMSContent   `json:"sms"`
}

func (t TemplateBundle) Empty() bool {
	return t.Email.Empty() && t.SMS.Empty()
}

// RecipientConfig is one recipient role's full configuration for one event.
type RecipientConfig struct {
	Enabled   bool                        `json:"enabled"`
	Address   string                      `json:"address,omitempty"`
	SMSNumber string                      `json:"smsNumber,omitempty"`
	Email     bool                        `json:"email"`
	SMS       bool                        `json:"sms"`
	Templates map[Language]TemplateBundle `json:"templates"`
}

// emptyTemplateSet builds a template map covering every given language. It is
// the single place the always-all-languages-present invariant is established.
func emptyTemplateSet(languages []Language) map[Language]TemplateBundle {
	m := make(map[Language]TemplateBundle, len(languages))
	for _, lang := range languages {
		m[lang] = TemplateBundle{}
	}
	return m
}

// NewRecipientConfig returns an all-disabled configuration with every known
// language pre-populated.
func NewRecipientConfig() *RecipientConfig {
	return &RecipientConfig{
		Templates: emptyTemplateSet(Languages),
	}
}

// Normalize fills missing languages with empty bundles and drops languages
// outside the catalog, so the total-coverage invariant holds after any edit.
func (rc *RecipientConfig) Normalize() {
	normalized := emptyTemplateSet(Languages)
	for lang, bundle := range rc.Templates {
		if KnownLanguage(lang) {
			normalized[lang] = bundle
		}
	}
	rc.Templates = normalized
}

// HasContent reports whether any language carries non-empty content for the
// given channel.
func (rc *RecipientConfig) HasContent(channel Channel) bool {
	for _, bundle := range rc.Templates {
		switch channel {
		case ChannelEmail:
			if !bundle.Email.Empty() {
				return true
			}
		case ChannelSMS:
			if !bundle.SMS.Empty() {
				return true
			}
		}
	}
	return false
}

// EventConfig is one event's full configuration: a webhook toggle plus the
// per-role recipient configurations. Recipient configs are owned exclusively
// by their parent event and never shared.
type EventConfig struct {
	Webhook    bool                      `json:"webhook"`
	Recipients map[Role]*RecipientConfig `json:"recipients"`
}

// NewEventConfig returns an event configuration with every role present and
// all-disabled.
func NewEventConfig() *EventConfig {
	recipients := make(map[Role]*RecipientConfig, len(Roles))
	for _, role := range Roles {
		recipients[role] = NewRecipientConfig()
	}
	return &EventConfig{Recipients: recipients}
}

// Recipient returns the configuration for role, materializing an empty one if
// the map was built outside NewEventConfig.
func (ec *EventConfig) Recipient(role Role) *RecipientConfig {
	if ec.Recipients == nil {
		ec.Recipients = make(map[Role]*RecipientConfig, len(Roles))
	}
	rc, ok := ec.Recipients[role]
	if !ok || rc == nil {
		rc = NewRecipientConfig()
		ec.Recipients[role] = rc
	}
	return rc
}

// Normalize applies RecipientConfig.Normalize to every role and materializes
// missing roles.
func (ec *EventConfig) Normalize() {
	for _, role := range Roles {
		ec.Recipient(role).Normalize()
	}
}
