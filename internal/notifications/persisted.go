// internal/notifications/persisted.go
package notifications

// PersistedConfig is the flat per-event record the store keeps alongside the
// template bundle array. Every field is optional on input: absent JSON fields
// decode to their zero value and are treated as "not configured".
type PersistedConfig struct {
	Webhook bool `json:"webhook,omitempty"`

	AgentEmail        bool   `json:"agentEmail,omitempty"`
	AgentEmailAddress string `json:"agentEmailAddress,omitempty"`
	AgentSMS          bool   `json:"agentSMS,omitempty"`
	AgentSMSNumber    string `json:"agentSMSNumber,omitempty"`

	CustomerEmail        bool   `json:"customerEmail,omitempty"`
	CustomerEmailAddress string `json:"customerEmailAddress,omitempty"`
	CustomerSMS          bool   `json:"customerSMS,omitempty"`
	CustomerSMSNumber    string `json:"customerSMSNumber,omitempty"`

	CompanyEmail        bool   `json:"companyEmail,omitempty"`
	CompanyEmailAddress string `json:"companyEmailAddress,omitempty"`
	CompanySMS          bool   `json:"companySMS,omitempty"`
	CompanySMSNumber    string `json:"companySMSNumber,omitempty"`
}

// persistedRole is the per-role slice of a PersistedConfig.
type persistedRole struct {
	email        bool
	emailAddress string
	sms          bool
	smsNumber    string
}

func (p *PersistedConfig) role(r Role) persistedRole {
	switch r {
	case RoleAgent:
		return persistedRole{p.AgentEmail, p.AgentEmailAddress, p.AgentSMS, p.AgentSMSNumber}
	case RoleCustomer:
		return persistedRole{p.CustomerEmail, p.CustomerEmailAddress, p.CustomerSMS, p.CustomerSMSNumber}
	case RoleCompany:
		return persistedRole{p.CompanyEmail, p.CompanyEmailAddress, p.CompanySMS, p.CompanySMSNumber}
	}
	return persistedRole{}
}

func (p *PersistedConfig) setRole(r Role, v persistedRole) {
	switch r {
	case RoleAgent:
		p.AgentEmail, p.AgentEmailAddress, p.AgentSMS, p.AgentSMSNumber = v.email, v.emailAddress, v.sms, v.smsNumber
	case RoleCustomer:
		p.CustomerEmail, p.CustomerEmailAddress, p.CustomerSMS, p.CustomerSMSNumber = v.email, v.emailAddress, v.sms, v.smsNumber
	case RoleCompany:
		p.CompanyEmail, p.CompanyEmailAddress, p.CompanySMS, p.CompanySMSNumber = v.email, v.emailAddress, v.sms, v.smsNumber
	}
}

// PersistedTemplateBundle is one flat object per external language code. Keys
// follow the "{role}{Channel}_{EXTERNAL_LANG}" pattern; email values are
// {subject, text, html} objects, SMS values are bare strings. The value type
// is any so the decoder can tolerate whatever the store hands back.
type PersistedTemplateBundle map[string]interface{}

// PersistedEmailValue is the canonical email value shape the encoder emits.
// The decoder does not require it; it reads generic maps with safe lookups.
type PersistedEmailValue struct {
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// EncodedEvent pairs the two persisted shapes for one event. This is exactly
// what crosses the persistence boundary in both directions.
type EncodedEvent struct {
	Config    PersistedConfig           `json:"config"`
	Templates []PersistedTemplateBundle `json:"templates"`
}
