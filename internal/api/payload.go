// internal/api/payload.go
package api

import (
	"inspection-ops/internal/chaseup"
	"inspection-ops/internal/notifications"
)

// notificationsPayload is the PUT body for the company notification settings:
// the structured editing model, keyed by event identifier. The flat persisted
// shape never crosses this boundary.
type notificationsPayload struct {
	Events map[notifications.EventID]*notifications.EventConfig `json:"events"`
}

// notificationsResponse is the GET body: the structured model plus any
// skip-warnings the decoder collected from legacy or corrupt stored keys.
type notificationsResponse struct {
	Events   map[notifications.EventID]*notifications.EventConfig `json:"events"`
	Warnings []notifications.EventWarning                          `json:"warnings,omitempty"`
}

// saveResponse reports a successful PUT together with advisory warnings.
type saveResponse struct {
	Saved    int          `json:"saved"`
	Warnings []SMSWarning `json:"warnings,omitempty"`
}

// SMSWarning flags an SMS template over the advisory length limit. Saves are
// never rejected for length.
type SMSWarning struct {
	Event    notifications.EventID  `json:"event"`
	Role     notifications.Role     `json:"role"`
	Language notifications.Language `json:"language"`
	Length   int                    `json:"length"`
	Limit    int                    `json:"limit"`
}

// chaseUpResponse carries the reminder rule plus decode warnings on GET and
// advisory SMS length warnings on PUT.
type chaseUpResponse struct {
	Rule        *chaseup.Rule                `json:"rule"`
	Warnings    []notifications.EventWarning `json:"warnings,omitempty"`
	SMSWarnings []SMSWarning                 `json:"smsWarnings,omitempty"`
}

// normalizeEvents applies the boundary defaulting the codec expects: unknown
// roles and languages are dropped, known ones are made total.
func normalizeEvents(events map[notifications.EventID]*notifications.EventConfig) {
	for _, ec := range events {
		if ec == nil {
			continue
		}
		for role := range ec.Recipients {
			if !notifications.KnownRole(role) {
				delete(ec.Recipients, role)
			}
		}
		ec.Normalize()
	}
}

// smsAdvisoryWarnings collects every template whose SMS content exceeds the
// advisory limit, event by event.
func smsAdvisoryWarnings(catalog notifications.Catalog, events map[notifications.EventID]*notifications.EventConfig) []SMSWarning {
	var warnings []SMSWarning
	for _, id := range catalog.Events {
		ec, ok := events[id]
		if !ok || ec == nil {
			continue
		}
		for _, role := range notifications.Roles {
			rc := ec.Recipients[role]
			if rc == nil {
				continue
			}
			for _, lang := range notifications.Languages {
				if sms := rc.Templates[lang].SMS; sms.OverLimit() {
					warnings = append(warnings, SMSWarning{
						Event:    id,
						Role:     role,
						Language: lang,
						Length:   len(sms.Content),
						Limit:    notifications.SMSLengthLimit,
					})
				}
			}
		}
	}
	return warnings
}
