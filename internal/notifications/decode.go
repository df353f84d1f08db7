// internal/notifications/decode.go
package notifications

import (
	"sort"
	"time"

	apperrors "inspection-ops/internal/common/errors"
	"inspection-ops/internal/common/metrics"
)

// DecodeWarning records a template bundle key that was skipped during decode.
// Per-key anomalies never abort a decode; they are collected, logged by the
// caller and counted in metrics.
type DecodeWarning struct {
	Key    string              `json:"key"`
	Reason apperrors.ErrorCode `json:"reason"`
}

// EventWarning is a DecodeWarning tagged with the event it occurred on.
type EventWarning struct {
	Event EventID `json:"event"`
	DecodeWarning
}

// Decode reconstructs an EventConfig from the two persisted shapes. It
// tolerates missing fields, unknown keys and unknown language codes: those
// degrade to defaults or skip-warnings. The only escalated failure is a nil
// PersistedConfig, for which no reasonable default exists.
func Decode(cfg *PersistedConfig, bundles []PersistedTemplateBundle) (*EventConfig, []DecodeWarning, error) {
	if cfg == nil {
		return nil, nil, apperrors.NewMissingConfigError("persisted config object is nil")
	}

	ec := NewEventConfig()
	ec.Webhook = cfg.Webhook

	for _, role := range Roles {
		pr := cfg.role(role)
		rc := ec.Recipient(role)
		rc.Email = pr.email
		rc.SMS = pr.sms
		rc.Address = pr.emailAddress
		rc.SMSNumber = pr.smsNumber
		// Enabled is not persisted; an enabled channel implies an enabled role.
		rc.Enabled = pr.email || pr.sms
	}

	var warnings []DecodeWarning
	for _, bundle := range bundles {
		for _, key := range sortedKeys(bundle) {
			if w := decodeKey(ec, key, bundle[key]); w != nil {
				metrics.CodecKeysSkipped.WithLabelValues(string(w.Reason)).Inc()
				warnings = append(warnings, *w)
			}
		}
	}

	// Content presence is the source of truth: stored flags may be stale
	// relative to their templates, so flags only ever upgrade here.
	for _, role := range Roles {
		rc := ec.Recipient(role)
		if rc.HasContent(ChannelEmail) {
			rc.Email = true
			rc.Enabled = true
		}
		if rc.HasContent(ChannelSMS) {
			rc.SMS = true
			rc.Enabled = true
		}
	}

	return ec, warnings, nil
}

// decodeKey writes one bundle entry into the event config. A non-nil return
// means the key was skipped.
func decodeKey(ec *EventConfig, key string, value interface{}) *DecodeWarning {
	parsed, ok := ParseTemplateKey(key)
	if !ok {
		return &DecodeWarning{Key: key, Reason: apperrors.ErrCodeMalformedTemplateKey}
	}

	lang, ok := InternalLanguage(parsed.ExternalLang)
	if !ok {
		return &DecodeWarning{Key: key, Reason: apperrors.ErrCodeUnknownLanguage}
	}

	rc := ec.Recipient(parsed.Role)
	bundle := rc.Templates[lang]

	switch parsed.Channel {
	case ChannelEmail:
		email, ok := decodeEmailValue(value)
		if !ok {
			return &DecodeWarning{Key: key, Reason: apperrors.ErrCodeMalformedTemplateKey}
		}
		bundle.Email = email
	case ChannelSMS:
		text, ok := value.(string)
		if !ok {
			return &DecodeWarning{Key: key, Reason: apperrors.ErrCodeMalformedTemplateKey}
		}
		bundle.SMS = SMSContent{Content: text}
	}

	rc.Templates[lang] = bundle
	return nil
}

// decodeEmailValue reads a persisted email object. Body content prefers the
// text field and falls back to html when text is absent, never both. Every
// field access is a safe lookup: missing fields default to empty.
func decodeEmailValue(value interface{}) (EmailContent, bool) {
	switch v := value.(type) {
	case PersistedEmailValue:
		content := v.Text
		if content == "" {
			content = v.HTML
		}
		return EmailContent{Subject: v.Subject, Content: content}, true
	case map[string]interface{}:
		var email EmailContent
		if subject, ok := stringField(v, "subject"); ok {
			email.Subject = subject
		}
		if text, ok := stringField(v, "text"); ok {
			email.Content = text
		} else if html, ok := stringField(v, "html"); ok {
			email.Content = html
		}
		return email, true
	default:
		return EmailContent{}, false
	}
}

func stringField(m map[string]interface{}, field string) (string, bool) {
	raw, ok := m[field]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func sortedKeys(bundle PersistedTemplateBundle) []string {
	keys := make([]string, 0, len(bundle))
	for k := range bundle {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecodeAll reconstructs one EventConfig per catalog event. Events absent from
// the stored map decode to an all-default configuration rather than being
// omitted.
func DecodeAll(catalog Catalog, stored map[EventID]EncodedEvent) (map[EventID]*EventConfig, []EventWarning, error) {
	start := time.Now()
	defer func() {
		metrics.CodecDuration.WithLabelValues("decode").Observe(time.Since(start).Seconds())
	}()

	out := make(map[EventID]*EventConfig, len(catalog.Events))
	var warnings []EventWarning

	for _, id := range catalog.Events {
		pair, ok := stored[id]
		if !ok {
			out[id] = NewEventConfig()
			continue
		}

		ec, ws, err := Decode(&pair.Config, pair.Templates)
		if err != nil {
			return nil, nil, err
		}
		for _, w := range ws {
			warnings = append(warnings, EventWarning{Event: id, DecodeWarning: w})
		}
		out[id] = ec
		metrics.CodecDecodeTotal.WithLabelValues(catalog.Name).Inc()
	}

	return out, warnings, nil
}
