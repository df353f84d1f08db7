// internal/notifications/encode.go
package notifications

import (
	"fmt"
	"time"

	"inspection-ops/internal/common/metrics"
)

// Encode flattens an EventConfig into the persisted pair. Unlike decode,
// encode is flag-gated: drafted-but-disabled content is never persisted as
// active. Flags on the flat record are recomputed from content rather than
// copied verbatim, since the UI may not have kept them in sync.
//
// A template map carrying a language outside the known catalog is a
// programming error upstream (the total-coverage invariant was broken) and is
// reported as an error rather than silently dropped.
func Encode(ec *EventConfig) (PersistedConfig, []PersistedTemplateBundle, error) {
	if ec == nil {
		return PersistedConfig{}, nil, fmt.Errorf("encode: event config is nil")
	}

	out := PersistedConfig{Webhook: ec.Webhook}

	// Per-language accumulators, keyed by external code, built in catalog
	// order so the output array is deterministic.
	accumulators := make(map[Language]PersistedTemplateBundle, len(Languages))
	for _, lang := range Languages {
		accumulators[lang] = PersistedTemplateBundle{}
	}

	for _, role := range Roles {
		rc := ec.Recipients[role]
		if rc == nil {
			continue
		}

		for lang := range rc.Templates {
			if !KnownLanguage(lang) {
				return PersistedConfig{}, nil, fmt.Errorf("encode: unknown language tag %q for role %s", lang, role)
			}
		}

		var emailEmitted, smsEmitted bool
		if rc.Enabled {
			for _, lang := range Languages {
				bundle, ok := rc.Templates[lang]
				if !ok {
					continue
				}
				if rc.Email && !bundle.Email.Empty() {
					// text and html carry the same source content; the system
					// keeps no independently-formatted HTML body.
					accumulators[lang][FormatTemplateKey(role, ChannelEmail, lang)] = PersistedEmailValue{
						Subject: bundle.Email.Subject,
						Text:    bundle.Email.Content,
						HTML:    bundle.Email.Content,
					}
					emailEmitted = true
				}
				if rc.SMS && !bundle.SMS.Empty() {
					accumulators[lang][FormatTemplateKey(role, ChannelSMS, lang)] = bundle.SMS.Content
					smsEmitted = true
				}
			}
		}

		// Flags are what was actually emitted OR'd with the explicit UI flag,
		// never a verbatim copy of possibly-stale state.
		out.setRole(role, persistedRole{
			email:        emailEmitted || rc.Email,
			emailAddress: rc.Address,
			sms:          smsEmitted || rc.SMS,
			smsNumber:    rc.SMSNumber,
		})
	}

	// Languages with zero keys are omitted entirely; decode re-establishes
	// total language coverage on its side.
	var templates []PersistedTemplateBundle
	for _, lang := range Languages {
		if len(accumulators[lang]) > 0 {
			templates = append(templates, accumulators[lang])
		}
	}

	return out, templates, nil
}

// EncodeAll flattens every configured event of a catalog. Events missing from
// the input map are not emitted; events outside the catalog are rejected.
func EncodeAll(catalog Catalog, events map[EventID]*EventConfig) (map[EventID]EncodedEvent, error) {
	start := time.Now()
	defer func() {
		metrics.CodecDuration.WithLabelValues("encode").Observe(time.Since(start).Seconds())
	}()

	for id := range events {
		if !catalog.Contains(id) {
			return nil, fmt.Errorf("encode: event %q is not part of the %s catalog", id, catalog.Name)
		}
	}

	out := make(map[EventID]EncodedEvent, len(events))
	for _, id := range catalog.Events {
		ec, ok := events[id]
		if !ok {
			continue
		}
		cfg, templates, err := Encode(ec)
		if err != nil {
			return nil, fmt.Errorf("encode event %q: %w", id, err)
		}
		out[id] = EncodedEvent{Config: cfg, Templates: templates}
		metrics.CodecEncodeTotal.WithLabelValues(catalog.Name).Inc()
	}

	return out, nil
}
