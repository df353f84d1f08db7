// internal/chaseup/rule.go
package chaseup

import (
	"fmt"

	apperrors "inspection-ops/internal/common/errors"
	"inspection-ops/internal/notifications"
)

// Tier is the escalation tier of a chase-up rule: how many sequential
// reminders are active.
type Tier int

const (
	TierNone      Tier = iota // no reminders
	TierFirstOnly             // first reminder only
	TierEscalated             // first and second reminder
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierFirstOnly:
		return "first-only"
	case TierEscalated:
		return "escalated"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Rule is one chase-up reminder rule. Delays are stored as entered by the
// operator; scheduling them is out of scope here.
//
// A materialized Second config can outlive a lowered MaxSendings: it goes
// dormant and is simply not persisted until the rule escalates again.
type Rule struct {
	MaxSendings int `json:"maxSendings"`

	FirstDelayDays     int `json:"firstDelayDays"`
	FirstDelayMinutes  int `json:"firstDelayMinutes"`
	SecondDelayDays    int `json:"secondDelayDays"`
	SecondDelayMinutes int `json:"secondDelayMinutes"`

	First  *notifications.EventConfig `json:"firstReminder,omitempty"`
	Second *notifications.EventConfig `json:"secondReminder,omitempty"`
}

// NewRule returns a rule in the initial tier: no reminders configured.
func NewRule() *Rule {
	return &Rule{}
}

// Tier derives the escalation tier from MaxSendings.
func (r *Rule) Tier() Tier {
	switch {
	case r.MaxSendings <= 0:
		return TierNone
	case r.MaxSendings == 1:
		return TierFirstOnly
	default:
		return TierEscalated
	}
}

// SetMaxSendings selects how many reminders are active. Lowering the count
// never deletes an already-materialized second reminder; it becomes dormant.
func (r *Rule) SetMaxSendings(n int) error {
	if n < 0 || n > 2 {
		return fmt.Errorf("maxSendings must be 0, 1 or 2, got %d", n)
	}
	r.MaxSendings = n
	if n >= 1 && r.First == nil {
		r.First = notifications.NewEventConfig()
	}
	if n == 2 && r.Second == nil {
		r.Second = notifications.NewEventConfig()
	}
	return nil
}

// SetFirstDelayDays records a first-reminder delay in days and escalates.
func (r *Rule) SetFirstDelayDays(days int) {
	r.FirstDelayDays = days
	r.escalate()
}

// SetFirstDelayMinutes records a first-reminder delay in minutes and escalates.
func (r *Rule) SetFirstDelayMinutes(minutes int) {
	r.FirstDelayMinutes = minutes
	r.escalate()
}

// SetSecondDelayDays records a second-reminder delay in days and escalates.
func (r *Rule) SetSecondDelayDays(days int) {
	r.SecondDelayDays = days
	r.escalate()
}

// SetSecondDelayMinutes records a second-reminder delay in minutes and escalates.
func (r *Rule) SetSecondDelayMinutes(minutes int) {
	r.SecondDelayMinutes = minutes
	r.escalate()
}

// escalate forces the rule into the escalated tier. Any delay edit implies
// the operator wants both reminders, so the second reminder is materialized
// as an all-disabled, all-languages-empty configuration if absent.
func (r *Rule) escalate() {
	r.MaxSendings = 2
	if r.First == nil {
		r.First = notifications.NewEventConfig()
	}
	if r.Second == nil {
		r.Second = notifications.NewEventConfig()
	}
}

// EncodedRule is the persisted shape of a Rule. Reminder pairs are present
// only when the tier permits them.
type EncodedRule struct {
	MaxSendings int `json:"maxSendings"`

	FirstDelayDays     int `json:"firstDelayDays,omitempty"`
	FirstDelayMinutes  int `json:"firstDelayMinutes,omitempty"`
	SecondDelayDays    int `json:"secondDelayDays,omitempty"`
	SecondDelayMinutes int `json:"secondDelayMinutes,omitempty"`

	First  *notifications.EncodedEvent `json:"firstReminder,omitempty"`
	Second *notifications.EncodedEvent `json:"secondReminder,omitempty"`
}

// Encode flattens the rule. Only reminders within MaxSendings are persisted:
// a dormant second reminder stays in memory but never reaches the store.
func (r *Rule) Encode() (*EncodedRule, error) {
	enc := &EncodedRule{
		MaxSendings:        r.MaxSendings,
		FirstDelayDays:     r.FirstDelayDays,
		FirstDelayMinutes:  r.FirstDelayMinutes,
		SecondDelayDays:    r.SecondDelayDays,
		SecondDelayMinutes: r.SecondDelayMinutes,
	}

	if r.MaxSendings >= 1 && r.First != nil {
		cfg, templates, err := notifications.Encode(r.First)
		if err != nil {
			return nil, fmt.Errorf("encode first reminder: %w", err)
		}
		enc.First = &notifications.EncodedEvent{Config: cfg, Templates: templates}
	}
	if r.MaxSendings == 2 && r.Second != nil {
		cfg, templates, err := notifications.Encode(r.Second)
		if err != nil {
			return nil, fmt.Errorf("encode second reminder: %w", err)
		}
		enc.Second = &notifications.EncodedEvent{Config: cfg, Templates: templates}
	}

	return enc, nil
}

// DecodeRule rebuilds a Rule from its persisted shape, tolerating partial or
// legacy data the same way the event codec does. Reminders the tier requires
// are materialized even when the store had nothing for them.
func DecodeRule(enc *EncodedRule) (*Rule, []notifications.EventWarning, error) {
	if enc == nil {
		return nil, nil, apperrors.NewMissingConfigError("encoded chase-up rule is nil")
	}

	r := &Rule{
		FirstDelayDays:     enc.FirstDelayDays,
		FirstDelayMinutes:  enc.FirstDelayMinutes,
		SecondDelayDays:    enc.SecondDelayDays,
		SecondDelayMinutes: enc.SecondDelayMinutes,
	}

	// Clamp legacy out-of-range counts instead of failing the decode.
	switch {
	case enc.MaxSendings < 0:
		r.MaxSendings = 0
	case enc.MaxSendings > 2:
		r.MaxSendings = 2
	default:
		r.MaxSendings = enc.MaxSendings
	}

	var warnings []notifications.EventWarning

	if enc.First != nil {
		ec, ws, err := notifications.Decode(&enc.First.Config, enc.First.Templates)
		if err != nil {
			return nil, nil, err
		}
		r.First = ec
		for _, w := range ws {
			warnings = append(warnings, notifications.EventWarning{Event: notifications.EventFirstReminder, DecodeWarning: w})
		}
	}
	if enc.Second != nil {
		ec, ws, err := notifications.Decode(&enc.Second.Config, enc.Second.Templates)
		if err != nil {
			return nil, nil, err
		}
		r.Second = ec
		for _, w := range ws {
			warnings = append(warnings, notifications.EventWarning{Event: notifications.EventSecondReminder, DecodeWarning: w})
		}
	}

	if r.MaxSendings >= 1 && r.First == nil {
		r.First = notifications.NewEventConfig()
	}
	if r.MaxSendings == 2 && r.Second == nil {
		r.Second = notifications.NewEventConfig()
	}

	return r, warnings, nil
}
