// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"inspection-ops/internal/chaseup"
	apperrors "inspection-ops/internal/common/errors"
	"inspection-ops/internal/common/logger"
	"inspection-ops/internal/common/metrics"
	"inspection-ops/internal/common/observability"
	"inspection-ops/internal/notifications"
	"inspection-ops/internal/store"
)

const maxBodyBytes = 1 << 20 // 1 MiB is plenty for a settings payload

// Handler serves the notification settings surface of the dashboard. It only
// ever exposes the structured editing model; the flat persisted shapes stay
// between the codec and the stores.
type Handler struct {
	settings *store.SettingsStore
	rules    *store.RuleStore
	audit    *store.AuditRecorder         // optional
	obs      *observability.Observability // optional
	logger   logger.Logger
}

func NewHandler(settings *store.SettingsStore, rules *store.RuleStore, audit *store.AuditRecorder, obs *observability.Observability, log logger.Logger) *Handler {
	return &Handler{
		settings: settings,
		rules:    rules,
		audit:    audit,
		obs:      obs,
		logger:   log.WithFields(map[string]interface{}{"component": "settings-api"}),
	}
}

// Register wires the settings routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /companies/{id}/notifications", h.GetNotifications)
	mux.HandleFunc("PUT /companies/{id}/notifications", h.PutNotifications)
	mux.HandleFunc("GET /companies/{id}/chaseup", h.GetChaseUp)
	mux.HandleFunc("PUT /companies/{id}/chaseup", h.PutChaseUp)
}

// ==========================
// Company event notifications
// ==========================

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	log := h.requestLogger(r, companyID)

	stored, err := h.settings.Load(r.Context(), companyID, notifications.CompanyCatalog)
	if err != nil {
		h.recordLoad(r.Context(), "notifications", "error")
		h.respondError(w, r, log, err)
		return
	}

	events, warnings, err := notifications.DecodeAll(notifications.CompanyCatalog, stored)
	if err != nil {
		h.recordLoad(r.Context(), "notifications", "error")
		h.respondError(w, r, log, err)
		return
	}
	h.logDecodeWarnings(log, warnings)

	h.recordLoad(r.Context(), "notifications", "ok")
	h.respond(w, r, http.StatusOK, notificationsResponse{Events: events, Warnings: warnings})
}

func (h *Handler) PutNotifications(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	log := h.requestLogger(r, companyID)
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.respondError(w, r, log, apperrors.NewPayloadValidationError("unreadable request body"))
		return
	}
	if err := validatePayload(notificationsSchema, body); err != nil {
		h.respondError(w, r, log, err)
		return
	}

	var payload notificationsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.respondError(w, r, log, apperrors.NewPayloadValidationError(err.Error()))
		return
	}
	normalizeEvents(payload.Events)

	encoded, err := notifications.EncodeAll(notifications.CompanyCatalog, payload.Events)
	if err != nil {
		h.respondError(w, r, log, apperrors.NewPayloadValidationError(err.Error()))
		return
	}

	if err := h.settings.Save(r.Context(), companyID, notifications.CompanyCatalog, encoded); err != nil {
		h.recordSave(r.Context(), "notifications", "error")
		h.respondError(w, r, log, err)
		return
	}

	h.recordSave(r.Context(), "notifications", "ok")
	if h.obs != nil {
		h.obs.RecordSaveDuration(r.Context(), time.Since(start), "notifications")
	}
	h.recordAudit(r.Context(), log, companyID, "notifications", eventIDs(encoded))

	h.respond(w, r, http.StatusOK, saveResponse{
		Saved:    len(encoded),
		Warnings: smsAdvisoryWarnings(notifications.CompanyCatalog, payload.Events),
	})
}

// ==========================
// Chase-up reminder rule
// ==========================

func (h *Handler) GetChaseUp(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	log := h.requestLogger(r, companyID)

	var rule *chaseup.Rule
	var warnings []notifications.EventWarning

	enc, err := h.rules.Load(r.Context(), companyID)
	switch {
	case apperrors.IsCode(err, apperrors.ErrCodeConfigNotFound):
		// A company without a rule sees the initial tier, not an error.
		rule = chaseup.NewRule()
	case err != nil:
		h.recordLoad(r.Context(), "chaseup", "error")
		h.respondError(w, r, log, err)
		return
	default:
		rule, warnings, err = chaseup.DecodeRule(enc)
		if err != nil {
			h.recordLoad(r.Context(), "chaseup", "error")
			h.respondError(w, r, log, err)
			return
		}
		h.logDecodeWarnings(log, warnings)
	}

	h.recordLoad(r.Context(), "chaseup", "ok")
	h.respond(w, r, http.StatusOK, chaseUpResponse{Rule: rule, Warnings: warnings})
}

func (h *Handler) PutChaseUp(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")
	log := h.requestLogger(r, companyID)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.respondError(w, r, log, apperrors.NewPayloadValidationError("unreadable request body"))
		return
	}
	if err := validatePayload(chaseUpSchema, body); err != nil {
		h.respondError(w, r, log, err)
		return
	}

	var payload chaseup.Rule
	if err := json.Unmarshal(body, &payload); err != nil {
		h.respondError(w, r, log, apperrors.NewPayloadValidationError(err.Error()))
		return
	}

	rule, err := buildRule(&payload)
	if err != nil {
		h.respondError(w, r, log, apperrors.NewPayloadValidationError(err.Error()))
		return
	}

	enc, err := rule.Encode()
	if err != nil {
		h.respondError(w, r, log, apperrors.NewPayloadValidationError(err.Error()))
		return
	}

	if err := h.rules.Save(r.Context(), companyID, enc); err != nil {
		h.recordSave(r.Context(), "chaseup", "error")
		h.respondError(w, r, log, err)
		return
	}

	h.recordSave(r.Context(), "chaseup", "ok")
	h.recordAudit(r.Context(), log, companyID, "chaseup", nil)

	reminders := map[notifications.EventID]*notifications.EventConfig{
		notifications.EventFirstReminder:  rule.First,
		notifications.EventSecondReminder: rule.Second,
	}
	h.respond(w, r, http.StatusOK, chaseUpResponse{
		Rule:        rule,
		SMSWarnings: smsAdvisoryWarnings(notifications.ChaseUpCatalog, reminders),
	})
}

// buildRule replays the payload through the escalation state machine so the
// stored tier is always consistent with the configured delays.
func buildRule(payload *chaseup.Rule) (*chaseup.Rule, error) {
	rule := chaseup.NewRule()
	if err := rule.SetMaxSendings(payload.MaxSendings); err != nil {
		return nil, err
	}

	if payload.First != nil {
		normalizeEventConfig(payload.First)
		rule.First = payload.First
	}
	if payload.Second != nil {
		normalizeEventConfig(payload.Second)
		rule.Second = payload.Second
	}

	// Delay edits escalate; zero means "not set".
	if payload.FirstDelayDays != 0 {
		rule.SetFirstDelayDays(payload.FirstDelayDays)
	}
	if payload.FirstDelayMinutes != 0 {
		rule.SetFirstDelayMinutes(payload.FirstDelayMinutes)
	}
	if payload.SecondDelayDays != 0 {
		rule.SetSecondDelayDays(payload.SecondDelayDays)
	}
	if payload.SecondDelayMinutes != 0 {
		rule.SetSecondDelayMinutes(payload.SecondDelayMinutes)
	}

	return rule, nil
}

func normalizeEventConfig(ec *notifications.EventConfig) {
	for role := range ec.Recipients {
		if !notifications.KnownRole(role) {
			delete(ec.Recipients, role)
		}
	}
	ec.Normalize()
}

// ==========================
// Shared plumbing
// ==========================

func (h *Handler) requestLogger(r *http.Request, companyID string) logger.Logger {
	return h.logger.WithFields(map[string]interface{}{
		"requestId": uuid.New().String(),
		"companyId": companyID,
		"method":    r.Method,
		"path":      r.URL.Path,
	})
}

func (h *Handler) logDecodeWarnings(log logger.Logger, warnings []notifications.EventWarning) {
	for _, w := range warnings {
		log.Warn("skipped template key during decode", map[string]interface{}{
			"event":  string(w.Event),
			"key":    w.Key,
			"reason": string(w.Reason),
		})
	}
}

func (h *Handler) recordAudit(ctx context.Context, log logger.Logger, companyID, scope string, events []string) {
	if h.audit == nil {
		return
	}
	err := h.audit.Record(ctx, store.AuditEntry{
		CompanyID:     companyID,
		Scope:         scope,
		Actor:         actorFromContext(ctx),
		EventsTouched: events,
	})
	if err != nil {
		// The save already succeeded; audit trouble is logged, never surfaced.
		log.Error("audit record failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Handler) recordSave(ctx context.Context, scope, status string) {
	if h.obs != nil {
		h.obs.RecordSave(ctx, scope, status)
	}
}

func (h *Handler) recordLoad(ctx context.Context, scope, status string) {
	if h.obs != nil {
		h.obs.RecordLoad(ctx, scope, status)
	}
}

type contextKey string

// ActorContextKey carries the authenticated operator name, when the outer
// auth middleware (out of scope here) provides one.
const ActorContextKey contextKey = "actor"

func actorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(ActorContextKey).(string); ok {
		return actor
	}
	return ""
}

func eventIDs(encoded map[notifications.EventID]notifications.EncodedEvent) []string {
	ids := make([]string, 0, len(encoded))
	for _, id := range notifications.CompanyCatalog.Events {
		if _, ok := encoded[id]; ok {
			ids = append(ids, string(id))
		}
	}
	return ids
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	route := r.Pattern
	if route == "" {
		route = r.URL.Path
	}
	metrics.APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error *apperrors.StandardError `json:"error"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	se, ok := err.(*apperrors.StandardError)
	if !ok {
		se = &apperrors.StandardError{
			Code:      apperrors.ErrCodeStoreReadFailed,
			Message:   "internal error",
			Details:   err.Error(),
			Timestamp: time.Now().UTC(),
		}
	}

	status := http.StatusInternalServerError
	switch se.Code {
	case apperrors.ErrCodePayloadValidationFailed:
		status = http.StatusBadRequest
	case apperrors.ErrCodeConfigNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeStoreReadFailed, apperrors.ErrCodeStoreWriteFailed:
		status = http.StatusServiceUnavailable
	}

	log.Error("request failed", map[string]interface{}{
		"status": status,
		"code":   string(se.Code),
		"error":  se.Details,
	})
	h.respond(w, r, status, errorResponse{Error: se})
}
