// internal/api/handlers_test.go
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-ops/internal/chaseup"
	"inspection-ops/internal/common/logger"
	"inspection-ops/internal/notifications"
	"inspection-ops/internal/store"
)

// ==========================
// Test Helpers
// ==========================

func createTestServer(t *testing.T) (*httptest.Server, sqlmock.Sqlmock) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	handler := NewHandler(
		store.NewSettingsStore(client, log),
		store.NewRuleStore(db, log),
		nil, // no audit trail in handler tests
		nil,
		log,
	)

	mux := http.NewServeMux()
	handler.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, mock
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, []byte) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func createNotificationsBody(smsText string) map[string]interface{} {
	return map[string]interface{}{
		"events": map[string]interface{}{
			"inspectionFinished": map[string]interface{}{
				"webhook": true,
				"recipients": map[string]interface{}{
					"customer": map[string]interface{}{
						"enabled":   true,
						"email":     true,
						"sms":       true,
						"address":   "customer@example.com",
						"smsNumber": "+32470000000",
						"templates": map[string]interface{}{
							"en": map[string]interface{}{
								"email": map[string]interface{}{
									"subject": "Inspection finished",
									"content": "Your inspection report is ready.",
								},
								"sms": map[string]interface{}{
									"content": smsText,
								},
							},
						},
					},
				},
			},
		},
	}
}

// ==========================
// Company Notifications
// ==========================

func TestNotifications_PutThenGetRoundTrip(t *testing.T) {
	srv, _ := createTestServer(t)

	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/companies/comp-1/notifications", createNotificationsBody("Ready."))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var saved saveResponse
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, 1, saved.Saved)
	assert.Empty(t, saved.Warnings)

	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/companies/comp-1/notifications", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var got notificationsResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Empty(t, got.Warnings)

	ec := got.Events[notifications.EventInspectionFinished]
	require.NotNil(t, ec)
	assert.True(t, ec.Webhook)

	customer := ec.Recipients[notifications.RoleCustomer]
	require.NotNil(t, customer)
	assert.True(t, customer.Enabled)
	assert.True(t, customer.Email)
	assert.True(t, customer.SMS)
	assert.Equal(t, "customer@example.com", customer.Address)
	assert.Equal(t, "Inspection finished", customer.Templates["en"].Email.Subject)
	assert.Equal(t, "Ready.", customer.Templates["en"].SMS.Content)
}

func TestNotifications_GetReturnsStructuredModelOnly(t *testing.T) {
	srv, _ := createTestServer(t)

	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/companies/comp-1/notifications", createNotificationsBody("Ready."))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw = doJSON(t, http.MethodGet, srv.URL+"/companies/comp-1/notifications", nil)

	// The flat persisted key pattern must never leak to the editing surface.
	assert.NotContains(t, string(raw), "customerEmail_")
	assert.NotContains(t, string(raw), "customerSMS_")
	assert.NotContains(t, string(raw), "customerEmailAddress")
}

func TestNotifications_GetUnknownCompanyDefaultsAllEvents(t *testing.T) {
	srv, _ := createTestServer(t)

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/companies/never-saved/notifications", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got notificationsResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Len(t, got.Events, len(notifications.CompanyCatalog.Events))

	for _, id := range notifications.CompanyCatalog.Events {
		ec := got.Events[id]
		require.NotNil(t, ec, "event %s missing", id)
		for _, role := range notifications.Roles {
			rc := ec.Recipients[role]
			require.NotNil(t, rc)
			assert.False(t, rc.Enabled)
			assert.Len(t, rc.Templates, len(notifications.Languages))
		}
	}
}

func TestNotifications_PutInvalidBody(t *testing.T) {
	srv, _ := createTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not JSON", body: "{nope"},
		{name: "missing events", body: `{"settings": {}}`},
		{name: "webhook wrong type", body: `{"events": {"reportAvailable": {"webhook": "yes"}}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, srv.URL+"/companies/comp-1/notifications", strings.NewReader(tc.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestNotifications_PutReportsSMSLengthAdvisory(t *testing.T) {
	srv, _ := createTestServer(t)

	long := strings.Repeat("x", notifications.SMSLengthLimit+20)
	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/companies/comp-1/notifications", createNotificationsBody(long))
	require.Equal(t, http.StatusOK, resp.StatusCode, "length is advisory, never a rejection")

	var saved saveResponse
	require.NoError(t, json.Unmarshal(raw, &saved))
	require.Len(t, saved.Warnings, 1)
	assert.Equal(t, notifications.EventInspectionFinished, saved.Warnings[0].Event)
	assert.Equal(t, notifications.RoleCustomer, saved.Warnings[0].Role)
	assert.Equal(t, notifications.Language("en"), saved.Warnings[0].Language)
	assert.Equal(t, len(long), saved.Warnings[0].Length)
	assert.Equal(t, notifications.SMSLengthLimit, saved.Warnings[0].Limit)
}

func TestNotifications_PutDropsUnknownRoles(t *testing.T) {
	srv, _ := createTestServer(t)

	body := createNotificationsBody("Ready.")
	events := body["events"].(map[string]interface{})
	finished := events["inspectionFinished"].(map[string]interface{})
	finished["recipients"].(map[string]interface{})["auditor"] = map[string]interface{}{
		"enabled": true,
		"email":   true,
	}

	resp, _ := doJSON(t, http.MethodPut, srv.URL+"/companies/comp-1/notifications", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw := doJSON(t, http.MethodGet, srv.URL+"/companies/comp-1/notifications", nil)
	assert.NotContains(t, string(raw), "auditor")
}

// ==========================
// Chase-Up Rule
// ==========================

func TestChaseUp_GetWithoutRuleReturnsInitialTier(t *testing.T) {
	srv, mock := createTestServer(t)

	// An empty result set makes Scan yield sql.ErrNoRows, which the store
	// maps to CONFIG_NOT_FOUND and the handler maps to a fresh rule.
	mock.ExpectQuery("SELECT rule FROM chaseup_rules").
		WithArgs("comp-1").
		WillReturnRows(sqlmock.NewRows([]string{"rule"}))

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/companies/comp-1/chaseup", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var got chaseUpResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.NotNil(t, got.Rule)
	assert.Equal(t, 0, got.Rule.MaxSendings)
	assert.Equal(t, chaseup.TierNone, got.Rule.Tier())
}

func TestChaseUp_PutDelayEditEscalates(t *testing.T) {
	srv, mock := createTestServer(t)

	mock.ExpectExec("INSERT INTO chaseup_rules").
		WithArgs("comp-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := map[string]interface{}{
		"maxSendings":    1,
		"firstDelayDays": 3,
	}
	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/companies/comp-1/chaseup", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var got chaseUpResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	require.NotNil(t, got.Rule)
	assert.Equal(t, 2, got.Rule.MaxSendings, "delay edit escalates the tier")
	assert.Equal(t, chaseup.TierEscalated, got.Rule.Tier())
	assert.NotNil(t, got.Rule.First)
	assert.NotNil(t, got.Rule.Second, "escalation materializes the second reminder")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChaseUp_PutThenGetRoundTrip(t *testing.T) {
	srv, mock := createTestServer(t)

	var stored []byte
	mock.ExpectExec("INSERT INTO chaseup_rules").
		WithArgs("comp-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := map[string]interface{}{
		"maxSendings":    2,
		"firstDelayDays": 2,
		"secondDelayDays": 5,
		"firstReminder": map[string]interface{}{
			"recipients": map[string]interface{}{
				"customer": map[string]interface{}{
					"enabled": true,
					"sms":     true,
					"templates": map[string]interface{}{
						"fr": map[string]interface{}{
							"sms": map[string]interface{}{"content": "Rappel"},
						},
					},
				},
			},
		},
	}
	resp, raw := doJSON(t, http.MethodPut, srv.URL+"/companies/comp-1/chaseup", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	// Feed exactly what was saved back through GET.
	var put chaseUpResponse
	require.NoError(t, json.Unmarshal(raw, &put))
	enc, err := put.Rule.Encode()
	require.NoError(t, err)
	stored, err = json.Marshal(enc)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT rule FROM chaseup_rules").
		WithArgs("comp-1").
		WillReturnRows(sqlmock.NewRows([]string{"rule"}).AddRow(stored))

	resp, raw = doJSON(t, http.MethodGet, srv.URL+"/companies/comp-1/chaseup", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var got chaseUpResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, 2, got.Rule.MaxSendings)
	assert.Equal(t, 2, got.Rule.FirstDelayDays)
	assert.Equal(t, 5, got.Rule.SecondDelayDays)
	require.NotNil(t, got.Rule.First)
	customer := got.Rule.First.Recipients[notifications.RoleCustomer]
	require.NotNil(t, customer)
	assert.Equal(t, "Rappel", customer.Templates["fr"].SMS.Content)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChaseUp_PutInvalidMaxSendings(t *testing.T) {
	srv, _ := createTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "above range", body: `{"maxSendings": 3}`},
		{name: "negative", body: `{"maxSendings": -1}`},
		{name: "missing", body: `{"firstDelayDays": 3}`},
		{name: "wrong type", body: `{"maxSendings": "two"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, srv.URL+"/companies/comp-1/chaseup", strings.NewReader(tc.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestChaseUp_GetStoreFailure(t *testing.T) {
	srv, mock := createTestServer(t)

	mock.ExpectQuery("SELECT rule FROM chaseup_rules").
		WithArgs("comp-1").
		WillReturnError(fmt.Errorf("connection refused"))

	resp, raw := doJSON(t, http.MethodGet, srv.URL+"/companies/comp-1/chaseup", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(raw), "STORE_READ_FAILED")
}
