// internal/api/schema.go
package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "inspection-ops/internal/common/errors"
)

// Request bodies are validated against JSON schemas before they reach the
// codec, so the decoder only ever sees shape problems coming from the store,
// never from the editing surface.

const notificationsPayloadSchema = `{
	"type": "object",
	"required": ["events"],
	"additionalProperties": false,
	"properties": {
		"events": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"webhook": {"type": "boolean"},
					"recipients": {
						"type": "object",
						"additionalProperties": {
							"type": "object",
							"properties": {
								"enabled": {"type": "boolean"},
								"address": {"type": "string"},
								"smsNumber": {"type": "string"},
								"email": {"type": "boolean"},
								"sms": {"type": "boolean"},
								"templates": {
									"type": "object",
									"additionalProperties": {
										"type": "object",
										"properties": {
											"email": {
												"type": "object",
												"properties": {
													"subject": {"type": "string"},
													"content": {"type": "string"}
												}
											},
											"sms": {
												"type": "object",
												"properties": {
													"content": {"type": "string"}
												}
											}
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}`

const chaseUpPayloadSchema = `{
	"type": "object",
	"required": ["maxSendings"],
	"properties": {
		"maxSendings": {"type": "integer", "minimum": 0, "maximum": 2},
		"firstDelayDays": {"type": "integer", "minimum": 0},
		"firstDelayMinutes": {"type": "integer", "minimum": 0},
		"secondDelayDays": {"type": "integer", "minimum": 0},
		"secondDelayMinutes": {"type": "integer", "minimum": 0},
		"firstReminder": {"type": "object"},
		"secondReminder": {"type": "object"}
	}
}`

var (
	notificationsSchema = gojsonschema.NewStringLoader(notificationsPayloadSchema)
	chaseUpSchema       = gojsonschema.NewStringLoader(chaseUpPayloadSchema)
)

// validatePayload runs body against schema and folds violations into a single
// PAYLOAD_VALIDATION_FAILED error.
func validatePayload(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.NewPayloadValidationError(fmt.Sprintf("invalid JSON: %v", err))
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return apperrors.NewPayloadValidationError(strings.Join(details, "; "))
	}
	return nil
}
