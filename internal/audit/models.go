// Package audit records who did what to which resource. Entries are
// append-only: nothing in this package can modify or remove a recorded
// entry, and the schema enforces the same rule at the database level.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the service.
const (
	ActionUserLogin    = "user_login"
	ActionLoginFailed  = "login_failed"
	ActionUserRegister = "user_register"
	ActionTokenRefresh = "token_refresh"
	ActionUserLogout   = "user_logout"
	ActionUserCreate   = "user_create"
	ActionUserUpdate   = "user_update"
	ActionUserDelete   = "user_delete"
)

// Actor types.
const (
	ActorTypeUser   = "user"
	ActorTypeSystem = "system"
)

// Data classification levels for recorded values.
const (
	ClassificationInternal     = "internal"
	ClassificationConfidential = "confidential"
)

// Entry captures a single audited action: who (actor), what (action and
// resource), and the request context it happened in. Old/new values hold
// before/after snapshots for mutations.
type Entry struct {
	ID                 uuid.UUID       `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	ActorID            *uuid.UUID      `json:"actor_id,omitempty"`
	ActorType          string          `json:"actor_type,omitempty"`
	ActorEmail         string          `json:"actor_email,omitempty"`
	ActorIP            string          `json:"actor_ip,omitempty"`
	Action             string          `json:"action"`
	ActionDetail       string          `json:"action_detail,omitempty"`
	ResourceType       string          `json:"resource_type,omitempty"`
	ResourceID         string          `json:"resource_id,omitempty"`
	RequestID          string          `json:"request_id,omitempty"`
	SessionID          string          `json:"session_id,omitempty"`
	Success            bool            `json:"success"`
	ErrorMessage       string          `json:"error_message,omitempty"`
	OldValues          json.RawMessage `json:"old_values,omitempty"`
	NewValues          json.RawMessage `json:"new_values,omitempty"`
	DataClassification string          `json:"data_classification,omitempty"`
	Timestamp          time.Time       `json:"timestamp"`
}
