package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists audit entries in PostgreSQL. The audit_logs table
// carries a trigger that rejects UPDATE and DELETE, so the append-only
// contract holds even against direct SQL access.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append inserts an audit entry.
func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_logs (
			id, tenant_id, actor_id, actor_type, actor_email, actor_ip,
			action, action_detail, resource_type, resource_id,
			request_id, session_id, success, error_message,
			old_values, new_values, data_classification, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.ActorID,
		nullable(entry.ActorType),
		nullable(entry.ActorEmail),
		nullable(entry.ActorIP),
		entry.Action,
		nullable(entry.ActionDetail),
		nullable(entry.ResourceType),
		nullable(entry.ResourceID),
		nullable(entry.RequestID),
		nullable(entry.SessionID),
		entry.Success,
		nullable(entry.ErrorMessage),
		rawOrNil(entry.OldValues),
		rawOrNil(entry.NewValues),
		nullable(entry.DataClassification),
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// List returns a page of entries for a tenant, newest first.
func (s *PostgresStore) List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]Entry, error) {
	query := `
		SELECT id, tenant_id, actor_id, actor_type, actor_email, actor_ip,
		       action, action_detail, resource_type, resource_id,
		       request_id, session_id, success, error_message,
		       old_values, new_values, data_classification, timestamp
		FROM audit_logs
		WHERE tenant_id = $1
		ORDER BY timestamp DESC, id
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, tenantID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var actorType, actorEmail, actorIP, detail, resourceType, resourceID sql.NullString
		var requestID, sessionID, errorMessage, classification sql.NullString
		var oldValues, newValues []byte
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.ActorID, &actorType, &actorEmail, &actorIP,
			&e.Action, &detail, &resourceType, &resourceID,
			&requestID, &sessionID, &e.Success, &errorMessage,
			&oldValues, &newValues, &classification, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ActorType = actorType.String
		e.ActorEmail = actorEmail.String
		e.ActorIP = actorIP.String
		e.ActionDetail = detail.String
		e.ResourceType = resourceType.String
		e.ResourceID = resourceID.String
		e.RequestID = requestID.String
		e.SessionID = sessionID.String
		e.ErrorMessage = errorMessage.String
		e.DataClassification = classification.String
		e.OldValues = oldValues
		e.NewValues = newValues
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func rawOrNil(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
