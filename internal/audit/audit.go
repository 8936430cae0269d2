// Package audit keeps a local log of envelope lifecycle activity: every
// submission, void, and received callback lands as one event row.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Writer appends events to the local log.
type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

type Payload map[string]any

// Event is one recorded lifecycle entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	AccountID  string `json:"account_id,omitempty"`
	EnvelopeID string `json:"envelope_id,omitempty"`
	DeliveryID string `json:"delivery_id,omitempty"`
	Payload    string `json:"payload_json"`
}

func (w Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Append writes one event. Each append gets a fresh delivery id so
// downstream consumers can deduplicate.
func (w Writer) Append(ctx context.Context, evtType, accountID, envelopeID string, payload Payload) error {
	ts := w.now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = w.DB.ExecContext(ctx, `INSERT INTO events(ts,type,account_id,envelope_id,delivery_id,payload_json) VALUES (?,?,?,?,?,?)`,
		ts, evtType, nullable(accountID), nullable(envelopeID), uuid.NewString(), string(data))
	return err
}

// Recent returns the newest events, oldest first.
func (w Writer) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := w.DB.QueryContext(ctx, `SELECT id,ts,type,account_id,envelope_id,delivery_id,payload_json
		FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		var account, envelope, delivery sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &account, &envelope, &delivery, &e.Payload); err != nil {
			return nil, err
		}
		e.AccountID = account.String
		e.EnvelopeID = envelope.String
		e.DeliveryID = delivery.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// reverse to chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ForEnvelope returns all events recorded for one envelope, oldest first.
func (w Writer) ForEnvelope(ctx context.Context, envelopeID string) ([]Event, error) {
	rows, err := w.DB.QueryContext(ctx, `SELECT id,ts,type,account_id,envelope_id,delivery_id,payload_json
		FROM events WHERE envelope_id=? ORDER BY id ASC`, envelopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		var account, envelope, delivery sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &account, &envelope, &delivery, &e.Payload); err != nil {
			return nil, err
		}
		e.AccountID = account.String
		e.EnvelopeID = envelope.String
		e.DeliveryID = delivery.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
