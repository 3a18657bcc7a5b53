package store

import (
	"context"
	"fmt"
	"time"
)

// Event is an append-only audit log row.
type Event struct {
	ID        string `json:"id"`
	OrderRef  string `json:"order_ref"`
	EventType string `json:"event_type"`
	Status    string `json:"status"`
	Payload   string `json:"payload"`
	TS        int64  `json:"ts"`
}

// InsertEvent appends an audit event. Payload must already be JSON.
func (s *Store) InsertEvent(ctx context.Context, e *Event) error {
	if e.TS == 0 {
		e.TS = time.Now().UnixMilli()
	}
	if e.Payload == "" {
		e.Payload = "{}"
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO audit_log (id, order_ref, event_type, status, payload, ts)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.OrderRef, e.EventType, e.Status, e.Payload, e.TS)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns events newest first, optionally filtered by order ref.
func (s *Store) ListEvents(ctx context.Context, orderRef string, limit int) ([]*Event, error) {
	query := `SELECT id, order_ref, event_type, status, payload, ts FROM audit_log`
	args := []any{}
	if orderRef != "" {
		query += ` WHERE order_ref = ?`
		args = append(args, orderRef)
	}
	query += ` ORDER BY ts DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.OrderRef, &e.EventType, &e.Status, &e.Payload, &e.TS); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// CountEvents returns the number of audit events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
